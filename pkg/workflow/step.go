package workflow

import "context"

// StepOutput is what a step's action produced: either an immediate value or
// a handle to a remote operation that must be polled to completion before
// the step's output exists.
type StepOutput struct {
	// Value is the immediate result, when no remote operation is involved.
	Value any

	// Handle references the asynchronous operation to wait on, if any.
	Handle *OperationHandle

	// Extract derives the step's recorded output from the terminal outcome.
	// When nil, the outcome's payload is recorded as-is.
	Extract func(outcome *Outcome) (any, error)
}

// Immediate wraps a directly available value.
func Immediate(value any) *StepOutput {
	return &StepOutput{Value: value}
}

// Async wraps an operation handle; the full terminal payload becomes the
// step's output.
func Async(handle OperationHandle) *StepOutput {
	return &StepOutput{Handle: &handle}
}

// AsyncExtract wraps an operation handle with a custom output extractor.
func AsyncExtract(handle OperationHandle, extract func(outcome *Outcome) (any, error)) *StepOutput {
	return &StepOutput{Handle: &handle, Extract: extract}
}

// Step is a single unit of work in a workflow. Steps do not retry
// internally: retry and backoff policy belong to the API client layer, and
// re-running a whole workflow is what the precondition exists for.
type Step struct {
	// Name identifies the step in logs and failure messages.
	Name string

	// OutputKey is the key the step's output is recorded under.
	OutputKey string

	// Precondition, when set, reports whether the step's effect is already
	// in place. If satisfied, the returned value is recorded as the step's
	// output and Action is never invoked (idempotent re-entry).
	Precondition func(ctx context.Context, rc *RunContext) (value any, satisfied bool, err error)

	// Action performs the step's work.
	Action func(ctx context.Context, rc *RunContext) (*StepOutput, error)
}
