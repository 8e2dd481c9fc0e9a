package workflow

import (
	"context"
	"fmt"
)

// Workflow is one named, multi-step operation invokable by the CLI
// dispatcher and the MCP surface. Implementations are registered by name at
// process start and never mutated afterwards.
type Workflow interface {
	// Name is the unique workflow identifier.
	Name() string

	// Description is a one-line human-readable summary.
	Description() string

	// Execute runs the workflow. The returned Result is non-nil whenever
	// execution began, including on failure, timeout and cancellation; the
	// error carries the failure classification for exit-code handling.
	Execute(ctx context.Context, rc *RunContext, args Args) (*Result, error)
}

// Run executes steps strictly in order and assembles the run's Result.
//
// The execution is a linear state machine: it only ever moves forward
// through step indices or to a terminal state. A step failure halts the
// remainder of the run immediately; completed steps' outputs stay in the
// Result so the caller can see exactly how far execution got. There is no
// retry and no rollback of earlier steps' side effects here: re-running the
// workflow is the recovery path, which is what step preconditions exist for.
func Run(ctx context.Context, rc *RunContext, steps []Step) (*Result, error) {
	res := NewResult()

	for _, step := range steps {
		log := rc.Log.WithStep(step.Name)

		// A cancellation between steps finalizes with whatever accumulated.
		select {
		case <-ctx.Done():
			err := NewCancelledError("run interrupted", ctx.Err()).WithStep(step.Name)
			return finalize(res, rc, err), err
		default:
		}

		if step.Precondition != nil {
			value, satisfied, err := step.Precondition(ctx, rc)
			if err != nil {
				werr := asStepError(err, step.Name, "precondition check failed")
				return finalize(res, rc, werr), werr
			}
			if satisfied {
				log.Debug("precondition already satisfied, skipping action")
				rc.Progress("  %s: already satisfied", step.Name)
				record(res, rc, step.OutputKey, value)
				continue
			}
		}

		log.Debug("executing step")
		out, err := step.Action(ctx, rc)
		if err != nil {
			werr := asStepError(err, step.Name, "step failed")
			return finalize(res, rc, werr), werr
		}

		if out == nil {
			record(res, rc, step.OutputKey, nil)
			continue
		}

		if out.Handle == nil {
			record(res, rc, step.OutputKey, out.Value)
			continue
		}

		outcome, err := rc.WaitFor(ctx, *out.Handle)
		if err != nil {
			werr := asStepError(err, step.Name, "wait failed")
			return finalize(res, rc, werr), werr
		}
		if outcome.Status == StatusFailed {
			detail := outcome.Detail
			if detail == "" {
				detail = "no failure detail reported"
			}
			werr := NewTerminalError(detail, nil).WithStep(step.Name)
			return finalize(res, rc, werr), werr
		}

		value := any(outcome.Payload)
		if out.Extract != nil {
			value, err = out.Extract(outcome)
			if err != nil {
				werr := asStepError(err, step.Name, "extracting step output")
				return finalize(res, rc, werr), werr
			}
		}
		record(res, rc, step.OutputKey, value)
	}

	res.Success = true
	res.Message = fmt.Sprintf("all %d steps completed", len(steps))
	return res, nil
}

// record stores a step output in both the result and the run context, where
// later steps can read it.
func record(res *Result, rc *RunContext, key string, value any) {
	if key == "" {
		return
	}
	res.Outputs.Set(key, value)
	rc.record(key, value)
}

// finalize freezes a failed run's result with the failure message and the
// outputs accumulated so far.
func finalize(res *Result, rc *RunContext, err *Error) *Result {
	res.Success = false
	res.Message = err.Error()
	rc.Log.WithError(err).Error("workflow run ended early")
	return res
}

// asStepError tags err with the step it surfaced in, preserving an existing
// classification and defaulting everything else to a terminal failure.
func asStepError(err error, step, context string) *Error {
	if werr, ok := err.(*Error); ok {
		if werr.Step == "" {
			werr.Step = step
		}
		return werr
	}
	return NewTerminalError(context, err).WithStep(step)
}
