package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default waiting behavior for mutating commands and workflow runs.
const (
	// DefaultTimeout bounds how long a wait may take overall.
	DefaultTimeout = 10 * time.Minute

	// DefaultInterval is the fixed delay between status checks.
	DefaultInterval = 10 * time.Second

	// DefaultNotFoundLimit caps consecutive 404 responses from the status
	// endpoint before the wait is abandoned. Operation records can lag their
	// creation (eventual consistency), but a record missing this many polls
	// in a row is assumed gone for good, e.g. garbage-collected.
	DefaultNotFoundLimit = 12
)

// PollConfig controls one wait on an operation handle.
type PollConfig struct {
	// Timeout is the overall deadline for the wait, measured from its start.
	Timeout time.Duration `json:"timeout"`

	// Interval is the fixed delay between consecutive status checks.
	Interval time.Duration `json:"interval"`

	// NotFoundLimit is the number of consecutive not-found responses
	// tolerated before the wait fails. Zero means unbounded: not-found is
	// then indistinguishable from any other transient fetch error.
	NotFoundLimit int `json:"not_found_limit,omitempty"`
}

// DefaultPollConfig returns the standard waiting behavior.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Timeout:       DefaultTimeout,
		Interval:      DefaultInterval,
		NotFoundLimit: DefaultNotFoundLimit,
	}
}

// Validate rejects configurations that cannot make progress. Values are
// never silently clamped; the caller sees exactly what was rejected.
func (c PollConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Interval)
	}
	if c.Interval >= c.Timeout {
		return fmt.Errorf("poll interval %s must be strictly less than timeout %s", c.Interval, c.Timeout)
	}
	if c.NotFoundLimit < 0 {
		return fmt.Errorf("not-found limit must not be negative, got %d", c.NotFoundLimit)
	}
	return nil
}

// StatusReport is one observation of a remote operation's state.
type StatusReport struct {
	// RawStatus is the backend's native status string, before classification.
	RawStatus string

	// Detail carries the backend's failure description, when present.
	Detail string

	// Payload is the full status document the backend returned.
	Payload map[string]any
}

// StatusFetcher retrieves the current status record for an operation handle.
// Implementations wrap one backend's status endpoint.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, handle OperationHandle) (*StatusReport, error)
}

// StatusFetcherFunc adapts a function to the StatusFetcher interface.
type StatusFetcherFunc func(ctx context.Context, handle OperationHandle) (*StatusReport, error)

// FetchStatus implements StatusFetcher.
func (f StatusFetcherFunc) FetchStatus(ctx context.Context, handle OperationHandle) (*StatusReport, error) {
	return f(ctx, handle)
}

// transientStatusError is implemented by fetch errors that represent
// retryable transport failures: network errors, 5xx responses, 429.
type transientStatusError interface {
	error
	Transient() bool
}

// notFoundStatusError is implemented by fetch errors that indicate the
// status record is not (yet) queryable.
type notFoundStatusError interface {
	error
	NotFound() bool
}

// Outcome is the terminal result of a completed wait. Status is always
// StatusSucceeded or StatusFailed.
type Outcome struct {
	// Status is the terminal canonical status.
	Status Status

	// Detail is the backend failure description when Status is StatusFailed.
	Detail string

	// Payload is the final status document, for output extraction.
	Payload map[string]any

	// Polls is the number of status fetch attempts that were made.
	Polls int

	// Elapsed is how long the wait took.
	Elapsed time.Duration
}

// Poller tracks one remote operation to completion by repeatedly querying
// its status endpoint under a deadline.
type Poller struct {
	fetcher StatusFetcher
	adapter Adapter
	cfg     PollConfig
}

// NewPoller builds a poller. The configuration is validated up front so a
// bad timeout/interval pair fails before the first status query.
func NewPoller(fetcher StatusFetcher, adapter Adapter, cfg PollConfig) (*Poller, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("poller requires a status fetcher")
	}
	if adapter == nil {
		return nil, fmt.Errorf("poller requires a status adapter")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid poll config: %w", err)
	}
	return &Poller{fetcher: fetcher, adapter: adapter, cfg: cfg}, nil
}

// Wait polls the handle's status until a terminal state, the deadline, or
// cancellation, whichever comes first.
//
// The first status check happens immediately, so an operation that is
// already terminal returns without sleeping. Transient fetch errors are
// retried silently up to the deadline; the last one is only surfaced if the
// deadline passes with no successful status read at all. A terminal failure
// reported by the backend is returned as an Outcome, not an error: the wait
// itself worked, the operation did not.
func (p *Poller) Wait(ctx context.Context, handle OperationHandle) (*Outcome, error) {
	if err := handle.Validate(); err != nil {
		return nil, NewUsageError(err.Error())
	}

	start := time.Now()
	deadline := start.Add(p.cfg.Timeout)

	var (
		polls          int
		reads          int
		notFoundStreak int
		lastTransient  error
	)

	for {
		// Cancellation is observed before every status query; once seen, no
		// further queries are issued.
		select {
		case <-ctx.Done():
			return nil, NewCancelledError(fmt.Sprintf("wait for %s interrupted", handle), ctx.Err())
		default:
		}

		// The deadline is checked before each query, so the number of checks
		// never exceeds ceil(timeout/interval) and a wait overshoots its
		// budget by at most one interval.
		if polls > 0 && !time.Now().Before(deadline) {
			return nil, p.timeoutError(handle, reads, lastTransient)
		}

		report, err := p.fetcher.FetchStatus(ctx, handle)
		polls++

		switch {
		case err == nil:
			reads++
			notFoundStreak = 0
			status := p.adapter.Classify(report.RawStatus)
			if status.IsTerminal() {
				return &Outcome{
					Status:  status,
					Detail:  report.Detail,
					Payload: report.Payload,
					Polls:   polls,
					Elapsed: time.Since(start),
				}, nil
			}

		case isNotFoundFetch(err):
			// Expected shortly after operation creation: the status record
			// can lag. Bounded separately from generic transient errors so a
			// permanently missing record does not consume the whole timeout.
			notFoundStreak++
			lastTransient = err
			if p.cfg.NotFoundLimit > 0 && notFoundStreak >= p.cfg.NotFoundLimit {
				return nil, NewNotFoundError(
					fmt.Sprintf("operation %s not found after %d consecutive polls", handle, notFoundStreak), err)
			}

		case isTransientFetch(err):
			notFoundStreak = 0
			lastTransient = err

		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil, NewCancelledError(fmt.Sprintf("wait for %s interrupted", handle), err)

		default:
			// Anything unclassified is a hard client-side failure; retrying
			// an auth rejection to the deadline would only hide it.
			return nil, NewTransportError(fmt.Sprintf("fetching status of %s", handle), err)
		}

		if !time.Now().Before(deadline) {
			return nil, p.timeoutError(handle, reads, lastTransient)
		}

		// Interruptible inter-poll delay. The ctx check at loop top covers
		// the wake-up path as well.
		timer := time.NewTimer(p.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, NewCancelledError(fmt.Sprintf("wait for %s interrupted", handle), ctx.Err())
		case <-timer.C:
		}
	}
}

// timeoutError distinguishes "never reached a terminal state" from "never
// even read a status": the latter carries the last transport error.
func (p *Poller) timeoutError(handle OperationHandle, reads int, lastTransient error) *Error {
	msg := fmt.Sprintf("operation %s did not reach a terminal state within %s", handle, p.cfg.Timeout)
	if reads == 0 && lastTransient != nil {
		return NewTimeoutError(msg+"; no status could be read", lastTransient)
	}
	return NewTimeoutError(msg, nil)
}

func isTransientFetch(err error) bool {
	var te transientStatusError
	return errors.As(err, &te) && te.Transient()
}

func isNotFoundFetch(err error) bool {
	var nf notFoundStatusError
	return errors.As(err, &nf) && nf.NotFound()
}
