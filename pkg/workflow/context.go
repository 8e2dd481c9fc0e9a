package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/redisctl/redisctl/pkg/api/cloud"
	"github.com/redisctl/redisctl/pkg/api/enterprise"
	"github.com/redisctl/redisctl/pkg/telemetry"
)

// RunContext carries everything the steps of one workflow run share: the
// backend clients, the waiting configuration, output preferences, and the
// append-only output accumulator. A RunContext is owned exclusively by the
// run that created it and is never shared across concurrent runs, so none
// of its mutable state is locked.
type RunContext struct {
	// RunID tags every log line of this run.
	RunID string

	// Cloud is the Redis Cloud client, when the run targets the cloud
	// control plane.
	Cloud *cloud.Client

	// Enterprise is the Redis Enterprise client, when the run targets an
	// on-premise cluster.
	Enterprise *enterprise.Client

	// Poll is the waiting configuration shared by all steps of the run.
	Poll PollConfig

	// Quiet suppresses human-readable progress narration; set when the
	// caller asked for machine-readable output.
	Quiet bool

	// Log is the structured logger for the run.
	Log *telemetry.Logger

	outputs *Outputs
}

// NewRunContext builds the context for one workflow run. A zero Poll config
// is replaced with the defaults.
func NewRunContext(log *telemetry.Logger, poll PollConfig) *RunContext {
	if poll.Timeout == 0 && poll.Interval == 0 {
		poll = DefaultPollConfig()
	}
	if poll.NotFoundLimit == 0 {
		poll.NotFoundLimit = DefaultNotFoundLimit
	}
	runID := uuid.NewString()
	if log == nil {
		log = telemetry.Nop()
	}
	return &RunContext{
		RunID:   runID,
		Poll:    poll,
		Log:     log.WithRunID(runID),
		outputs: NewOutputs(),
	}
}

// Output returns a value recorded by an earlier step of this run. Later
// steps consume outputs of earlier ones through this accessor.
func (rc *RunContext) Output(key string) (any, bool) {
	return rc.outputs.Get(key)
}

// OutputString returns an earlier step's output coerced to a string.
func (rc *RunContext) OutputString(key string) (string, bool) {
	v, ok := rc.outputs.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

// record appends a step output to the run's accumulator.
func (rc *RunContext) record(key string, value any) {
	rc.outputs.Set(key, value)
}

// Progress prints a human-readable progress line unless the run is quiet.
func (rc *RunContext) Progress(format string, args ...any) {
	if rc.Quiet {
		return
	}
	fmt.Printf(format+"\n", args...)
}

// fetcherFor returns the status fetcher serving a handle kind, wired to the
// run's backend clients.
func (rc *RunContext) fetcherFor(kind HandleKind) (StatusFetcher, error) {
	switch kind {
	case KindCloudTask:
		if rc.Cloud == nil {
			return nil, fmt.Errorf("run has no cloud client configured")
		}
		return &CloudTaskFetcher{Client: rc.Cloud}, nil
	case KindEnterpriseAction:
		if rc.Enterprise == nil {
			return nil, fmt.Errorf("run has no enterprise client configured")
		}
		return &EnterpriseActionFetcher{Client: rc.Enterprise}, nil
	case KindClusterState:
		if rc.Enterprise == nil {
			return nil, fmt.Errorf("run has no enterprise client configured")
		}
		return &ClusterStateFetcher{Client: rc.Enterprise}, nil
	default:
		return nil, fmt.Errorf("no status fetcher for handle kind %q", kind)
	}
}

// WaitFor tracks an operation handle to completion using the run's poll
// configuration.
func (rc *RunContext) WaitFor(ctx context.Context, handle OperationHandle) (*Outcome, error) {
	fetcher, err := rc.fetcherFor(handle.Kind)
	if err != nil {
		return nil, NewUsageError(err.Error())
	}
	adapter, err := AdapterFor(handle.Kind)
	if err != nil {
		return nil, NewUsageError(err.Error())
	}
	poller, err := NewPoller(fetcher, adapter, rc.Poll)
	if err != nil {
		return nil, NewUsageError(err.Error())
	}

	log := rc.Log.WithField("operation", handle.String())
	log.Debugf("waiting up to %s, polling every %s", rc.Poll.Timeout, rc.Poll.Interval)

	outcome, err := poller.Wait(ctx, handle)
	if err != nil {
		log.WithError(err).Debug("wait ended without a terminal status")
		return nil, err
	}
	log.Debugf("operation reached %s after %d polls in %s", outcome.Status, outcome.Polls, outcome.Elapsed)
	return outcome, nil
}
