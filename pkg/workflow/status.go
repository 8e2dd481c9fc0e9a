package workflow

import (
	"fmt"
	"strings"
)

// Status is the canonical state of a remote operation. Every
// backend-specific status vocabulary maps into this set.
type Status string

const (
	// StatusPending indicates the operation is accepted but not yet started.
	StatusPending Status = "pending"

	// StatusRunning indicates the operation is in progress.
	StatusRunning Status = "running"

	// StatusSucceeded indicates the operation finished successfully.
	StatusSucceeded Status = "succeeded"

	// StatusFailed indicates the backend reported the operation as failed.
	StatusFailed Status = "failed"
)

// IsTerminal returns true if no further status transition can occur. Once a
// terminal status is observed the poller issues no further queries for the
// handle.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Validate checks if the status is valid.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusRunning, StatusSucceeded, StatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid status: %s", s)
	}
}

// Adapter translates a backend's native status strings into canonical
// statuses. Classify must be total: an unrecognized string classifies as
// StatusRunning (fail open) so that backend vocabulary drift keeps the
// poller polling instead of aborting an operation that is still progressing.
type Adapter interface {
	// Kind reports which backend vocabulary this adapter understands.
	Kind() HandleKind

	// Classify maps one raw status string to a canonical status.
	Classify(raw string) Status
}

// AdapterFor returns the status adapter for a backend kind.
func AdapterFor(kind HandleKind) (Adapter, error) {
	switch kind {
	case KindCloudTask:
		return CloudTaskAdapter{}, nil
	case KindEnterpriseAction:
		return EnterpriseActionAdapter{}, nil
	case KindClusterState:
		return ClusterStateAdapter{}, nil
	default:
		return nil, fmt.Errorf("no status adapter for handle kind %q", kind)
	}
}

// CloudTaskAdapter classifies Redis Cloud task statuses. The current API
// reports the processing-* vocabulary; older deployments report bare forms.
type CloudTaskAdapter struct{}

// Kind implements Adapter.
func (CloudTaskAdapter) Kind() HandleKind { return KindCloudTask }

// Classify implements Adapter.
func (CloudTaskAdapter) Classify(raw string) Status {
	switch normalizeStatus(raw) {
	case "received", "queued", "initialized", "pending":
		return StatusPending
	case "processing-in-progress", "in-progress", "in_progress", "processing", "running":
		return StatusRunning
	case "processing-completed", "completed", "complete", "finished", "succeeded", "success":
		return StatusSucceeded
	case "processing-error", "failed", "error":
		return StatusFailed
	default:
		return StatusRunning
	}
}

// EnterpriseActionAdapter classifies Redis Enterprise action statuses.
// A backend-side "canceled" is terminal and authoritative, so it maps to
// StatusFailed; it is unrelated to a local user interrupt.
type EnterpriseActionAdapter struct{}

// Kind implements Adapter.
func (EnterpriseActionAdapter) Kind() HandleKind { return KindEnterpriseAction }

// Classify implements Adapter.
func (EnterpriseActionAdapter) Classify(raw string) Status {
	switch normalizeStatus(raw) {
	case "queued", "pending", "starting":
		return StatusPending
	case "running", "in_progress", "in-progress", "processing":
		return StatusRunning
	case "completed", "done", "finished", "succeeded":
		return StatusSucceeded
	case "failed", "error", "canceled", "cancelled":
		return StatusFailed
	default:
		return StatusRunning
	}
}

// ClusterStateAdapter classifies the Enterprise cluster state document used
// by readiness waits. A freshly bootstrapped cluster passes through
// bootstrap phases before reaching active; anything unrecognized is still
// converging.
type ClusterStateAdapter struct{}

// Kind implements Adapter.
func (ClusterStateAdapter) Kind() HandleKind { return KindClusterState }

// Classify implements Adapter.
func (ClusterStateAdapter) Classify(raw string) Status {
	switch normalizeStatus(raw) {
	case "unconfigured", "new":
		return StatusPending
	case "active", "ready", "ok":
		return StatusSucceeded
	case "error", "failed":
		return StatusFailed
	default:
		return StatusRunning
	}
}

// normalizeStatus lowercases and trims a raw status for comparison.
func normalizeStatus(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
