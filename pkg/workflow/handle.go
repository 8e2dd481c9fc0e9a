package workflow

import "fmt"

// HandleKind identifies which backend owns an operation handle and therefore
// which status endpoint and vocabulary apply to it.
type HandleKind string

const (
	// KindCloudTask is an asynchronous Redis Cloud task (GET /tasks/{id}).
	KindCloudTask HandleKind = "cloud-task"

	// KindEnterpriseAction is a Redis Enterprise action (GET /v1/actions/{uid}).
	KindEnterpriseAction HandleKind = "enterprise-action"

	// KindClusterState tracks Enterprise cluster readiness (GET /v1/cluster).
	// The cluster state document behaves like an operation status record, so
	// readiness waits reuse the same poller.
	KindClusterState HandleKind = "cluster-state"
)

// Validate checks if the handle kind is valid.
func (k HandleKind) Validate() error {
	switch k {
	case KindCloudTask, KindEnterpriseAction, KindClusterState:
		return nil
	default:
		return fmt.Errorf("invalid handle kind: %s", k)
	}
}

// OperationHandle is an opaque reference to a long-running remote operation,
// returned by a mutating API call instead of a final result. A handle is
// immutable and is consumed exactly once by the poller.
type OperationHandle struct {
	// ID is the backend-assigned operation identifier.
	ID string `json:"id"`

	// Kind tags which backend the handle belongs to.
	Kind HandleKind `json:"kind"`
}

// String returns a compact kind/id form for logs and error messages.
func (h OperationHandle) String() string {
	return fmt.Sprintf("%s/%s", h.Kind, h.ID)
}

// Validate checks the handle is usable by the poller.
func (h OperationHandle) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("operation handle has empty id")
	}
	return h.Kind.Validate()
}
