package workflow

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redisctl/redisctl/pkg/api/cloud"
	"github.com/redisctl/redisctl/pkg/api/enterprise"
)

// CloudTaskFetcher reads Redis Cloud task status records. Fetches go
// through the client's no-retry path: the poller owns the retry budget.
type CloudTaskFetcher struct {
	Client *cloud.Client
}

// FetchStatus implements StatusFetcher.
func (f *CloudTaskFetcher) FetchStatus(ctx context.Context, handle OperationHandle) (*StatusReport, error) {
	doc, err := f.Client.Once(ctx, http.MethodGet, fmt.Sprintf("/tasks/%s", handle.ID), nil)
	if err != nil {
		return nil, err
	}
	return &StatusReport{
		RawStatus: cloud.TaskStatus(doc),
		Detail:    cloud.TaskFailureDetail(doc),
		Payload:   doc,
	}, nil
}

// EnterpriseActionFetcher reads Redis Enterprise action status records.
type EnterpriseActionFetcher struct {
	Client *enterprise.Client
}

// FetchStatus implements StatusFetcher.
func (f *EnterpriseActionFetcher) FetchStatus(ctx context.Context, handle OperationHandle) (*StatusReport, error) {
	doc, err := f.Client.Once(ctx, http.MethodGet, fmt.Sprintf("/v1/actions/%s", handle.ID), nil)
	if err != nil {
		return nil, err
	}
	return &StatusReport{
		RawStatus: enterprise.ActionStatus(doc),
		Detail:    enterprise.ActionFailureDetail(doc),
		Payload:   doc,
	}, nil
}

// ClusterStateFetcher reads the Enterprise cluster document for readiness
// waits. The handle ID is ignored; there is only one cluster per client.
type ClusterStateFetcher struct {
	Client *enterprise.Client
}

// FetchStatus implements StatusFetcher.
func (f *ClusterStateFetcher) FetchStatus(ctx context.Context, _ OperationHandle) (*StatusReport, error) {
	doc, err := f.Client.Once(ctx, http.MethodGet, "/v1/cluster", nil)
	if err != nil {
		return nil, err
	}
	return &StatusReport{
		RawStatus: enterprise.ClusterState(doc),
		Payload:   doc,
	}, nil
}
