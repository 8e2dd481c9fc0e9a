// Package enterprise implements the Redis Enterprise cluster REST client.
// Mutating calls may return an action_uid; such actions are tracked to
// completion via GET /v1/actions/{uid}.
package enterprise

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/redisctl/redisctl/pkg/api"
)

// Client is a typed Redis Enterprise API client.
type Client struct {
	*api.Client
}

// NewClient builds an Enterprise client with basic auth. Clusters commonly
// run with self-signed certificates, so insecure skips TLS verification.
func NewClient(baseURL, username, password string, insecure bool, opts ...api.Option) *Client {
	decorate := func(req *http.Request) {
		req.SetBasicAuth(username, password)
	}
	if insecure {
		hc := &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- operator opted in
			},
		}
		opts = append([]api.Option{api.WithHTTPClient(hc)}, opts...)
	}
	return &Client{Client: api.NewClient(baseURL, decorate, opts...)}
}

// GetBootstrap fetches the cluster bootstrap state.
func (c *Client) GetBootstrap(ctx context.Context) (map[string]any, error) {
	return c.Get(ctx, "/v1/bootstrap")
}

// Bootstrap submits the cluster bootstrap request.
func (c *Client) Bootstrap(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Post(ctx, "/v1/bootstrap", payload)
}

// GetCluster fetches the cluster document.
func (c *Client) GetCluster(ctx context.Context) (map[string]any, error) {
	return c.Get(ctx, "/v1/cluster")
}

// GetAction fetches the status document of an asynchronous action.
func (c *Client) GetAction(ctx context.Context, actionUID string) (map[string]any, error) {
	return c.Get(ctx, fmt.Sprintf("/v1/actions/%s", actionUID))
}

// ListDatabases returns the cluster's databases.
func (c *Client) ListDatabases(ctx context.Context) (map[string]any, error) {
	return c.Get(ctx, "/v1/bdbs")
}

// CreateDatabase submits a database creation request.
func (c *Client) CreateDatabase(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Post(ctx, "/v1/bdbs", payload)
}

// ListNodes returns the cluster's nodes.
func (c *Client) ListNodes(ctx context.Context) (map[string]any, error) {
	return c.Get(ctx, "/v1/nodes")
}
