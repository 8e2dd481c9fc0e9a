// Package cloud implements the Redis Cloud control plane client. Mutating
// calls on this API are asynchronous: they return a task reference that is
// tracked to completion via GET /tasks/{id}.
package cloud

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redisctl/redisctl/pkg/api"
)

// DefaultBaseURL is the public Redis Cloud API endpoint.
const DefaultBaseURL = "https://api.redislabs.com/v1"

// Client is a typed Redis Cloud API client.
type Client struct {
	*api.Client
}

// NewClient builds a Cloud client authenticating with the account key pair.
func NewClient(apiKey, apiSecret, baseURL string, opts ...api.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	decorate := func(req *http.Request) {
		req.Header.Set("x-api-key", apiKey)
		req.Header.Set("x-api-secret-key", apiSecret)
	}
	return &Client{Client: api.NewClient(baseURL, decorate, opts...)}
}

// GetTask fetches the status document of an asynchronous task.
func (c *Client) GetTask(ctx context.Context, taskID string) (map[string]any, error) {
	return c.Get(ctx, fmt.Sprintf("/tasks/%s", taskID))
}

// ListSubscriptions returns the account's subscriptions document.
func (c *Client) ListSubscriptions(ctx context.Context) (map[string]any, error) {
	return c.Get(ctx, "/subscriptions")
}

// GetSubscription fetches one subscription.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID int64) (map[string]any, error) {
	return c.Get(ctx, fmt.Sprintf("/subscriptions/%d", subscriptionID))
}

// CreateSubscription starts creating a subscription and returns the
// response document, which carries the task reference.
func (c *Client) CreateSubscription(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Post(ctx, "/subscriptions", payload)
}

// ListDatabases returns the databases of a subscription.
func (c *Client) ListDatabases(ctx context.Context, subscriptionID int64) (map[string]any, error) {
	return c.Get(ctx, fmt.Sprintf("/subscriptions/%d/databases", subscriptionID))
}

// CreateDatabase starts creating a database in a subscription.
func (c *Client) CreateDatabase(ctx context.Context, subscriptionID int64, payload map[string]any) (map[string]any, error) {
	return c.Post(ctx, fmt.Sprintf("/subscriptions/%d/databases", subscriptionID), payload)
}

// ListPaymentMethods returns the account's payment methods document.
func (c *Client) ListPaymentMethods(ctx context.Context) (map[string]any, error) {
	return c.Get(ctx, "/payment-methods")
}
