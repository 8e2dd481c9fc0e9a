// Package api provides the shared REST client base for both control planes:
// JSON round trips, error classification, and transient retry with
// exponential backoff. The typed Cloud and Enterprise clients build on it.
package api
