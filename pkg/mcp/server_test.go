package mcp

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/redisctl/redisctl/pkg/config"
	"github.com/redisctl/redisctl/pkg/telemetry"
	"github.com/redisctl/redisctl/pkg/workflow"
)

func TestServeStopsOnContextCancel(t *testing.T) {
	s := NewServer(&config.Config{Profiles: map[string]config.Profile{}}, workflow.NewRegistry(), telemetry.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	// A pipe that never delivers input: the server sits blocked on a read
	// the way it does on a real stdin.
	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, pr, io.Discard) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("serve returned %v, want nil or context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}
