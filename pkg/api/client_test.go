package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestClientGetDecodesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/cluster" {
			t.Errorf("path = %s, want /v1/cluster", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %s", r.Header.Get("Accept"))
		}
		json.NewEncoder(w).Encode(map[string]any{"name": "prod", "state": "active"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	doc, err := c.Get(context.Background(), "/v1/cluster")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc["state"] != "active" {
		t.Errorf("state = %v", doc["state"])
	}
}

func TestClientAppliesDecoration(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func(req *http.Request) {
		req.Header.Set("x-api-key", "k-123")
	})
	if _, err := c.Get(context.Background(), "/"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotKey != "k-123" {
		t.Errorf("x-api-key = %q, decoration not applied", gotKey)
	}
}

func TestClientWrapsBareArrays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"uid": 1}, {"uid": 2}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	doc, err := c.Get(context.Background(), "/v1/bdbs")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	items, ok := doc["items"].([]any)
	if !ok || len(items) != 2 {
		t.Errorf("items = %v, want the wrapped array", doc["items"])
	}
}

func TestClientErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		wantClass ErrorClass
	}{
		{http.StatusBadRequest, ClassPermanent},
		{http.StatusUnauthorized, ClassPermanent},
		{http.StatusForbidden, ClassPermanent},
		{http.StatusNotFound, ClassNotFound},
		{http.StatusTooManyRequests, ClassThrottled},
		{http.StatusInternalServerError, ClassTransient},
		{http.StatusBadGateway, ClassTransient},
		{http.StatusServiceUnavailable, ClassTransient},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"description": "backend says no"}`))
		}))

		c := NewClient(srv.URL, nil, WithoutRetry())
		_, err := c.Get(context.Background(), "/x")
		srv.Close()

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected *Error, got %v", tt.status, err)
		}
		if apiErr.Class != tt.wantClass {
			t.Errorf("status %d: class = %s, want %s", tt.status, apiErr.Class, tt.wantClass)
		}
		if apiErr.StatusCode != tt.status {
			t.Errorf("status %d: status code = %d", tt.status, apiErr.StatusCode)
		}
		if apiErr.Message != "backend says no" {
			t.Errorf("status %d: message = %q, want the body description", tt.status, apiErr.Message)
		}
	}
}

func TestClientErrorMessageFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, WithoutRetry())
	_, err := c.Get(context.Background(), "/x")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != http.StatusText(http.StatusConflict) {
		t.Errorf("message = %q, want status text", apiErr.Message)
	}
}

func TestClientDoRetriesTransientFailures(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, WithRetryBudget(5*time.Second))
	doc, err := c.Get(context.Background(), "/flaky")
	if err != nil {
		t.Fatalf("Get failed despite retry: %v", err)
	}
	if doc["ok"] != true {
		t.Errorf("doc = %v", doc)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Errorf("server hit %d times, want 3", calls)
	}
}

func TestClientDoDoesNotRetryPermanentFailures(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "bad credentials"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Get(context.Background(), "/x")
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error, got: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("server hit %d times, want 1: permanent errors are not retried", calls)
	}
}

func TestClientOnceNeverRetries(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Once(context.Background(), http.MethodGet, "/x", nil)
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("server hit %d times, want 1: Once bypasses retry", calls)
	}
}

func TestClientPostSendsJSONBody(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"taskId": "t-1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	doc, err := c.Post(context.Background(), "/subscriptions", map[string]any{"name": "prod"})
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if gotBody["name"] != "prod" {
		t.Errorf("server saw body %v", gotBody)
	}
	if doc["taskId"] != "t-1" {
		t.Errorf("doc = %v", doc)
	}
}

func TestClientEmptyBodyIsEmptyDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	doc, err := c.Delete(context.Background(), "/v1/bdbs/1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("doc = %v, want empty", doc)
	}
}

func TestClientContextCancellationPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(srv.URL, nil, WithoutRetry())
	_, err := c.Get(ctx, "/slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got: %v", err)
	}
}
