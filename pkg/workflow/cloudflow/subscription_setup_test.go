package cloudflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redisctl/redisctl/pkg/api/cloud"
	"github.com/redisctl/redisctl/pkg/workflow"
)

// cloudStub simulates the Redis Cloud API for one subscription creation.
type cloudStub struct {
	mu            sync.Mutex
	taskPolls     int
	taskFails     bool
	subscriptions int
	createPayload map[string]any
}

func (s *cloudStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /payment-methods", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"paymentMethods": []any{
				map[string]any{"id": float64(3), "type": "marketplace"},
				map[string]any{"id": float64(8), "type": "credit-card"},
			},
		})
	})
	mux.HandleFunc("POST /subscriptions", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		s.mu.Lock()
		s.subscriptions++
		s.createPayload = payload
		s.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{"taskId": "t-sub"})
	})
	mux.HandleFunc("GET /tasks/t-sub", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.taskPolls++
		polls := s.taskPolls
		fails := s.taskFails
		s.mu.Unlock()

		// The task runs for two polls before settling.
		if polls < 3 {
			json.NewEncoder(w).Encode(map[string]any{"status": "processing-in-progress"})
			return
		}
		if fails {
			json.NewEncoder(w).Encode(map[string]any{
				"status": "processing-error",
				"response": map[string]any{
					"error": map[string]any{"description": "insufficient resources"},
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":   "processing-completed",
			"response": map[string]any{"resourceId": float64(5100)},
		})
	})
	mux.HandleFunc("GET /subscriptions/5100/databases", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"subscription": []any{
				map[string]any{
					"subscriptionId": float64(5100),
					"databases": []any{
						map[string]any{
							"databaseId":     float64(7),
							"name":           "legacy-cache",
							"publicEndpoint": "redis-7.example.com:16379",
						},
						map[string]any{
							"databaseId":     float64(1),
							"name":           "default-db",
							"publicEndpoint": "redis-1.example.com:16379",
						},
					},
				},
			},
		})
	})

	return mux
}

func newCloudRunContext(srvURL string) *workflow.RunContext {
	rc := workflow.NewRunContext(nil, workflow.PollConfig{
		Timeout:  2 * time.Second,
		Interval: 2 * time.Millisecond,
	})
	rc.Quiet = true
	rc.Cloud = cloud.NewClient("key", "secret", srvURL)
	return rc
}

func TestSubscriptionSetupHappyPath(t *testing.T) {
	stub := &cloudStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	rc := newCloudRunContext(srv.URL)
	res, err := SubscriptionSetup{}.Execute(context.Background(), rc, workflow.Args{
		"name": "prod",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}

	keys := res.Outputs.Keys()
	want := []string{"payment_method", "subscription", "database"}
	if len(keys) != len(want) {
		t.Fatalf("outputs = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("output %d = %q, want %q", i, keys[i], want[i])
		}
	}

	// The credit card must win over the marketplace method.
	if v, _ := res.Outputs.Get("payment_method"); v != int64(8) {
		t.Errorf("payment_method = %v, want 8", v)
	}

	v, _ := res.Outputs.Get("subscription")
	sub, _ := v.(map[string]any)
	if sub["subscription_id"] != int64(5100) {
		t.Errorf("subscription output = %v, want resource id from the task", v)
	}

	// The listing carries another database; the details must belong to the
	// one this run created, matched by name.
	v, _ = res.Outputs.Get("database")
	db, _ := v.(map[string]any)
	if cs, _ := db["connection_string"].(string); cs != "redis://redis-1.example.com:16379" {
		t.Errorf("connection_string = %q", cs)
	}
	if db["database_id"] != int64(1) {
		t.Errorf("database_id = %v, want 1", db["database_id"])
	}

	if stub.taskPolls < 3 {
		t.Errorf("task polled %d times, want at least 3", stub.taskPolls)
	}
	if pm := stub.createPayload["paymentMethodId"]; pm != float64(8) {
		t.Errorf("create payload paymentMethodId = %v, want the selected method", pm)
	}
}

func TestSubscriptionSetupTaskFailureKeepsPartialOutputs(t *testing.T) {
	stub := &cloudStub{taskFails: true}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	rc := newCloudRunContext(srv.URL)
	res, err := SubscriptionSetup{}.Execute(context.Background(), rc, workflow.Args{
		"name": "prod",
	})
	if !workflow.IsTerminal(err) {
		t.Fatalf("expected terminal failure, got: %v", err)
	}
	if res == nil || res.Success {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(err.Error(), "insufficient resources") {
		t.Errorf("error %q does not carry the backend detail", err.Error())
	}

	// Only the step that completed before the failure is reported.
	keys := res.Outputs.Keys()
	if len(keys) != 1 || keys[0] != "payment_method" {
		t.Errorf("partial outputs = %v, want [payment_method]", keys)
	}
}

func TestSubscriptionSetupExplicitPaymentMethod(t *testing.T) {
	stub := &cloudStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	rc := newCloudRunContext(srv.URL)
	res, err := SubscriptionSetup{}.Execute(context.Background(), rc, workflow.Args{
		"name":              "prod",
		"payment_method_id": "12",
		"skip_database":     "true",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if v, _ := res.Outputs.Get("payment_method"); v != "12" {
		t.Errorf("payment_method = %v, want the explicit id", v)
	}
	if _, ok := res.Outputs.Get("database"); ok {
		t.Error("database output present despite skip_database")
	}
}

func TestSubscriptionSetupDryRun(t *testing.T) {
	rc := newCloudRunContext("http://127.0.0.1:1")
	res, err := SubscriptionSetup{}.Execute(context.Background(), rc, workflow.Args{
		"name":    "prod",
		"dry_run": "true",
	})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if _, ok := res.Outputs.Get("would_create"); !ok {
		t.Error("dry run did not report would_create")
	}
}

func TestDatabaseDetailsMatchesByName(t *testing.T) {
	doc := map[string]any{
		"subscription": []any{
			map[string]any{
				"databases": []any{
					map[string]any{"databaseId": float64(7), "name": "legacy-cache", "publicEndpoint": "old.example.com:16379"},
					map[string]any{"databaseId": float64(9), "name": "default-db", "publicEndpoint": "new.example.com:16379"},
				},
			},
		},
	}

	details := databaseDetails(doc, "default-db")
	if details["database_id"] != int64(9) {
		t.Errorf("database_id = %v, want the database matching the name", details["database_id"])
	}
	if details["connection_string"] != "redis://new.example.com:16379" {
		t.Errorf("connection_string = %v", details["connection_string"])
	}

	// A name absent from the listing means the database has not surfaced yet.
	pending := databaseDetails(doc, "brand-new")
	if pending["status"] != "pending" {
		t.Errorf("unlisted database = %v, want pending", pending)
	}
}

func TestSubscriptionSetupRequiresCloudClient(t *testing.T) {
	rc := workflow.NewRunContext(nil, workflow.PollConfig{})
	rc.Quiet = true
	_, err := SubscriptionSetup{}.Execute(context.Background(), rc, workflow.Args{})
	if !workflow.IsUsage(err) {
		t.Fatalf("expected usage error, got: %v", err)
	}
}
