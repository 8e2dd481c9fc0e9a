package entflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redisctl/redisctl/pkg/api/enterprise"
	"github.com/redisctl/redisctl/pkg/workflow"
)

// clusterStub simulates a Redis Enterprise cluster through bootstrap.
type clusterStub struct {
	mu             sync.Mutex
	bootstrapState string
	bootstrapped   bool
	databases      []map[string]any
	createdDBs     int
}

func (s *clusterStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/bootstrap", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"state": s.bootstrapState})
	})
	mux.HandleFunc("POST /v1/bootstrap", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["action"] != "create_cluster" {
			t.Errorf("bootstrap action = %v", payload["action"])
		}
		s.mu.Lock()
		s.bootstrapped = true
		s.bootstrapState = "completed"
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"action_uid": "boot-1"})
	})
	mux.HandleFunc("GET /v1/actions/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "completed"})
	})
	mux.HandleFunc("GET /v1/cluster", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"state": "active", "name": "prod"})
	})
	mux.HandleFunc("GET /v1/bdbs", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		items := make([]any, 0, len(s.databases))
		for _, db := range s.databases {
			items = append(items, db)
		}
		json.NewEncoder(w).Encode(items)
	})
	mux.HandleFunc("POST /v1/bdbs", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		s.mu.Lock()
		s.createdDBs++
		s.databases = append(s.databases, map[string]any{"uid": float64(1), "name": payload["name"]})
		s.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"action_uid": "db-1", "uid": float64(1)})
	})

	return mux
}

func newEntRunContext(srvURL string) *workflow.RunContext {
	rc := workflow.NewRunContext(nil, workflow.PollConfig{
		Timeout:  2 * time.Second,
		Interval: 2 * time.Millisecond,
	})
	rc.Quiet = true
	rc.Enterprise = enterprise.NewClient(srvURL, "admin@redis.local", "pw", false)
	return rc
}

func TestInitClusterFreshCluster(t *testing.T) {
	stub := &clusterStub{bootstrapState: "unconfigured"}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	rc := newEntRunContext(srv.URL)
	res, err := InitCluster{}.Execute(context.Background(), rc, workflow.Args{
		"password": "secret",
		"name":     "prod",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}

	keys := res.Outputs.Keys()
	want := []string{"bootstrap", "cluster", "database"}
	if len(keys) != len(want) {
		t.Fatalf("outputs = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("output %d = %q, want %q", i, keys[i], want[i])
		}
	}
	if !stub.bootstrapped {
		t.Error("cluster was never bootstrapped")
	}
	if stub.createdDBs != 1 {
		t.Errorf("created %d databases, want 1", stub.createdDBs)
	}
}

func TestInitClusterIdempotentRerun(t *testing.T) {
	stub := &clusterStub{
		bootstrapState: "completed",
		databases:      []map[string]any{{"uid": float64(1), "name": "default-db"}},
	}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	rc := newEntRunContext(srv.URL)
	res, err := InitCluster{}.Execute(context.Background(), rc, workflow.Args{
		"password": "secret",
	})
	if err != nil {
		t.Fatalf("re-run failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}

	// Nothing should be mutated on a re-run against an initialized cluster.
	if stub.bootstrapped {
		t.Error("bootstrap action invoked on an initialized cluster")
	}
	if stub.createdDBs != 0 {
		t.Errorf("created %d databases on re-run, want 0", stub.createdDBs)
	}

	v, ok := res.Outputs.Get("bootstrap")
	if !ok {
		t.Fatal("bootstrap output missing")
	}
	if m, _ := v.(map[string]any); m["already_initialized"] != true {
		t.Errorf("bootstrap output = %v", v)
	}
	v, _ = res.Outputs.Get("database")
	if m, _ := v.(map[string]any); m["already_exists"] != true {
		t.Errorf("database output = %v", v)
	}
}

func TestInitClusterSkipDatabase(t *testing.T) {
	stub := &clusterStub{bootstrapState: "unconfigured"}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	rc := newEntRunContext(srv.URL)
	res, err := InitCluster{}.Execute(context.Background(), rc, workflow.Args{
		"password":        "secret",
		"create_database": "false",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, ok := res.Outputs.Get("database"); ok {
		t.Error("database output present despite create_database=false")
	}
	if stub.createdDBs != 0 {
		t.Errorf("created %d databases, want 0", stub.createdDBs)
	}
}

func TestInitClusterDryRun(t *testing.T) {
	// The endpoint is unroutable: a dry run must not issue any request.
	rc := newEntRunContext("http://127.0.0.1:1")
	res, err := InitCluster{}.Execute(context.Background(), rc, workflow.Args{
		"password": "secret",
		"name":     "prod",
		"dry_run":  "true",
	})
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	v, ok := res.Outputs.Get("would_create")
	if !ok {
		t.Fatal("dry run did not report would_create")
	}
	plan, _ := v.(map[string]any)
	if cluster, _ := plan["cluster"].(map[string]any); cluster["name"] != "prod" {
		t.Errorf("would_create = %v", v)
	}
}

func TestInitClusterRequiresPassword(t *testing.T) {
	rc := newEntRunContext("http://127.0.0.1:1")
	_, err := InitCluster{}.Execute(context.Background(), rc, workflow.Args{})
	if !workflow.IsUsage(err) {
		t.Fatalf("expected usage error, got: %v", err)
	}
}

func TestInitClusterRequiresEnterpriseClient(t *testing.T) {
	rc := workflow.NewRunContext(nil, workflow.PollConfig{})
	rc.Quiet = true
	_, err := InitCluster{}.Execute(context.Background(), rc, workflow.Args{"password": "x"})
	if !workflow.IsUsage(err) {
		t.Fatalf("expected usage error, got: %v", err)
	}
}
