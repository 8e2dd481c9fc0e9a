// Package entflow provides the built-in workflows targeting a Redis
// Enterprise cluster.
package entflow

import (
	"context"
	"fmt"

	"github.com/redisctl/redisctl/pkg/api/enterprise"
	"github.com/redisctl/redisctl/pkg/workflow"
)

// bootstrapped reports whether a cluster bootstrap state string means the
// cluster is already set up.
func bootstrapped(state string) bool {
	return state != "" && state != "unconfigured" && state != "new"
}

// InitCluster bootstraps a fresh Redis Enterprise cluster, waits for it to
// become active, and optionally creates a first database. Re-running it
// against an initialized cluster succeeds without bootstrapping again.
type InitCluster struct{}

// Name implements workflow.Workflow.
func (InitCluster) Name() string { return "init-cluster" }

// Description implements workflow.Workflow.
func (InitCluster) Description() string {
	return "Initialize a Redis Enterprise cluster with bootstrap and optional database creation"
}

// Execute implements workflow.Workflow.
func (InitCluster) Execute(ctx context.Context, rc *workflow.RunContext, args workflow.Args) (*workflow.Result, error) {
	password, err := args.RequireString("password")
	if err != nil {
		return nil, err
	}
	clusterName := args.String("name", "redis-cluster")
	username := args.String("username", "admin@redis.local")
	createDB, err := args.Bool("create_database", true)
	if err != nil {
		return nil, err
	}
	dbName := args.String("database_name", "default-db")
	dbMemoryGB, err := args.Int64("database_memory_gb", 1)
	if err != nil {
		return nil, err
	}
	dryRun, err := args.Bool("dry_run", false)
	if err != nil {
		return nil, err
	}
	if rc.Enterprise == nil {
		return nil, workflow.NewUsageError("init-cluster requires an enterprise profile")
	}

	if dryRun {
		res := workflow.NewResult()
		res.Success = true
		res.Message = "dry run completed, nothing created"
		res.Outputs.Set("would_create", map[string]any{
			"cluster":  map[string]any{"name": clusterName, "username": username},
			"database": map[string]any{"name": dbName, "memory_gb": dbMemoryGB, "skipped": !createDB},
		})
		return res, nil
	}

	steps := []workflow.Step{
		{
			Name:      "bootstrap",
			OutputKey: "bootstrap",
			Precondition: func(ctx context.Context, rc *workflow.RunContext) (any, bool, error) {
				doc, err := rc.Enterprise.GetBootstrap(ctx)
				if err != nil {
					// An unreachable bootstrap endpoint usually means the
					// cluster is not set up yet; proceed with the action.
					return nil, false, nil
				}
				state, _ := doc["state"].(string)
				if !bootstrapped(state) {
					return nil, false, nil
				}
				return map[string]any{"state": state, "already_initialized": true}, true, nil
			},
			Action: func(ctx context.Context, rc *workflow.RunContext) (*workflow.StepOutput, error) {
				rc.Progress("Bootstrapping cluster %q...", clusterName)
				doc, err := rc.Enterprise.Bootstrap(ctx, map[string]any{
					"action": "create_cluster",
					"cluster": map[string]any{
						"name": clusterName,
					},
					"credentials": map[string]any{
						"username": username,
						"password": password,
					},
				})
				if err != nil {
					return nil, fmt.Errorf("bootstrapping cluster: %w", err)
				}
				if uid, ok := enterprise.ActionUID(doc); ok {
					handle := workflow.OperationHandle{ID: uid, Kind: workflow.KindEnterpriseAction}
					return workflow.AsyncExtract(handle, func(*workflow.Outcome) (any, error) {
						return map[string]any{"cluster_name": clusterName, "action_uid": uid}, nil
					}), nil
				}
				// Synchronous bootstrap; the cluster-ready step picks up
				// from here.
				return workflow.Immediate(map[string]any{"cluster_name": clusterName}), nil
			},
		},
		{
			Name:      "cluster-ready",
			OutputKey: "cluster",
			Action: func(ctx context.Context, rc *workflow.RunContext) (*workflow.StepOutput, error) {
				rc.Progress("Waiting for cluster to become active...")
				handle := workflow.OperationHandle{ID: "cluster", Kind: workflow.KindClusterState}
				return workflow.AsyncExtract(handle, func(outcome *workflow.Outcome) (any, error) {
					return map[string]any{"state": enterprise.ClusterState(outcome.Payload)}, nil
				}), nil
			},
		},
	}

	if createDB {
		steps = append(steps, workflow.Step{
			Name:      "create-database",
			OutputKey: "database",
			Precondition: func(ctx context.Context, rc *workflow.RunContext) (any, bool, error) {
				doc, err := rc.Enterprise.ListDatabases(ctx)
				if err != nil {
					return nil, false, nil
				}
				items, _ := doc["items"].([]any)
				for _, item := range items {
					db, ok := item.(map[string]any)
					if !ok {
						continue
					}
					if name, _ := db["name"].(string); name == dbName {
						return map[string]any{"name": dbName, "uid": db["uid"], "already_exists": true}, true, nil
					}
				}
				return nil, false, nil
			},
			Action: func(ctx context.Context, rc *workflow.RunContext) (*workflow.StepOutput, error) {
				rc.Progress("Creating database %q (%dGB)...", dbName, dbMemoryGB)
				doc, err := rc.Enterprise.CreateDatabase(ctx, map[string]any{
					"name":        dbName,
					"memory_size": dbMemoryGB << 30,
					"type":        "redis",
					"replication": false,
				})
				if err != nil {
					return nil, fmt.Errorf("creating database: %w", err)
				}
				if uid, ok := enterprise.ActionUID(doc); ok {
					handle := workflow.OperationHandle{ID: uid, Kind: workflow.KindEnterpriseAction}
					return workflow.AsyncExtract(handle, func(*workflow.Outcome) (any, error) {
						return map[string]any{"name": dbName, "uid": doc["uid"]}, nil
					}), nil
				}
				return workflow.Immediate(map[string]any{"name": dbName, "uid": doc["uid"]}), nil
			},
		})
	}

	res, err := workflow.Run(ctx, rc, steps)
	if err == nil {
		res.Message = fmt.Sprintf("cluster %q initialized", clusterName)
	}
	return res, err
}

// Register adds the package's workflows to a registry.
func Register(reg *workflow.Registry) error {
	return reg.Register(InitCluster{})
}
