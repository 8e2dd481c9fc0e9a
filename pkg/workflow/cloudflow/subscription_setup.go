// Package cloudflow provides the built-in workflows targeting the Redis
// Cloud control plane.
package cloudflow

import (
	"context"
	"fmt"

	"github.com/redisctl/redisctl/pkg/api/cloud"
	"github.com/redisctl/redisctl/pkg/workflow"
)

// SubscriptionSetup creates a Redis Cloud subscription with its first
// database and reports the connection details.
type SubscriptionSetup struct{}

// Name implements workflow.Workflow.
func (SubscriptionSetup) Name() string { return "subscription-setup" }

// Description implements workflow.Workflow.
func (SubscriptionSetup) Description() string {
	return "Complete Redis Cloud subscription setup with optional database"
}

// Execute implements workflow.Workflow.
func (SubscriptionSetup) Execute(ctx context.Context, rc *workflow.RunContext, args workflow.Args) (*workflow.Result, error) {
	name := args.String("name", "redisctl-setup")
	provider := args.String("provider", "AWS")
	region := args.String("region", "us-east-1")
	paymentMethodID := args.String("payment_method_id", "")
	dbName := args.String("database_name", "default-db")
	dbMemoryGB, err := args.Float64("database_memory_gb", 1)
	if err != nil {
		return nil, err
	}
	skipDatabase, err := args.Bool("skip_database", false)
	if err != nil {
		return nil, err
	}
	dryRun, err := args.Bool("dry_run", false)
	if err != nil {
		return nil, err
	}
	if rc.Cloud == nil {
		return nil, workflow.NewUsageError("subscription-setup requires a cloud profile")
	}

	if dryRun {
		res := workflow.NewResult()
		res.Success = true
		res.Message = "dry run completed, nothing created"
		res.Outputs.Set("would_create", map[string]any{
			"subscription": map[string]any{"name": name, "provider": provider, "region": region},
			"database":     map[string]any{"name": dbName, "memory_gb": dbMemoryGB, "skipped": skipDatabase},
		})
		return res, nil
	}

	steps := []workflow.Step{
		{
			Name:      "payment-method",
			OutputKey: "payment_method",
			Precondition: func(ctx context.Context, rc *workflow.RunContext) (any, bool, error) {
				if paymentMethodID == "" {
					return nil, false, nil
				}
				return paymentMethodID, true, nil
			},
			Action: func(ctx context.Context, rc *workflow.RunContext) (*workflow.StepOutput, error) {
				rc.Progress("Looking up payment method...")
				doc, err := rc.Cloud.ListPaymentMethods(ctx)
				if err != nil {
					return nil, fmt.Errorf("listing payment methods: %w", err)
				}
				id, ok := pickPaymentMethod(doc)
				if !ok {
					return nil, workflow.NewUsageError("no payment method on the account; add one before running subscription-setup")
				}
				return workflow.Immediate(id), nil
			},
		},
		{
			Name:      "create-subscription",
			OutputKey: "subscription",
			Action: func(ctx context.Context, rc *workflow.RunContext) (*workflow.StepOutput, error) {
				paymentMethod, _ := rc.Output("payment_method")
				rc.Progress("Creating subscription %q in %s/%s...", name, provider, region)
				doc, err := rc.Cloud.CreateSubscription(ctx, subscriptionPayload(name, provider, region, dbName, dbMemoryGB, paymentMethod))
				if err != nil {
					return nil, fmt.Errorf("creating subscription: %w", err)
				}
				taskID, ok := cloud.TaskID(doc)
				if !ok {
					return nil, fmt.Errorf("create subscription response carries no task reference")
				}
				handle := workflow.OperationHandle{ID: taskID, Kind: workflow.KindCloudTask}
				return workflow.AsyncExtract(handle, func(outcome *workflow.Outcome) (any, error) {
					id, ok := cloud.TaskResourceID(outcome.Payload)
					if !ok {
						return nil, fmt.Errorf("completed task carries no subscription id")
					}
					return map[string]any{"subscription_id": id, "name": name}, nil
				}), nil
			},
		},
	}

	if !skipDatabase {
		steps = append(steps, workflow.Step{
			Name:      "database-details",
			OutputKey: "database",
			Action: func(ctx context.Context, rc *workflow.RunContext) (*workflow.StepOutput, error) {
				subscriptionID, ok := subscriptionIDFromRun(rc)
				if !ok {
					return nil, fmt.Errorf("subscription id missing from run outputs")
				}
				doc, err := rc.Cloud.ListDatabases(ctx, subscriptionID)
				if err != nil {
					return nil, fmt.Errorf("listing databases: %w", err)
				}
				details := databaseDetails(doc, dbName)
				return workflow.Immediate(details), nil
			},
		})
	}

	res, err := workflow.Run(ctx, rc, steps)
	if err == nil {
		res.Message = fmt.Sprintf("subscription %q is active", name)
	}
	return res, err
}

// pickPaymentMethod chooses a credit card when present, otherwise the first
// method on the account.
func pickPaymentMethod(doc map[string]any) (int64, bool) {
	methods, _ := doc["paymentMethods"].([]any)
	if len(methods) == 0 {
		return 0, false
	}
	var fallback *int64
	for _, m := range methods {
		method, ok := m.(map[string]any)
		if !ok {
			continue
		}
		id, ok := numField(method, "id")
		if !ok {
			continue
		}
		if t, _ := method["type"].(string); t == "credit-card" {
			return id, true
		}
		if fallback == nil {
			fallback = &id
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return 0, false
}

// subscriptionPayload builds the create-subscription request. The API
// requires at least one database in the initial subscription.
func subscriptionPayload(name, provider, region, dbName string, dbMemoryGB float64, paymentMethodID any) map[string]any {
	return map[string]any{
		"name":            name,
		"paymentMethodId": paymentMethodID,
		"cloudProviders": []any{
			map[string]any{
				"provider": provider,
				"regions": []any{
					map[string]any{
						"region": region,
						"networking": map[string]any{
							"deploymentCIDR": "10.0.0.0/24",
						},
					},
				},
			},
		},
		"databases": []any{
			map[string]any{
				"name":            dbName,
				"memoryLimitInGb": dbMemoryGB,
				"protocol":        "redis",
			},
		},
	}
}

// subscriptionIDFromRun reads the create-subscription step's output.
func subscriptionIDFromRun(rc *workflow.RunContext) (int64, bool) {
	v, ok := rc.Output("subscription")
	if !ok {
		return 0, false
	}
	sub, ok := v.(map[string]any)
	if !ok {
		return 0, false
	}
	return numField(sub, "subscription_id")
}

// databaseDetails summarizes the database created with the subscription,
// matched by name so pre-existing databases on the subscription are never
// reported in its place. The listing nests databases under per-subscription
// entries. The database can lag the subscription; no match reports pending
// rather than failing a run whose subscription already exists.
func databaseDetails(doc map[string]any, dbName string) map[string]any {
	for _, db := range listedDatabases(doc) {
		if name, _ := db["name"].(string); name != dbName {
			continue
		}
		details := map[string]any{"name": dbName}
		if id, ok := numField(db, "databaseId"); ok {
			details["database_id"] = id
		}
		if endpoint, _ := db["publicEndpoint"].(string); endpoint != "" {
			details["connection_string"] = "redis://" + endpoint
		}
		return details
	}
	return map[string]any{"name": dbName, "status": "pending"}
}

func listedDatabases(doc map[string]any) []map[string]any {
	entries, _ := doc["subscription"].([]any)
	if len(entries) == 0 {
		entries, _ = doc["items"].([]any)
	}
	var dbs []map[string]any
	for _, entry := range entries {
		sub, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		nested, ok := sub["databases"].([]any)
		if !ok {
			// Already a database object rather than a subscription entry.
			dbs = append(dbs, sub)
			continue
		}
		for _, item := range nested {
			if db, ok := item.(map[string]any); ok {
				dbs = append(dbs, db)
			}
		}
	}
	return dbs
}

func numField(doc map[string]any, key string) (int64, bool) {
	switch v := doc[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// Register adds the package's workflows to a registry.
func Register(reg *workflow.Registry) error {
	return reg.Register(SubscriptionSetup{})
}
