package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/redisctl/redisctl/pkg/api/cloud"
	"github.com/redisctl/redisctl/pkg/telemetry"
	"github.com/redisctl/redisctl/pkg/workflow"
)

func newCloudCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloud",
		Short: "Redis Cloud commands",
		Long: `Interact with the Redis Cloud REST API.

Mutating calls on this API are asynchronous: they return a task
reference. Pass --wait to track the task to completion, or use
'cloud task wait' on a task id you already have.`,
	}

	cmd.AddCommand(newCloudTaskCommand())
	cmd.AddCommand(newCloudSubscriptionCommand())
	cmd.AddCommand(newCloudDatabaseCommand())
	cmd.AddCommand(newCloudAPICommand())

	return cmd
}

func newCloudTaskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect and track asynchronous tasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <task-id>",
		Short: "Fetch a task's status document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cloudClient()
			if err != nil {
				return err
			}
			doc, err := client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(doc)
		},
	})

	var timeoutSec, intervalSec int
	waitCmd := &cobra.Command{
		Use:   "wait <task-id>",
		Short: "Track a task until it completes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cloudClient()
			if err != nil {
				return err
			}
			handle := workflow.OperationHandle{ID: args[0], Kind: workflow.KindCloudTask}
			return waitAndRender(cmd.Context(), handle, func(rc *workflow.RunContext) {
				rc.Cloud = client
			}, timeoutSec, intervalSec)
		},
	}
	addWaitFlags(waitCmd, &timeoutSec, &intervalSec)
	cmd.AddCommand(waitCmd)

	return cmd
}

func newCloudSubscriptionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Manage subscriptions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cloudClient()
			if err != nil {
				return err
			}
			doc, err := client.ListSubscriptions(cmd.Context())
			if err != nil {
				return err
			}
			return render(doc)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <subscription-id>",
		Short: "Fetch one subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cloudClient()
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("subscription id must be numeric: %w", err)
			}
			doc, err := client.GetSubscription(cmd.Context(), id)
			if err != nil {
				return err
			}
			return render(doc)
		},
	})

	var (
		data        string
		wait        bool
		timeoutSec  int
		intervalSec int
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a subscription from a JSON payload",
		Example: `  redisctl cloud subscription create --data '{"name":"prod", ...}' --wait`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cloudClient()
			if err != nil {
				return err
			}
			payload, err := parseJSONPayload(data)
			if err != nil {
				return err
			}
			doc, err := client.CreateSubscription(cmd.Context(), payload)
			if err != nil {
				return err
			}
			if !wait {
				return render(doc)
			}
			return waitForTaskIn(cmd.Context(), client, doc, timeoutSec, intervalSec)
		},
	}
	createCmd.Flags().StringVar(&data, "data", "", "request payload as JSON (@file to read from a file, - for stdin)")
	createCmd.Flags().BoolVar(&wait, "wait", false, "track the returned task to completion")
	addWaitFlags(createCmd, &timeoutSec, &intervalSec)
	createCmd.MarkFlagRequired("data")
	cmd.AddCommand(createCmd)

	return cmd
}

func newCloudDatabaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Manage databases within a subscription",
	}

	var listSub int64
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List databases of a subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cloudClient()
			if err != nil {
				return err
			}
			doc, err := client.ListDatabases(cmd.Context(), listSub)
			if err != nil {
				return err
			}
			return render(doc)
		},
	}
	listCmd.Flags().Int64Var(&listSub, "subscription", 0, "subscription id")
	listCmd.MarkFlagRequired("subscription")
	cmd.AddCommand(listCmd)

	var (
		createSub   int64
		data        string
		wait        bool
		timeoutSec  int
		intervalSec int
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a database from a JSON payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cloudClient()
			if err != nil {
				return err
			}
			payload, err := parseJSONPayload(data)
			if err != nil {
				return err
			}
			doc, err := client.CreateDatabase(cmd.Context(), createSub, payload)
			if err != nil {
				return err
			}
			if !wait {
				return render(doc)
			}
			return waitForTaskIn(cmd.Context(), client, doc, timeoutSec, intervalSec)
		},
	}
	createCmd.Flags().Int64Var(&createSub, "subscription", 0, "subscription id")
	createCmd.Flags().StringVar(&data, "data", "", "request payload as JSON (@file to read from a file, - for stdin)")
	createCmd.Flags().BoolVar(&wait, "wait", false, "track the returned task to completion")
	addWaitFlags(createCmd, &timeoutSec, &intervalSec)
	createCmd.MarkFlagRequired("subscription")
	createCmd.MarkFlagRequired("data")
	cmd.AddCommand(createCmd)

	return cmd
}

func newCloudAPICommand() *cobra.Command {
	cmd := newRawAPICommand(func() (rawAPIClient, error) {
		client, err := cloudClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	cmd.Example = `  redisctl cloud api get /subscriptions
  redisctl cloud api get /tasks/8192e4a2
  redisctl cloud api delete /subscriptions/5100`
	return cmd
}

// waitForTaskIn extracts the task reference from a mutation response and
// tracks it to completion.
func waitForTaskIn(ctx context.Context, client *cloud.Client, doc map[string]any, timeoutSec, intervalSec int) error {
	taskID, ok := cloud.TaskID(doc)
	if !ok {
		return fmt.Errorf("response carries no task reference; nothing to wait for")
	}
	handle := workflow.OperationHandle{ID: taskID, Kind: workflow.KindCloudTask}
	return waitAndRender(ctx, handle, func(rc *workflow.RunContext) {
		rc.Cloud = client
	}, timeoutSec, intervalSec)
}

// addWaitFlags registers the shared wait tuning flags.
func addWaitFlags(cmd *cobra.Command, timeoutSec, intervalSec *int) {
	cmd.Flags().IntVar(timeoutSec, "wait-timeout", int(workflow.DefaultTimeout/time.Second), "wait budget in seconds")
	cmd.Flags().IntVar(intervalSec, "wait-interval", int(workflow.DefaultInterval/time.Second), "delay between status checks in seconds")
}

// waitAndRender tracks an operation to completion and prints the outcome.
// A terminal failure renders the outcome and exits non-zero.
func waitAndRender(ctx context.Context, handle workflow.OperationHandle, attach func(*workflow.RunContext), timeoutSec, intervalSec int) error {
	poll := workflow.PollConfig{
		Timeout:       time.Duration(timeoutSec) * time.Second,
		Interval:      time.Duration(intervalSec) * time.Second,
		NotFoundLimit: workflow.DefaultNotFoundLimit,
	}
	if err := poll.Validate(); err != nil {
		return err
	}

	format, err := parseFormat()
	if err != nil {
		return err
	}
	rc := workflow.NewRunContext(telemetry.FromContext(ctx), poll)
	rc.Quiet = format.Machine()
	attach(rc)

	rc.Progress("Waiting for %s (timeout %s, checking every %s)...", handle, poll.Timeout, poll.Interval)
	outcome, err := rc.WaitFor(ctx, handle)
	if err != nil {
		return err
	}

	doc := map[string]any{
		"operation": handle.String(),
		"status":    string(outcome.Status),
		"polls":     outcome.Polls,
		"elapsed":   outcome.Elapsed.Round(time.Millisecond).String(),
	}
	if outcome.Detail != "" {
		doc["detail"] = outcome.Detail
	}
	if err := render(doc); err != nil {
		return err
	}
	if outcome.Status == workflow.StatusFailed {
		return fmt.Errorf("operation %s failed: %s", handle, outcome.Detail)
	}
	return nil
}

// parseJSONPayload decodes --data, which is inline JSON, @file, or - for
// stdin.
func parseJSONPayload(data string) (map[string]any, error) {
	raw, err := readPayloadBytes(data)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	return payload, nil
}
