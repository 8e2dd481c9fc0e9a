package commands

import (
	"github.com/spf13/cobra"

	"github.com/redisctl/redisctl/pkg/api/enterprise"
	"github.com/redisctl/redisctl/pkg/workflow"
)

func newEnterpriseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enterprise",
		Short: "Redis Enterprise commands",
		Long: `Interact with a Redis Enterprise cluster's REST API.

Some mutating calls return an action_uid; pass --wait to track the
action to completion, or use 'enterprise action wait' on a uid you
already have.`,
	}

	cmd.AddCommand(newEnterpriseActionCommand())
	cmd.AddCommand(newEnterpriseBootstrapCommand())
	cmd.AddCommand(newEnterpriseClusterCommand())
	cmd.AddCommand(newEnterpriseDatabaseCommand())
	cmd.AddCommand(newEnterpriseNodeCommand())
	cmd.AddCommand(newEnterpriseAPICommand())

	return cmd
}

func newEnterpriseActionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Inspect and track asynchronous actions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <action-uid>",
		Short: "Fetch an action's status document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := enterpriseClient()
			if err != nil {
				return err
			}
			doc, err := client.GetAction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(doc)
		},
	})

	var timeoutSec, intervalSec int
	waitCmd := &cobra.Command{
		Use:   "wait <action-uid>",
		Short: "Track an action until it completes or fails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := enterpriseClient()
			if err != nil {
				return err
			}
			handle := workflow.OperationHandle{ID: args[0], Kind: workflow.KindEnterpriseAction}
			return waitAndRender(cmd.Context(), handle, func(rc *workflow.RunContext) {
				rc.Enterprise = client
			}, timeoutSec, intervalSec)
		},
	}
	addWaitFlags(waitCmd, &timeoutSec, &intervalSec)
	cmd.AddCommand(waitCmd)

	return cmd
}

func newEnterpriseBootstrapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Cluster bootstrap state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the bootstrap state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := enterpriseClient()
			if err != nil {
				return err
			}
			doc, err := client.GetBootstrap(cmd.Context())
			if err != nil {
				return err
			}
			return render(doc)
		},
	})

	return cmd
}

func newEnterpriseClusterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster information",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the cluster document",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := enterpriseClient()
			if err != nil {
				return err
			}
			doc, err := client.GetCluster(cmd.Context())
			if err != nil {
				return err
			}
			return render(doc)
		},
	})

	var timeoutSec, intervalSec int
	waitCmd := &cobra.Command{
		Use:   "wait-active",
		Short: "Wait until the cluster reports an active state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := enterpriseClient()
			if err != nil {
				return err
			}
			handle := workflow.OperationHandle{ID: "cluster", Kind: workflow.KindClusterState}
			return waitAndRender(cmd.Context(), handle, func(rc *workflow.RunContext) {
				rc.Enterprise = client
			}, timeoutSec, intervalSec)
		},
	}
	addWaitFlags(waitCmd, &timeoutSec, &intervalSec)
	cmd.AddCommand(waitCmd)

	return cmd
}

func newEnterpriseDatabaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Manage cluster databases",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List databases",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := enterpriseClient()
			if err != nil {
				return err
			}
			doc, err := client.ListDatabases(cmd.Context())
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
		Short: "Create a database from a JSON payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := enterpriseClient()
			if err != nil {
				return err
			}
			payload, err := parseJSONPayload(data)
			if err != nil {
				return err
			}
			doc, err := client.CreateDatabase(cmd.Context(), payload)
			if err != nil {
				return err
			}
			if !wait {
				return render(doc)
			}
			return waitForActionIn(cmd, client, doc, timeoutSec, intervalSec)
		},
	}
	createCmd.Flags().StringVar(&data, "data", "", "request payload as JSON (@file to read from a file, - for stdin)")
	createCmd.Flags().BoolVar(&wait, "wait", false, "track the returned action to completion")
	addWaitFlags(createCmd, &timeoutSec, &intervalSec)
	createCmd.MarkFlagRequired("data")
	cmd.AddCommand(createCmd)

	return cmd
}

func newEnterpriseNodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Cluster nodes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cluster nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := enterpriseClient()
			if err != nil {
				return err
			}
			doc, err := client.ListNodes(cmd.Context())
			if err != nil {
				return err
			}
			return render(doc)
		},
	})

	return cmd
}

func newEnterpriseAPICommand() *cobra.Command {
	cmd := newRawAPICommand(func() (rawAPIClient, error) {
		client, err := enterpriseClient()
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	cmd.Example = `  redisctl enterprise api get /v1/cluster
  redisctl enterprise api get /v1/bdbs
  redisctl enterprise api post /v1/bdbs --data '{"name":"cache"}'`
	return cmd
}

// waitForActionIn extracts the action reference from a mutation response
// and tracks it to completion. A synchronous response has no action uid
// and is rendered as-is.
func waitForActionIn(cmd *cobra.Command, client *enterprise.Client, doc map[string]any, timeoutSec, intervalSec int) error {
	uid, ok := enterprise.ActionUID(doc)
	if !ok {
		return render(doc)
	}
	handle := workflow.OperationHandle{ID: uid, Kind: workflow.KindEnterpriseAction}
	return waitAndRender(cmd.Context(), handle, func(rc *workflow.RunContext) {
		rc.Enterprise = client
	}, timeoutSec, intervalSec)
}
