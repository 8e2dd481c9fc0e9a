package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/redisctl/redisctl/pkg/config"
	"github.com/redisctl/redisctl/pkg/telemetry"
	"github.com/redisctl/redisctl/pkg/workflow"
	"github.com/redisctl/redisctl/pkg/workflow/cloudflow"
	"github.com/redisctl/redisctl/pkg/workflow/entflow"
)

func newWorkflowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Run multi-step workflows",
		Long: `Run packaged multi-step workflows.

A workflow chains API calls and waits for the asynchronous operations
they start. Steps run strictly in order; when one fails, the outputs of
the steps that completed are still reported.`,
	}

	cmd.AddCommand(newWorkflowListCommand())
	cmd.AddCommand(newWorkflowRunCommand())

	return cmd
}

// buildRegistry assembles the built-in workflow registry.
func buildRegistry() (*workflow.Registry, error) {
	reg := workflow.NewRegistry()
	if err := entflow.Register(reg); err != nil {
		return nil, err
	}
	if err := cloudflow.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func newWorkflowListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			infos := reg.List()
			items := make([]any, 0, len(infos))
			for _, info := range infos {
				items = append(items, map[string]any{
					"name":        info.Name,
					"description": info.Description,
				})
			}
			return render(map[string]any{"items": items})
		},
	}
}

func newWorkflowRunCommand() *cobra.Command {
	var (
		argPairs    []string
		timeoutSec  int
		intervalSec int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a workflow",
		Example: `  # Bootstrap an enterprise cluster and create a first database
  redisctl workflow run init-cluster --arg password=secret --arg name=prod

  # Create a cloud subscription, waiting up to 20 minutes per operation
  redisctl workflow run subscription-setup --arg name=prod --timeout 1200`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry()
			if err != nil {
				return err
			}
			wf, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown workflow %q; see 'redisctl workflow list'", args[0])
			}
			wfArgs, err := workflow.ParseArgs(argPairs)
			if err != nil {
				return err
			}
			if dryRun {
				wfArgs["dry_run"] = "true"
			}

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

			log := telemetry.FromContext(cmd.Context()).WithWorkflow(args[0])
			if profileName != "" {
				log = log.WithProfile(profileName)
			}
			rc := workflow.NewRunContext(log, poll)
			rc.Quiet = format.Machine()
			if err := attachProfileClients(rc); err != nil {
				return err
			}

			result, err := wf.Execute(cmd.Context(), rc, wfArgs)
			if result != nil {
				if renderErr := render(result); renderErr != nil {
					return renderErr
				}
			}
			if err != nil {
				return fmt.Errorf("workflow %s failed: %w", args[0], err)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&argPairs, "arg", nil, "workflow argument as key=value (repeatable)")
	cmd.Flags().IntVar(&timeoutSec, "timeout", int(workflow.DefaultTimeout/time.Second), "wait budget per asynchronous operation, in seconds")
	cmd.Flags().IntVar(&intervalSec, "interval", int(workflow.DefaultInterval/time.Second), "delay between status checks, in seconds")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what the workflow would do without mutating anything")

	return cmd
}

// attachProfileClients wires whichever backend clients the configuration
// can provide. A workflow rejects the run itself when the client it needs
// is missing, with a clearer message than a resolution failure here.
func attachProfileClients(rc *workflow.RunContext) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if profile, _, err := cfg.ResolveProfile(profileName, config.DeploymentCloud); err == nil {
		rc.Cloud = newCloudClientFrom(profile)
	}
	if profile, _, err := cfg.ResolveProfile(profileName, config.DeploymentEnterprise); err == nil {
		rc.Enterprise = newEnterpriseClientFrom(profile)
	}
	if rc.Cloud == nil && rc.Enterprise == nil {
		return fmt.Errorf("no usable profile: configure one with 'redisctl profile set' or export credentials in the environment")
	}
	return nil
}
