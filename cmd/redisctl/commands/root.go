// Package commands implements the redisctl command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redisctl/redisctl/pkg/api/cloud"
	"github.com/redisctl/redisctl/pkg/api/enterprise"
	"github.com/redisctl/redisctl/pkg/config"
	"github.com/redisctl/redisctl/pkg/output"
	"github.com/redisctl/redisctl/pkg/telemetry"
)

var (
	// Global flags
	configPath   string
	profileName  string
	outputFormat string
	verbose      bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "redisctl",
		Short: "Manage Redis Cloud and Redis Enterprise deployments",
		Long: `redisctl is a unified command-line interface for the Redis Cloud and
Redis Enterprise REST APIs.

Asynchronous operations (subscription creation, database provisioning,
cluster bootstrap) can be tracked to completion with --wait, and common
multi-step setups are packaged as workflows under 'redisctl workflow'.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Subcommands retrieve the logger with telemetry.FromContext.
			cmd.SetContext(newLogger().WithContext(cmd.Context()))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "configuration profile to use")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format (auto, json, yaml, table)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(newProfileCommand())
	rootCmd.AddCommand(newCloudCommand())
	rootCmd.AddCommand(newEnterpriseCommand())
	rootCmd.AddCommand(newWorkflowCommand())
	rootCmd.AddCommand(newMCPCommand())

	return rootCmd
}

// newLogger builds the process logger from the global flags.
func newLogger() *telemetry.Logger {
	cfg := telemetry.DefaultLoggingConfig()
	if verbose {
		cfg.Level = "debug"
	}
	logger, err := telemetry.NewLogger(cfg)
	if err != nil {
		return telemetry.Nop()
	}
	return logger
}

// loadConfig reads the profile configuration from --config or the default
// location.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// parseFormat validates the --output flag.
func parseFormat() (output.Format, error) {
	return output.ParseFormat(outputFormat)
}

// render prints v to stdout in the selected format.
func render(v any) error {
	format, err := parseFormat()
	if err != nil {
		return err
	}
	return output.Print(os.Stdout, v, format)
}

// cloudClient resolves the cloud profile and builds its API client.
func cloudClient() (*cloud.Client, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	profile, _, err := cfg.ResolveProfile(profileName, config.DeploymentCloud)
	if err != nil {
		return nil, err
	}
	return newCloudClientFrom(profile), nil
}

func newCloudClientFrom(profile config.Profile) *cloud.Client {
	return cloud.NewClient(profile.APIKey, profile.APISecret, profile.APIURL)
}

func newEnterpriseClientFrom(profile config.Profile) *enterprise.Client {
	return enterprise.NewClient(profile.URL, profile.Username, profile.Password, profile.Insecure)
}

// readPayloadBytes resolves a --data value: inline JSON, @file to read a
// file, or - for stdin.
func readPayloadBytes(data string) ([]byte, error) {
	switch {
	case data == "-":
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
		return raw, nil
	case strings.HasPrefix(data, "@"):
		raw, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("reading payload file: %w", err)
		}
		return raw, nil
	default:
		return []byte(data), nil
	}
}

// enterpriseClient resolves the enterprise profile and builds its API client.
func enterpriseClient() (*enterprise.Client, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	profile, _, err := cfg.ResolveProfile(profileName, config.DeploymentEnterprise)
	if err != nil {
		return nil, err
	}
	return newEnterpriseClientFrom(profile), nil
}
