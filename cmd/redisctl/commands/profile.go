package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redisctl/redisctl/pkg/config"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage connection profiles",
		Long: `Manage named connection profiles.

A profile stores the credentials for one deployment: a Redis Cloud API
key pair, or a Redis Enterprise endpoint with basic auth. Commands pick
a profile via --profile, REDISCTL_PROFILE, or the per-deployment
default.`,
	}

	cmd.AddCommand(newProfileListCommand())
	cmd.AddCommand(newProfileShowCommand())
	cmd.AddCommand(newProfileSetCommand())
	cmd.AddCommand(newProfileRemoveCommand())
	cmd.AddCommand(newProfileDefaultCommand())

	return cmd
}

func newProfileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			items := make([]any, 0, len(cfg.Profiles))
			for _, name := range cfg.ProfileNames() {
				profile := cfg.Profiles[name]
				isDefault := name == cfg.DefaultCloud || name == cfg.DefaultEnterprise
				items = append(items, map[string]any{
					"name":       name,
					"deployment": string(profile.Deployment),
					"default":    isDefault,
				})
			}
			return render(map[string]any{"items": items})
		},
	}
}

func newProfileShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a profile with credentials redacted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			profile, ok := cfg.Profiles[args[0]]
			if !ok {
				return fmt.Errorf("unknown profile %q", args[0])
			}

			doc := map[string]any{
				"name":       args[0],
				"deployment": string(profile.Deployment),
			}
			switch profile.Deployment {
			case config.DeploymentCloud:
				doc["api_key"] = redact(profile.APIKey)
				doc["api_secret"] = redact(profile.APISecret)
				if profile.APIURL != "" {
					doc["api_url"] = profile.APIURL
				}
			case config.DeploymentEnterprise:
				doc["url"] = profile.URL
				doc["username"] = profile.Username
				doc["password"] = redact(profile.Password)
				doc["insecure"] = profile.Insecure
			}
			return render(doc)
		},
	}
}

func newProfileSetCommand() *cobra.Command {
	var (
		deployment string
		apiKey     string
		apiSecret  string
		apiURL     string
		url        string
		username   string
		password   string
		insecure   bool
		makeDef    bool
	)

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a profile",
		Example: `  # Cloud profile
  redisctl profile set prod-cloud --deployment cloud \
      --api-key KEY --api-secret SECRET

  # Enterprise profile against a self-signed cluster
  redisctl profile set lab --deployment enterprise \
      --url https://cluster.local:9443 --username admin@redis.local \
      --password secret --insecure`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}

			dep := config.DeploymentType(deployment)
			if err := dep.Validate(); err != nil {
				return err
			}
			profile := config.Profile{
				Deployment: dep,
				APIKey:     apiKey,
				APISecret:  apiSecret,
				APIURL:     apiURL,
				URL:        url,
				Username:   username,
				Password:   password,
				Insecure:   insecure,
			}
			cfg.Profiles[args[0]] = profile
			if makeDef {
				switch dep {
				case config.DeploymentCloud:
					cfg.DefaultCloud = args[0]
				case config.DeploymentEnterprise:
					cfg.DefaultEnterprise = args[0]
				}
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Printf("Profile %q saved to %s\n", args[0], path)
			return nil
		},
	}

	cmd.Flags().StringVar(&deployment, "deployment", "", "deployment type (cloud or enterprise)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "cloud API account key")
	cmd.Flags().StringVar(&apiSecret, "api-secret", "", "cloud API secret key")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "cloud API base URL override")
	cmd.Flags().StringVar(&url, "url", "", "enterprise cluster API endpoint")
	cmd.Flags().StringVar(&username, "username", "", "enterprise username")
	cmd.Flags().StringVar(&password, "password", "", "enterprise password")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip TLS verification")
	cmd.Flags().BoolVar(&makeDef, "default", false, "make this the default profile for its deployment")
	cmd.MarkFlagRequired("deployment")

	return cmd
}

func newProfileRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}
			if _, ok := cfg.Profiles[args[0]]; !ok {
				return fmt.Errorf("unknown profile %q", args[0])
			}
			delete(cfg.Profiles, args[0])
			if cfg.DefaultCloud == args[0] {
				cfg.DefaultCloud = ""
			}
			if cfg.DefaultEnterprise == args[0] {
				cfg.DefaultEnterprise = ""
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Printf("Profile %q removed\n", args[0])
			return nil
		},
	}
}

func newProfileDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "default <name>",
		Short: "Make a profile the default for its deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}
			profile, ok := cfg.Profiles[args[0]]
			if !ok {
				return fmt.Errorf("unknown profile %q", args[0])
			}
			switch profile.Deployment {
			case config.DeploymentCloud:
				cfg.DefaultCloud = args[0]
			case config.DeploymentEnterprise:
				cfg.DefaultEnterprise = args[0]
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Printf("Profile %q is now the default %s profile\n", args[0], profile.Deployment)
			return nil
		},
	}
}

// redact hides a credential, keeping enough to recognize it.
func redact(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return s[:4] + "****"
}
