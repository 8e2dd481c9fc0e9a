package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DeploymentType distinguishes which control plane a profile talks to.
type DeploymentType string

const (
	// DeploymentCloud is the hosted Redis Cloud control plane.
	DeploymentCloud DeploymentType = "cloud"

	// DeploymentEnterprise is an on-premise Redis Enterprise cluster.
	DeploymentEnterprise DeploymentType = "enterprise"
)

// Validate checks if the deployment type is valid.
func (d DeploymentType) Validate() error {
	switch d {
	case DeploymentCloud, DeploymentEnterprise:
		return nil
	default:
		return fmt.Errorf("invalid deployment type: %s", d)
	}
}

// Profile holds the connection settings for one deployment. Cloud profiles
// use the API key pair; Enterprise profiles use URL plus basic auth.
type Profile struct {
	// Deployment selects which credential fields apply.
	Deployment DeploymentType `yaml:"deployment" validate:"required,oneof=cloud enterprise"`

	// APIKey is the Cloud account key.
	APIKey string `yaml:"api_key,omitempty" validate:"required_if=Deployment cloud"`

	// APISecret is the Cloud secret key.
	APISecret string `yaml:"api_secret,omitempty" validate:"required_if=Deployment cloud"`

	// APIURL overrides the Cloud API base URL.
	APIURL string `yaml:"api_url,omitempty" validate:"omitempty,url"`

	// URL is the Enterprise cluster API endpoint.
	URL string `yaml:"url,omitempty" validate:"required_if=Deployment enterprise,omitempty,url"`

	// Username is the Enterprise account name.
	Username string `yaml:"username,omitempty" validate:"required_if=Deployment enterprise"`

	// Password is the Enterprise account password.
	Password string `yaml:"password,omitempty"`

	// Insecure skips TLS verification for self-signed Enterprise clusters.
	Insecure bool `yaml:"insecure,omitempty"`
}

// Config is the on-disk configuration: named profiles plus per-deployment
// defaults.
type Config struct {
	// DefaultCloud names the profile used by cloud commands when none is
	// selected explicitly.
	DefaultCloud string `yaml:"default_cloud,omitempty"`

	// DefaultEnterprise names the profile used by enterprise commands when
	// none is selected explicitly.
	DefaultEnterprise string `yaml:"default_enterprise,omitempty"`

	// Profiles maps profile name to its settings.
	Profiles map[string]Profile `yaml:"profiles"`
}

// DefaultPath returns the standard config file location, honoring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "redisctl", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "redisctl", "config.yaml"), nil
}

// Load reads and validates the config file at path. A missing file is not
// an error: credentials can come entirely from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{Profiles: make(map[string]Profile)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config to path, creating parent directories. The file is
// written 0600 because it holds credentials.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks every profile and the default references.
func (c *Config) Validate() error {
	v := validator.New()
	for name, profile := range c.Profiles {
		if err := v.Struct(profile); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}
	if c.DefaultCloud != "" {
		if _, ok := c.Profiles[c.DefaultCloud]; !ok {
			return fmt.Errorf("default_cloud references unknown profile %q", c.DefaultCloud)
		}
	}
	if c.DefaultEnterprise != "" {
		if _, ok := c.Profiles[c.DefaultEnterprise]; !ok {
			return fmt.Errorf("default_enterprise references unknown profile %q", c.DefaultEnterprise)
		}
	}
	return nil
}

// ProfileNames returns the configured profile names, sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
