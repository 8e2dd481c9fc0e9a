package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable overrides. A fully specified environment wins over
// the config file, so CI jobs need no config file at all.
const (
	EnvProfile            = "REDISCTL_PROFILE"
	EnvCloudAPIKey        = "REDISCTL_CLOUD_API_KEY"
	EnvCloudAPISecret     = "REDISCTL_CLOUD_API_SECRET"
	EnvCloudAPIURL        = "REDISCTL_CLOUD_API_URL"
	EnvEnterpriseURL      = "REDISCTL_ENTERPRISE_URL"
	EnvEnterpriseUser     = "REDISCTL_ENTERPRISE_USER"
	EnvEnterprisePassword = "REDISCTL_ENTERPRISE_PASSWORD"
	EnvEnterpriseInsecure = "REDISCTL_ENTERPRISE_INSECURE"
)

// ResolveProfile picks the profile for a command targeting deployment.
// Precedence: explicit name, REDISCTL_PROFILE, the deployment's configured
// default, environment-only credentials.
func (c *Config) ResolveProfile(name string, deployment DeploymentType) (Profile, string, error) {
	if name == "" {
		name = os.Getenv(EnvProfile)
	}
	if name == "" {
		switch deployment {
		case DeploymentCloud:
			name = c.DefaultCloud
		case DeploymentEnterprise:
			name = c.DefaultEnterprise
		}
	}

	if name != "" {
		profile, ok := c.Profiles[name]
		if !ok {
			return Profile{}, "", fmt.Errorf("unknown profile %q", name)
		}
		if profile.Deployment != deployment {
			return Profile{}, "", fmt.Errorf("profile %q is a %s profile, command needs %s",
				name, profile.Deployment, deployment)
		}
		return applyEnv(profile), name, nil
	}

	profile, ok := envOnlyProfile(deployment)
	if !ok {
		return Profile{}, "", fmt.Errorf("no %s profile configured: set one with 'redisctl profile set' or export credentials in the environment", deployment)
	}
	return profile, "", nil
}

// applyEnv overlays environment credentials onto a stored profile, so a
// secret can live outside the config file.
func applyEnv(profile Profile) Profile {
	switch profile.Deployment {
	case DeploymentCloud:
		if v := os.Getenv(EnvCloudAPIKey); v != "" {
			profile.APIKey = v
		}
		if v := os.Getenv(EnvCloudAPISecret); v != "" {
			profile.APISecret = v
		}
		if v := os.Getenv(EnvCloudAPIURL); v != "" {
			profile.APIURL = v
		}
	case DeploymentEnterprise:
		if v := os.Getenv(EnvEnterpriseURL); v != "" {
			profile.URL = v
		}
		if v := os.Getenv(EnvEnterpriseUser); v != "" {
			profile.Username = v
		}
		if v := os.Getenv(EnvEnterprisePassword); v != "" {
			profile.Password = v
		}
		if v := os.Getenv(EnvEnterpriseInsecure); v != "" {
			if insecure, err := strconv.ParseBool(v); err == nil {
				profile.Insecure = insecure
			}
		}
	}
	return profile
}

// envOnlyProfile builds a profile purely from the environment.
func envOnlyProfile(deployment DeploymentType) (Profile, bool) {
	switch deployment {
	case DeploymentCloud:
		key := os.Getenv(EnvCloudAPIKey)
		secret := os.Getenv(EnvCloudAPISecret)
		if key == "" || secret == "" {
			return Profile{}, false
		}
		return applyEnv(Profile{Deployment: DeploymentCloud, APIKey: key, APISecret: secret}), true
	case DeploymentEnterprise:
		url := os.Getenv(EnvEnterpriseURL)
		user := os.Getenv(EnvEnterpriseUser)
		if url == "" || user == "" {
			return Profile{}, false
		}
		return applyEnv(Profile{Deployment: DeploymentEnterprise, URL: url, Username: user}), true
	default:
		return Profile{}, false
	}
}
