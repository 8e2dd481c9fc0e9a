package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvProfile, EnvCloudAPIKey, EnvCloudAPISecret, EnvCloudAPIURL,
		EnvEnterpriseURL, EnvEnterpriseUser, EnvEnterprisePassword, EnvEnterpriseInsecure,
	} {
		t.Setenv(key, "")
	}
}

func TestResolveProfileExplicitName(t *testing.T) {
	clearEnv(t)
	cfg := sampleConfig()

	profile, name, err := cfg.ResolveProfile("prod-cloud", DeploymentCloud)
	if err != nil {
		t.Fatalf("ResolveProfile failed: %v", err)
	}
	if name != "prod-cloud" || profile.APIKey != "key-123" {
		t.Errorf("resolved %q, %+v", name, profile)
	}
}

func TestResolveProfileRejectsDeploymentMismatch(t *testing.T) {
	clearEnv(t)
	cfg := sampleConfig()

	if _, _, err := cfg.ResolveProfile("lab", DeploymentCloud); err == nil {
		t.Error("an enterprise profile was accepted for a cloud command")
	}
}

func TestResolveProfileUnknownName(t *testing.T) {
	clearEnv(t)
	cfg := sampleConfig()

	if _, _, err := cfg.ResolveProfile("ghost", DeploymentCloud); err == nil {
		t.Error("unknown profile name accepted")
	}
}

func TestResolveProfileEnvProfileName(t *testing.T) {
	clearEnv(t)
	cfg := sampleConfig()
	cfg.DefaultEnterprise = ""
	t.Setenv(EnvProfile, "lab")

	_, name, err := cfg.ResolveProfile("", DeploymentEnterprise)
	if err != nil {
		t.Fatalf("ResolveProfile failed: %v", err)
	}
	if name != "lab" {
		t.Errorf("resolved %q, want the env-selected profile", name)
	}
}

func TestResolveProfileDeploymentDefault(t *testing.T) {
	clearEnv(t)
	cfg := sampleConfig()

	_, name, err := cfg.ResolveProfile("", DeploymentEnterprise)
	if err != nil {
		t.Fatalf("ResolveProfile failed: %v", err)
	}
	if name != "lab" {
		t.Errorf("resolved %q, want the configured default", name)
	}
}

func TestResolveProfileEnvOverlaysStoredProfile(t *testing.T) {
	clearEnv(t)
	cfg := sampleConfig()
	t.Setenv(EnvCloudAPISecret, "rotated-secret")

	profile, _, err := cfg.ResolveProfile("prod-cloud", DeploymentCloud)
	if err != nil {
		t.Fatalf("ResolveProfile failed: %v", err)
	}
	if profile.APISecret != "rotated-secret" {
		t.Errorf("api secret = %q, env overlay not applied", profile.APISecret)
	}
	if profile.APIKey != "key-123" {
		t.Errorf("api key = %q, stored value lost", profile.APIKey)
	}
}

func TestResolveProfileEnvOnly(t *testing.T) {
	clearEnv(t)
	cfg := &Config{Profiles: map[string]Profile{}}
	t.Setenv(EnvCloudAPIKey, "env-key")
	t.Setenv(EnvCloudAPISecret, "env-secret")

	profile, name, err := cfg.ResolveProfile("", DeploymentCloud)
	if err != nil {
		t.Fatalf("ResolveProfile failed: %v", err)
	}
	if name != "" {
		t.Errorf("name = %q, want anonymous env profile", name)
	}
	if profile.APIKey != "env-key" || profile.APISecret != "env-secret" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestResolveProfileNothingConfigured(t *testing.T) {
	clearEnv(t)
	cfg := &Config{Profiles: map[string]Profile{}}

	if _, _, err := cfg.ResolveProfile("", DeploymentEnterprise); err == nil {
		t.Error("resolution succeeded with nothing configured")
	}
}

func TestResolveProfileEnterpriseEnvInsecure(t *testing.T) {
	clearEnv(t)
	cfg := &Config{Profiles: map[string]Profile{}}
	t.Setenv(EnvEnterpriseURL, "https://cluster.local:9443")
	t.Setenv(EnvEnterpriseUser, "admin@redis.local")
	t.Setenv(EnvEnterprisePassword, "pw")
	t.Setenv(EnvEnterpriseInsecure, "true")

	profile, _, err := cfg.ResolveProfile("", DeploymentEnterprise)
	if err != nil {
		t.Fatalf("ResolveProfile failed: %v", err)
	}
	if !profile.Insecure || profile.Password != "pw" {
		t.Errorf("profile = %+v", profile)
	}
}
