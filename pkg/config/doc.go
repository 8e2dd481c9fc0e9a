// Package config manages redisctl's credential profiles: a YAML file with
// named profiles for Cloud and Enterprise deployments, environment variable
// overrides, and resolution from a profile name to usable credentials.
package config
