// Package telemetry provides structured logging for redisctl, wrapping
// zerolog with the field conventions used across the CLI: run IDs, workflow
// and step names, and profile names.
package telemetry
