// Package workflow implements the orchestration engine behind redisctl's
// multi-step commands: a poller that tracks long-running control plane
// operations to completion, a step/workflow model with idempotent re-entry,
// and a registry of named workflows for the CLI dispatcher.
//
// Both control planes report asynchronous work through a status endpoint
// (Cloud tasks, Enterprise actions). The engine normalizes their status
// vocabularies into a canonical four-state model and waits on them under a
// configurable deadline. Workflows sequence several such operations and
// report partial progress when a step fails mid-run.
package workflow
