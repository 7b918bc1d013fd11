// Package repository persists the device entity between runs.
//
// A device that restarts with its identity, token and sensor configuration
// intact can skip registration and resume its session by authenticating,
// so the gateway never accumulates duplicate registrations.
//
// # Backends
//
// Two backends implement Gateway: a YAML file for single-device
// deployments, and SQLite for hosts running several devices against one
// store. Open selects the backend from configuration.
package repository
