// Package device defines the KNoT device entity and its invariants.
//
// A Device carries identity (16-character hex ID), a broker-issued session
// token (UUID-shaped), an ordered sensor configuration with unique sensor
// IDs, buffered telemetry awaiting publication, and the label of its current
// lifecycle state.
//
// The package also owns the protocol error taxonomy: state-legality errors
// (ErrAlreadyRegistered, ErrNotAuthenticated, ...), correlation errors
// (ErrDifferentDevice) and broker-reported domain errors (ErrUnauthorized,
// ErrDeviceNotFound, ...). Every layer of the runtime classifies failures
// against these sentinels with errors.Is().
//
// Lifecycle behaviour lives in the lifecycle package; persistence lives in
// the repository package. This package has no broker dependencies.
package device
