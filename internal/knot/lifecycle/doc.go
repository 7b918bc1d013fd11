// Package lifecycle drives a device through the KNoT session states.
//
// # Model
//
// A Machine owns one device entity and an arena of state handlers, one per
// session state (Disconnected, Registered, Unregistered, Authenticated,
// SchemaUpdated, Ready). Every protocol operation is dispatched to the
// handler for the device's current state; handlers either perform the
// operation's exchange and transition the device, or reject it with a
// sentinel error from the device package when the operation is illegal in
// that state.
//
// # Concurrency
//
// All public operations serialise on the machine's mutex, so the driver
// loop and a caller publishing telemetry never interleave an exchange.
// Transitions are plain field updates performed under that same lock.
//
// # Driving
//
// Start runs the standard session choreography: register, authenticate,
// update schema and flush buffered data, once per second, until the device
// reaches Ready or the context is cancelled. Failures along the way are
// logged and retried on the next tick rather than aborting the session.
package lifecycle
