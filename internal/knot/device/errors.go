package device

import "errors"

// Protocol-legality errors, raised synchronously by a lifecycle state when an
// operation is invalid for that state. The device is unchanged when one of
// these is returned. Check with errors.Is().
var (
	// ErrAlreadyRegistered is returned when registering a device that
	// already completed registration.
	ErrAlreadyRegistered = errors.New("knot: device already registered")

	// ErrAlreadyUnregistered is returned when unregistering a device that
	// already left the network.
	ErrAlreadyUnregistered = errors.New("knot: device already unregistered")

	// ErrAlreadyAuthenticated is returned when authenticating a device that
	// already holds an authenticated session.
	ErrAlreadyAuthenticated = errors.New("knot: device already authenticated")

	// ErrAlreadyUpdatedSchema is returned when re-sending a schema the
	// broker already accepted.
	ErrAlreadyUpdatedSchema = errors.New("knot: schema already updated")

	// ErrAlreadyReady is returned when re-driving lifecycle setup on a
	// device that is ready to send data.
	ErrAlreadyReady = errors.New("knot: device already ready")

	// ErrNotRegistered is returned when an operation requires a registered
	// device.
	ErrNotRegistered = errors.New("knot: device not registered")

	// ErrNotAuthenticated is returned when an operation requires an
	// authenticated device.
	ErrNotAuthenticated = errors.New("knot: device not authenticated")

	// ErrNotReady is returned when publishing data before the device
	// reached the ready state.
	ErrNotReady = errors.New("knot: device not ready")
)

// Correlation and broker-reported errors surfacing from reply handling.
var (
	// ErrDifferentDevice is returned when a reply carries another device's
	// identifier. The message is rejected without requeue.
	ErrDifferentDevice = errors.New("knot: reply for a different device identifier")

	// ErrAuthentication is returned when the broker rejects an
	// authentication request.
	ErrAuthentication = errors.New("knot: authentication failed")

	// ErrUnauthorized is returned when the broker reports the device is not
	// authorised to authenticate.
	ErrUnauthorized = errors.New("knot: unauthorized device")

	// ErrDeviceNotFound is returned when the broker does not know the
	// device.
	ErrDeviceNotFound = errors.New("knot: device not found")

	// ErrUpdateConfig is returned when the broker rejects a configuration
	// update.
	ErrUpdateConfig = errors.New("knot: configuration update failed")

	// ErrUnregistration is returned when the broker rejects an
	// unregistration request.
	ErrUnregistration = errors.New("knot: unregistration failed")
)

// Entity validation errors.
var (
	// ErrDuplicateSensorID is returned when two sensor configurations share
	// an identifier.
	ErrDuplicateSensorID = errors.New("knot: sensors with duplicate identifiers")
)
