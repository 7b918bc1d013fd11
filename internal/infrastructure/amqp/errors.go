package amqp

import "errors"

// Domain-specific errors for AMQP operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("amqp: connection failed")

	// ErrNotConnected is returned when attempting operations on a closed client.
	ErrNotConnected = errors.New("amqp: client not connected")

	// ErrPublishFailed is returned when a publish operation fails.
	ErrPublishFailed = errors.New("amqp: publish failed")

	// ErrNotConfirmed is returned when the broker does not confirm receipt
	// of a published message.
	ErrNotConfirmed = errors.New("amqp: message not confirmed by broker")

	// ErrConsumeFailed is returned when a consume operation fails.
	ErrConsumeFailed = errors.New("amqp: consume failed")

	// ErrTimeout is returned when no reply arrives within the inactivity timeout.
	ErrTimeout = errors.New("amqp: reply timed out")

	// ErrOperationInFlight is returned when a second subscribe is attempted
	// while one is already waiting on the same response queue.
	ErrOperationInFlight = errors.New("amqp: operation already in flight")

	// ErrCancelled is returned when an in-flight consumption is cancelled
	// via Unsubscribe.
	ErrCancelled = errors.New("amqp: subscription cancelled")
)
