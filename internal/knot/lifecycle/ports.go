package lifecycle

import (
	"context"
	"time"

	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// Publisher sends one outbound protocol message to the broker.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Subscriber blocks until a correlated reply for the given device has been
// processed, the attempt times out, or the context is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, deviceID string) error
	Unsubscribe() error
}

// TokenSource exposes the session token carried by the last registration
// reply a subscriber processed.
type TokenSource interface {
	IssuedToken() string
}

// ConfigSource exposes the sensor configuration the broker substituted on
// the last schema reply, or nil when the submitted one was accepted.
type ConfigSource interface {
	ChangedConfig() []device.SensorConfiguration
}

// Dependencies bundles the per-operation publisher and subscriber pairs a
// machine exchanges protocol messages through. All fields are required
// except SchemaResult, which may be nil when the transport never reports
// substituted configurations.
type Dependencies struct {
	RegisterPublisher  Publisher
	RegisterSubscriber Subscriber
	RegisterResult     TokenSource

	UnregisterPublisher  Publisher
	UnregisterSubscriber Subscriber

	AuthPublisher  Publisher
	AuthSubscriber Subscriber

	SchemaPublisher  Publisher
	SchemaSubscriber Subscriber
	SchemaResult     ConfigSource

	DataPublisher Publisher
}

// Options tunes machine behaviour.
type Options struct {
	// StrictSchemaAck makes UpdateSchema stay in Authenticated when no
	// reply arrives in time. When false the schema is assumed accepted
	// after a silent attempt, matching gateways that never acknowledge
	// configuration updates.
	StrictSchemaAck bool

	// PollInterval is the pause between driver loop attempts. Zero means
	// one second.
	PollInterval time.Duration
}
