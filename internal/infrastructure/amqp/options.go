package amqp

import (
	"errors"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/google/uuid"
)

// Connection constants.
const (
	// prefetchCount limits unacknowledged deliveries per consumer. One at a
	// time: each RPC expects exactly one useful reply.
	prefetchCount = 1

	// defaultConsumerTimeout is the reply inactivity timeout when the
	// configuration does not override it.
	defaultConsumerTimeout = 300 * time.Second

	// defaultInitialReconnectDelay is the backoff base delay between
	// reconnection attempts.
	defaultInitialReconnectDelay = 4 * time.Second

	// defaultMaxReconnectDelay caps the reconnection backoff.
	defaultMaxReconnectDelay = 10 * time.Second
)

// backoff produces exponentially growing delays: the base delay doubles on
// each call until it reaches the cap.
type backoff struct {
	delay time.Duration
	max   time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	if initial <= 0 {
		initial = defaultInitialReconnectDelay
	}
	if max < initial {
		max = defaultMaxReconnectDelay
	}
	if max < initial {
		max = initial
	}
	return &backoff{delay: initial, max: max}
}

// next returns the current delay and doubles it for the following call.
func (b *backoff) next() time.Duration {
	d := b.delay
	b.delay *= 2
	if b.delay > b.max {
		b.delay = b.max
	}
	return d
}

// newConsumerTag produces a unique consumer tag for one consume call.
func newConsumerTag() string {
	return "knot-" + uuid.NewString()
}

// isConnectionError reports whether err means the broker connection or
// channel is gone, so the operation should be retried on a fresh connection.
// Other error kinds are not retried.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	var amqpErr *amqp091.Error
	if errors.As(err, &amqpErr) {
		// Soft (recoverable) errors leave the channel usable; anything else
		// means the broker closed on us.
		return !amqpErr.Recover
	}
	return false
}
