package amqp

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/config"
	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/logging"
)

// Client owns one broker connection and the channel pair every publisher and
// subscriber of a device shares: a publisher channel with confirms enabled
// and a subscriber channel with prefetch 1.
//
// The protocol exchanges (device, data.sent) are declared on connect.
// Reconnection is driven by the operations themselves: when a publish or
// consume fails with a broken-connection error, reconnect() re-establishes
// the connection with exponential backoff and the operation is resubmitted.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	url          string
	initialDelay time.Duration
	maxDelay     time.Duration
	log          *logging.Logger

	mu     sync.Mutex
	conn   *amqp091.Connection
	pubCh  *amqp091.Channel
	subCh  *amqp091.Channel
	closed bool
}

// Dial connects to the broker and prepares the channel pair.
//
// Parameters:
//   - cfg: AMQP configuration (URL, reconnect backoff)
//   - log: Logger for connection events
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If the initial connection or topology declaration fails
func Dial(cfg *config.Config, log *logging.Logger) (*Client, error) {
	c := &Client{
		url:          cfg.AMQP.URL,
		initialDelay: cfg.InitialReconnectDelay(),
		maxDelay:     cfg.MaxReconnectDelay(),
		log:          log.With("component", "amqp"),
	}

	c.mu.Lock()
	err := c.connectLocked()
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return c, nil
}

// connectLocked establishes the connection, opens both channels and declares
// the protocol exchanges. Caller must hold c.mu.
func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dialing broker: %w", err)
	}

	subCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("opening subscriber channel: %w", err)
	}
	if err := subCh.Qos(prefetchCount, 0, false); err != nil {
		conn.Close()
		return fmt.Errorf("setting prefetch: %w", err)
	}

	pubCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("opening publisher channel: %w", err)
	}
	if err := pubCh.Confirm(false); err != nil {
		conn.Close()
		return fmt.Errorf("enabling publisher confirms: %w", err)
	}

	if err := subCh.ExchangeDeclare(ExchangeDevice, amqp091.ExchangeDirect, false, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("declaring %s exchange: %w", ExchangeDevice, err)
	}
	if err := subCh.ExchangeDeclare(ExchangeDataSent, amqp091.ExchangeFanout, false, false, false, false, nil); err != nil {
		conn.Close()
		return fmt.Errorf("declaring %s exchange: %w", ExchangeDataSent, err)
	}

	// Unroutable mandatory messages come back as returns; surface them in
	// the log the way UnroutableError would.
	returns := pubCh.NotifyReturn(make(chan amqp091.Return, 1))
	go c.drainReturns(returns)

	c.conn = conn
	c.pubCh = pubCh
	c.subCh = subCh

	return nil
}

// drainReturns logs unroutable messages returned by the broker.
func (c *Client) drainReturns(returns <-chan amqp091.Return) {
	for r := range returns {
		c.log.Warn("message could not be routed",
			"exchange", r.Exchange,
			"routing_key", r.RoutingKey,
			"reply", r.ReplyText,
		)
	}
}

// reconnect re-establishes the connection with exponential backoff until it
// succeeds, the context ends, or the client is closed.
func (c *Client) reconnect(ctx context.Context) error {
	b := newBackoff(c.initialDelay, c.maxDelay)

	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return ErrNotConnected
		}
		if c.conn != nil && !c.conn.IsClosed() {
			c.mu.Unlock()
			return nil
		}
		err := c.connectLocked()
		c.mu.Unlock()

		if err == nil {
			c.log.Info("reconnected to broker")
			return nil
		}

		delay := b.next()
		c.log.Warn("broker connection closed, retrying",
			"error", err,
			"retry_in", delay,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// publisherChannel returns the confirm-enabled channel for publishing.
func (c *Client) publisherChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.pubCh == nil {
		return nil, ErrNotConnected
	}
	return c.pubCh, nil
}

// subscriberChannel returns the prefetch-limited channel for consuming.
func (c *Client) subscriberChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.subCh == nil {
		return nil, ErrNotConnected
	}
	return c.subCh, nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.conn != nil && !c.conn.IsClosed()
}

// Close tears the channel pair and the connection down. The client cannot be
// reused afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.subCh != nil {
		c.subCh.Close()
	}
	if c.pubCh != nil {
		c.pubCh.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}

	return nil
}
