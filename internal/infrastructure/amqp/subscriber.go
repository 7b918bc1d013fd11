package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/logging"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// Callback interprets one inbound reply. Implementations decode the body
// into the operation's typed response, verify the embedded device ID and
// classify the outcome:
//
//   - nil: useful reply, consumption stops
//   - device.ErrDifferentDevice: reply for another device, rejected without requeue
//   - a domain-terminal error (device.ErrAlreadyRegistered, ErrUnauthorized,
//     ErrDeviceNotFound, ErrAuthentication, ErrUpdateConfig,
//     ErrUnregistration): acknowledged and surfaced, retries would not help
//   - anything else: transient, negative-acknowledged with requeue so the
//     broker redelivers
type Callback interface {
	Handle(body []byte, deviceID string) error
}

// SubscriberOptions describe one reply stream: the ephemeral queue it lives
// on, the routing key it binds and the inactivity timeout.
type SubscriberOptions struct {
	Queue      string
	RoutingKey string
	Timeout    time.Duration
}

// Subscriber owns the lifecycle of one ephemeral response queue. Each
// Subscribe declares and binds the queue, consumes exactly one
// correctly-correlated message (or times out), and deletes the queue on
// every exit path so restarts never accumulate orphans.
//
// One operation may be in flight at a time; a concurrent Subscribe returns
// ErrOperationInFlight.
type Subscriber struct {
	client   *Client
	callback Callback
	opts     SubscriberOptions
	log      *logging.Logger

	inFlight sync.Mutex

	activeMu  sync.Mutex
	activeCh  *amqp091.Channel
	activeTag string
	cancelled atomic.Bool
}

// NewSubscriber creates a Subscriber for one reply queue.
func NewSubscriber(client *Client, callback Callback, opts SubscriberOptions, log *logging.Logger) *Subscriber {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultConsumerTimeout
	}
	return &Subscriber{
		client:   client,
		callback: callback,
		opts:     opts,
		log:      log.With("component", "subscriber", "queue", opts.Queue),
	}
}

// Subscribe blocks until a reply for deviceID is classified by the callback,
// the inactivity timeout elapses, or ctx ends.
//
// Returns:
//   - nil: the callback accepted a reply
//   - ErrTimeout: no reply within the inactivity window
//   - ErrOperationInFlight: another Subscribe is already waiting
//   - device.ErrDifferentDevice, or the callback's domain-terminal error
func (s *Subscriber) Subscribe(ctx context.Context, deviceID string) error {
	if !s.inFlight.TryLock() {
		return ErrOperationInFlight
	}
	defer s.inFlight.Unlock()
	s.cancelled.Store(false)

	for {
		err := s.attempt(ctx, deviceID)
		if err == nil || !isConnectionError(err) {
			return err
		}
		if s.cancelled.Load() {
			return ErrCancelled
		}

		s.log.Info("subscriber connection closed, reconnecting")
		if rerr := s.client.reconnect(ctx); rerr != nil {
			return fmt.Errorf("%w: %w", ErrConsumeFailed, rerr)
		}
	}
}

// attempt performs one declare/bind/consume cycle. The queue is deleted on
// every exit path.
func (s *Subscriber) attempt(ctx context.Context, deviceID string) error {
	ch, err := s.client.subscriberChannel()
	if err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(s.opts.Queue, false, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring queue: %w", err)
	}
	if err := ch.QueueBind(s.opts.Queue, s.opts.RoutingKey, ExchangeDevice, false, nil); err != nil {
		return fmt.Errorf("binding queue: %w", err)
	}
	defer func() {
		if _, derr := ch.QueueDelete(s.opts.Queue, false, false, false); derr != nil {
			s.log.Warn("failed to delete response queue", "error", derr)
		}
	}()

	tag := newConsumerTag()
	deliveries, err := ch.Consume(s.opts.Queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConsumeFailed, err)
	}
	s.setActive(ch, tag)
	defer s.clearActive()

	timer := time.NewTimer(s.opts.Timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = ch.Cancel(tag, false)
			return ctx.Err()

		case <-timer.C:
			_ = ch.Cancel(tag, false)
			return fmt.Errorf("%w: no reply within %v", ErrTimeout, s.opts.Timeout)

		case d, ok := <-deliveries:
			if !ok {
				if s.cancelled.Load() {
					return ErrCancelled
				}
				return amqp091.ErrClosed
			}

			done, err := s.handle(ch, tag, d, d.Body, deviceID)
			if done {
				return err
			}

			// Transient failure: the message was requeued, keep waiting
			// with a fresh inactivity window.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.opts.Timeout)
		}
	}
}

// acknowledger is the slice of amqp091.Delivery the acknowledgment policy
// needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// consumerCanceller is the slice of amqp091.Channel the acknowledgment
// policy needs.
type consumerCanceller interface {
	Cancel(consumer string, noWait bool) error
}

// handle applies the acknowledgment policy to one delivery. It reports
// whether consumption is finished and the error to surface.
func (s *Subscriber) handle(ch consumerCanceller, tag string, d acknowledger, body []byte, deviceID string) (bool, error) {
	err := s.callback.Handle(body, deviceID)

	switch {
	case err == nil:
		// Single-shot RPC: the useful reply arrived, stop consuming.
		if aerr := d.Ack(false); aerr != nil {
			return true, fmt.Errorf("%w: %w", ErrConsumeFailed, aerr)
		}
		_ = ch.Cancel(tag, false)
		return true, nil

	case errors.Is(err, device.ErrDifferentDevice):
		// Poison message: reject without requeue so it does not loop forever.
		_ = d.Nack(false, false)
		_ = ch.Cancel(tag, false)
		return true, err

	case isTerminal(err):
		// Broker-reported business failure: consuming it again would not help.
		_ = d.Ack(false)
		_ = ch.Cancel(tag, false)
		return true, err

	default:
		_ = d.Nack(false, true)
		s.log.Warn("transient reply error, requeued for redelivery", "error", err)
		return false, nil
	}
}

// Unsubscribe cancels an in-flight consumption deterministically. Subscribe
// then returns ErrCancelled.
func (s *Subscriber) Unsubscribe() error {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	if s.activeTag == "" {
		return nil
	}
	s.cancelled.Store(true)
	return s.activeCh.Cancel(s.activeTag, false)
}

func (s *Subscriber) setActive(ch *amqp091.Channel, tag string) {
	s.activeMu.Lock()
	s.activeCh, s.activeTag = ch, tag
	s.activeMu.Unlock()
}

func (s *Subscriber) clearActive() {
	s.activeMu.Lock()
	s.activeCh, s.activeTag = nil, ""
	s.activeMu.Unlock()
}

// isTerminal reports whether err is a broker-reported domain failure that
// should be acknowledged and surfaced rather than retried.
func isTerminal(err error) bool {
	return errors.Is(err, device.ErrAlreadyRegistered) ||
		errors.Is(err, device.ErrUnauthorized) ||
		errors.Is(err, device.ErrDeviceNotFound) ||
		errors.Is(err, device.ErrAuthentication) ||
		errors.Is(err, device.ErrUpdateConfig) ||
		errors.Is(err, device.ErrUnregistration)
}
