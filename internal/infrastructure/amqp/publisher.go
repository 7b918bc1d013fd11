package amqp

import (
	"context"
	"fmt"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/logging"
)

// PublisherOptions describe one outbound message kind: where it goes and
// what metadata rides along.
type PublisherOptions struct {
	// Exchange and RoutingKey address the message.
	Exchange   string
	RoutingKey string

	// Token is the broker access token attached as the Authorization header.
	Token string

	// ReplyTo and CorrelationID identify an RPC conversation. Only the
	// authentication exchange uses them.
	ReplyTo       string
	CorrelationID string
}

// Publisher sends one kind of outbound protocol message. Protocol control
// messages are published persistent and mandatory with publisher confirms;
// Publish blocks until the broker confirms receipt.
//
// Broken-connection failures are retried transparently with exponential
// backoff; other failures are returned to the caller.
type Publisher struct {
	client *Client
	opts   PublisherOptions
	log    *logging.Logger
}

// NewPublisher creates a Publisher bound to a fixed exchange and routing key.
func NewPublisher(client *Client, opts PublisherOptions, log *logging.Logger) *Publisher {
	return &Publisher{
		client: client,
		opts:   opts,
		log:    log.With("component", "publisher", "routing_key", opts.RoutingKey),
	}
}

// Publish sends body to the publisher's exchange and blocks until the broker
// confirms receipt.
//
// Parameters:
//   - ctx: Bounds the publish, including any reconnection backoff
//   - body: The serialised message payload
//
// Returns:
//   - error: nil on confirmed delivery, or wrapped error describing the failure
func (p *Publisher) Publish(ctx context.Context, body []byte) error {
	for {
		err := p.attempt(ctx, body)
		if err == nil {
			return nil
		}
		if !isConnectionError(err) {
			return fmt.Errorf("%w: %w", ErrPublishFailed, err)
		}

		p.log.Info("publisher connection closed, reconnecting")
		if rerr := p.client.reconnect(ctx); rerr != nil {
			return fmt.Errorf("%w: %w", ErrPublishFailed, rerr)
		}
	}
}

// attempt performs one publish on the current channel.
func (p *Publisher) attempt(ctx context.Context, body []byte) error {
	ch, err := p.client.publisherChannel()
	if err != nil {
		return err
	}

	msg := amqp091.Publishing{
		Headers:       amqp091.Table{"Authorization": p.opts.Token},
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		ReplyTo:       p.opts.ReplyTo,
		CorrelationId: p.opts.CorrelationID,
		Body:          body,
	}

	confirmation, err := ch.PublishWithDeferredConfirmWithContext(
		ctx, p.opts.Exchange, p.opts.RoutingKey, true, false, msg)
	if err != nil {
		return err
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrNotConfirmed
	}

	return nil
}
