package lifecycle

import (
	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/amqp"
	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/config"
	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/logging"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// Assemble wires a machine for dev against the broker topology: one
// publisher and reply subscriber per lifecycle operation, plus the fanout
// publisher for telemetry.
//
// Reply queue names derive from the device ID, so a device restored with a
// corrupt ID gets a fresh one here, before any queue name is fixed.
func Assemble(client *amqp.Client, dev *device.Device, cfg *config.Config, log *logging.Logger) *Machine {
	if !dev.HasValidID() {
		dev.ID = device.NewID()
	}
	if log == nil {
		log = logging.Default()
	}

	timeout := cfg.ConsumerTimeout()
	token := cfg.AMQP.Token

	registerCb := &amqp.RegisterCallback{}
	schemaCb := &amqp.UpdateSchemaCallback{}

	deps := Dependencies{
		RegisterPublisher: amqp.NewPublisher(client, amqp.PublisherOptions{
			Exchange:   amqp.ExchangeDevice,
			RoutingKey: amqp.KeyRegisterDevice,
			Token:      token,
		}, log),
		RegisterSubscriber: amqp.NewSubscriber(client, registerCb, amqp.SubscriberOptions{
			Queue:      amqp.RegistrationQueue(dev.ID),
			RoutingKey: amqp.KeyRegisteredDevice,
			Timeout:    timeout,
		}, log),
		RegisterResult: registerCb,

		UnregisterPublisher: amqp.NewPublisher(client, amqp.PublisherOptions{
			Exchange:   amqp.ExchangeDevice,
			RoutingKey: amqp.KeyUnregisterDevice,
			Token:      token,
		}, log),
		UnregisterSubscriber: amqp.NewSubscriber(client, &amqp.UnregisterCallback{}, amqp.SubscriberOptions{
			Queue:      amqp.UnregistrationQueue(dev.ID),
			RoutingKey: amqp.KeyUnregisteredDevice,
			Timeout:    timeout,
		}, log),

		AuthPublisher: amqp.NewPublisher(client, amqp.PublisherOptions{
			Exchange:      amqp.ExchangeDevice,
			RoutingKey:    amqp.KeyAuthDevice,
			Token:         token,
			ReplyTo:       amqp.KeyAuthRPC,
			CorrelationID: amqp.AuthCorrelationID,
		}, log),
		AuthSubscriber: amqp.NewSubscriber(client, &amqp.AuthCallback{}, amqp.SubscriberOptions{
			Queue:      amqp.AuthQueue(dev.ID),
			RoutingKey: amqp.KeyAuthRPC,
			Timeout:    timeout,
		}, log),

		SchemaPublisher: amqp.NewPublisher(client, amqp.PublisherOptions{
			Exchange:   amqp.ExchangeDevice,
			RoutingKey: amqp.KeyConfigSent,
			Token:      token,
		}, log),
		SchemaSubscriber: amqp.NewSubscriber(client, schemaCb, amqp.SubscriberOptions{
			Queue:      amqp.SchemaQueue(dev.ID),
			RoutingKey: amqp.KeyUpdatedSchema,
			Timeout:    timeout,
		}, log),
		SchemaResult: schemaCb,

		DataPublisher: amqp.NewPublisher(client, amqp.PublisherOptions{
			Exchange: amqp.ExchangeDataSent,
			Token:    token,
		}, log),
	}

	return New(dev, deps, Options{StrictSchemaAck: cfg.Protocol.StrictSchemaAck}, log)
}
