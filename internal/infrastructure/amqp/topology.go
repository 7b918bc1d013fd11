package amqp

// Broker topology fixed by the KNoT protocol: one direct exchange for device
// control messages and one fanout exchange for telemetry.
const (
	// ExchangeDevice is the direct exchange carrying lifecycle requests and
	// replies.
	ExchangeDevice = "device"

	// ExchangeDataSent is the fanout exchange carrying telemetry.
	ExchangeDataSent = "data.sent"
)

// Well-known routing keys.
const (
	// KeyRegisterDevice routes registration requests.
	KeyRegisterDevice = "device.register"

	// KeyRegisteredDevice routes registration replies.
	KeyRegisteredDevice = "device.registered"

	// KeyUnregisterDevice routes unregistration requests.
	KeyUnregisterDevice = "device.unregister"

	// KeyUnregisteredDevice routes unregistration replies.
	KeyUnregisteredDevice = "device.unregistered"

	// KeyAuthDevice routes authentication requests.
	KeyAuthDevice = "device.auth"

	// KeyAuthRPC is the reply-to key of the authentication RPC conversation.
	KeyAuthRPC = "device-auth-rpc"

	// KeyConfigSent routes configuration update requests.
	KeyConfigSent = "device.config.sent"

	// KeyUpdatedSchema routes configuration update replies.
	KeyUpdatedSchema = "device.config.updated"
)

// AuthCorrelationID identifies the authentication RPC conversation.
const AuthCorrelationID = "auth_correlation_id"

// Response queue names are derived per device ID so concurrently running
// devices sharing one broker never collide.

// RegistrationQueue returns the registration reply queue for a device.
func RegistrationQueue(deviceID string) string {
	return "device_registered_" + deviceID
}

// UnregistrationQueue returns the unregistration reply queue for a device.
func UnregistrationQueue(deviceID string) string {
	return "device_unregistered_" + deviceID
}

// AuthQueue returns the authentication reply queue for a device.
func AuthQueue(deviceID string) string {
	return "device_auth_queue_" + deviceID
}

// SchemaQueue returns the configuration update reply queue for a device.
func SchemaQueue(deviceID string) string {
	return "device_schema_" + deviceID
}
