// Package amqp provides the broker transport for the KNoT device runtime.
//
// The protocol is request/reply over pub/sub: every stateful lifecycle
// transition publishes a request to the device exchange and blocks on an
// ephemeral, per-device response queue until a correlated reply arrives or
// an inactivity timeout fires.
//
// # Components
//
//   - Client: owns the connection and the channel pair (publisher channel
//     with confirms, subscriber channel with prefetch 1), declares the
//     protocol exchanges and reconnects with exponential backoff
//   - Publisher: one outbound message kind; persistent, mandatory delivery
//     with an Authorization header and optional reply-to/correlation-id
//   - Subscriber: one reply stream; declare→bind→consume→delete queue
//     lifecycle with a guaranteed delete on every exit path
//   - Callbacks: decode and classify replies into success, retryable
//     failure, or terminal failure
//
// # Acknowledgment policy
//
// A useful reply is acked and the consumer cancelled (each RPC expects
// exactly one). A reply for another device is nacked without requeue.
// Domain-terminal broker errors are acked and surfaced. Transient decode
// failures are nacked with requeue so the broker redelivers.
//
// # Topology
//
// Fixed by the protocol: the "device" direct exchange for control messages,
// the "data.sent" fanout exchange for telemetry, and per-device response
// queue names (device_registered_<id>, ...) to avoid collisions across
// devices sharing one broker.
package amqp
