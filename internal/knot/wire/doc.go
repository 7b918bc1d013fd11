// Package wire defines the KNoT protocol message bodies.
//
// Request DTOs are what the device publishes (registration, authentication,
// configuration update, unregistration, telemetry); response DTOs are what
// the broker replies with. Field names are fixed by the protocol and use
// camelCase on the wire (sensorId, typeId, valueType, timeSec, ...).
//
// The package also carries the broker's well-known error message strings;
// reply classification matches on their exact text.
package wire
