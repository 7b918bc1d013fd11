package wire

import (
	"encoding/json"

	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// RegistrationRequest asks the broker to register a device on the network.
type RegistrationRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UnregistrationRequest asks the broker to remove a device from the network.
type UnregistrationRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthenticationRequest presents the device's session token to the broker.
type AuthenticationRequest struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// UpdateConfigRequest publishes the device's full sensor configuration.
type UpdateConfigRequest struct {
	ID     string                       `json:"id"`
	Config []device.SensorConfiguration `json:"config"`
}

// PublishingData carries buffered sensor readings as one telemetry message.
type PublishingData struct {
	ID   string             `json:"id"`
	Data []device.DataPoint `json:"data"`
}

// Encode serialises any request DTO to its wire form.
func Encode(request any) ([]byte, error) {
	return json.Marshal(request)
}
