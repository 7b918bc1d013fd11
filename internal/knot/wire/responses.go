package wire

import (
	"encoding/json"
	"fmt"

	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// Broker error message strings. Replies carry these verbatim in the error
// field; classification matches on the exact text.
const (
	// MsgDeviceExists is reported for a registration of an already
	// registered device.
	MsgDeviceExists = "thing is already registered"

	// MsgUnauthorizedDevice is reported for an authentication the broker
	// refuses outright.
	MsgUnauthorizedDevice = "unauthorized to authenticate thing"

	// MsgDeviceNotFound is reported when the broker does not know the
	// device.
	MsgDeviceNotFound = "thing not found on thing's service"
)

// RegistrationResponse is the broker's reply to a registration request.
// A nil Error means the registration succeeded and Token carries the
// session credential.
type RegistrationResponse struct {
	ID    string  `json:"id"`
	Token string  `json:"token"`
	Error *string `json:"error"`
}

// UnregistrationResponse is the broker's reply to an unregistration request.
type UnregistrationResponse struct {
	ID    string  `json:"id"`
	Error *string `json:"error"`
}

// AuthResponse is the broker's reply to an authentication request.
type AuthResponse struct {
	ID    string  `json:"id"`
	Error *string `json:"error"`
}

// ConfigUpdateResponse is the broker's reply to a configuration update.
// Changed is set when the broker adjusted the configuration; Config then
// carries the authoritative version the device should adopt.
type ConfigUpdateResponse struct {
	ID      string                       `json:"id"`
	Config  []device.SensorConfiguration `json:"config"`
	Changed bool                         `json:"changed"`
	Error   *string                      `json:"error"`
}

// DecodeRegistrationResponse parses a registration reply body.
func DecodeRegistrationResponse(body []byte) (RegistrationResponse, error) {
	var response RegistrationResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return RegistrationResponse{}, fmt.Errorf("decoding registration response: %w", err)
	}
	return response, nil
}

// DecodeUnregistrationResponse parses an unregistration reply body.
func DecodeUnregistrationResponse(body []byte) (UnregistrationResponse, error) {
	var response UnregistrationResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return UnregistrationResponse{}, fmt.Errorf("decoding unregistration response: %w", err)
	}
	return response, nil
}

// DecodeAuthResponse parses an authentication reply body.
func DecodeAuthResponse(body []byte) (AuthResponse, error) {
	var response AuthResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return AuthResponse{}, fmt.Errorf("decoding auth response: %w", err)
	}
	return response, nil
}

// DecodeConfigUpdateResponse parses a configuration update reply body.
func DecodeConfigUpdateResponse(body []byte) (ConfigUpdateResponse, error) {
	var response ConfigUpdateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ConfigUpdateResponse{}, fmt.Errorf("decoding config update response: %w", err)
	}
	return response, nil
}

// ErrorText returns the error string carried by a reply, or "" when the
// reply reports success.
func ErrorText(err *string) string {
	if err == nil {
		return ""
	}
	return *err
}
