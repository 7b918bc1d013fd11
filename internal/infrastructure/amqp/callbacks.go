package amqp

import (
	"fmt"

	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/wire"
)

// RegisterCallback interprets registration replies. On success Token holds
// the broker-issued session credential; a reply reporting a non-conflict
// error leaves Token empty without failing the exchange, so the caller can
// decide to stay put and retry.
type RegisterCallback struct {
	Token string
}

// Handle implements Callback.
func (c *RegisterCallback) Handle(body []byte, deviceID string) error {
	response, err := wire.DecodeRegistrationResponse(body)
	if err != nil {
		return err
	}
	if response.ID != deviceID {
		return device.ErrDifferentDevice
	}

	switch wire.ErrorText(response.Error) {
	case wire.MsgDeviceExists:
		return fmt.Errorf("%w: %s", device.ErrAlreadyRegistered, wire.MsgDeviceExists)
	case "":
		c.Token = response.Token
	default:
		c.Token = ""
	}

	return nil
}

// IssuedToken returns the token the last successful reply carried, or ""
// when the broker declined to issue one.
func (c *RegisterCallback) IssuedToken() string {
	return c.Token
}

// UnregisterCallback interprets unregistration replies.
type UnregisterCallback struct{}

// Handle implements Callback.
func (c *UnregisterCallback) Handle(body []byte, deviceID string) error {
	response, err := wire.DecodeUnregistrationResponse(body)
	if err != nil {
		return err
	}
	if response.ID != deviceID {
		return device.ErrDifferentDevice
	}

	switch text := wire.ErrorText(response.Error); text {
	case "":
		return nil
	case wire.MsgDeviceNotFound:
		return fmt.Errorf("%w: %s", device.ErrDeviceNotFound, text)
	default:
		return fmt.Errorf("%w: %s", device.ErrUnregistration, text)
	}
}

// AuthCallback interprets authentication replies.
type AuthCallback struct{}

// Handle implements Callback.
func (c *AuthCallback) Handle(body []byte, deviceID string) error {
	response, err := wire.DecodeAuthResponse(body)
	if err != nil {
		return err
	}
	if response.ID != deviceID {
		return device.ErrDifferentDevice
	}

	switch text := wire.ErrorText(response.Error); text {
	case "":
		return nil
	case wire.MsgUnauthorizedDevice:
		return fmt.Errorf("%w: %s", device.ErrUnauthorized, text)
	default:
		return fmt.Errorf("%w: %s", device.ErrAuthentication, text)
	}
}

// UpdateSchemaCallback interprets configuration update replies. When the
// broker returns a changed configuration, Config carries the authoritative
// version the device should adopt.
type UpdateSchemaCallback struct {
	Config []device.SensorConfiguration
}

// Handle implements Callback.
func (c *UpdateSchemaCallback) Handle(body []byte, deviceID string) error {
	response, err := wire.DecodeConfigUpdateResponse(body)
	if err != nil {
		return err
	}
	if response.ID != deviceID {
		return device.ErrDifferentDevice
	}

	switch text := wire.ErrorText(response.Error); text {
	case "":
	case wire.MsgDeviceNotFound:
		return fmt.Errorf("%w: %s", device.ErrDeviceNotFound, text)
	default:
		return fmt.Errorf("%w: %s", device.ErrUpdateConfig, text)
	}

	if response.Changed {
		c.Config = response.Config
	}

	return nil
}

// ChangedConfig returns the configuration the broker substituted on the last
// reply, or nil when the submitted configuration was accepted as-is.
func (c *UpdateSchemaCallback) ChangedConfig() []device.SensorConfiguration {
	return c.Config
}
