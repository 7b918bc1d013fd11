package lifecycle

import (
	"context"
	"errors"

	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/wire"
)

// commonOperations holds the register and unregister choreography shared
// by every state that permits those operations.
type commonOperations struct {
	m *Machine
}

// register performs the registration exchange. A device with a valid token
// is already known to the gateway and transitions without touching the
// broker; a reply reporting the device as already registered counts as
// success. When the broker declines to issue a token the device stays
// where it is for the caller to retry.
func (c *commonOperations) register(ctx context.Context) error {
	d := c.m.dev
	if !d.HasValidID() {
		d.ID = device.NewID()
	}
	if d.HasValidToken() {
		c.m.transitionTo(device.StateRegistered)
		return nil
	}

	body, err := wire.Encode(wire.RegistrationRequest{ID: d.ID, Name: d.Name})
	if err != nil {
		return err
	}
	if err := c.m.deps.RegisterPublisher.Publish(ctx, body); err != nil {
		return err
	}

	err = c.m.deps.RegisterSubscriber.Subscribe(ctx, d.ID)
	switch {
	case err == nil:
		token := c.m.deps.RegisterResult.IssuedToken()
		if token == "" {
			return nil
		}
		d.Token = token
		c.m.transitionTo(device.StateRegistered)
		return nil
	case errors.Is(err, device.ErrAlreadyRegistered):
		// The gateway already knows this device.
		c.m.transitionTo(device.StateRegistered)
		return nil
	default:
		return err
	}
}

// unregister performs the unregistration exchange, clearing the session
// token on success.
func (c *commonOperations) unregister(ctx context.Context) error {
	d := c.m.dev
	body, err := wire.Encode(wire.UnregistrationRequest{ID: d.ID, Name: d.Name})
	if err != nil {
		return err
	}
	if err := c.m.deps.UnregisterPublisher.Publish(ctx, body); err != nil {
		return err
	}
	if err := c.m.deps.UnregisterSubscriber.Subscribe(ctx, d.ID); err != nil {
		return err
	}

	d.Token = ""
	c.m.transitionTo(device.StateUnregistered)
	return nil
}

// authenticate performs the authentication exchange shared by the
// Disconnected and Registered states. A rejected credential leaves the
// device in place without surfacing an error, matching gateways that
// expect the device to fall back to registration.
func (c *commonOperations) authenticate(ctx context.Context) error {
	d := c.m.dev
	if !d.HasValidID() || !d.HasValidToken() {
		return nil
	}

	body, err := wire.Encode(wire.AuthenticationRequest{ID: d.ID, Token: d.Token})
	if err != nil {
		return err
	}
	if err := c.m.deps.AuthPublisher.Publish(ctx, body); err != nil {
		return err
	}

	err = c.m.deps.AuthSubscriber.Subscribe(ctx, d.ID)
	switch {
	case err == nil:
		c.m.transitionTo(device.StateAuthenticated)
		return nil
	case errors.Is(err, device.ErrAuthentication):
		return nil
	default:
		return err
	}
}
