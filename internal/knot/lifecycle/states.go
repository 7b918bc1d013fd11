package lifecycle

import (
	"context"
	"errors"

	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/wire"
)

// disconnectedState is the entry state: the device is unknown to the
// session and must register, or authenticate with a previously persisted
// credential.
type disconnectedState struct {
	common *commonOperations
}

func (s *disconnectedState) register(ctx context.Context) error {
	return s.common.register(ctx)
}

func (s *disconnectedState) unregister(ctx context.Context) error {
	return s.common.unregister(ctx)
}

func (s *disconnectedState) authenticate(ctx context.Context) error {
	return s.common.authenticate(ctx)
}

func (s *disconnectedState) updateSchema(context.Context) error {
	return device.ErrNotAuthenticated
}

func (s *disconnectedState) publishData(context.Context) error {
	return device.ErrNotAuthenticated
}

// registeredState holds a session token and still needs to prove it.
type registeredState struct {
	common *commonOperations
}

func (s *registeredState) register(context.Context) error {
	return device.ErrAlreadyRegistered
}

func (s *registeredState) unregister(ctx context.Context) error {
	return s.common.unregister(ctx)
}

func (s *registeredState) authenticate(ctx context.Context) error {
	return s.common.authenticate(ctx)
}

func (s *registeredState) updateSchema(context.Context) error {
	return device.ErrNotAuthenticated
}

func (s *registeredState) publishData(context.Context) error {
	return device.ErrNotAuthenticated
}

// unregisteredState is terminal for the session; only a fresh registration
// leaves it.
type unregisteredState struct {
	common *commonOperations
}

func (s *unregisteredState) register(ctx context.Context) error {
	return s.common.register(ctx)
}

func (s *unregisteredState) unregister(context.Context) error {
	return device.ErrAlreadyUnregistered
}

func (s *unregisteredState) authenticate(context.Context) error {
	return device.ErrNotRegistered
}

func (s *unregisteredState) updateSchema(context.Context) error {
	return device.ErrNotRegistered
}

func (s *unregisteredState) publishData(context.Context) error {
	return device.ErrNotRegistered
}

// authenticatedState may submit its sensor configuration.
type authenticatedState struct {
	m      *Machine
	common *commonOperations
}

func (s *authenticatedState) register(context.Context) error {
	return device.ErrAlreadyRegistered
}

func (s *authenticatedState) unregister(ctx context.Context) error {
	return s.common.unregister(ctx)
}

func (s *authenticatedState) authenticate(context.Context) error {
	return device.ErrAlreadyAuthenticated
}

// updateSchema submits the device's sensor configuration. When the broker
// replies with a substituted configuration the device adopts it. Absent
// strict acknowledgement, a silent attempt is treated as accepted.
func (s *authenticatedState) updateSchema(ctx context.Context) error {
	d := s.m.dev
	body, err := wire.Encode(wire.UpdateConfigRequest{ID: d.ID, Config: d.Config})
	if err != nil {
		return err
	}
	if err := s.m.deps.SchemaPublisher.Publish(ctx, body); err != nil {
		return err
	}

	err = s.m.deps.SchemaSubscriber.Subscribe(ctx, d.ID)
	switch {
	case err == nil:
		if s.m.deps.SchemaResult != nil {
			if changed := s.m.deps.SchemaResult.ChangedConfig(); changed != nil {
				d.Config = changed
			}
		}
		s.m.transitionTo(device.StateSchemaUpdated)
		return nil
	case errors.Is(err, device.ErrUpdateConfig),
		errors.Is(err, device.ErrDeviceNotFound),
		errors.Is(err, device.ErrDifferentDevice):
		return err
	default:
		if s.m.opts.StrictSchemaAck {
			return err
		}
		s.m.log.Warn("no schema acknowledgement, assuming accepted", "error", err)
		s.m.transitionTo(device.StateSchemaUpdated)
		return nil
	}
}

func (s *authenticatedState) publishData(context.Context) error {
	return device.ErrNotReady
}

// schemaUpdatedState has an acknowledged configuration; the first data
// publication promotes the device to Ready.
type schemaUpdatedState struct {
	m      *Machine
	common *commonOperations
}

func (s *schemaUpdatedState) register(context.Context) error {
	return device.ErrAlreadyRegistered
}

func (s *schemaUpdatedState) unregister(ctx context.Context) error {
	return s.common.unregister(ctx)
}

func (s *schemaUpdatedState) authenticate(context.Context) error {
	return device.ErrAlreadyAuthenticated
}

func (s *schemaUpdatedState) updateSchema(context.Context) error {
	return device.ErrAlreadyUpdatedSchema
}

func (s *schemaUpdatedState) publishData(ctx context.Context) error {
	s.m.transitionTo(device.StateReady)
	if len(s.m.dev.Data) == 0 {
		return nil
	}
	if err := s.m.states[device.StateReady].publishData(ctx); err != nil {
		return err
	}
	// Points buffered before the session was ready are flushed once; from
	// Ready onward the caller owns the buffer.
	s.m.dev.Data = nil
	return nil
}

// readyState streams telemetry.
type readyState struct {
	m      *Machine
	common *commonOperations
}

func (s *readyState) register(context.Context) error {
	return device.ErrAlreadyReady
}

func (s *readyState) unregister(ctx context.Context) error {
	return s.common.unregister(ctx)
}

func (s *readyState) authenticate(context.Context) error {
	return device.ErrAlreadyReady
}

func (s *readyState) updateSchema(context.Context) error {
	return device.ErrAlreadyReady
}

// publishData sends the buffered telemetry as a single message. The buffer
// is left untouched: replacing or clearing it between calls is the
// caller's business.
func (s *readyState) publishData(ctx context.Context) error {
	d := s.m.dev
	if len(d.Data) == 0 {
		return nil
	}
	body, err := wire.Encode(wire.PublishingData{ID: d.ID, Data: d.Data})
	if err != nil {
		return err
	}
	return s.m.deps.DataPublisher.Publish(ctx, body)
}
