package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/logging"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// defaultPollInterval is the pause between session choreography attempts.
const defaultPollInterval = time.Second

// state is the per-session-state handler contract. Each handler performs
// the operation's protocol exchange when it is legal in that state, or
// rejects it with a sentinel error from the device package.
type state interface {
	register(ctx context.Context) error
	unregister(ctx context.Context) error
	authenticate(ctx context.Context) error
	updateSchema(ctx context.Context) error
	publishData(ctx context.Context) error
}

// Machine drives one device through the KNoT session states, dispatching
// each protocol operation to the handler for the device's current state.
type Machine struct {
	mu     sync.Mutex
	dev    *device.Device
	states map[device.State]state
	deps   Dependencies
	opts   Options
	log    *logging.Logger
}

// New builds a machine for the given device. The device is owned by the
// machine from this point on; read it back through Device.
func New(dev *device.Device, deps Dependencies, opts Options, log *logging.Logger) *Machine {
	if log == nil {
		log = logging.Default()
	}
	m := &Machine{
		dev:  dev,
		deps: deps,
		opts: opts,
		log:  log.With("device_id", dev.ID),
	}
	common := &commonOperations{m: m}
	m.states = map[device.State]state{
		device.StateDisconnected:  &disconnectedState{common: common},
		device.StateRegistered:    &registeredState{common: common},
		device.StateUnregistered:  &unregisteredState{common: common},
		device.StateAuthenticated: &authenticatedState{m: m, common: common},
		device.StateSchemaUpdated: &schemaUpdatedState{m: m, common: common},
		device.StateReady:         &readyState{m: m, common: common},
	}
	if _, ok := m.states[dev.State]; !ok {
		dev.State = device.StateDisconnected
	}
	return m
}

// State reports the device's current session state.
func (m *Machine) State() device.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dev.State
}

// Device returns a snapshot of the device entity, suitable for persisting.
func (m *Machine) Device() device.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := *m.dev
	snap.Config = append([]device.SensorConfiguration(nil), m.dev.Config...)
	snap.Data = append([]device.DataPoint(nil), m.dev.Data...)
	return snap
}

// SetData replaces the device's buffered telemetry. The buffer is flushed
// by the next PublishData call.
func (m *Machine) SetData(data []device.DataPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dev.Data = data
}

// Register performs the registration exchange for the current state.
func (m *Machine) Register(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current().register(ctx)
}

// Unregister performs the unregistration exchange for the current state.
func (m *Machine) Unregister(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current().unregister(ctx)
}

// Authenticate performs the authentication exchange for the current state.
func (m *Machine) Authenticate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current().authenticate(ctx)
}

// UpdateSchema submits the device's sensor configuration for the current
// state.
func (m *Machine) UpdateSchema(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current().updateSchema(ctx)
}

// PublishData publishes the device's buffered telemetry for the current
// state. In SchemaUpdated the device first advances to Ready and the
// startup buffer is flushed once; in Ready the buffer is published as-is
// and left for the caller to replace.
func (m *Machine) PublishData(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current().publishData(ctx)
}

// Start runs the session choreography until the device reaches Ready or
// the context is cancelled. Individual attempt failures are logged and
// retried on the next tick.
func (m *Machine) Start(ctx context.Context) error {
	interval := m.opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if m.State() == device.StateReady {
			m.log.Info("device session ready")
			return nil
		}
		m.step(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop cancels any reply consumer the machine still holds open. Safe to
// call at any time, including concurrently with Start.
func (m *Machine) Stop() {
	for _, sub := range []Subscriber{
		m.deps.RegisterSubscriber,
		m.deps.UnregisterSubscriber,
		m.deps.AuthSubscriber,
		m.deps.SchemaSubscriber,
	} {
		if sub != nil {
			_ = sub.Unsubscribe()
		}
	}
}

func (m *Machine) step(ctx context.Context) {
	var err error
	switch st := m.State(); st {
	case device.StateDisconnected, device.StateUnregistered:
		if err = m.Register(ctx); err != nil {
			m.log.Warn("registration attempt failed", "error", err)
		}
	case device.StateRegistered:
		if err = m.Authenticate(ctx); err != nil {
			m.log.Warn("authentication attempt failed", "error", err)
		}
	case device.StateAuthenticated:
		if err = m.UpdateSchema(ctx); err != nil {
			m.log.Warn("schema update attempt failed", "error", err)
		}
	case device.StateSchemaUpdated:
		if err = m.PublishData(ctx); err != nil {
			m.log.Warn("data publish attempt failed", "error", err)
		}
	}
	m.recordError(err)
}

// recordError mirrors the last attempt outcome onto the entity's
// informational error field.
func (m *Machine) recordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil || errors.Is(err, context.Canceled) {
		m.dev.Error = ""
		return
	}
	m.dev.Error = err.Error()
}

// current returns the handler for the device's state. Callers hold mu.
func (m *Machine) current() state {
	return m.states[m.dev.State]
}

// transitionTo moves the device to the given state. Callers hold mu.
func (m *Machine) transitionTo(next device.State) {
	if m.dev.State == next {
		return
	}
	m.log.Info("device state transition", "from", string(m.dev.State), "to", string(next))
	m.dev.State = next
}
