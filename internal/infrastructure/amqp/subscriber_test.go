package amqp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/logging"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

type fakeAcknowledger struct {
	acks     int
	nacks    int
	requeued bool
}

func (f *fakeAcknowledger) Ack(bool) error {
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(_, requeue bool) error {
	f.nacks++
	f.requeued = requeue
	return nil
}

type fakeCanceller struct {
	cancels int
}

func (f *fakeCanceller) Cancel(string, bool) error {
	f.cancels++
	return nil
}

// classifyCallback returns a fixed classification regardless of the body.
type classifyCallback struct {
	err error
}

func (c *classifyCallback) Handle([]byte, string) error {
	return c.err
}

func TestHandleAcknowledgmentPolicy(t *testing.T) {
	tests := []struct {
		name         string
		classify     error
		wantDone     bool
		wantErr      error
		wantAcks     int
		wantNacks    int
		wantRequeued bool
		wantCancels  int
	}{
		{
			name:        "success acks and cancels",
			classify:    nil,
			wantDone:    true,
			wantAcks:    1,
			wantCancels: 1,
		},
		{
			name:         "different device rejects without requeue",
			classify:     device.ErrDifferentDevice,
			wantDone:     true,
			wantErr:      device.ErrDifferentDevice,
			wantNacks:    1,
			wantRequeued: false,
			wantCancels:  1,
		},
		{
			name:        "terminal failure acks and surfaces",
			classify:    fmt.Errorf("%w: thing is already registered", device.ErrAlreadyRegistered),
			wantDone:    true,
			wantErr:     device.ErrAlreadyRegistered,
			wantAcks:    1,
			wantCancels: 1,
		},
		{
			name:        "unauthorized acks and surfaces",
			classify:    fmt.Errorf("%w: unauthorized to authenticate thing", device.ErrUnauthorized),
			wantDone:    true,
			wantErr:     device.ErrUnauthorized,
			wantAcks:    1,
			wantCancels: 1,
		},
		{
			name:         "transient failure requeues and keeps consuming",
			classify:     errors.New("unexpected end of JSON input"),
			wantDone:     false,
			wantNacks:    1,
			wantRequeued: true,
			wantCancels:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := NewSubscriber(nil, &classifyCallback{err: tt.classify}, SubscriberOptions{
				Queue:      RegistrationQueue(testDeviceID),
				RoutingKey: KeyRegisteredDevice,
			}, logging.Default())
			ack := &fakeAcknowledger{}
			canceller := &fakeCanceller{}

			done, err := sub.handle(canceller, "consumer-tag", ack, []byte(`{}`), testDeviceID)

			if done != tt.wantDone {
				t.Errorf("done = %v, want %v", done, tt.wantDone)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("error = %v, want nil", err)
			}
			if ack.acks != tt.wantAcks {
				t.Errorf("acks = %d, want %d", ack.acks, tt.wantAcks)
			}
			if ack.nacks != tt.wantNacks {
				t.Errorf("nacks = %d, want %d", ack.nacks, tt.wantNacks)
			}
			if ack.nacks > 0 && ack.requeued != tt.wantRequeued {
				t.Errorf("requeued = %v, want %v", ack.requeued, tt.wantRequeued)
			}
			if canceller.cancels != tt.wantCancels {
				t.Errorf("cancels = %d, want %d", canceller.cancels, tt.wantCancels)
			}
		})
	}
}
