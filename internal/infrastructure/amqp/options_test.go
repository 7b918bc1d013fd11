package amqp

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
)

func TestBackoff_DoublesToCap(t *testing.T) {
	b := newBackoff(4*time.Second, 10*time.Second)

	want := []time.Duration{4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for i, w := range want {
		if got := b.next(); got != w {
			t.Errorf("next() call %d = %v, want %v", i+1, got, w)
		}
	}
}

func TestBackoff_Defaults(t *testing.T) {
	b := newBackoff(0, 0)
	if got := b.next(); got != defaultInitialReconnectDelay {
		t.Errorf("next() = %v, want default %v", got, defaultInitialReconnectDelay)
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil",
			err:  nil,
			want: false,
		},
		{
			name: "channel closed sentinel",
			err:  amqp091.ErrClosed,
			want: true,
		},
		{
			name: "wrapped closed sentinel",
			err:  fmt.Errorf("publishing: %w", amqp091.ErrClosed),
			want: true,
		},
		{
			name: "connection forced by broker",
			err:  &amqp091.Error{Code: amqp091.ConnectionForced, Reason: "shutdown", Recover: false},
			want: true,
		},
		{
			name: "recoverable soft error",
			err:  &amqp091.Error{Code: amqp091.NotFound, Reason: "no queue", Recover: true},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("decode failure"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewConsumerTag_Unique(t *testing.T) {
	a, b := newConsumerTag(), newConsumerTag()
	if a == b {
		t.Errorf("consumer tags should be unique, got %q twice", a)
	}
	if !strings.HasPrefix(a, "knot-") {
		t.Errorf("consumer tag = %q, want knot- prefix", a)
	}
}

func TestQueueNames(t *testing.T) {
	const id = "1964a231a4d14173"

	tests := []struct {
		got  string
		want string
	}{
		{got: RegistrationQueue(id), want: "device_registered_1964a231a4d14173"},
		{got: UnregistrationQueue(id), want: "device_unregistered_1964a231a4d14173"},
		{got: AuthQueue(id), want: "device_auth_queue_1964a231a4d14173"},
		{got: SchemaQueue(id), want: "device_schema_1964a231a4d14173"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("queue name = %q, want %q", tt.got, tt.want)
		}
	}
}
