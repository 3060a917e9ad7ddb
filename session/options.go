package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/normen/obs-hui/gohui"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

const (
	// DefaultPresenceTimeout is the time without a ping after which the remote
	// end is considered gone.
	DefaultPresenceTimeout = 2 * time.Second
	// MinPresenceTimeout is the lowest accepted presence timeout, pings are
	// sent every second.
	MinPresenceTimeout = 1100 * time.Millisecond
	// DefaultPingInterval is the interval of host pings.
	DefaultPingInterval = time.Second
)

// Sender transmits one MIDI message to the remote end.
type Sender func(midi.Message) error

type bankOptions struct {
	id              uuid.UUID
	logger          *zap.Logger
	presenceTimeout time.Duration
	alwaysNotify    bool
	onEvent         func(gohui.Event)
	onPresence      func(bool)

	// used by Surface
	hook      func(*Bank, gohui.Event)
	intercept func(*Bank, midi.Message) bool
}

// Option configures a Bank.
type Option func(*bankOptions)

// WithID sets the identity of the bank, a random one is used otherwise.
func WithID(id uuid.UUID) Option {
	return func(o *bankOptions) {
		o.id = id
	}
}

// WithLogger sets the logger for decode diagnostics and send errors.
func WithLogger(l *zap.Logger) Option {
	return func(o *bankOptions) {
		o.logger = l
	}
}

// WithPresenceTimeout sets the time without pings after which the remote end
// is considered absent.
func WithPresenceTimeout(d time.Duration) Option {
	return func(o *bankOptions) {
		o.presenceTimeout = d
	}
}

// WithAlwaysNotify makes the bank call the event handler even when a received
// event did not change the state.
func WithAlwaysNotify(always bool) Option {
	return func(o *bankOptions) {
		o.alwaysNotify = always
	}
}

// WithEventHandler sets the handler for received events. It is called on the
// bank's goroutine and must not block.
func WithEventHandler(fn func(gohui.Event)) Option {
	return func(o *bankOptions) {
		o.onEvent = fn
	}
}

// WithPresenceHandler sets the handler called when the remote end appears or
// disappears.
func WithPresenceHandler(fn func(present bool)) Option {
	return func(o *bankOptions) {
		o.onPresence = fn
	}
}

func applyBankOptions(opts ...Option) bankOptions {
	o := bankOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	o.presenceTimeout = clampPresenceTimeout(o.presenceTimeout)
	return o
}

func clampPresenceTimeout(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultPresenceTimeout
	}
	return max(d, MinPresenceTimeout)
}

type hostOptions struct {
	logger       *zap.Logger
	pingInterval time.Duration
}

// HostOption configures a Host.
type HostOption func(*hostOptions)

// WithPingInterval changes the interval of the pings sent to every bank.
func WithPingInterval(d time.Duration) HostOption {
	return func(o *hostOptions) {
		o.pingInterval = d
	}
}

// WithHostLogger sets the logger of the host, banks added to the host inherit
// it unless they are given their own.
func WithHostLogger(l *zap.Logger) HostOption {
	return func(o *hostOptions) {
		o.logger = l
	}
}
