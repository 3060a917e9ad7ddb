// Package session runs HUI connections: a Bank owns the decoder, the state
// and the presence detection of one device, a Host drives any number of
// banks with its ping, a Surface plays the device end.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/normen/obs-hui/gohui"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

// ErrClosed is returned when transmitting on a closed bank.
var ErrClosed = errors.New("session: bank closed")

const inboxSize = 256

// Bank is one HUI connection. Received messages are processed on the bank's
// own goroutine, which is the only one touching the decoder and the state.
// Transmitting is safe from any goroutine, including the handlers.
type Bank struct {
	id     uuid.UUID
	role   gohui.Role
	send   Sender
	logger *zap.Logger
	opts   bankOptions

	inbox     chan func()
	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once

	// owned by run
	decoder    *gohui.Decoder
	state      *gohui.State
	timer      *time.Timer
	generation uint64
	timeout    time.Duration

	mu       sync.RWMutex
	snapshot gohui.State
	present  atomic.Bool

	// what was transmitted, largeKnown is false while the remote display
	// content is unknown
	sendMu     sync.Mutex
	sent       *gohui.State
	largeKnown bool
}

// NewBank starts a bank playing role, writing its messages to send.
func NewBank(role gohui.Role, send Sender, opts ...Option) *Bank {
	o := applyBankOptions(opts...)
	b := &Bank{
		id:      o.id,
		role:    role,
		send:    send,
		logger:  o.logger.With(zap.Stringer("bank", o.id), zap.Stringer("role", role)),
		opts:    o,
		inbox:   make(chan func(), inboxSize),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
		decoder: gohui.NewDecoder(role.Remote()),
		state:   gohui.NewState(),
		timeout: o.presenceTimeout,
		sent:    gohui.NewState(),
	}
	b.snapshot = *b.state
	go b.run()
	return b
}

func (b *Bank) ID() uuid.UUID {
	return b.id
}

func (b *Bank) Role() gohui.Role {
	return b.role
}

func (b *Bank) run() {
	defer close(b.exited)
	for {
		select {
		case fn := <-b.inbox:
			fn()
		case <-b.done:
			if b.timer != nil {
				b.timer.Stop()
			}
			return
		}
	}
}

// post hands fn to the bank goroutine. It reports false once the bank is
// closed.
func (b *Bank) post(fn func()) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.inbox <- fn:
		return true
	case <-b.done:
		return false
	}
}

func (b *Bank) closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// MIDIIn hands a message received from the remote end to the bank. It never
// blocks, the message is dropped when the inbox is full.
func (b *Bank) MIDIIn(m midi.Message) {
	m = append(midi.Message(nil), m...)
	select {
	case b.inbox <- func() { b.receive(m) }:
	case <-b.done:
	default:
		b.logger.Warn("inbox full, message dropped", hexField(m))
	}
}

func (b *Bank) receive(m midi.Message) {
	if b.opts.intercept != nil && b.opts.intercept(b, m) {
		return
	}
	events, err := b.decoder.Decode(m)
	if err != nil {
		b.logger.Debug("decode", hexField(m), zap.Error(err))
	}
	if len(events) == 0 {
		return
	}
	notify := make([]gohui.Event, 0, len(events))
	for _, ce := range events {
		switch ce.Kind {
		case gohui.CorePing:
			b.pinged()
		case gohui.CoreSystemReset:
			// the surface cleared its displays
			b.forgetDisplay()
		}
		ev, changed := b.state.Apply(ce)
		if ev == nil {
			b.logger.Debug("event out of range", zap.Stringer("event", ce))
			continue
		}
		if u, ok := ev.(gohui.UnhandledSwitchEvent); ok {
			b.logger.Debug("unhandled switch", zap.Stringer("event", u))
		}
		if b.opts.hook != nil {
			b.opts.hook(b, ev)
		}
		if changed || b.opts.alwaysNotify {
			notify = append(notify, ev)
		}
	}
	b.publish()
	if b.opts.onEvent == nil {
		return
	}
	for _, ev := range notify {
		b.opts.onEvent(ev)
	}
}

func (b *Bank) publish() {
	b.mu.Lock()
	b.snapshot = *b.state
	b.mu.Unlock()
}

func (b *Bank) pinged() {
	b.restartTimer()
	b.setPresent(true)
}

// restartTimer arms the presence timer. An expiry only counts if no ping
// arrived since the timer was armed.
func (b *Bank) restartTimer() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.generation++
	gen := b.generation
	b.timer = time.AfterFunc(b.timeout, func() {
		b.post(func() { b.expired(gen) })
	})
}

func (b *Bank) expired(gen uint64) {
	if gen != b.generation {
		return
	}
	b.setPresent(false)
}

func (b *Bank) setPresent(present bool) {
	if b.present.Swap(present) == present {
		return
	}
	b.logger.Info("remote presence changed", zap.Bool("present", present))
	if present {
		b.forgetDisplay()
	}
	if b.opts.onPresence != nil {
		b.opts.onPresence(present)
	}
}

// forgetDisplay makes the next large display transmit send both rows.
func (b *Bank) forgetDisplay() {
	b.sendMu.Lock()
	b.largeKnown = false
	b.sendMu.Unlock()
}

// IsRemotePresent reports whether pings from the remote end arrive in time.
func (b *Bank) IsRemotePresent() bool {
	return b.present.Load()
}

// SetPresenceTimeout changes the presence timeout, values below
// MinPresenceTimeout are raised to it.
func (b *Bank) SetPresenceTimeout(d time.Duration) {
	d = clampPresenceTimeout(d)
	b.post(func() {
		b.timeout = d
		if b.present.Load() {
			b.restartTimer()
		}
	})
}

// State returns a snapshot of the state as received from the remote end.
func (b *Bank) State() gohui.State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot
}

// Transmit encodes ev for the remote end and sends it. Large display events
// only send the slices that differ from the last transmitted display.
func (b *Bank) Transmit(ev gohui.Event) error {
	if b.closed() {
		return ErrClosed
	}
	msgs, err := gohui.Encode(ev, b.role.Remote())
	if err != nil {
		return err
	}

	b.sendMu.Lock()
	defer b.sendMu.Unlock()

	ld, isLarge := ev.(gohui.LargeDisplayEvent)
	if isLarge && b.largeKnown {
		next := [2]gohui.LargeRow{ld.Top, ld.Bottom}
		msgs = gohui.EncodeLargeSlices(gohui.ChangedLargeSlices(b.sent.LargeDisplay, next))
	}
	if err := b.sendLocked(msgs); err != nil {
		if isLarge {
			b.largeKnown = false
		}
		return err
	}
	if ce, ok := gohui.Core(ev); ok {
		b.sent.Apply(ce)
	}
	if isLarge {
		b.largeKnown = true
	}
	return nil
}

// Transmitted returns the state as sent to the remote end.
func (b *Bank) Transmitted() gohui.State {
	b.sendMu.Lock()
	defer b.sendMu.Unlock()
	return *b.sent
}

func (b *Bank) sendRaw(msgs ...midi.Message) error {
	if b.closed() {
		return ErrClosed
	}
	b.sendMu.Lock()
	defer b.sendMu.Unlock()
	return b.sendLocked(msgs)
}

func (b *Bank) sendLocked(msgs []midi.Message) error {
	for _, m := range msgs {
		if err := b.send(m); err != nil {
			b.logger.Warn("send failed", hexField(m), zap.Error(err))
			return fmt.Errorf("send % X: %w", []byte(m), err)
		}
	}
	return nil
}

// Reset returns the decoder, the received and the transmitted state to their
// initial values. Handlers are kept.
func (b *Bank) Reset() {
	b.post(func() {
		b.decoder.Reset()
		b.state = gohui.NewState()
		b.publish()
	})
	b.sendMu.Lock()
	b.sent = gohui.NewState()
	b.largeKnown = false
	b.sendMu.Unlock()
}

// Close stops the bank and waits for its goroutine to finish, so it must not
// be called from a handler. It is safe to call more than once.
func (b *Bank) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	<-b.exited
	return nil
}

func hexField(m midi.Message) zap.Field {
	return zap.String("msg", fmt.Sprintf("% X", []byte(m)))
}
