package session

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/normen/obs-hui/gohui"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap/zaptest"
)

type recorder struct {
	mu   sync.Mutex
	msgs []midi.Message
	err  error
}

func (r *recorder) send(m midi.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, append(midi.Message(nil), m...))
	return nil
}

func (r *recorder) messages() []midi.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]midi.Message(nil), r.msgs...)
}

func (r *recorder) count(want midi.Message) int {
	n := 0
	for _, m := range r.messages() {
		if bytes.Equal(m, want) {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.msgs = nil
	r.mu.Unlock()
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v", timeout)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func nextEvent(t *testing.T, events <-chan gohui.Event) gohui.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
	return nil
}

var (
	pingFromSurface = midi.Message{0x90, 0x00, 0x7F}
	pingFromHost    = midi.Message{0x90, 0x00, 0x00}
)

func TestBankEvents(t *testing.T) {
	events := make(chan gohui.Event, 16)
	b := NewBank(gohui.RoleHost, (&recorder{}).send,
		WithLogger(zaptest.NewLogger(t)),
		WithEventHandler(func(ev gohui.Event) { events <- ev }))
	defer b.Close()

	b.MIDIIn(midi.ControlChange(0, 0x0F, 0x0E))
	b.MIDIIn(midi.ControlChange(0, 0x2F, 0x44))
	want := gohui.SwitchEvent{Switch: gohui.TransportPlay, State: true}
	if ev := nextEvent(t, events); ev != want {
		t.Fatalf("got %v; want %v", ev, want)
	}
	if st := b.State(); !st.Switch(gohui.TransportPlay) {
		t.Fatalf("state not updated before the handler ran")
	}

	// the same state again is not reported
	b.MIDIIn(midi.ControlChange(0, 0x0F, 0x0E))
	b.MIDIIn(midi.ControlChange(0, 0x2F, 0x44))
	b.MIDIIn(midi.ControlChange(0, 0x01, 0x10))
	b.MIDIIn(midi.ControlChange(0, 0x21, 0x00))
	if ev := nextEvent(t, events); ev != (gohui.FaderLevelEvent{Channel: 1, Level: 0x10 << 7}) {
		t.Fatalf("expected the fader event, got %v", ev)
	}
}

func TestBankAlwaysNotify(t *testing.T) {
	events := make(chan gohui.Event, 16)
	b := NewBank(gohui.RoleHost, (&recorder{}).send,
		WithLogger(zaptest.NewLogger(t)),
		WithAlwaysNotify(true),
		WithEventHandler(func(ev gohui.Event) { events <- ev }))
	defer b.Close()

	for i := 0; i < 2; i++ {
		b.MIDIIn(midi.ControlChange(0, 0x0F, 0x03))
		b.MIDIIn(midi.ControlChange(0, 0x2F, 0x42))
	}
	want := gohui.SwitchEvent{Switch: gohui.StripSwitch{Channel: 3, Param: gohui.StripMute}, State: true}
	for i := 0; i < 2; i++ {
		if ev := nextEvent(t, events); ev != want {
			t.Fatalf("got %v; want %v", ev, want)
		}
	}
}

func TestBankPresence(t *testing.T) {
	var mu sync.Mutex
	var changes []bool
	b := NewBank(gohui.RoleHost, (&recorder{}).send,
		WithLogger(zaptest.NewLogger(t)),
		WithPresenceTimeout(1500*time.Millisecond),
		WithPresenceHandler(func(p bool) {
			mu.Lock()
			changes = append(changes, p)
			mu.Unlock()
		}))
	defer b.Close()
	seen := func() []bool {
		mu.Lock()
		defer mu.Unlock()
		return append([]bool(nil), changes...)
	}

	if b.IsRemotePresent() {
		t.Fatalf("present before any ping")
	}
	b.MIDIIn(pingFromSurface)
	waitFor(t, time.Second, b.IsRemotePresent)

	// pings within the timeout keep the remote present
	for i := 0; i < 4; i++ {
		time.Sleep(500 * time.Millisecond)
		b.MIDIIn(pingFromSurface)
	}
	if got := seen(); len(got) != 1 || !got[0] {
		t.Fatalf("expected a single change to present, got %v", got)
	}

	start := time.Now()
	waitFor(t, 3*time.Second, func() bool { return !b.IsRemotePresent() })
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Fatalf("presence lost after %v", elapsed)
	}
	time.Sleep(200 * time.Millisecond)
	if got := seen(); len(got) != 2 || got[1] {
		t.Fatalf("expected present then absent, got %v", got)
	}

	b.MIDIIn(pingFromSurface)
	waitFor(t, time.Second, b.IsRemotePresent)
	if got := seen(); len(got) != 3 || !got[2] {
		t.Fatalf("expected presence to return, got %v", got)
	}
}

func TestPresenceTimeoutClamp(t *testing.T) {
	cases := map[time.Duration]time.Duration{
		0:                      DefaultPresenceTimeout,
		100 * time.Millisecond: MinPresenceTimeout,
		5 * time.Second:        5 * time.Second,
	}
	for in, want := range cases {
		if got := clampPresenceTimeout(in); got != want {
			t.Fatalf("clampPresenceTimeout(%v) = %v; want %v", in, got, want)
		}
	}
}

func TestBankTransmit(t *testing.T) {
	rec := &recorder{}
	b := NewBank(gohui.RoleHost, rec.send, WithLogger(zaptest.NewLogger(t)))

	if err := b.Transmit(gohui.SwitchEvent{Switch: gohui.TransportRecord, State: true}); err != nil {
		t.Fatal(err)
	}
	want := []midi.Message{{0xB0, 0x0C, 0x0E}, {0xB0, 0x2C, 0x45}}
	got := rec.messages()
	if len(got) != 2 || !bytes.Equal(got[0], want[0]) || !bytes.Equal(got[1], want[1]) {
		t.Fatalf("got % X; want % X", got, want)
	}

	if err := b.Transmit(gohui.VPotDeltaEvent{Pot: 1, Delta: 1}); !errors.Is(err, gohui.ErrWrongDirection) {
		t.Fatalf("expected ErrWrongDirection, got %v", err)
	}

	rec.err = errors.New("port gone")
	if err := b.Transmit(gohui.PingEvent{}); err == nil {
		t.Fatalf("expected the send error")
	}
	rec.err = nil

	b.Close()
	if err := b.Transmit(gohui.PingEvent{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestBankTransmitLargeDisplay(t *testing.T) {
	rec := &recorder{}
	b := NewBank(gohui.RoleHost, rec.send, WithLogger(zaptest.NewLogger(t)))
	defer b.Close()

	ev := gohui.LargeDisplayEvent{Top: gohui.NewLargeRow("Scene"), Bottom: gohui.NewLargeRow("Live")}
	if err := b.Transmit(ev); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.messages()); n != 2 {
		t.Fatalf("expected both rows, got %d messages", n)
	}

	rec.reset()
	ev.Bottom = gohui.NewLargeRow("Live" + "                          " + "rec")
	if err := b.Transmit(ev); err != nil {
		t.Fatal(err)
	}
	got := rec.messages()
	if len(got) != 1 || got[0][7] != 7 {
		t.Fatalf("expected slice 7 only, got % X", got)
	}

	rec.reset()
	if err := b.Transmit(ev); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.messages()); n != 0 {
		t.Fatalf("unchanged display sent %d messages", n)
	}

	// after a reset the whole display is sent again
	b.Reset()
	if err := b.Transmit(ev); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.messages()); n != 2 {
		t.Fatalf("expected both rows after reset, got %d messages", n)
	}
}

func TestBankLargeDisplayAfterSurfaceReset(t *testing.T) {
	rec := &recorder{}
	b := NewBank(gohui.RoleHost, rec.send, WithLogger(zaptest.NewLogger(t)))
	defer b.Close()

	ev := gohui.LargeDisplayEvent{Top: gohui.NewLargeRow("Scene"), Bottom: gohui.NewLargeRow("-6.0")}
	if err := b.Transmit(ev); err != nil {
		t.Fatal(err)
	}
	b.MIDIIn(pingFromSurface)
	waitFor(t, time.Second, b.IsRemotePresent)

	// the surface power cycles while the ports stay open
	b.MIDIIn(gohui.SystemResetMessage())
	b.MIDIIn(pingFromSurface)
	waitFor(t, time.Second, func() bool {
		rec.reset()
		if err := b.Transmit(ev); err != nil {
			t.Fatal(err)
		}
		return len(rec.messages()) == 2
	})

	rec.reset()
	if err := b.Transmit(ev); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.messages()); n != 0 {
		t.Fatalf("unchanged display sent %d messages", n)
	}
}

func TestBankLargeDisplayWhenPresenceReturns(t *testing.T) {
	rec := &recorder{}
	presence := make(chan bool, 4)
	b := NewBank(gohui.RoleHost, rec.send,
		WithLogger(zaptest.NewLogger(t)),
		WithPresenceTimeout(MinPresenceTimeout),
		WithPresenceHandler(func(p bool) { presence <- p }))
	defer b.Close()
	expect := func(want bool) {
		t.Helper()
		select {
		case p := <-presence:
			if p != want {
				t.Fatalf("presence = %t; want %t", p, want)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("no presence change")
		}
	}

	b.MIDIIn(pingFromSurface)
	expect(true)
	ev := gohui.LargeDisplayEvent{Top: gohui.NewLargeRow("Scene"), Bottom: gohui.NewLargeRow("Live")}
	if err := b.Transmit(ev); err != nil {
		t.Fatal(err)
	}
	expect(false)

	// the display is resent from the presence handler in the application,
	// so it must be forgotten before the handler runs
	b.MIDIIn(pingFromSurface)
	expect(true)
	rec.reset()
	if err := b.Transmit(ev); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.messages()); n != 2 {
		t.Fatalf("expected both rows after presence returned, got %d messages", n)
	}
}

func TestBankTransmitted(t *testing.T) {
	rec := &recorder{}
	b := NewBank(gohui.RoleHost, rec.send, WithLogger(zaptest.NewLogger(t)))
	defer b.Close()

	if err := b.Transmit(gohui.FaderLevelEvent{Channel: 4, Level: 1000}); err != nil {
		t.Fatal(err)
	}
	if err := b.Transmit(gohui.SwitchEvent{Switch: gohui.TransportPlay, State: true}); err != nil {
		t.Fatal(err)
	}
	st := b.Transmitted()
	if st.Strips[4].Fader != 1000 || !st.Switch(gohui.TransportPlay) {
		t.Fatalf("transmitted state not tracked: %+v", st.Strips[4])
	}

	rec.err = errors.New("port gone")
	if err := b.Transmit(gohui.FaderLevelEvent{Channel: 4, Level: 2000}); err == nil {
		t.Fatalf("expected the send error")
	}
	if st := b.Transmitted(); st.Strips[4].Fader != 1000 {
		t.Fatalf("failed transmit was tracked")
	}
	rec.err = nil

	b.Reset()
	if st := b.Transmitted(); st.Strips[4].Fader != 0 || st.Switch(gohui.TransportPlay) {
		t.Fatalf("transmitted state kept after reset")
	}
}

func TestBankMIDIInFullInbox(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	b := NewBank(gohui.RoleHost, (&recorder{}).send,
		WithLogger(zaptest.NewLogger(t)),
		WithAlwaysNotify(true),
		WithEventHandler(func(gohui.Event) { <-release }))
	defer b.Close()
	defer once.Do(func() { close(release) })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2*inboxSize; i++ {
			b.MIDIIn(pingFromSurface)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("MIDIIn blocked on a full inbox")
	}
	once.Do(func() { close(release) })
}

func TestBankReset(t *testing.T) {
	events := make(chan gohui.Event, 16)
	b := NewBank(gohui.RoleHost, (&recorder{}).send,
		WithLogger(zaptest.NewLogger(t)),
		WithEventHandler(func(ev gohui.Event) { events <- ev }))
	defer b.Close()

	b.MIDIIn(midi.ControlChange(0, 0x0F, 0x08))
	b.MIDIIn(midi.ControlChange(0, 0x2F, 0x41))
	nextEvent(t, events)
	if st := b.State(); !st.HotKeys[gohui.HotKeyShift] {
		t.Fatalf("shift not set")
	}
	b.Reset()
	waitFor(t, time.Second, func() bool {
		st := b.State()
		return !st.HotKeys[gohui.HotKeyShift]
	})
}

func TestHost(t *testing.T) {
	h := NewHost(WithPingInterval(20*time.Millisecond), WithHostLogger(zaptest.NewLogger(t)))
	defer h.Close()

	r1, r2 := &recorder{}, &recorder{}
	id := uuid.New()
	b1 := h.AddBank(r1.send, WithID(id))
	b2 := h.AddBank(r2.send)

	if b1.ID() != id {
		t.Fatalf("bank id not taken from option")
	}
	if banks := h.Banks(); len(banks) != 2 || banks[0] != b1 || banks[1] != b2 {
		t.Fatalf("unexpected banks %v", banks)
	}
	if b, ok := h.Bank(id); !ok || b != b1 {
		t.Fatalf("Bank(%v) = %v, %t", id, b, ok)
	}

	waitFor(t, time.Second, func() bool {
		return r1.count(pingFromHost) >= 2 && r2.count(pingFromHost) >= 2
	})

	if !h.RemoveBank(id) {
		t.Fatalf("RemoveBank returned false")
	}
	if h.RemoveBank(id) {
		t.Fatalf("second RemoveBank returned true")
	}
	if len(h.Banks()) != 1 {
		t.Fatalf("expected one bank left")
	}
	time.Sleep(50 * time.Millisecond)
	n := r1.count(pingFromHost)
	time.Sleep(100 * time.Millisecond)
	if r1.count(pingFromHost) != n {
		t.Fatalf("removed bank still pinged")
	}
}

func TestSurface(t *testing.T) {
	rec := &recorder{}
	presence := make(chan bool, 4)
	s := NewSurface(rec.send,
		WithLogger(zaptest.NewLogger(t)),
		WithPresenceHandler(func(p bool) { presence <- p }))

	reset := gohui.SystemResetMessage()
	if got := rec.messages(); len(got) != 1 || !bytes.Equal(got[0], reset) {
		t.Fatalf("expected a system reset first, got % X", got)
	}

	s.MIDIIn(pingFromHost)
	waitFor(t, time.Second, func() bool { return rec.count(pingFromSurface) == 1 })
	select {
	case p := <-presence:
		if !p {
			t.Fatalf("expected host present")
		}
	case <-time.After(time.Second):
		t.Fatalf("no presence change")
	}

	s.MIDIIn(midi.Message{0xF0, 0x7E, 0x7F, 0x06, 0x01, 0xF7})
	waitFor(t, time.Second, func() bool { return rec.count(identityReply) == 1 })

	if err := s.Transmit(gohui.FaderTouch(2, true)); err != nil {
		t.Fatal(err)
	}
	if err := s.Transmit(gohui.JogWheelEvent{Delta: 2}); err != nil {
		t.Fatal(err)
	}

	s.Close()
	s.Close()
	if n := rec.count(reset); n != 2 {
		t.Fatalf("expected two system resets, got %d", n)
	}
	got := rec.messages()
	if !bytes.Equal(got[len(got)-1], reset) {
		t.Fatalf("expected a system reset last, got % X", got[len(got)-1])
	}
}

func TestIsDeviceInquiry(t *testing.T) {
	cases := map[string]bool{
		string([]byte{0xF0, 0x7E, 0x00, 0x06, 0x01, 0xF7}): true,
		string([]byte{0xF0, 0x7E, 0x7F, 0x06, 0x01, 0xF7}): true,
		string([]byte{0xF0, 0x7E, 0x10, 0x06, 0x01, 0xF7}): false,
		string([]byte{0xF0, 0x7E, 0x00, 0x06, 0x02, 0xF7}): false,
		string([]byte{0xF0, 0x00, 0x00, 0x66, 0x05, 0xF7}): false,
	}
	for in, want := range cases {
		if got := isDeviceInquiry(midi.Message(in)); got != want {
			t.Fatalf("isDeviceInquiry(% X) = %t; want %t", in, got, want)
		}
	}
}
