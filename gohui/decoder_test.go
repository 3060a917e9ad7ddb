package gohui

import (
	"bytes"
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func decodeOne(t *testing.T, d *Decoder, m midi.Message) CoreEvent {
	t.Helper()
	events, err := d.Decode(m)
	if err != nil {
		t.Fatalf("Decode(% X): %v", []byte(m), err)
	}
	if len(events) != 1 {
		t.Fatalf("Decode(% X): expected one event, got %v", []byte(m), events)
	}
	return events[0]
}

func decodeNone(t *testing.T, d *Decoder, m midi.Message) {
	t.Helper()
	events, err := d.Decode(m)
	if err != nil || len(events) != 0 {
		t.Fatalf("Decode(% X) = %v, %v; expected nothing", []byte(m), events, err)
	}
}

func TestDecodePing(t *testing.T) {
	fromHost := NewDecoder(RoleHost)
	fromSurface := NewDecoder(RoleSurface)

	if e := decodeOne(t, fromHost, midi.Message{0x90, 0x00, 0x00}); e.Kind != CorePing {
		t.Fatalf("expected ping, got %v", e)
	}
	if e := decodeOne(t, fromSurface, midi.Message{0x90, 0x00, 0x7F}); e.Kind != CorePing {
		t.Fatalf("expected ping, got %v", e)
	}
	if e := decodeOne(t, fromSurface, midi.Message{0x80, 0x00, 0x40}); e.Kind != CorePing {
		t.Fatalf("expected ping from note off, got %v", e)
	}
	if _, err := fromHost.Decode(midi.Message{0x90, 0x00, 0x7F}); !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized for host ping with velocity 0x7F, got %v", err)
	}
	if _, err := fromHost.Decode(midi.Message{0x90, 0x3C, 0x7F}); !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized for note 0x3C, got %v", err)
	}
}

func TestDecodeSystemReset(t *testing.T) {
	if e := decodeOne(t, NewDecoder(RoleSurface), midi.Message{0xFF}); e.Kind != CoreSystemReset {
		t.Fatalf("expected system reset, got %v", e)
	}
	if _, err := NewDecoder(RoleHost).Decode(midi.Message{0xFF}); !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized, got %v", err)
	}
}

func TestDecodeFader(t *testing.T) {
	d := NewDecoder(RoleHost)
	decodeNone(t, d, midi.ControlChange(0, 0x03, 0x40))
	e := decodeOne(t, d, midi.ControlChange(0, 0x23, 0x00))
	if e.Kind != CoreFaderLevel || e.Channel != 3 || e.Level != 8192 {
		t.Fatalf("expected fader ch3 at 8192, got %v", e)
	}

	// the MSB is kept per channel
	e = decodeOne(t, d, midi.ControlChange(0, 0x23, 0x01))
	if e.Level != 8193 {
		t.Fatalf("expected 8193, got %d", e.Level)
	}
	e = decodeOne(t, d, midi.ControlChange(0, 0x24, 0x7F))
	if e.Channel != 4 || e.Level != 0x7F {
		t.Fatalf("expected ch4 at 127, got %v", e)
	}
}

func TestDecodeSwitch(t *testing.T) {
	d := NewDecoder(RoleSurface)
	decodeNone(t, d, midi.ControlChange(0, 0x0F, 0x0E))
	e := decodeOne(t, d, midi.ControlChange(0, 0x2F, 0x44))
	if e.Kind != CoreSwitch || e.Address != (Address{0x0E, 0x4}) || !e.State {
		t.Fatalf("expected zone 0x0E port 4 on, got %v", e)
	}

	decodeNone(t, d, midi.ControlChange(0, 0x0F, 0x03))
	e = decodeOne(t, d, midi.ControlChange(0, 0x2F, 0x02))
	if e.Address != (Address{0x03, 0x2}) || e.State {
		t.Fatalf("expected channel 3 mute off, got %v", e)
	}
}

func TestDecodeSwitchDesync(t *testing.T) {
	d := NewDecoder(RoleHost)

	if _, err := d.Decode(midi.ControlChange(0, 0x2C, 0x44)); !errors.Is(err, ErrDesync) {
		t.Fatalf("expected ErrDesync for port without zone, got %v", err)
	}

	// the decoder recovers with the next complete pair
	decodeNone(t, d, midi.ControlChange(0, 0x0C, 0x0E))
	e := decodeOne(t, d, midi.ControlChange(0, 0x2C, 0x45))
	if e.Address != (Address{0x0E, 0x5}) || !e.State {
		t.Fatalf("expected record on, got %v", e)
	}

	decodeNone(t, d, midi.ControlChange(0, 0x0C, 0x0E))
	if _, err := d.Decode(midi.ControlChange(0, 0x2C, 0x14)); !errors.Is(err, ErrDesync) {
		t.Fatalf("expected ErrDesync for state nibble 1, got %v", err)
	}
	// the zone was consumed by the bad port
	if _, err := d.Decode(midi.ControlChange(0, 0x2C, 0x44)); !errors.Is(err, ErrDesync) {
		t.Fatalf("expected ErrDesync after consumed zone, got %v", err)
	}
}

func TestDecodeZoneOverwrite(t *testing.T) {
	d := NewDecoder(RoleSurface)
	decodeNone(t, d, midi.ControlChange(0, 0x0F, 0x08))
	if _, err := d.Decode(midi.ControlChange(0, 0x0F, 0x0A)); !errors.Is(err, ErrOverwrite) {
		t.Fatalf("expected ErrOverwrite, got %v", err)
	}
	e := decodeOne(t, d, midi.ControlChange(0, 0x2F, 0x43))
	if e.Address != (Address{0x0A, 0x3}) {
		t.Fatalf("expected the last zone to win, got %v", e)
	}
}

func TestDecodePortIgnored(t *testing.T) {
	d := NewDecoder(RoleHost)
	decodeNone(t, d, midi.ControlChange(0, 0x0C, 0x17))
	decodeNone(t, d, midi.ControlChange(0, 0x2C, 0x23))
	if _, err := d.Decode(midi.ControlChange(0, 0x2C, 0x43)); !errors.Is(err, ErrDesync) {
		t.Fatalf("expected the ignored port to consume the zone, got %v", err)
	}
}

func TestDecodeLevelMeter(t *testing.T) {
	d := NewDecoder(RoleHost)
	e := decodeOne(t, d, midi.PolyAfterTouch(0, 2, 0x1A))
	if e.Kind != CoreLevelMeter || e.Channel != 2 || e.Side != SideRight || e.Level != 0xA {
		t.Fatalf("expected ch2 right at 10, got %v", e)
	}
	e = decodeOne(t, d, midi.PolyAfterTouch(0, 7, 0x0C))
	if e.Side != SideLeft || e.Level != 0xC {
		t.Fatalf("expected ch7 left at 12, got %v", e)
	}
	if _, err := d.Decode(midi.PolyAfterTouch(0, 8, 0x01)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for channel 8, got %v", err)
	}
}

func TestDecodeVPot(t *testing.T) {
	e := decodeOne(t, NewDecoder(RoleSurface), midi.ControlChange(0, 0x42, 0x45))
	if e.Kind != CoreVPotDelta || e.Pot != 2 || e.Delta != 5 {
		t.Fatalf("expected pot 2 +5, got %v", e)
	}
	e = decodeOne(t, NewDecoder(RoleSurface), midi.ControlChange(0, 0x4C, 0x03))
	if e.Pot != VPotEditScroll || e.Delta != -3 {
		t.Fatalf("expected edit scroll -3, got %v", e)
	}
	e = decodeOne(t, NewDecoder(RoleHost), midi.ControlChange(0, 0x11, 0x56))
	if e.Kind != CoreVPotDisplay || e.Pot != 1 || e.Display != 0x56 {
		t.Fatalf("expected pot 1 display 0x56, got %v", e)
	}
}

func TestDecodeJogWheel(t *testing.T) {
	e := decodeOne(t, NewDecoder(RoleSurface), midi.ControlChange(0, 0x0D, 0x43))
	if e.Kind != CoreJogWheel || e.Delta != 3 {
		t.Fatalf("expected jog +3, got %v", e)
	}
	if _, err := NewDecoder(RoleHost).Decode(midi.ControlChange(0, 0x0D, 0x43)); !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized, got %v", err)
	}
}

func TestDecodeSmallDisplay(t *testing.T) {
	d := NewDecoder(RoleHost)
	events, err := d.Decode(sysEx(0x10, 0x00, 'K', 'i', 'c', 'k', 0x08, 'M', 'u', 't', 'e'))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected two events, got %v", events)
	}
	if events[0].Kind != CoreChannelDisplay || events[0].Channel != 0 || events[0].Small.String() != "Kick" {
		t.Fatalf("unexpected channel display %v", events[0])
	}
	if events[1].Kind != CoreSelectAssignDisplay || events[1].Small.String() != "Mute" {
		t.Fatalf("unexpected select assign display %v", events[1])
	}

	if _, err := d.Decode(sysEx(0x10, 0x00, 'K', 'i')); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for short block, got %v", err)
	}
	if _, err := d.Decode(sysEx(0x10, 0x09, 'K', 'i', 'c', 'k')); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for channel 9, got %v", err)
	}
}

func largeSlice(idx byte, c byte) []byte {
	b := []byte{idx}
	return append(b, bytes.Repeat([]byte{c}, 10)...)
}

func TestDecodeLargeDisplay(t *testing.T) {
	d := NewDecoder(RoleHost)
	e := decodeOne(t, d, sysEx(append([]byte{0x12}, largeSlice(0, 'A')...)...))
	if e.Kind != CoreLargeDisplay || e.Top[0] != 'A' || e.Top[10] != ' ' {
		t.Fatalf("unexpected display %v", e)
	}

	// one bad slice index rejects the whole message
	bad := append([]byte{0x12}, largeSlice(0, 'B')...)
	bad = append(bad, largeSlice(9, 'C')...)
	if _, err := d.Decode(sysEx(bad...)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, err := d.Decode(sysEx(0x12, 0x01, 'x', 'y')); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for short slice, got %v", err)
	}

	e = decodeOne(t, d, sysEx(append([]byte{0x12}, largeSlice(5, 'D')...)...))
	if e.Top[0] != 'A' {
		t.Fatalf("rejected message changed the display: %q", e.Top)
	}
	if e.Bottom[10] != 'D' || e.Bottom[9] != ' ' {
		t.Fatalf("slice 5 not placed in the bottom row: %q", e.Bottom)
	}
}

func TestDecodeTimeDisplay(t *testing.T) {
	d := NewDecoder(RoleHost)
	e := decodeOne(t, d, sysEx(0x11, 0x05, 0x04))
	if e.Kind != CoreTimeDisplay || e.Time.String() != "      45" {
		t.Fatalf("unexpected time %q", e.Time)
	}

	events, err := d.Decode(sysEx(0x11, 0x40))
	if !errors.Is(err, ErrUnknownChar) {
		t.Fatalf("expected ErrUnknownChar, got %v", err)
	}
	if len(events) != 1 || events[0].Time[7] != timeCodeUnknown || events[0].Time[6] != 0x04 {
		t.Fatalf("expected the unknown code replaced, got %v", events)
	}

	if _, err := d.Decode(sysEx(0x11, 1, 2, 3, 4, 5, 6, 7, 8, 9)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for nine digits, got %v", err)
	}
}

func TestDecodeForeign(t *testing.T) {
	d := NewDecoder(RoleHost)
	if _, err := d.Decode(midi.SysEx([]byte{0x7E, 0x00, 0x06, 0x01})); !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized for device inquiry, got %v", err)
	}
	if _, err := d.Decode(nil); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for empty message, got %v", err)
	}
	if _, err := d.Decode(midi.ControlChange(0, 0x50, 0x00)); !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized for cc 0x50, got %v", err)
	}
}

func TestDecodeFraming(t *testing.T) {
	d := NewDecoder(RoleSurface)
	if e := decodeOne(t, d, midi.NoteOn(0, 0, 0x7F)); e.Kind != CorePing {
		t.Fatalf("expected ping, got %v", e)
	}
	if e := decodeOne(t, d, midi.NoteOff(0, 0)); e.Kind != CorePing {
		t.Fatalf("expected ping from note off, got %v", e)
	}
	if e := decodeOne(t, d, midi.PolyAfterTouch(0, 5, 0x03)); e.Kind != CoreLevelMeter || e.Channel != 5 || e.Side != SideLeft {
		t.Fatalf("expected left meter of channel 5, got %v", e)
	}
	for _, m := range []midi.Message{{0xB0, 0x2C}, {0x90, 0x00, 0x00, 0x00}, {0xC0, 0x01}} {
		if _, err := d.Decode(m); !errors.Is(err, ErrUnrecognized) {
			t.Fatalf("Decode(% X): expected ErrUnrecognized, got %v", []byte(m), err)
		}
	}
	for _, m := range []midi.Message{{0xF0}, {0xF0, 0x00, 0x00, 0x66}} {
		if _, err := d.Decode(m); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Decode(% X): expected ErrMalformed, got %v", []byte(m), err)
		}
	}
}

func TestDecodeNeverPanics(t *testing.T) {
	msgs := []midi.Message{
		{0xF0},
		{0xF0, 0xF7},
		{0xF0, 0x00, 0x00, 0x66, 0x05, 0x00, 0xF7},
		{0xF0, 0x00, 0x00, 0x66, 0x05, 0x00, 0x12, 0xF7},
		{0xF0, 0x00, 0x00, 0x66, 0x05, 0x00, 0x13, 0x01, 0xF7},
		{0xB0},
		{0xB0, 0x2C},
		{0xB0, 0xFF, 0xFF},
		{0xA0, 0xFF, 0xFF},
		{0x90, 0xFF, 0xFF, 0xFF},
		{0xC0, 0x01},
		{0x00, 0x00, 0x00},
	}
	for _, role := range []Role{RoleHost, RoleSurface} {
		d := NewDecoder(role)
		for _, m := range msgs {
			d.Decode(m)
		}
	}
}
