package gohui

import (
	"bytes"
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// Decoder turns raw MIDI messages into core events. It keeps the state that
// spans several messages: a pending switch zone, the fader MSBs and the
// content of the large and time displays. A Decoder is not safe for
// concurrent use.
type Decoder struct {
	from Role

	pendingZone    uint8
	hasPendingZone bool
	faderMSB       [NumStrips]uint8

	large [2]LargeRow
	time  TimeText
}

// NewDecoder returns a decoder for messages sent by the given role.
func NewDecoder(from Role) *Decoder {
	d := &Decoder{from: from}
	d.Reset()
	return d
}

// Reset clears all cross-message state.
func (d *Decoder) Reset() {
	d.pendingZone, d.hasPendingZone = 0, false
	d.faderMSB = [NumStrips]uint8{}
	d.large = [2]LargeRow{BlankLargeRow(), BlankLargeRow()}
	d.time = BlankTimeText()
}

// Decode consumes one message. Most messages yield one event, some only
// update the decoder (fader MSB, zone select) and a small display SysEx may
// carry several texts. A non-nil error together with events reports a
// recoverable problem, e.g. an unknown time display character. Decode never
// panics, whatever the input.
func (d *Decoder) Decode(m midi.Message) ([]CoreEvent, error) {
	if err := checkFraming(m); err != nil {
		return nil, err
	}
	var ch, data1, data2 uint8
	var data []byte
	switch {
	case m.Is(midi.ResetMsg):
		if d.from != RoleSurface {
			return nil, fmt.Errorf("%w: system reset from %v", ErrUnrecognized, d.from)
		}
		return one(CoreEvent{Kind: CoreSystemReset}), nil
	case m.GetSysEx(&data):
		return d.decodeSysEx(data)
	case m.GetNoteOn(&ch, &data1, &data2):
		return d.decodePing(false, data1&0x7F, data2&0x7F)
	case m.GetNoteOff(&ch, &data1, &data2):
		return d.decodePing(true, data1&0x7F, data2&0x7F)
	case m.GetControlChange(&ch, &data1, &data2):
		return d.decodeControl(data1&0x7F, data2&0x7F)
	case m.GetPolyAfterTouch(&ch, &data1, &data2):
		return d.decodeLevelMeter(data1&0x7F, data2&0x7F)
	}
	return nil, fmt.Errorf("%w: % X", ErrUnrecognized, []byte(m))
}

// checkFraming rejects truncated messages before the accessors look at
// their data bytes. HUI only uses three byte channel messages.
func checkFraming(m midi.Message) error {
	switch {
	case len(m) == 0:
		return fmt.Errorf("%w: empty message", ErrMalformed)
	case m[0] == statusSysEx:
		if len(m) < 2 || m[len(m)-1] != statusSysExEnd {
			return fmt.Errorf("%w: unterminated sysex", ErrMalformed)
		}
	case m[0] < statusSysEx && len(m) != 3:
		return fmt.Errorf("%w: % X", ErrUnrecognized, []byte(m))
	}
	return nil
}

func one(e CoreEvent) []CoreEvent {
	return []CoreEvent{e}
}

func (d *Decoder) decodePing(noteOff bool, key, velocity byte) ([]CoreEvent, error) {
	if key != 0 {
		return nil, fmt.Errorf("%w: note %d", ErrUnrecognized, key)
	}
	switch {
	// a note on with velocity 0 is often delivered as note off
	case noteOff, velocity == 0:
		return one(CoreEvent{Kind: CorePing}), nil
	case velocity == 0x7F && d.from == RoleSurface:
		return one(CoreEvent{Kind: CorePing}), nil
	}
	return nil, fmt.Errorf("%w: ping with velocity 0x%02X from %v", ErrUnrecognized, velocity, d.from)
}

func (d *Decoder) decodeControl(cc, value byte) ([]CoreEvent, error) {
	switch {
	case cc <= ccFaderMSB+NumStrips-1:
		d.faderMSB[cc] = value
		return nil, nil

	case cc >= ccFaderLSB && cc <= ccFaderLSB+NumStrips-1:
		ch := cc - ccFaderLSB
		level := uint16(d.faderMSB[ch])<<7 | uint16(value)
		return one(CoreEvent{Kind: CoreFaderLevel, Channel: ch, Level: level}), nil

	case cc == ccZoneSelectSurface, cc == ccZoneSelectHost:
		var err error
		if d.hasPendingZone {
			err = fmt.Errorf("%w: zone 0x%02X replaced by 0x%02X", ErrOverwrite, d.pendingZone, value)
		}
		d.pendingZone, d.hasPendingZone = value, true
		return nil, err

	case cc == ccPortSurface, cc == ccPortHost:
		return d.decodePort(value)

	case cc == ccJogWheel:
		if d.from != RoleSurface {
			return nil, fmt.Errorf("%w: jog wheel from %v", ErrUnrecognized, d.from)
		}
		return one(CoreEvent{Kind: CoreJogWheel, Delta: DecodeDelta(value)}), nil

	case cc >= ccVPotSurface && cc < ccVPotSurface+byte(numVPots),
		cc >= ccVPotHost && cc < ccVPotHost+byte(numVPots):
		pot := VPot(cc & 0x0F)
		if d.from == RoleHost {
			return one(CoreEvent{Kind: CoreVPotDisplay, Pot: pot, Display: VPotDisplay(value)}), nil
		}
		return one(CoreEvent{Kind: CoreVPotDelta, Pot: pot, Delta: DecodeDelta(value)}), nil
	}
	return nil, fmt.Errorf("%w: control 0x%02X value 0x%02X", ErrUnrecognized, cc, value)
}

// decodePort handles the second half of a switch message. The pending zone
// is consumed whatever the outcome.
func (d *Decoder) decodePort(value byte) ([]CoreEvent, error) {
	zone, ok := d.pendingZone, d.hasPendingZone
	d.pendingZone, d.hasPendingZone = 0, false

	port := value & 0x0F
	var state bool
	switch value >> 4 {
	case portStateOff:
	case portStateOn:
		state = true
	case portStateIgnored:
		// sent by Pro Tools when automation modes change, meaning unknown
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: port 0x%X with state nibble 0x%X", ErrDesync, port, value>>4)
	}
	if !ok {
		return nil, fmt.Errorf("%w: port 0x%X without zone select", ErrDesync, port)
	}
	return one(CoreEvent{Kind: CoreSwitch, Address: Address{Zone: zone, Port: port}, State: state}), nil
}

func (d *Decoder) decodeLevelMeter(ch, value byte) ([]CoreEvent, error) {
	if ch >= NumStrips {
		return nil, fmt.Errorf("%w: level meter channel %d", ErrMalformed, ch)
	}
	side := SideLeft
	if value >= meterRightThreshold {
		side = SideRight
	}
	return one(CoreEvent{Kind: CoreLevelMeter, Channel: ch, Side: side, Level: uint16(value & 0x0F)}), nil
}

// decodeSysEx gets the bytes between F0 and F7.
func (d *Decoder) decodeSysEx(data []byte) ([]CoreEvent, error) {
	if !bytes.HasPrefix(data, sysExHeader) {
		return nil, fmt.Errorf("%w: sysex % X", ErrUnrecognized, []byte(data))
	}
	body := data[len(sysExHeader):]
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: sysex without display type", ErrMalformed)
	}
	switch body[0] {
	case displaySmall:
		return d.decodeSmall(body[1:])
	case displayLarge:
		return d.decodeLarge(body[1:])
	case displayTime:
		return d.decodeTime(body[1:])
	}
	return nil, fmt.Errorf("%w: display type 0x%02X", ErrMalformed, body[0])
}

// small display blocks are "channel c1 c2 c3 c4", Logic packs several into
// one message
func (d *Decoder) decodeSmall(b []byte) ([]CoreEvent, error) {
	if len(b) == 0 || len(b)%5 != 0 {
		return nil, fmt.Errorf("%w: small display length %d", ErrMalformed, len(b))
	}
	events := make([]CoreEvent, 0, len(b)/5)
	for i := 0; i < len(b); i += 5 {
		ch := b[i]
		var text SmallText
		copy(text[:], b[i+1:i+5])
		for j := range text {
			text[j] &= 0x7F
		}
		switch {
		case ch < NumStrips:
			events = append(events, CoreEvent{Kind: CoreChannelDisplay, Channel: ch, Small: text})
		case ch == NumStrips:
			events = append(events, CoreEvent{Kind: CoreSelectAssignDisplay, Small: text})
		default:
			return nil, fmt.Errorf("%w: small display channel %d", ErrMalformed, ch)
		}
	}
	return events, nil
}

// large display blocks are "slice c1 ... c10", slices 0-3 are the top row
// and 4-7 the bottom row
func (d *Decoder) decodeLarge(b []byte) ([]CoreEvent, error) {
	if len(b) == 0 || len(b)%11 != 0 {
		return nil, fmt.Errorf("%w: large display length %d", ErrMalformed, len(b))
	}
	for i := 0; i < len(b); i += 11 {
		if b[i] >= LargeSlices {
			return nil, fmt.Errorf("%w: large display slice %d", ErrMalformed, b[i])
		}
	}
	for i := 0; i < len(b); i += 11 {
		slice := int(b[i])
		row := &d.large[slice/4]
		off := slice % 4 * 10
		for j, c := range b[i+1 : i+11] {
			row[off+j] = c & 0x7F
		}
	}
	return one(CoreEvent{Kind: CoreLargeDisplay, Top: d.large[0], Bottom: d.large[1]}), nil
}

// time display digits arrive rightmost first
func (d *Decoder) decodeTime(b []byte) ([]CoreEvent, error) {
	if len(b) == 0 || len(b) > len(d.time) {
		return nil, fmt.Errorf("%w: time display length %d", ErrMalformed, len(b))
	}
	var errs []error
	for i, c := range b {
		if c > timeCodeMax {
			errs = append(errs, fmt.Errorf("%w: time display code 0x%02X", ErrUnknownChar, c))
			c = timeCodeUnknown
		}
		d.time[len(d.time)-1-i] = c
	}
	return one(CoreEvent{Kind: CoreTimeDisplay, Time: d.time}), errors.Join(errs...)
}
