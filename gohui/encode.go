package gohui

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
)

// Encode returns the messages that transmit ev to the given role, in the
// order they must be sent. Switch and fader messages come in pairs that must
// not be interleaved with other switch or fader messages on the same port.
func Encode(ev Event, to Role) ([]midi.Message, error) {
	switch e := ev.(type) {
	case PingEvent:
		return []midi.Message{PingMessage(to)}, nil

	case SystemResetEvent:
		if to != RoleHost {
			return nil, wrongDirection(ev, to)
		}
		return []midi.Message{SystemResetMessage()}, nil

	case LevelMeterEvent:
		if to != RoleSurface {
			return nil, wrongDirection(ev, to)
		}
		if e.Channel >= NumStrips || e.Side > SideRight {
			return nil, fmt.Errorf("%w: %v", ErrOutOfRange, ev)
		}
		level := min(e.Level, MeterMax)
		return []midi.Message{midi.PolyAfterTouch(0, e.Channel, uint8(e.Side)<<4|level)}, nil

	case FaderLevelEvent:
		if e.Channel >= NumStrips || e.Level > FaderMax {
			return nil, fmt.Errorf("%w: %v", ErrOutOfRange, ev)
		}
		return []midi.Message{
			controlChange(ccFaderMSB+e.Channel, byte(e.Level>>7)),
			controlChange(ccFaderLSB+e.Channel, byte(e.Level&0x7F)),
		}, nil

	case VPotDeltaEvent:
		if to != RoleHost {
			return nil, wrongDirection(ev, to)
		}
		if !e.Pot.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrOutOfRange, ev)
		}
		return []midi.Message{controlChange(ccVPotHost+byte(e.Pot), EncodeDelta(e.Delta))}, nil

	case VPotDisplayEvent:
		if to != RoleSurface {
			return nil, wrongDirection(ev, to)
		}
		if !e.Pot.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrOutOfRange, ev)
		}
		return []midi.Message{controlChange(ccVPotSurface+byte(e.Pot), byte(e.Display)&0x7F)}, nil

	case JogWheelEvent:
		if to != RoleHost {
			return nil, wrongDirection(ev, to)
		}
		return []midi.Message{controlChange(ccJogWheel, EncodeDelta(e.Delta))}, nil

	case LargeDisplayEvent:
		if to != RoleSurface {
			return nil, wrongDirection(ev, to)
		}
		return []midi.Message{EncodeLargeRow(0, e.Top), EncodeLargeRow(1, e.Bottom)}, nil

	case TimeDisplayEvent:
		if to != RoleSurface {
			return nil, wrongDirection(ev, to)
		}
		body := make([]byte, 0, 1+len(e.Text))
		body = append(body, displayTime)
		for i := len(e.Text) - 1; i >= 0; i-- {
			body = append(body, e.Text[i]&0x7F)
		}
		return []midi.Message{sysEx(body...)}, nil

	case SelectAssignDisplayEvent:
		if to != RoleSurface {
			return nil, wrongDirection(ev, to)
		}
		return []midi.Message{smallDisplay(NumStrips, e.Text)}, nil

	case ChannelNameEvent:
		if to != RoleSurface {
			return nil, wrongDirection(ev, to)
		}
		if e.Channel >= NumStrips {
			return nil, fmt.Errorf("%w: %v", ErrOutOfRange, ev)
		}
		return []midi.Message{smallDisplay(e.Channel, e.Text)}, nil

	case SwitchEvent:
		if e.Switch == nil {
			return nil, fmt.Errorf("%w: switch event without switch", ErrOutOfRange)
		}
		a := e.Switch.Address()
		if a == invalidAddress {
			return nil, fmt.Errorf("%w: %v", ErrOutOfRange, ev)
		}
		return encodeSwitch(a, e.State, to), nil

	case UnhandledSwitchEvent:
		if e.Zone > 0x7F || e.Port > 0x0F {
			return nil, fmt.Errorf("%w: %v", ErrOutOfRange, ev)
		}
		return encodeSwitch(Address{Zone: e.Zone, Port: e.Port}, e.State, to), nil
	}
	return nil, fmt.Errorf("%w: cannot encode %T", ErrUnrecognized, ev)
}

func wrongDirection(ev Event, to Role) error {
	return fmt.Errorf("%w: %T to %v", ErrWrongDirection, ev, to)
}

func encodeSwitch(a Address, state bool, to Role) []midi.Message {
	zoneCC, portCC := ccZoneSelectSurface, ccPortSurface
	if to == RoleHost {
		zoneCC, portCC = ccZoneSelectHost, ccPortHost
	}
	port := a.Port & 0x0F
	if state {
		port |= portStateOn << 4
	}
	return []midi.Message{
		controlChange(zoneCC, a.Zone&0x7F),
		controlChange(portCC, port),
	}
}

func smallDisplay(ch uint8, t SmallText) midi.Message {
	return sysEx(displaySmall, ch, t[0]&0x7F, t[1]&0x7F, t[2]&0x7F, t[3]&0x7F)
}

// EncodeLargeRow returns one message carrying the four slices of a row of
// the main display, row 0 is the top row.
func EncodeLargeRow(row int, r LargeRow) midi.Message {
	body := make([]byte, 0, 1+4*11)
	body = append(body, displayLarge)
	for i := 0; i < 4; i++ {
		body = append(body, byte(row*4+i))
		for _, c := range r.Slice(i) {
			body = append(body, c&0x7F)
		}
	}
	return sysEx(body...)
}

// EncodeLargeSlices returns one message per slice, ordered by slice index.
// Slice indexes outside 0-7 are skipped.
func EncodeLargeSlices(slices map[int][10]byte) []midi.Message {
	idx := make([]int, 0, len(slices))
	for i := range slices {
		if i >= 0 && i < LargeSlices {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	msgs := make([]midi.Message, 0, len(idx))
	for _, i := range idx {
		body := make([]byte, 0, 12)
		body = append(body, displayLarge, byte(i))
		for _, c := range slices[i] {
			body = append(body, c&0x7F)
		}
		msgs = append(msgs, sysEx(body...))
	}
	return msgs
}

// ChangedLargeSlices compares two displays and returns the slices of next
// that differ from prev.
func ChangedLargeSlices(prev, next [2]LargeRow) map[int][10]byte {
	changed := make(map[int][10]byte)
	for row := range next {
		for i := 0; i < 4; i++ {
			if s := next[row].Slice(i); s != prev[row].Slice(i) {
				changed[row*4+i] = s
			}
		}
	}
	return changed
}
