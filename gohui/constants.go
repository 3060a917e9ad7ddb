// Package gohui implements the Mackie HUI control surface protocol on top of
// plain MIDI 1.0 messages: a stateful wire decoder, the surface state model and
// an encoder producing the exact message sequences the protocol expects.
//
// The package does no I/O and no logging. Problems with received data are
// returned as errors wrapping one of the sentinel errors below.
package gohui

import "gitlab.com/gomidi/midi/v2"

// Role is one end of a HUI connection.
type Role uint8

const (
	RoleHost Role = iota
	RoleSurface
)

// Remote returns the role at the other end of the connection.
func (r Role) Remote() Role {
	if r == RoleHost {
		return RoleSurface
	}
	return RoleHost
}

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleSurface:
		return "surface"
	}
	return "unknown"
}

// status bytes, HUI only ever uses MIDI channel 1
const (
	statusNoteOn   byte = 0x90
	statusSysEx    byte = 0xF0
	statusSysExEnd byte = 0xF7
	statusReset    byte = 0xFF
)

// data byte 1 of control status messages
const (
	ccFaderMSB          byte = 0x00
	ccFaderLSB          byte = 0x20
	ccZoneSelectSurface byte = 0x0C
	ccZoneSelectHost    byte = 0x0F
	ccPortSurface       byte = 0x2C
	ccPortHost          byte = 0x2F
	ccJogWheel          byte = 0x0D
	ccVPotSurface       byte = 0x10
	ccVPotHost          byte = 0x40
)

// high nibble of a port on/off data byte
const (
	portStateOff     byte = 0x0
	portStateIgnored byte = 0x2
	portStateOn      byte = 0x4
)

// display type discriminator following the SysEx header
const (
	displaySmall byte = 0x10
	displayTime  byte = 0x11
	displayLarge byte = 0x12
)

// meter values at or above this are the right side of a stereo meter
const meterRightThreshold = 16

// MeterMax is the clip level of a channel level meter.
const MeterMax = 0xC

// FaderMax is the highest 14-bit fader level.
const FaderMax = 0x3FFF

// sysExHeader is manufacturer 00 00 66 (Mackie) followed by sub IDs 05 00.
var sysExHeader = []byte{0x00, 0x00, 0x66, 0x05, 0x00}

var (
	pingToSurface  = midi.Message{statusNoteOn, 0x00, 0x00}
	pingToHost     = midi.Message{statusNoteOn, 0x00, 0x7F}
	systemResetMsg = midi.Message{statusReset}
)

// PingMessage returns the ping message sent to the given role.
func PingMessage(to Role) midi.Message {
	if to == RoleHost {
		return append(midi.Message(nil), pingToHost...)
	}
	return append(midi.Message(nil), pingToSurface...)
}

// SystemResetMessage is transmitted by a surface when it powers on or off.
func SystemResetMessage() midi.Message {
	return append(midi.Message(nil), systemResetMsg...)
}

func sysEx(body ...byte) midi.Message {
	data := make([]byte, 0, len(sysExHeader)+len(body))
	data = append(data, sysExHeader...)
	data = append(data, body...)
	return midi.SysEx(data)
}

func controlChange(cc, value byte) midi.Message {
	return midi.ControlChange(0, cc, value)
}
