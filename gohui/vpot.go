package gohui

import "fmt"

// VPot identifies a rotary encoder. 0-7 are the channel strip pots.
type VPot uint8

const (
	VPotParam1 VPot = iota + NumStrips
	VPotParam2
	VPotParam3
	VPotParam4
	// VPotEditScroll has no LED ring.
	VPotEditScroll
	numVPots
)

// ChannelVPot returns the pot of channel strip ch.
func ChannelVPot(ch uint8) VPot {
	return VPot(ch)
}

// IsChannel reports whether the pot belongs to a channel strip.
func (p VPot) IsChannel() bool {
	return p < NumStrips
}

func (p VPot) Valid() bool {
	return p < numVPots
}

func (p VPot) String() string {
	switch {
	case p.IsChannel():
		return fmt.Sprintf("vpot.channel%d", uint8(p))
	case p >= VPotParam1 && p <= VPotParam4:
		return fmt.Sprintf("vpot.param%d", uint8(p-VPotParam1)+1)
	case p == VPotEditScroll:
		return "vpot.edit_scroll"
	}
	return fmt.Sprintf("vpot.%d", uint8(p))
}

// MaxDelta is the largest magnitude of a relative pot or jog wheel move.
const MaxDelta = 63

// EncodeDelta packs a relative move into a data byte: bit 6 set means
// positive, the low six bits are the magnitude. Deltas are clamped to
// -63..63.
func EncodeDelta(delta int) byte {
	if delta < 0 {
		return byte(min(-delta, MaxDelta))
	}
	return byte(min(delta, MaxDelta)) | 0x40
}

// DecodeDelta is the inverse of EncodeDelta.
func DecodeDelta(b byte) int {
	mag := int(b & 0x3F)
	if b&0x40 == 0 {
		return -mag
	}
	return mag
}

// LEDMode is the high nibble of a V-Pot LED ring index.
type LEDMode uint8

const (
	LEDSingle LEDMode = iota
	LEDCenterTo
	LEDLeftTo
	LEDCenterWidth
)

// VPotDisplay is the raw LED ring index sent to the surface: the low six
// bits select the pattern of the eleven ring LEDs and bit 6 lights the LED
// below the pot.
type VPotDisplay uint8

// NewVPotDisplay builds a ring index. pos is 1-11 for the single, center-to
// and left-to modes, the width 1-6 for LEDCenterWidth, 0 turns the ring off.
func NewVPotDisplay(mode LEDMode, pos uint8, lower bool) VPotDisplay {
	if pos > 0x0B || mode > LEDCenterWidth {
		pos = 0
	}
	v := VPotDisplay(uint8(mode)<<4 | pos)
	if pos == 0 {
		v = 0
	}
	if lower {
		v |= 0x40
	}
	return v
}

func (d VPotDisplay) Mode() LEDMode   { return LEDMode(d & 0x30 >> 4) }
func (d VPotDisplay) Position() uint8 { return uint8(d & 0x0F) }
func (d VPotDisplay) LowerLED() bool  { return d&0x40 != 0 }

// Bits returns the ring as eleven bits, bit 10 is the leftmost LED.
func (d VPotDisplay) Bits() uint16 {
	return vPotLEDMatrix[d&0x3F]
}

// String draws the ring, e.g. "     ***   ".
func (d VPotDisplay) String() string {
	bits := d.Bits()
	b := make([]byte, 11)
	for i := range b {
		if bits&(1<<(10-i)) != 0 {
			b[i] = '*'
		} else {
			b[i] = ' '
		}
	}
	return string(b)
}

var vPotLEDMatrix = [0x40]uint16{
	// 0x00 single
	0b00000000000,
	0b10000000000,
	0b01000000000,
	0b00100000000,
	0b00010000000,
	0b00001000000,
	0b00000100000,
	0b00000010000,
	0b00000001000,
	0b00000000100,
	0b00000000010,
	0b00000000001,
	0, 0, 0, 0,

	// 0x10 from center
	0b00000000000,
	0b11111100000,
	0b01111100000,
	0b00111100000,
	0b00011100000,
	0b00001100000,
	0b00000100000,
	0b00000110000,
	0b00000111000,
	0b00000111100,
	0b00000111110,
	0b00000111111,
	0, 0, 0, 0,

	// 0x20 from left
	0b00000000000,
	0b10000000000,
	0b11000000000,
	0b11100000000,
	0b11110000000,
	0b11111000000,
	0b11111100000,
	0b11111110000,
	0b11111111000,
	0b11111111100,
	0b11111111110,
	0b11111111111,
	0, 0, 0, 0,

	// 0x30 symmetrical width
	0b00000000000,
	0b00000100000,
	0b00001110000,
	0b00011111000,
	0b00111111100,
	0b01111111110,
	0b11111111111,
	0b11111111111,
	0b11111111111,
	0b11111111111,
	0b11111111111,
	0b11111111111,
	0, 0, 0, 0,
}
