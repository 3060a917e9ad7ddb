package gohui

import "fmt"

type CoreKind uint8

const (
	CorePing CoreKind = iota
	CoreSystemReset
	CoreLevelMeter
	CoreFaderLevel
	CoreVPotDelta
	CoreVPotDisplay
	CoreJogWheel
	CoreLargeDisplay
	CoreTimeDisplay
	CoreSelectAssignDisplay
	CoreChannelDisplay
	CoreSwitch
)

var coreKindNames = [...]string{
	"ping", "system reset", "level meter", "fader level", "vpot delta", "vpot display",
	"jog wheel", "large display", "time display", "select assign display",
	"channel display", "switch",
}

func (k CoreKind) String() string {
	if int(k) < len(coreKindNames) {
		return coreKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Side of a stereo level meter.
type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// CoreEvent is the decoder output before switch addresses are resolved.
// Only the fields belonging to Kind are meaningful.
type CoreEvent struct {
	Kind CoreKind

	Channel uint8
	Side    Side
	// meter level, or 14-bit fader level
	Level uint16

	Pot     VPot
	Delta   int
	Display VPotDisplay

	Top    LargeRow
	Bottom LargeRow
	Time   TimeText
	Small  SmallText

	Address Address
	State   bool
}

func (e CoreEvent) String() string {
	switch e.Kind {
	case CoreLevelMeter:
		return fmt.Sprintf("%v ch%d %v %d", e.Kind, e.Channel, e.Side, e.Level)
	case CoreFaderLevel:
		return fmt.Sprintf("%v ch%d %d", e.Kind, e.Channel, e.Level)
	case CoreVPotDelta, CoreJogWheel:
		return fmt.Sprintf("%v %v %+d", e.Kind, e.Pot, e.Delta)
	case CoreVPotDisplay:
		return fmt.Sprintf("%v %v [%v]", e.Kind, e.Pot, e.Display)
	case CoreLargeDisplay:
		return fmt.Sprintf("%v %q %q", e.Kind, e.Top, e.Bottom)
	case CoreTimeDisplay:
		return fmt.Sprintf("%v %q", e.Kind, e.Time)
	case CoreSelectAssignDisplay:
		return fmt.Sprintf("%v %q", e.Kind, e.Small)
	case CoreChannelDisplay:
		return fmt.Sprintf("%v ch%d %q", e.Kind, e.Channel, e.Small)
	case CoreSwitch:
		return fmt.Sprintf("%v %v %t", e.Kind, e.Address, e.State)
	}
	return e.Kind.String()
}
