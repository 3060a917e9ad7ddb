package gohui

import "fmt"

// Event is a resolved HUI event, as produced by State.Apply and accepted by
// Encode.
type Event interface {
	fmt.Stringer
	huiEvent()
}

type PingEvent struct{}

// SystemResetEvent is sent by a surface at power on and off.
type SystemResetEvent struct{}

// LevelMeterEvent carries a meter level 0-12, 12 is clipping.
type LevelMeterEvent struct {
	Channel uint8
	Side    Side
	Level   uint8
}

// FaderLevelEvent carries a 14-bit fader level.
type FaderLevelEvent struct {
	Channel uint8
	Level   uint16
}

// VPotDeltaEvent is a relative pot move from the surface.
type VPotDeltaEvent struct {
	Pot   VPot
	Delta int
}

// VPotDisplayEvent sets the LED ring of a pot on the surface.
type VPotDisplayEvent struct {
	Pot     VPot
	Display VPotDisplay
}

type JogWheelEvent struct {
	Delta int
}

// LargeDisplayEvent carries both rows of the main display.
type LargeDisplayEvent struct {
	Top    LargeRow
	Bottom LargeRow
}

type TimeDisplayEvent struct {
	Text TimeText
}

type SelectAssignDisplayEvent struct {
	Text SmallText
}

type ChannelNameEvent struct {
	Channel uint8
	Text    SmallText
}

// SwitchEvent is a button press or release, or an LED change.
type SwitchEvent struct {
	Switch Switch
	State  bool
}

// UnhandledSwitchEvent is a switch at an address with no known meaning.
type UnhandledSwitchEvent struct {
	Zone  uint8
	Port  uint8
	State bool
}

func (PingEvent) huiEvent()                {}
func (SystemResetEvent) huiEvent()         {}
func (LevelMeterEvent) huiEvent()          {}
func (FaderLevelEvent) huiEvent()          {}
func (VPotDeltaEvent) huiEvent()           {}
func (VPotDisplayEvent) huiEvent()         {}
func (JogWheelEvent) huiEvent()            {}
func (LargeDisplayEvent) huiEvent()        {}
func (TimeDisplayEvent) huiEvent()         {}
func (SelectAssignDisplayEvent) huiEvent() {}
func (ChannelNameEvent) huiEvent()         {}
func (SwitchEvent) huiEvent()              {}
func (UnhandledSwitchEvent) huiEvent()     {}

func (PingEvent) String() string        { return "ping" }
func (SystemResetEvent) String() string { return "system reset" }

func (e LevelMeterEvent) String() string {
	return fmt.Sprintf("meter channel%d %v %d", e.Channel, e.Side, e.Level)
}

func (e FaderLevelEvent) String() string {
	return fmt.Sprintf("fader channel%d %d", e.Channel, e.Level)
}

func (e VPotDeltaEvent) String() string {
	return fmt.Sprintf("%v %+d", e.Pot, e.Delta)
}

func (e VPotDisplayEvent) String() string {
	return fmt.Sprintf("%v [%v]", e.Pot, e.Display)
}

func (e JogWheelEvent) String() string {
	return fmt.Sprintf("jog wheel %+d", e.Delta)
}

func (e LargeDisplayEvent) String() string {
	return fmt.Sprintf("large display %q %q", e.Top, e.Bottom)
}

func (e TimeDisplayEvent) String() string {
	return fmt.Sprintf("time display %q", e.Text)
}

func (e SelectAssignDisplayEvent) String() string {
	return fmt.Sprintf("select assign %q", e.Text)
}

func (e ChannelNameEvent) String() string {
	return fmt.Sprintf("name channel%d %q", e.Channel, e.Text)
}

func (e SwitchEvent) String() string {
	return fmt.Sprintf("%v %t", e.Switch, e.State)
}

func (e UnhandledSwitchEvent) String() string {
	return fmt.Sprintf("unhandled %v %t", Address{Zone: e.Zone, Port: e.Port}, e.State)
}

// FaderTouch returns the event sent when a fader is touched or released.
func FaderTouch(ch uint8, touched bool) SwitchEvent {
	return SwitchEvent{Switch: StripSwitch{Channel: ch, Param: StripFaderTouched}, State: touched}
}
