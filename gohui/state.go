package gohui

// VPotMax is the highest absolute V-Pot value kept by State.
const VPotMax = 127

// StripState is one channel strip.
type StripState struct {
	Fader    uint16
	VPot     uint8
	VPotLEDs VPotDisplay
	Meter    [2]uint8
	Name     SmallText
	Switches [numStripParams]bool
}

// Switch returns the state of one of the strip's switches.
func (s StripState) Switch(p StripParam) bool {
	if p >= numStripParams {
		return false
	}
	return s.Switches[p]
}

// State is the complete state of a HUI surface. It is a plain value, copying
// it yields an independent snapshot. It only changes through Apply.
type State struct {
	Strips [NumStrips]StripState

	HotKeys           [8]bool
	Window            [6]bool
	BankMove          [4]bool
	Assign            [15]bool
	Cursor            [7]bool
	Transport         [16]bool
	ControlRoom       [10]bool
	NumPad            [18]bool
	TimeDisplayStatus [4]bool
	AutoEnable        [6]bool
	AutoMode          [6]bool
	StatusGroup       [6]bool
	Edit              [6]bool
	FunctionKeys      [8]bool
	ParamEdit         [8]bool
	FootswitchSound   [4]bool

	ParamPots    [4]uint8
	ParamPotLEDs [4]VPotDisplay
	EditScroll   uint8

	LargeDisplay [2]LargeRow
	TimeDisplay  TimeText
	SelectAssign SmallText
}

// NewState returns a state with blank displays.
func NewState() *State {
	s := &State{}
	for i := range s.Strips {
		s.Strips[i].Name = BlankSmallText()
	}
	s.LargeDisplay = [2]LargeRow{BlankLargeRow(), BlankLargeRow()}
	s.TimeDisplay = BlankTimeText()
	s.SelectAssign = BlankSmallText()
	return s
}

func slot(arr []bool, i uint8) *bool {
	if int(i) >= len(arr) {
		return nil
	}
	return &arr[i]
}

func (s *State) switchSlot(sw Switch) *bool {
	switch v := sw.(type) {
	case StripSwitch:
		if v.Channel >= NumStrips || v.Param >= numStripParams {
			return nil
		}
		return &s.Strips[v.Channel].Switches[v.Param]
	case HotKey:
		return slot(s.HotKeys[:], uint8(v))
	case WindowFunction:
		return slot(s.Window[:], uint8(v))
	case BankMove:
		return slot(s.BankMove[:], uint8(v))
	case Assign:
		return slot(s.Assign[:], uint8(v))
	case Cursor:
		return slot(s.Cursor[:], uint8(v))
	case Transport:
		return slot(s.Transport[:], uint8(v))
	case ControlRoom:
		return slot(s.ControlRoom[:], uint8(v))
	case NumPad:
		return slot(s.NumPad[:], uint8(v))
	case TimeDisplayStatus:
		return slot(s.TimeDisplayStatus[:], uint8(v))
	case AutoEnable:
		return slot(s.AutoEnable[:], uint8(v))
	case AutoMode:
		return slot(s.AutoMode[:], uint8(v))
	case StatusGroup:
		return slot(s.StatusGroup[:], uint8(v))
	case Edit:
		return slot(s.Edit[:], uint8(v))
	case FunctionKey:
		return slot(s.FunctionKeys[:], uint8(v))
	case ParamEdit:
		return slot(s.ParamEdit[:], uint8(v))
	case FootswitchSound:
		return slot(s.FootswitchSound[:], uint8(v))
	}
	return nil
}

// Switch returns the state of a switch or LED.
func (s *State) Switch(sw Switch) bool {
	if p := s.switchSlot(sw); p != nil {
		return *p
	}
	return false
}

// VPotValue returns the absolute value 0-127 of a pot.
func (s *State) VPotValue(p VPot) uint8 {
	switch {
	case p.IsChannel():
		return s.Strips[p].VPot
	case p >= VPotParam1 && p <= VPotParam4:
		return s.ParamPots[p-VPotParam1]
	case p == VPotEditScroll:
		return s.EditScroll
	}
	return 0
}

func clampAdd(v uint8, delta int) uint8 {
	n := int(v) + delta
	switch {
	case n < 0:
		return 0
	case n > VPotMax:
		return VPotMax
	}
	return uint8(n)
}

// Apply mutates the state according to e and returns the resolved event.
// changed reports whether the state differed before; pings, resets and
// relative moves always count as changed. Events for out of range channels
// or pots return a nil event and leave the state alone. A switch at an
// unknown address yields an UnhandledSwitchEvent without touching the state.
func (s *State) Apply(e CoreEvent) (ev Event, changed bool) {
	switch e.Kind {
	case CorePing:
		return PingEvent{}, true

	case CoreSystemReset:
		return SystemResetEvent{}, true

	case CoreLevelMeter:
		if e.Channel >= NumStrips || e.Side > SideRight {
			return nil, false
		}
		level := uint8(e.Level & 0x0F)
		m := &s.Strips[e.Channel].Meter[e.Side]
		changed = *m != level
		*m = level
		return LevelMeterEvent{Channel: e.Channel, Side: e.Side, Level: level}, changed

	case CoreFaderLevel:
		if e.Channel >= NumStrips {
			return nil, false
		}
		level := min(e.Level, FaderMax)
		f := &s.Strips[e.Channel].Fader
		changed = *f != level
		*f = level
		return FaderLevelEvent{Channel: e.Channel, Level: level}, changed

	case CoreVPotDelta:
		var v *uint8
		switch {
		case e.Pot.IsChannel():
			v = &s.Strips[e.Pot].VPot
		case e.Pot >= VPotParam1 && e.Pot <= VPotParam4:
			v = &s.ParamPots[e.Pot-VPotParam1]
		case e.Pot == VPotEditScroll:
			v = &s.EditScroll
		default:
			return nil, false
		}
		*v = clampAdd(*v, e.Delta)
		return VPotDeltaEvent{Pot: e.Pot, Delta: e.Delta}, true

	case CoreVPotDisplay:
		var d *VPotDisplay
		switch {
		case e.Pot.IsChannel():
			d = &s.Strips[e.Pot].VPotLEDs
		case e.Pot >= VPotParam1 && e.Pot <= VPotParam4:
			d = &s.ParamPotLEDs[e.Pot-VPotParam1]
		case e.Pot == VPotEditScroll:
			// no ring to light
			return VPotDisplayEvent{Pot: e.Pot, Display: e.Display}, false
		default:
			return nil, false
		}
		changed = *d != e.Display
		*d = e.Display
		return VPotDisplayEvent{Pot: e.Pot, Display: e.Display}, changed

	case CoreJogWheel:
		return JogWheelEvent{Delta: e.Delta}, true

	case CoreLargeDisplay:
		changed = s.LargeDisplay[0] != e.Top || s.LargeDisplay[1] != e.Bottom
		s.LargeDisplay = [2]LargeRow{e.Top, e.Bottom}
		return LargeDisplayEvent{Top: e.Top, Bottom: e.Bottom}, changed

	case CoreTimeDisplay:
		changed = s.TimeDisplay != e.Time
		s.TimeDisplay = e.Time
		return TimeDisplayEvent{Text: e.Time}, changed

	case CoreSelectAssignDisplay:
		changed = s.SelectAssign != e.Small
		s.SelectAssign = e.Small
		return SelectAssignDisplayEvent{Text: e.Small}, changed

	case CoreChannelDisplay:
		if e.Channel >= NumStrips {
			return nil, false
		}
		n := &s.Strips[e.Channel].Name
		changed = *n != e.Small
		*n = e.Small
		return ChannelNameEvent{Channel: e.Channel, Text: e.Small}, changed

	case CoreSwitch:
		sw, ok := LookupSwitch(e.Address)
		if !ok {
			return UnhandledSwitchEvent{Zone: e.Address.Zone, Port: e.Address.Port, State: e.State}, true
		}
		p := s.switchSlot(sw)
		changed = *p != e.State
		*p = e.State
		return SwitchEvent{Switch: sw, State: e.State}, changed
	}
	return nil, false
}

// Core converts a resolved event back into its core form, so that State can
// track events it transmits as well as events it receives.
func Core(ev Event) (CoreEvent, bool) {
	switch e := ev.(type) {
	case PingEvent:
		return CoreEvent{Kind: CorePing}, true
	case SystemResetEvent:
		return CoreEvent{Kind: CoreSystemReset}, true
	case LevelMeterEvent:
		return CoreEvent{Kind: CoreLevelMeter, Channel: e.Channel, Side: e.Side, Level: uint16(e.Level)}, true
	case FaderLevelEvent:
		return CoreEvent{Kind: CoreFaderLevel, Channel: e.Channel, Level: e.Level}, true
	case VPotDeltaEvent:
		return CoreEvent{Kind: CoreVPotDelta, Pot: e.Pot, Delta: e.Delta}, true
	case VPotDisplayEvent:
		return CoreEvent{Kind: CoreVPotDisplay, Pot: e.Pot, Display: e.Display}, true
	case JogWheelEvent:
		return CoreEvent{Kind: CoreJogWheel, Delta: e.Delta}, true
	case LargeDisplayEvent:
		return CoreEvent{Kind: CoreLargeDisplay, Top: e.Top, Bottom: e.Bottom}, true
	case TimeDisplayEvent:
		return CoreEvent{Kind: CoreTimeDisplay, Time: e.Text}, true
	case SelectAssignDisplayEvent:
		return CoreEvent{Kind: CoreSelectAssignDisplay, Small: e.Text}, true
	case ChannelNameEvent:
		return CoreEvent{Kind: CoreChannelDisplay, Channel: e.Channel, Small: e.Text}, true
	case SwitchEvent:
		if e.Switch == nil {
			return CoreEvent{}, false
		}
		return CoreEvent{Kind: CoreSwitch, Address: e.Switch.Address(), State: e.State}, true
	case UnhandledSwitchEvent:
		return CoreEvent{Kind: CoreSwitch, Address: Address{Zone: e.Zone, Port: e.Port}, State: e.State}, true
	}
	return CoreEvent{}, false
}
