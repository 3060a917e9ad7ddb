package gohui

import (
	"fmt"
	"strings"
)

// Address is the wire address of a HUI switch or LED.
type Address struct {
	Zone uint8
	Port uint8
}

func (a Address) String() string {
	return fmt.Sprintf("zone 0x%02X port 0x%X", a.Zone, a.Port)
}

var invalidAddress = Address{Zone: 0xFF, Port: 0xFF}

// Switch is a button or LED with a fixed zone/port address.
// The concrete types are StripSwitch and the per-section types below.
type Switch interface {
	Address() Address
	String() string
}

type switchDef struct {
	name string
	addr Address
}

func lookupDef(defs []switchDef, i uint8) (switchDef, bool) {
	if int(i) >= len(defs) {
		return switchDef{}, false
	}
	return defs[i], true
}

func defAddress(defs []switchDef, i uint8) Address {
	if d, ok := lookupDef(defs, i); ok {
		return d.addr
	}
	return invalidAddress
}

func defString(section string, defs []switchDef, i uint8) string {
	if d, ok := lookupDef(defs, i); ok {
		return section + "." + d.name
	}
	return fmt.Sprintf("%s.%d", section, i)
}

// channel strips, zones 0x00 - 0x07

// NumStrips is the number of channel strips on a HUI surface.
const NumStrips = 8

type StripParam uint8

const (
	StripFaderTouched StripParam = iota
	StripSelect
	StripMute
	StripSolo
	StripAuto
	StripVPotSelect
	StripInsert
	StripRecordReady
	numStripParams
)

var stripParamNames = [numStripParams]string{
	"fader_touched", "select", "mute", "solo", "auto", "vpot_select", "insert", "record_ready",
}

func (p StripParam) String() string {
	if p < numStripParams {
		return stripParamNames[p]
	}
	return fmt.Sprintf("param%d", uint8(p))
}

// StripSwitch is a switch on one of the eight channel strips.
type StripSwitch struct {
	Channel uint8
	Param   StripParam
}

func (s StripSwitch) Address() Address {
	if s.Channel >= NumStrips || s.Param >= numStripParams {
		return invalidAddress
	}
	return Address{Zone: s.Channel, Port: uint8(s.Param)}
}

func (s StripSwitch) String() string {
	return fmt.Sprintf("channel%d.%s", s.Channel, s.Param)
}

// zone 0x08

type HotKey uint8

const (
	HotKeyCtrl HotKey = iota
	HotKeyShift
	HotKeyEditMode
	HotKeyUndo
	HotKeyCmd
	HotKeyOption
	HotKeyEditTool
	HotKeySave
)

var hotKeyDefs = []switchDef{
	{"ctrl", Address{0x08, 0x0}},
	{"shift", Address{0x08, 0x1}},
	{"edit_mode", Address{0x08, 0x2}},
	{"undo", Address{0x08, 0x3}},
	{"cmd", Address{0x08, 0x4}},
	{"option", Address{0x08, 0x5}},
	{"edit_tool", Address{0x08, 0x6}},
	{"save", Address{0x08, 0x7}},
}

func (s HotKey) Address() Address { return defAddress(hotKeyDefs, uint8(s)) }
func (s HotKey) String() string   { return defString("hotkey", hotKeyDefs, uint8(s)) }

// zone 0x09

type WindowFunction uint8

const (
	WindowMix WindowFunction = iota
	WindowEdit
	WindowTransport
	WindowMemLoc
	WindowStatus
	WindowAlt
)

var windowDefs = []switchDef{
	{"mix", Address{0x09, 0x0}},
	{"edit", Address{0x09, 0x1}},
	{"transport", Address{0x09, 0x2}},
	{"mem_loc", Address{0x09, 0x3}},
	{"status", Address{0x09, 0x4}},
	{"alt", Address{0x09, 0x5}},
}

func (s WindowFunction) Address() Address { return defAddress(windowDefs, uint8(s)) }
func (s WindowFunction) String() string   { return defString("window", windowDefs, uint8(s)) }

// zone 0x0A, scrolls the channels in view

type BankMove uint8

const (
	BankMoveChannelLeft BankMove = iota
	BankMoveBankLeft
	BankMoveChannelRight
	BankMoveBankRight
)

var bankMoveDefs = []switchDef{
	{"channel_left", Address{0x0A, 0x0}},
	{"bank_left", Address{0x0A, 0x1}},
	{"channel_right", Address{0x0A, 0x2}},
	{"bank_right", Address{0x0A, 0x3}},
}

func (s BankMove) Address() Address { return defAddress(bankMoveDefs, uint8(s)) }
func (s BankMove) String() string   { return defString("bank_move", bankMoveDefs, uint8(s)) }

// zones 0x0B and 0x0C, buttons top left of the channel strips

type Assign uint8

const (
	AssignOutput Assign = iota
	AssignInput
	AssignPan
	AssignSendE
	AssignSendD
	AssignSendC
	AssignSendB
	AssignSendA
	AssignAssign
	AssignDefault
	AssignSuspend
	AssignShift
	AssignMute
	AssignBypass
	AssignRecordReadyAll
)

var assignDefs = []switchDef{
	{"output", Address{0x0B, 0x0}},
	{"input", Address{0x0B, 0x1}},
	{"pan", Address{0x0B, 0x2}},
	{"send_e", Address{0x0B, 0x3}},
	{"send_d", Address{0x0B, 0x4}},
	{"send_c", Address{0x0B, 0x5}},
	{"send_b", Address{0x0B, 0x6}},
	{"send_a", Address{0x0B, 0x7}},
	{"assign", Address{0x0C, 0x0}},
	{"default", Address{0x0C, 0x1}},
	{"suspend", Address{0x0C, 0x2}},
	{"shift", Address{0x0C, 0x3}},
	{"mute", Address{0x0C, 0x4}},
	{"bypass", Address{0x0C, 0x5}},
	{"record_ready_all", Address{0x0C, 0x6}},
}

func (s Assign) Address() Address { return defAddress(assignDefs, uint8(s)) }
func (s Assign) String() string   { return defString("assign", assignDefs, uint8(s)) }

// zone 0x0D

type Cursor uint8

const (
	CursorDown Cursor = iota
	CursorLeft
	CursorMode
	CursorRight
	CursorUp
	CursorScrub
	CursorShuttle
)

var cursorDefs = []switchDef{
	{"down", Address{0x0D, 0x0}},
	{"left", Address{0x0D, 0x1}},
	{"mode", Address{0x0D, 0x2}},
	{"right", Address{0x0D, 0x3}},
	{"up", Address{0x0D, 0x4}},
	{"scrub", Address{0x0D, 0x5}},
	{"shuttle", Address{0x0D, 0x6}},
}

func (s Cursor) Address() Address { return defAddress(cursorDefs, uint8(s)) }
func (s Cursor) String() string   { return defString("cursor", cursorDefs, uint8(s)) }

// zones 0x0E - 0x10

type Transport uint8

const (
	TransportTalkback Transport = iota
	TransportRewind
	TransportFastFwd
	TransportStop
	TransportPlay
	TransportRecord
	TransportRTZ
	TransportEnd
	TransportOnline
	TransportLoop
	TransportQuickPunch
	TransportPunchAudition
	TransportPunchPre
	TransportPunchIn
	TransportPunchOut
	TransportPunchPost
)

var transportDefs = []switchDef{
	{"talkback", Address{0x0E, 0x0}},
	{"rewind", Address{0x0E, 0x1}},
	{"fast_fwd", Address{0x0E, 0x2}},
	{"stop", Address{0x0E, 0x3}},
	{"play", Address{0x0E, 0x4}},
	{"record", Address{0x0E, 0x5}},
	{"rtz", Address{0x0F, 0x0}},
	{"end", Address{0x0F, 0x1}},
	{"online", Address{0x0F, 0x2}},
	{"loop", Address{0x0F, 0x3}},
	{"quick_punch", Address{0x0F, 0x4}},
	{"punch_audition", Address{0x10, 0x0}},
	{"punch_pre", Address{0x10, 0x1}},
	{"punch_in", Address{0x10, 0x2}},
	{"punch_out", Address{0x10, 0x3}},
	{"punch_post", Address{0x10, 0x4}},
}

func (s Transport) Address() Address { return defAddress(transportDefs, uint8(s)) }
func (s Transport) String() string   { return defString("transport", transportDefs, uint8(s)) }

// zones 0x11 and 0x12, monitor input and output

type ControlRoom uint8

const (
	ControlRoomInput3 ControlRoom = iota
	ControlRoomInput2
	ControlRoomInput1
	ControlRoomMute
	ControlRoomDiscreteInput1to1
	ControlRoomOutput3
	ControlRoomOutput2
	ControlRoomOutput1
	ControlRoomDim
	ControlRoomMono
)

var controlRoomDefs = []switchDef{
	{"input3", Address{0x11, 0x0}},
	{"input2", Address{0x11, 0x1}},
	{"input1", Address{0x11, 0x2}},
	{"mute", Address{0x11, 0x3}},
	{"discrete_input_1to1", Address{0x11, 0x4}},
	{"output3", Address{0x12, 0x0}},
	{"output2", Address{0x12, 0x1}},
	{"output1", Address{0x12, 0x2}},
	{"dim", Address{0x12, 0x3}},
	{"mono", Address{0x12, 0x4}},
}

func (s ControlRoom) Address() Address { return defAddress(controlRoomDefs, uint8(s)) }
func (s ControlRoom) String() string   { return defString("control_room", controlRoomDefs, uint8(s)) }

// zones 0x13 - 0x15

type NumPad uint8

const (
	NumPad0 NumPad = iota
	NumPad1
	NumPad4
	NumPad2
	NumPad5
	NumPadPeriod
	NumPad3
	NumPad6
	NumPadEnter
	NumPadPlus
	NumPad7
	NumPad8
	NumPad9
	NumPadMinus
	NumPadClr
	NumPadEquals
	NumPadForwardSlash
	NumPadAsterisk
)

var numPadDefs = []switchDef{
	{"num0", Address{0x13, 0x0}},
	{"num1", Address{0x13, 0x1}},
	{"num4", Address{0x13, 0x2}},
	{"num2", Address{0x13, 0x3}},
	{"num5", Address{0x13, 0x4}},
	{"period", Address{0x13, 0x5}},
	{"num3", Address{0x13, 0x6}},
	{"num6", Address{0x13, 0x7}},
	{"enter", Address{0x14, 0x0}},
	{"plus", Address{0x14, 0x1}},
	{"num7", Address{0x15, 0x0}},
	{"num8", Address{0x15, 0x1}},
	{"num9", Address{0x15, 0x2}},
	{"minus", Address{0x15, 0x3}},
	{"clr", Address{0x15, 0x4}},
	{"equals", Address{0x15, 0x5}},
	{"forward_slash", Address{0x15, 0x6}},
	{"asterisk", Address{0x15, 0x7}},
}

func (s NumPad) Address() Address { return defAddress(numPadDefs, uint8(s)) }
func (s NumPad) String() string   { return defString("numpad", numPadDefs, uint8(s)) }

// zone 0x16, LEDs only

type TimeDisplayStatus uint8

const (
	TimeDisplayTimecode TimeDisplayStatus = iota
	TimeDisplayFeet
	TimeDisplayBeats
	TimeDisplayRudeSolo
)

var timeDisplayStatusDefs = []switchDef{
	{"timecode", Address{0x16, 0x0}},
	{"feet", Address{0x16, 0x1}},
	{"beats", Address{0x16, 0x2}},
	{"rude_solo", Address{0x16, 0x3}},
}

func (s TimeDisplayStatus) Address() Address { return defAddress(timeDisplayStatusDefs, uint8(s)) }
func (s TimeDisplayStatus) String() string {
	return defString("time_display", timeDisplayStatusDefs, uint8(s))
}

// zone 0x17

type AutoEnable uint8

const (
	AutoEnablePlugin AutoEnable = iota
	AutoEnablePan
	AutoEnableFader
	AutoEnableSendMute
	AutoEnableSend
	AutoEnableMute
)

var autoEnableDefs = []switchDef{
	{"plugin", Address{0x17, 0x0}},
	{"pan", Address{0x17, 0x1}},
	{"fader", Address{0x17, 0x2}},
	{"send_mute", Address{0x17, 0x3}},
	{"send", Address{0x17, 0x4}},
	{"mute", Address{0x17, 0x5}},
}

func (s AutoEnable) Address() Address { return defAddress(autoEnableDefs, uint8(s)) }
func (s AutoEnable) String() string   { return defString("auto_enable", autoEnableDefs, uint8(s)) }

// zone 0x18

type AutoMode uint8

const (
	AutoModeTrim AutoMode = iota
	AutoModeLatch
	AutoModeRead
	AutoModeOff
	AutoModeWrite
	AutoModeTouch
)

var autoModeDefs = []switchDef{
	{"trim", Address{0x18, 0x0}},
	{"latch", Address{0x18, 0x1}},
	{"read", Address{0x18, 0x2}},
	{"off", Address{0x18, 0x3}},
	{"write", Address{0x18, 0x4}},
	{"touch", Address{0x18, 0x5}},
}

func (s AutoMode) Address() Address { return defAddress(autoModeDefs, uint8(s)) }
func (s AutoMode) String() string   { return defString("auto_mode", autoModeDefs, uint8(s)) }

// zone 0x19

type StatusGroup uint8

const (
	StatusGroupPhase StatusGroup = iota
	StatusGroupMonitor
	StatusGroupAuto
	StatusGroupSuspend
	StatusGroupCreate
	StatusGroupGroup
)

var statusGroupDefs = []switchDef{
	{"phase", Address{0x19, 0x0}},
	{"monitor", Address{0x19, 0x1}},
	{"auto", Address{0x19, 0x2}},
	{"suspend", Address{0x19, 0x3}},
	{"create", Address{0x19, 0x4}},
	{"group", Address{0x19, 0x5}},
}

func (s StatusGroup) Address() Address { return defAddress(statusGroupDefs, uint8(s)) }
func (s StatusGroup) String() string   { return defString("status_group", statusGroupDefs, uint8(s)) }

// zone 0x1A

type Edit uint8

const (
	EditPaste Edit = iota
	EditCut
	EditCapture
	EditDelete
	EditCopy
	EditSeparate
)

var editDefs = []switchDef{
	{"paste", Address{0x1A, 0x0}},
	{"cut", Address{0x1A, 0x1}},
	{"capture", Address{0x1A, 0x2}},
	{"delete", Address{0x1A, 0x3}},
	{"copy", Address{0x1A, 0x4}},
	{"separate", Address{0x1A, 0x5}},
}

func (s Edit) Address() Address { return defAddress(editDefs, uint8(s)) }
func (s Edit) String() string   { return defString("edit", editDefs, uint8(s)) }

// zone 0x1B

type FunctionKey uint8

const (
	FunctionKeyF1 FunctionKey = iota
	FunctionKeyF2
	FunctionKeyF3
	FunctionKeyF4
	FunctionKeyF5
	FunctionKeyF6
	FunctionKeyF7
	FunctionKeyF8OrEsc
)

var functionKeyDefs = []switchDef{
	{"f1", Address{0x1B, 0x0}},
	{"f2", Address{0x1B, 0x1}},
	{"f3", Address{0x1B, 0x2}},
	{"f4", Address{0x1B, 0x3}},
	{"f5", Address{0x1B, 0x4}},
	{"f6", Address{0x1B, 0x5}},
	{"f7", Address{0x1B, 0x6}},
	{"f8_esc", Address{0x1B, 0x7}},
}

func (s FunctionKey) Address() Address { return defAddress(functionKeyDefs, uint8(s)) }
func (s FunctionKey) String() string   { return defString("function", functionKeyDefs, uint8(s)) }

// zone 0x1C, below the large display

type ParamEdit uint8

const (
	ParamEditInsertOrParam ParamEdit = iota
	ParamEditAssign
	ParamEditParam1Select
	ParamEditParam2Select
	ParamEditParam3Select
	ParamEditParam4Select
	ParamEditBypass
	ParamEditCompare
)

var paramEditDefs = []switchDef{
	{"insert_param", Address{0x1C, 0x0}},
	{"assign", Address{0x1C, 0x1}},
	{"param1_select", Address{0x1C, 0x2}},
	{"param2_select", Address{0x1C, 0x3}},
	{"param3_select", Address{0x1C, 0x4}},
	{"param4_select", Address{0x1C, 0x5}},
	{"bypass", Address{0x1C, 0x6}},
	{"compare", Address{0x1C, 0x7}},
}

func (s ParamEdit) Address() Address { return defAddress(paramEditDefs, uint8(s)) }
func (s ParamEdit) String() string   { return defString("param_edit", paramEditDefs, uint8(s)) }

// zone 0x1D, functions without a button or LED

type FootswitchSound uint8

const (
	FootswitchRelay1 FootswitchSound = iota
	FootswitchRelay2
	SoundClick
	SoundBeep
)

var footswitchSoundDefs = []switchDef{
	{"relay1", Address{0x1D, 0x0}},
	{"relay2", Address{0x1D, 0x1}},
	{"click", Address{0x1D, 0x2}},
	{"beep", Address{0x1D, 0x3}},
}

func (s FootswitchSound) Address() Address { return defAddress(footswitchSoundDefs, uint8(s)) }
func (s FootswitchSound) String() string {
	return defString("footswitch", footswitchSoundDefs, uint8(s))
}

var (
	allSwitches       []Switch
	switchesByAddress map[Address]Switch
	switchesByName    map[string]Switch
)

func init() {
	for ch := uint8(0); ch < NumStrips; ch++ {
		for p := StripParam(0); p < numStripParams; p++ {
			allSwitches = append(allSwitches, StripSwitch{Channel: ch, Param: p})
		}
	}
	for i := range hotKeyDefs {
		allSwitches = append(allSwitches, HotKey(i))
	}
	for i := range windowDefs {
		allSwitches = append(allSwitches, WindowFunction(i))
	}
	for i := range bankMoveDefs {
		allSwitches = append(allSwitches, BankMove(i))
	}
	for i := range assignDefs {
		allSwitches = append(allSwitches, Assign(i))
	}
	for i := range cursorDefs {
		allSwitches = append(allSwitches, Cursor(i))
	}
	for i := range transportDefs {
		allSwitches = append(allSwitches, Transport(i))
	}
	for i := range controlRoomDefs {
		allSwitches = append(allSwitches, ControlRoom(i))
	}
	for i := range numPadDefs {
		allSwitches = append(allSwitches, NumPad(i))
	}
	for i := range timeDisplayStatusDefs {
		allSwitches = append(allSwitches, TimeDisplayStatus(i))
	}
	for i := range autoEnableDefs {
		allSwitches = append(allSwitches, AutoEnable(i))
	}
	for i := range autoModeDefs {
		allSwitches = append(allSwitches, AutoMode(i))
	}
	for i := range statusGroupDefs {
		allSwitches = append(allSwitches, StatusGroup(i))
	}
	for i := range editDefs {
		allSwitches = append(allSwitches, Edit(i))
	}
	for i := range functionKeyDefs {
		allSwitches = append(allSwitches, FunctionKey(i))
	}
	for i := range paramEditDefs {
		allSwitches = append(allSwitches, ParamEdit(i))
	}
	for i := range footswitchSoundDefs {
		allSwitches = append(allSwitches, FootswitchSound(i))
	}

	switchesByAddress = make(map[Address]Switch, len(allSwitches))
	switchesByName = make(map[string]Switch, len(allSwitches))
	for _, s := range allSwitches {
		if _, dup := switchesByAddress[s.Address()]; dup {
			panic(fmt.Sprintf("gohui: duplicate switch address %v", s.Address()))
		}
		switchesByAddress[s.Address()] = s
		switchesByName[s.String()] = s
	}
}

// AllSwitches returns every switch with a known address.
func AllSwitches() []Switch {
	return append([]Switch(nil), allSwitches...)
}

// LookupSwitch returns the switch at the given address.
func LookupSwitch(a Address) (Switch, bool) {
	s, ok := switchesByAddress[a]
	return s, ok
}

// ParseSwitch returns the switch with the given name as produced by its
// String method, e.g. "transport.play" or "channel3.solo". Case and
// surrounding whitespace are ignored.
func ParseSwitch(name string) (Switch, bool) {
	s, ok := switchesByName[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}
