package msg

// sent by hui to obs

type KeyMessage struct {
	HotkeyName string
}

// CommandMessage is a [hui_buttons] command that is not a hotkey, e.g.
// Type "SCENE" and Value "Live".
type CommandMessage struct {
	Type  string
	Value string
}

type UpdateRequest struct {
}

type BankMessage struct {
	ChangeAmount int
}

type VPotChangeMessage struct {
	FaderNumber  int
	ChangeAmount int
}

// VPotButtonMessage is a press on a V-Pot, it centers the balance.
type VPotButtonMessage struct {
	FaderNumber int
}

// PresenceMessage reports a surface showing up or going away.
type PresenceMessage struct {
	Bank    string
	Present bool
}

// sent both ways, FaderNumber counts across all banks

type FaderMessage struct {
	FaderNumber int
	FaderValue  float64
}

type MuteMessage struct {
	FaderNumber int
	Value       bool
}

// SoloMessage toggles monitoring of an input.
type SoloMessage struct {
	FaderNumber int
	Value       bool
}

type SelectMessage struct {
	FaderNumber int
	Value       bool
}

// sent by obs to hui

type ChannelTextMessage struct {
	FaderNumber int
	Text        string
}

type VPotLedMessage struct {
	FaderNumber int
	Position    float64
}

// DisplayTextMessage goes to the upper row of the large display.
type DisplayTextMessage struct {
	Text string
}

type TimeTextMessage struct {
	Text string
}

type AssignTextMessage struct {
	Text string
}

type LedMessage struct {
	LedName  string
	LedState bool
}
