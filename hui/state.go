package hui

import (
	"strings"
	"time"

	"github.com/normen/obs-hui/gohui"
	"go.uber.org/zap"
)

// width of one channel cell on the lower row of the large display
const cellWidth = 5

// HuiState caches what was sent to one surface and only transmits changes.
// A touched fader is not moved, its last requested level is sent once the
// fader is released.
type HuiState struct {
	transmit     func(gohui.Event) error
	logger       *zap.Logger
	touchTimeout time.Duration
	now          func() time.Time

	FaderLevels         [gohui.NumStrips]uint16
	FaderLevelsBuffered [gohui.NumStrips]uint16
	FaderTouch          [gohui.NumStrips]bool
	FaderMoved          [gohui.NumStrips]time.Time
	LedStates           map[gohui.Switch]bool
	VPotLedStates       [gohui.NumStrips]gohui.VPotDisplay
	Names               [gohui.NumStrips]gohui.SmallText
	Cells               [gohui.NumStrips]string
	Text                string
	Time                gohui.TimeText
	Assign              gohui.SmallText
}

func NewHuiState(transmit func(gohui.Event) error, touchTimeout time.Duration, logger *zap.Logger) *HuiState {
	if logger == nil {
		logger = zap.NewNop()
	}
	state := &HuiState{
		transmit:     transmit,
		logger:       logger,
		touchTimeout: touchTimeout,
		now:          time.Now,
		LedStates:    make(map[gohui.Switch]bool),
		Time:         gohui.BlankTimeText(),
		Assign:       gohui.BlankSmallText(),
	}
	for i := range state.Names {
		state.Names[i] = gohui.BlankSmallText()
	}
	return state
}

func (m *HuiState) send(ev gohui.Event) {
	if err := m.transmit(ev); err != nil {
		m.logger.Debug("transmit failed", zap.Stringer("event", ev), zap.Error(err))
	}
}

func (m *HuiState) touched(fader uint8) bool {
	if m.FaderTouch[fader] {
		return true
	}
	return m.now().Sub(m.FaderMoved[fader]) < m.touchTimeout
}

// Update sends the levels of faders that were released or stopped moving.
func (m *HuiState) Update() {
	for i := range m.FaderLevelsBuffered {
		fader := uint8(i)
		if !m.touched(fader) && m.FaderLevels[i] != m.FaderLevelsBuffered[i] {
			m.sendFader(fader)
		}
	}
}

// SetFaderTouched handles the touch switch of a fader.
func (m *HuiState) SetFaderTouched(fader uint8, touched bool) {
	if fader >= gohui.NumStrips {
		return
	}
	m.FaderTouch[fader] = touched
	if !touched {
		m.Update()
	}
}

// SetFaderMoved records a level coming from the surface, the motor is
// already there.
func (m *HuiState) SetFaderMoved(fader uint8, level uint16) {
	if fader >= gohui.NumStrips {
		return
	}
	m.FaderMoved[fader] = m.now()
	m.FaderLevels[fader] = level
	m.FaderLevelsBuffered[fader] = level
}

func (m *HuiState) SetFaderLevel(fader uint8, level float64) {
	if fader >= gohui.NumStrips {
		return
	}
	m.FaderLevelsBuffered[fader] = VolumeToFader(level)
	if m.FaderLevels[fader] != m.FaderLevelsBuffered[fader] && !m.touched(fader) {
		m.sendFader(fader)
	}
}

func (m *HuiState) sendFader(fader uint8) {
	m.FaderLevels[fader] = m.FaderLevelsBuffered[fader]
	m.send(gohui.FaderLevelEvent{Channel: fader, Level: m.FaderLevels[fader]})
}

func (m *HuiState) SetMuteState(fader uint8, state bool) {
	m.SendLed(gohui.StripSwitch{Channel: fader, Param: gohui.StripMute}, state)
}

func (m *HuiState) SetSoloState(fader uint8, state bool) {
	m.SendLed(gohui.StripSwitch{Channel: fader, Param: gohui.StripSolo}, state)
}

func (m *HuiState) SetSelectState(fader uint8, state bool) {
	m.SendLed(gohui.StripSwitch{Channel: fader, Param: gohui.StripSelect}, state)
}

func (m *HuiState) SendLed(sw gohui.Switch, state bool) {
	if m.LedStates[sw] == state {
		return
	}
	m.LedStates[sw] = state
	m.send(gohui.SwitchEvent{Switch: sw, State: state})
}

func (m *HuiState) SetVPot(fader uint8, display gohui.VPotDisplay) {
	if fader >= gohui.NumStrips || m.VPotLedStates[fader] == display {
		return
	}
	m.VPotLedStates[fader] = display
	m.send(gohui.VPotDisplayEvent{Pot: gohui.ChannelVPot(fader), Display: display})
}

func (m *HuiState) SetChannelText(fader uint8, text string) {
	if fader >= gohui.NumStrips {
		return
	}
	name := gohui.NewSmallText(ShortenText(text, len(gohui.SmallText{})))
	if m.Names[fader] == name {
		return
	}
	m.Names[fader] = name
	m.send(gohui.ChannelNameEvent{Channel: fader, Text: name})
}

// SetCellText sets the lower row of the large display below a channel.
func (m *HuiState) SetCellText(fader uint8, text string) {
	if fader >= gohui.NumStrips {
		return
	}
	text = ShortenText(text, cellWidth)
	if m.Cells[fader] == text {
		return
	}
	m.Cells[fader] = text
	m.sendLarge()
}

// SetDisplayText sets the upper row of the large display.
func (m *HuiState) SetDisplayText(text string) {
	if m.Text == text {
		return
	}
	m.Text = text
	m.sendLarge()
}

func (m *HuiState) sendLarge() {
	var lower strings.Builder
	for _, cell := range m.Cells {
		if cell == "" {
			cell = strings.Repeat(" ", cellWidth)
		}
		lower.WriteString(cell)
	}
	m.send(gohui.LargeDisplayEvent{
		Top:    gohui.NewLargeRow(m.Text),
		Bottom: gohui.NewLargeRow(lower.String()),
	})
}

// SetTimeText shows text on the time display. Only digits, spaces and dots
// can be shown.
func (m *HuiState) SetTimeText(text string) error {
	t, err := gohui.NewTimeText(text)
	if err != nil {
		return err
	}
	if m.Time == t {
		return nil
	}
	m.Time = t
	m.send(gohui.TimeDisplayEvent{Text: t})
	return nil
}

func (m *HuiState) SetAssignText(text string) {
	t := gohui.NewSmallText(text)
	if m.Assign == t {
		return
	}
	m.Assign = t
	m.send(gohui.SelectAssignDisplayEvent{Text: t})
}

// SendAll transmits the whole cache, a surface forgets everything when it
// resets.
func (m *HuiState) SendAll() {
	for i := range m.FaderLevels {
		fader := uint8(i)
		m.FaderLevels[i] = m.FaderLevelsBuffered[i]
		m.send(gohui.FaderLevelEvent{Channel: fader, Level: m.FaderLevels[i]})
		m.send(gohui.VPotDisplayEvent{Pot: gohui.ChannelVPot(fader), Display: m.VPotLedStates[i]})
		m.send(gohui.ChannelNameEvent{Channel: fader, Text: m.Names[i]})
	}
	for sw, state := range m.LedStates {
		m.send(gohui.SwitchEvent{Switch: sw, State: state})
	}
	m.sendLarge()
	m.send(gohui.TimeDisplayEvent{Text: m.Time})
	m.send(gohui.SelectAssignDisplayEvent{Text: m.Assign})
}
