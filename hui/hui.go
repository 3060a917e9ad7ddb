// Package hui connects the configured HUI surfaces and translates between
// their events and the messages of the obs package.
package hui

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/normen/obs-hui/config"
	"github.com/normen/obs-hui/gohui"
	"github.com/normen/obs-hui/msg"
	"github.com/normen/obs-hui/session"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
	"go.uber.org/zap"
)

const retryDelay = 3 * time.Second

var errNotConnected = errors.New("midi port not connected")

var logger *zap.Logger
var host *session.Host
var conns []*bankConn
var commands map[gohui.Switch]string

var fromObs chan interface{}
var fromHui chan interface{}
var internalHui chan interface{}
var interrupt chan os.Signal
var connection chan *bankConn
var done chan struct{}
var waitGroup *sync.WaitGroup

type bankEvent struct {
	conn  *bankConn
	event gohui.Event
}

type presenceEvent struct {
	conn    *bankConn
	present bool
}

// get a list of midi outputs
func GetMidiOutputs() []string {
	outs := midi.GetOutPorts()
	var names []string
	for _, output := range outs {
		names = append(names, output.String())
	}
	return names
}

// get a list of midi inputs
func GetMidiInputs() []string {
	ins := midi.GetInPorts()
	var names []string
	for _, input := range ins {
		names = append(names, input.String())
	}
	return names
}

// InitHui starts a bank for every configured surface and the runloop that
// owns them.
func InitHui(fHui chan interface{}, fObs chan interface{}, wg *sync.WaitGroup, log *zap.Logger) {
	fromHui = fHui
	fromObs = fObs
	waitGroup = wg
	logger = log.Named("hui")
	internalHui = make(chan interface{}, 100)
	interrupt = make(chan os.Signal, 1)
	done = make(chan struct{})
	signal.Notify(interrupt, os.Interrupt)
	commands = parseCommands(config.Config.HuiButtons, logger)

	host = session.NewHost(
		session.WithPingInterval(config.Config.General.PingInterval),
		session.WithHostLogger(logger),
	)
	bankConfigs := config.Banks()
	connection = make(chan *bankConn, len(bankConfigs))
	for _, cfg := range bankConfigs {
		c := newBankConn(cfg)
		conns = append(conns, c)
		connection <- c
	}
	wg.Add(1)
	go runLoop()
}

// parseCommands maps the [hui_buttons] section to switches.
func parseCommands(buttons map[string]string, logger *zap.Logger) map[gohui.Switch]string {
	ret := make(map[gohui.Switch]string)
	for name, command := range buttons {
		if command == "" {
			continue
		}
		sw, ok := gohui.ParseSwitch(name)
		if !ok {
			logger.Warn("unknown switch in hui_buttons", zap.String("switch", name))
			continue
		}
		ret[sw] = command
	}
	return ret
}

// bankConn is one configured surface and its MIDI ports.
type bankConn struct {
	cfg    config.BankConfig
	logger *zap.Logger
	bank   *session.Bank
	state  *HuiState
	retry  *time.Timer

	mu     sync.Mutex
	input  drivers.In
	output drivers.Out
	sendFn func(midi.Message) error
	stop   func()
}

func newBankConn(cfg config.BankConfig) *bankConn {
	c := &bankConn{
		cfg:    cfg,
		logger: logger.With(zap.String("bank", cfg.Name)),
	}
	c.bank = host.AddBank(c.send,
		session.WithLogger(c.logger),
		session.WithPresenceTimeout(cfg.PresenceTimeout),
		session.WithEventHandler(func(ev gohui.Event) {
			post(bankEvent{conn: c, event: ev})
		}),
		session.WithPresenceHandler(func(present bool) {
			post(presenceEvent{conn: c, present: present})
		}),
	)
	c.state = NewHuiState(c.bank.Transmit, config.Config.HuiFaders.TouchTimeout, c.logger)
	return c
}

// post hands a bank callback to the runloop, dropped once the loop ended
func post(m interface{}) {
	select {
	case internalHui <- m:
	case <-done:
	}
}

func (c *bankConn) send(m midi.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendFn == nil {
		return errNotConnected
	}
	return c.sendFn(m)
}

func (c *bankConn) connect() {
	c.disconnect()

	input, err := midi.FindInPort(c.cfg.PortIn)
	if err != nil {
		c.logger.Info("could not find MIDI input", zap.String("port", c.cfg.PortIn))
		c.retryConnect()
		return
	}
	output, err := midi.FindOutPort(c.cfg.PortOut)
	if err != nil {
		c.logger.Info("could not find MIDI output", zap.String("port", c.cfg.PortOut))
		c.retryConnect()
		return
	}
	if err = input.Open(); err != nil {
		c.logger.Warn("could not open MIDI input", zap.String("port", c.cfg.PortIn), zap.Error(err))
		c.retryConnect()
		return
	}
	if err = output.Open(); err != nil {
		input.Close()
		c.logger.Warn("could not open MIDI output", zap.String("port", c.cfg.PortOut), zap.Error(err))
		c.retryConnect()
		return
	}
	sendFn, err := midi.SendTo(output)
	if err != nil {
		input.Close()
		output.Close()
		c.logger.Warn("could not send to MIDI output", zap.Error(err))
		c.retryConnect()
		return
	}

	c.bank.Reset()
	c.mu.Lock()
	c.input, c.output, c.sendFn = input, output, sendFn
	c.mu.Unlock()

	stop, err := midi.ListenTo(input, func(m midi.Message, timestampms int32) {
		c.bank.MIDIIn(m)
	}, midi.UseSysEx())
	if err != nil {
		c.logger.Warn("could not listen to MIDI input", zap.Error(err))
		c.retryConnect()
		return
	}
	c.mu.Lock()
	c.stop = stop
	c.mu.Unlock()

	c.state.SendAll()
	c.logger.Info("MIDI connected", zap.String("in", c.cfg.PortIn), zap.String("out", c.cfg.PortOut))
}

func (c *bankConn) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.sendFn = nil
	if c.input != nil {
		if err := c.input.Close(); err != nil {
			c.logger.Warn("closing MIDI input", zap.Error(err))
		}
		c.input = nil
	}
	if c.output != nil {
		if err := c.output.Close(); err != nil {
			c.logger.Warn("closing MIDI output", zap.Error(err))
		}
		c.output = nil
	}
}

func (c *bankConn) retryConnect() {
	c.logger.Debug("retry MIDI connection", zap.Duration("in", retryDelay))
	c.disconnect()
	if c.retry != nil {
		c.retry.Stop()
	}
	c.retry = time.AfterFunc(retryDelay, func() {
		select {
		case connection <- c:
		case <-done:
		}
	})
}

func (c *bankConn) checkMidiConnection() bool {
	c.mu.Lock()
	input := c.input
	c.mu.Unlock()
	if input == nil {
		return false
	}
	if !input.IsOpen() {
		c.retryConnect()
		return false
	}
	return true
}

// fader returns the strip of a global fader number on this bank.
func (c *bankConn) fader(number int) (uint8, bool) {
	ch := number - c.cfg.FirstChannel
	if ch < 0 || ch >= gohui.NumStrips {
		return 0, false
	}
	return uint8(ch), true
}

func (c *bankConn) number(ch uint8) int {
	return c.cfg.FirstChannel + int(ch)
}

func findFader(number int) (*bankConn, uint8, bool) {
	for _, c := range conns {
		if ch, ok := c.fader(number); ok {
			return c, ch, true
		}
	}
	return nil, 0, false
}

// splits a "TYPE:value" command from the config
func parseCommand(command string) (interface{}, error) {
	cmdType, cmdString, found := strings.Cut(command, ":")
	if !found || cmdString == "" {
		return nil, fmt.Errorf("malformed command %q", command)
	}
	switch cmdType {
	case "KEY":
		return msg.KeyMessage{HotkeyName: cmdString}, nil
	case "SCENE", "STREAM", "RECORD":
		return msg.CommandMessage{Type: cmdType, Value: cmdString}, nil
	}
	return nil, fmt.Errorf("unknown command type %q", cmdType)
}

// translates an event from a surface to obs messages
func processHuiEvent(c *bankConn, event gohui.Event) []interface{} {
	switch e := event.(type) {
	case gohui.FaderLevelEvent:
		c.state.SetFaderMoved(e.Channel, e.Level)
		return []interface{}{msg.FaderMessage{
			FaderNumber: c.number(e.Channel),
			FaderValue:  FaderToVolume(e.Level),
		}}
	case gohui.VPotDeltaEvent:
		if !e.Pot.IsChannel() {
			return nil
		}
		return []interface{}{msg.VPotChangeMessage{
			FaderNumber:  c.number(uint8(e.Pot)),
			ChangeAmount: e.Delta,
		}}
	case gohui.JogWheelEvent:
		return []interface{}{msg.BankMessage{ChangeAmount: e.Delta}}
	case gohui.UnhandledSwitchEvent:
		c.logger.Debug("unhandled switch", zap.Stringer("event", e))
		return nil
	case gohui.SwitchEvent:
		return processSwitch(c, e)
	}
	return nil
}

func processSwitch(c *bankConn, e gohui.SwitchEvent) []interface{} {
	if s, ok := e.Switch.(gohui.StripSwitch); ok && s.Param == gohui.StripFaderTouched {
		c.state.SetFaderTouched(s.Channel, e.State)
		return nil
	}
	// avoid releases for the other commands
	if !e.State {
		return nil
	}
	switch s := e.Switch.(type) {
	case gohui.StripSwitch:
		number := c.number(s.Channel)
		switch s.Param {
		case gohui.StripMute:
			return []interface{}{msg.MuteMessage{FaderNumber: number}}
		case gohui.StripSolo:
			return []interface{}{msg.SoloMessage{FaderNumber: number}}
		case gohui.StripSelect:
			return []interface{}{msg.SelectMessage{FaderNumber: number, Value: true}}
		case gohui.StripVPotSelect:
			return []interface{}{msg.VPotButtonMessage{FaderNumber: number}}
		}
	case gohui.BankMove:
		var amount int
		switch s {
		case gohui.BankMoveBankLeft:
			amount = -gohui.NumStrips
		case gohui.BankMoveBankRight:
			amount = gohui.NumStrips
		case gohui.BankMoveChannelLeft:
			amount = -1
		case gohui.BankMoveChannelRight:
			amount = 1
		}
		return []interface{}{msg.BankMessage{ChangeAmount: amount}}
	}
	command, ok := commands[e.Switch]
	if !ok {
		return nil
	}
	m, err := parseCommand(command)
	if err != nil {
		c.logger.Warn("bad command", zap.Stringer("switch", e.Switch), zap.Error(err))
		return nil
	}
	c.logger.Debug("command", zap.Stringer("switch", e.Switch), zap.String("command", command))
	return []interface{}{m}
}

// applies a message from obs to the surfaces
func processObsMessage(message interface{}) {
	switch e := message.(type) {
	case msg.FaderMessage:
		if c, ch, ok := findFader(e.FaderNumber); ok {
			c.state.SetFaderLevel(ch, e.FaderValue)
			c.state.SetCellText(ch, VolumeText(e.FaderValue))
		}
	case msg.MuteMessage:
		if c, ch, ok := findFader(e.FaderNumber); ok {
			c.state.SetMuteState(ch, e.Value)
		}
	case msg.SoloMessage:
		if c, ch, ok := findFader(e.FaderNumber); ok {
			c.state.SetSoloState(ch, e.Value)
		}
	case msg.SelectMessage:
		for _, c := range conns {
			for ch := uint8(0); ch < gohui.NumStrips; ch++ {
				c.state.SetSelectState(ch, e.Value && c.number(ch) == e.FaderNumber)
			}
		}
	case msg.ChannelTextMessage:
		if c, ch, ok := findFader(e.FaderNumber); ok {
			c.state.SetChannelText(ch, e.Text)
		}
	case msg.VPotLedMessage:
		if c, ch, ok := findFader(e.FaderNumber); ok {
			c.state.SetVPot(ch, PanToVPot(e.Position))
		}
	case msg.DisplayTextMessage:
		for _, c := range conns {
			c.state.SetDisplayText(e.Text)
		}
	case msg.TimeTextMessage:
		for _, c := range conns {
			if err := c.state.SetTimeText(e.Text); err != nil {
				c.logger.Debug("time display", zap.Error(err))
			}
		}
	case msg.AssignTextMessage:
		for _, c := range conns {
			c.state.SetAssignText(e.Text)
		}
	case msg.LedMessage:
		sw, ok := gohui.ParseSwitch(e.LedName)
		if !ok {
			logger.Warn("could not find led", zap.String("led", e.LedName))
			return
		}
		for _, c := range conns {
			c.state.SendLed(sw, e.LedState)
		}
	}
}

func processInternal(message interface{}) {
	switch e := message.(type) {
	case bankEvent:
		for _, m := range processHuiEvent(e.conn, e.event) {
			fromHui <- m
		}
	case presenceEvent:
		if e.present {
			e.conn.state.SendAll()
			fromHui <- msg.UpdateRequest{}
		}
		fromHui <- msg.PresenceMessage{Bank: e.conn.cfg.Name, Present: e.present}
	}
}

func shutdown() {
	close(done)
	for _, c := range conns {
		if c.retry != nil {
			c.retry.Stop()
		}
	}
	host.Close()
	for _, c := range conns {
		c.disconnect()
	}
}

// only writes messages, the banks do the reading
func runLoop() {
	touch := time.NewTicker(100 * time.Millisecond)
	defer touch.Stop()
	check := time.NewTicker(time.Second)
	defer check.Stop()
	for {
		select {
		case <-touch.C:
			for _, c := range conns {
				c.state.Update()
			}
		case <-check.C:
			for _, c := range conns {
				c.checkMidiConnection()
			}
		case c := <-connection:
			c.connect()
		case <-interrupt:
			logger.Info("ending HUI runloop")
			shutdown()
			waitGroup.Done()
			return
		case message := <-fromObs:
			processObsMessage(message)
		case message := <-internalHui:
			processInternal(message)
		}
	}
}
