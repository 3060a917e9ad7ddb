// Package obs keeps the connection to OBS Studio and translates between obs
// events and the messages of the hui package.
package obs

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/andreykaipov/goobs"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/andreykaipov/goobs/api/events"
	"github.com/andreykaipov/goobs/api/events/subscriptions"
	"github.com/andreykaipov/goobs/api/requests/general"
	"github.com/andreykaipov/goobs/api/requests/inputs"
	"github.com/andreykaipov/goobs/api/requests/scenes"

	"github.com/normen/obs-hui/config"
	"github.com/normen/obs-hui/msg"
)

const retryDelay = 3 * time.Second

var ShowHotkeyNames bool

var logger = zap.NewNop()
var waitGroup *sync.WaitGroup

var client *goobs.Client
var interrupt chan os.Signal
var connection chan int
var synch chan func()
var connected bool

var connectRetry *time.Timer
var channels *ChannelList
var states *ObsStates
var fromHui chan interface{}
var fromObs chan interface{}
var clientInputChannel chan interface{}
var timecode string

// Starts the runloop that manages the connection to OBS
func InitObs(in chan interface{}, out chan interface{}, wg *sync.WaitGroup, log *zap.Logger) {
	fromHui = in
	fromObs = out
	waitGroup = wg
	logger = log.Named("obs")
	channels = NewChannelList(config.ChannelCount())
	states = NewObsStates(config.Config.HuiLeds)
	interrupt = make(chan os.Signal, 1)
	connection = make(chan int, 1)
	synch = make(chan func(), 1)
	signal.Notify(interrupt, os.Interrupt)
	wg.Add(1)
	go runLoop()
	// start connection by sending connection state "0"
	connection <- 0
}

// Tries to connect to OBS, called by the runloop
func connect() error {
	if client != nil {
		client.Disconnect()
	}
	var err error
	// TODO: this blocks the runloop while obs is starting, connect in a goroutine and hand the client over
	client, err = goobs.New(config.Config.General.ObsHost,
		goobs.WithPassword(config.Config.General.ObsPassword),
		goobs.WithEventSubscriptions(subscriptions.All|subscriptions.InputActiveStateChanged))
	if err != nil {
		client = nil
		return fmt.Errorf("connect to %s: %w", config.Config.General.ObsHost, err)
	}

	// Careful: changing this can only happen here because the loop calls connect()
	clientInputChannel = client.IncomingEvents

	version, err := client.General.GetVersion()
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}
	logger.Info("connected",
		zap.String("obs", version.ObsVersion),
		zap.String("websocket", version.ObsWebSocketVersion))

	resp, err := client.Inputs.GetInputList()
	if err != nil {
		return fmt.Errorf("get inputs: %w", err)
	}
	for _, v := range resp.Inputs {
		channels.AddInput(v.InputName)
	}
	if err := channels.UpdateSpecialInputs(); err != nil {
		logger.Warn("special inputs", zap.Error(err))
	}
	if err := channels.UpdateVisible(); err != nil {
		logger.Warn("visible inputs", zap.Error(err))
	}
	scene, err := client.Scenes.GetCurrentProgramScene()
	if err == nil {
		fromObs <- msg.DisplayTextMessage{
			Text: scene.CurrentProgramSceneName,
		}
	}
	updateOutputStates()
	if ShowHotkeyNames {
		hotkeys, err := client.General.GetHotkeyList()
		if err == nil {
			for _, key := range hotkeys.Hotkeys {
				logger.Info("hotkey", zap.String("name", key))
			}
		}
	}
	connected = true
	return nil
}

// Tries to reconnect to OBS, called by the runloop
func retryConnect() {
	logger.Debug("retry OBS connection", zap.Duration("in", retryDelay))
	if connectRetry != nil {
		connectRetry.Stop()
	}
	connectRetry = time.AfterFunc(retryDelay, func() { connection <- 0 })
}

// Disconnects from OBS, called by the runloop
func disconnect() {
	connected = false
	channels.Clear()
	if client != nil {
		client.Disconnect()
	}
}

func updateOutputStates() {
	if stream, err := client.Stream.GetStreamStatus(); err == nil {
		states.SetState("StreamState", stream.OutputActive)
	}
	if record, err := client.Record.GetRecordStatus(); err == nil {
		states.SetState("RecordState", record.OutputActive)
	}
}

// polls the running output for the time display
func updateTimecode() {
	tc := ""
	if stream, err := client.Stream.GetStreamStatus(); err == nil && stream.OutputActive {
		tc = stream.OutputTimecode
	} else if record, err := client.Record.GetRecordStatus(); err == nil && record.OutputActive {
		tc = record.OutputTimecode
	}
	if tc != timecode {
		timecode = tc
		fromObs <- msg.TimeTextMessage{Text: formatTimecode(tc)}
	}
}

// formatTimecode turns "HH:MM:SS.mmm" into "HH.MM.SS.hh" for the time
// display.
func formatTimecode(tc string) string {
	hms, frac, found := strings.Cut(tc, ".")
	hms = strings.ReplaceAll(hms, ":", ".")
	if !found || frac == "" {
		return hms
	}
	if len(frac) > 2 {
		frac = frac[:2]
	}
	return hms + "." + frac
}

func runCommand(cmdType, value string) error {
	var err error
	switch cmdType {
	case "SCENE":
		_, err = client.Scenes.SetCurrentProgramScene(&scenes.SetCurrentProgramSceneParams{SceneName: &value})
	case "STREAM":
		switch value {
		case "start":
			_, err = client.Stream.StartStream()
		case "stop":
			_, err = client.Stream.StopStream()
		case "toggle":
			_, err = client.Stream.ToggleStream()
		default:
			err = fmt.Errorf("unknown stream command %q", value)
		}
	case "RECORD":
		switch value {
		case "start":
			_, err = client.Record.StartRecord()
		case "stop":
			_, err = client.Record.StopRecord()
		case "toggle":
			_, err = client.Record.ToggleRecord()
		default:
			err = fmt.Errorf("unknown record command %q", value)
		}
	default:
		err = fmt.Errorf("unknown command %s:%s", cmdType, value)
	}
	return err
}

// Processes a message from the HUI,
// called by the runloop when a message is received
func processHuiMessage(message interface{}) {
	if !connected {
		return
	}
	var err error
	switch e := message.(type) {
	case msg.FaderMessage:
		if name := channels.GetVisibleName(e.FaderNumber); name != "" {
			_, err = client.Inputs.SetInputVolume(&inputs.SetInputVolumeParams{
				InputName:      &name,
				InputVolumeMul: &e.FaderValue,
			})
		}
	case msg.SoloMessage:
		if name := channels.GetVisibleName(e.FaderNumber); name != "" {
			mon := channels.ToggledMonitorType(name)
			_, err = client.Inputs.SetInputAudioMonitorType(&inputs.SetInputAudioMonitorTypeParams{InputName: &name, MonitorType: &mon})
		}
	case msg.MuteMessage:
		if name := channels.GetVisibleName(e.FaderNumber); name != "" {
			_, err = client.Inputs.ToggleInputMute(&inputs.ToggleInputMuteParams{InputName: &name})
		}
	case msg.KeyMessage:
		_, err = client.General.TriggerHotkeyByName(&general.TriggerHotkeyByNameParams{HotkeyName: &e.HotkeyName})
	case msg.CommandMessage:
		err = runCommand(e.Type, e.Value)
	case msg.BankMessage:
		channels.ChangeFaderBank(e.ChangeAmount)
	case msg.SelectMessage:
		channels.SetSelected(e.FaderNumber)
	case msg.UpdateRequest:
		channels.SyncHui()
	case msg.VPotButtonMessage:
		if name := channels.GetVisibleName(e.FaderNumber); name != "" {
			center := 0.5
			_, err = client.Inputs.SetInputAudioBalance(&inputs.SetInputAudioBalanceParams{InputName: &name, InputAudioBalance: &center})
		}
	case msg.VPotChangeMessage:
		if name := channels.GetVisibleName(e.FaderNumber); name != "" {
			newPan := channels.PanBy(name, e.ChangeAmount)
			_, err = client.Inputs.SetInputAudioBalance(&inputs.SetInputAudioBalanceParams{InputName: &name, InputAudioBalance: &newPan})
		}
	case msg.PresenceMessage:
		logger.Info("surface presence", zap.String("bank", e.Bank), zap.Bool("present", e.Present))
	}
	if err != nil {
		logger.Warn("request failed", zap.String("message", fmt.Sprintf("%T", message)), zap.Error(err))
	}
}

// Processes a message from OBS,
// called by the runloop when a message is received
func processObsMessage(event interface{}) {
	switch e := event.(type) {
	case *events.InputActiveStateChanged:
		channels.SetVisible(e.InputName, e.VideoActive)
	case *events.InputMuteStateChanged:
		channels.SetMuted(e.InputName, e.InputMuted)
	case *events.InputVolumeChanged:
		channels.SetVolume(e.InputName, e.InputVolumeMul)
	case *events.InputNameChanged:
		channels.RenameChannel(e.OldInputName, e.InputName)
	case *events.InputAudioMonitorTypeChanged:
		channels.SetMonitorType(e.InputName, e.MonitorType)
	case *events.InputCreated:
		channels.AddInput(e.InputName)
	case *events.InputRemoved:
		channels.RemoveChannel(e.InputName)
	case *events.CurrentProgramSceneChanged:
		fromObs <- msg.DisplayTextMessage{
			Text: e.SceneName,
		}
	case *events.InputAudioBalanceChanged:
		channels.SetPan(e.InputName, e.InputAudioBalance)
	case *events.StreamStateChanged:
		states.SetState("StreamState", e.OutputActive)
	case *events.RecordStateChanged:
		states.SetState("RecordState", e.OutputActive)
	case *events.ExitStarted:
		logger.Info("OBS is shutting down")
		connected = false
		channels.Clear()
		retryConnect()
	case *websocket.CloseError:
		logger.Info("OBS connection closed", zap.Int("code", e.Code))
		if connected {
			connected = false
			channels.Clear()
			retryConnect()
		}
	case error:
		var closeErr *websocket.CloseError
		if errors.As(e, &closeErr) {
			processObsMessage(closeErr)
			return
		}
		logger.Debug("OBS error", zap.Error(e))
	}
}

// Handles an error by logging it and retrying to connect
func handle(err error) {
	if err != nil {
		logger.Info("OBS not connected", zap.Error(err))
		retryConnect()
	}
}

// The runloop that manages the connection to OBS
func runLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-interrupt:
			disconnect()
			logger.Info("ending OBS runloop")
			waitGroup.Done()
			return
		case function := <-synch:
			function()
		case state := <-connection:
			switch state {
			case 0:
				handle(connect())
			}
		case <-ticker.C:
			if connected && config.Config.HuiFaders.ShowTimecode {
				updateTimecode()
			}
		case message := <-fromHui:
			processHuiMessage(message)
		case msg := <-clientInputChannel:
			processObsMessage(msg)
		}
	}
}
