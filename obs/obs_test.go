package obs

import (
	"fmt"
	"testing"

	"github.com/andreykaipov/goobs/api/events"
	"github.com/gorilla/websocket"
	"github.com/normen/obs-hui/msg"
	"go.uber.org/zap/zaptest"
)

// setup replaces the package channels and lists, obs is not connected
func setup(t *testing.T, width int, leds map[string]string) {
	t.Helper()
	logger = zaptest.NewLogger(t)
	fromObs = make(chan interface{}, 512)
	synch = make(chan func(), 64)
	connection = make(chan int, 1)
	client = nil
	connected = false
	channels = NewChannelList(width)
	states = NewObsStates(leds)
	t.Cleanup(func() {
		if channels.syncRetry != nil {
			channels.syncRetry.Stop()
		}
		if connectRetry != nil {
			connectRetry.Stop()
		}
	})
}

func drain() []interface{} {
	var out []interface{}
	for {
		select {
		case m := <-fromObs:
			out = append(out, m)
		default:
			return out
		}
	}
}

func addVisible(names ...string) {
	for _, name := range names {
		channels.AddChannel(name)
		channels.setVisible(name, true)
	}
}

func TestFormatTimecode(t *testing.T) {
	tests := map[string]string{
		"01:02:03.456": "01.02.03.45",
		"00:00:00.000": "00.00.00.00",
		"00:00:07.5":   "00.00.07.5",
		"00:10:00":     "00.10.00",
		"":             "",
	}
	for in, want := range tests {
		if got := formatTimecode(in); got != want {
			t.Errorf("formatTimecode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProcessObsMessage(t *testing.T) {
	setup(t, 8, map[string]string{"transport.play": "STATE:StreamState"})
	addVisible("Mic", "Desktop Audio")
	drain()

	processObsMessage(&events.InputMuteStateChanged{InputName: "Mic", InputMuted: true})
	processObsMessage(&events.InputVolumeChanged{InputName: "Desktop Audio", InputVolumeMul: 0.5})
	processObsMessage(&events.InputAudioMonitorTypeChanged{InputName: "Mic", MonitorType: MonitorOnly})
	processObsMessage(&events.InputAudioBalanceChanged{InputName: "Mic", InputAudioBalance: 0.25})
	processObsMessage(&events.CurrentProgramSceneChanged{SceneName: "Live"})
	processObsMessage(&events.StreamStateChanged{OutputActive: true})
	processObsMessage(&events.RecordStateChanged{OutputActive: true})
	processObsMessage(&events.InputMuteStateChanged{InputName: "Unknown", InputMuted: true})

	want := []interface{}{
		msg.MuteMessage{FaderNumber: 1, Value: true},
		msg.FaderMessage{FaderNumber: 0, FaderValue: 0.5},
		msg.SoloMessage{FaderNumber: 1, Value: true},
		msg.VPotLedMessage{FaderNumber: 1, Position: 0.25},
		msg.DisplayTextMessage{Text: "Live"},
		msg.LedMessage{LedName: "transport.play", LedState: true},
	}
	got := drain()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got  %v\nwant %v", got, want)
	}
}

func TestProcessObsRename(t *testing.T) {
	setup(t, 8, nil)
	addVisible("Mic")
	channels.SetMuted("Mic", true)
	channels.SelectedChannel = "Mic"
	processObsMessage(&events.InputNameChanged{OldInputName: "Mic", InputName: "Voice"})
	if channels.GetVisibleName(0) != "Voice" || channels.SelectedChannel != "Voice" {
		t.Fatalf("rename lost: %v", channels.GetVisible())
	}
	if !channels.GetVisible()[0].Muted {
		t.Errorf("rename lost the mute state")
	}
	processObsMessage(&events.InputRemoved{InputName: "Voice"})
	if len(channels.GetVisible()) != 0 {
		t.Errorf("remove failed")
	}
}

func TestProcessObsClose(t *testing.T) {
	setup(t, 8, nil)
	addVisible("Mic")
	connected = true
	processObsMessage(fmt.Errorf("read: %w", &websocket.CloseError{Code: websocket.CloseGoingAway}))
	if connected {
		t.Errorf("still connected after close")
	}
	if connectRetry == nil {
		t.Errorf("no reconnect scheduled")
	}
	if len(channels.inputs) != 0 {
		t.Errorf("channels kept after close")
	}
}

func TestProcessHuiMessageDisconnected(t *testing.T) {
	setup(t, 8, nil)
	addVisible("Mic")
	drain()
	// must not touch the nil client
	processHuiMessage(msg.MuteMessage{FaderNumber: 0})
	processHuiMessage(msg.UpdateRequest{})
	if n := len(drain()); n != 0 {
		t.Errorf("%d messages while disconnected", n)
	}
}
