package obs

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andreykaipov/goobs/api/requests/inputs"
	"github.com/andreykaipov/goobs/api/requests/sceneitems"
	"github.com/normen/obs-hui/msg"
	"go.uber.org/zap"
)

const (
	MonitorNone            = "OBS_MONITORING_TYPE_NONE"
	MonitorOnly            = "OBS_MONITORING_TYPE_MONITOR_ONLY"
	MonitorAndOutput       = "OBS_MONITORING_TYPE_MONITOR_AND_OUTPUT"
	sceneSourceType        = "OBS_SOURCE_TYPE_SCENE"
	syncDelay              = 100 * time.Millisecond
	panStepsPerFullBalance = 50.0
)

type Channel struct {
	Name        string
	Visible     bool
	Muted       bool
	Pan         float64
	Volume      float64
	MonitorType string
}

func NewChannel(name string) *Channel {
	return &Channel{
		Name:        name,
		Pan:         0.5,
		MonitorType: MonitorNone,
	}
}

// ChannelList holds the audio inputs of obs. The visible ones are shown on
// the surfaces, Width at a time starting at FirstChannel.
type ChannelList struct {
	inputs          map[string]*Channel
	Width           int
	FirstChannel    int
	SelectedChannel string
	syncRetry       *time.Timer
}

func NewChannelList(width int) *ChannelList {
	return &ChannelList{
		inputs: make(map[string]*Channel),
		Width:  width,
	}
}

func (l *ChannelList) ChangeFaderBank(amount int) {
	first := l.FirstChannel + amount
	if count := l.visibleCount(); first > count-1 {
		first = count - 1
	}
	if first < 0 {
		first = 0
	}
	if first != l.FirstChannel {
		l.FirstChannel = first
		l.sync()
	}
}

// create alphabetically sorted list of visible channels
func (l *ChannelList) allVisible() []Channel {
	var keys []string
	var channels []Channel
	for k := range l.inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if value := l.inputs[k]; value.Visible {
			channels = append(channels, *value)
		}
	}
	return channels
}

func (l *ChannelList) visibleCount() int {
	return len(l.allVisible())
}

// GetVisible returns the channels currently on the surfaces.
func (l *ChannelList) GetVisible() []Channel {
	channels := l.allVisible()
	if len(channels) <= l.FirstChannel {
		return []Channel{}
	}
	vis := channels[l.FirstChannel:]
	if len(vis) > l.Width {
		vis = vis[:l.Width]
	}
	return vis
}

func (l *ChannelList) GetVisibleName(index int) string {
	visible := l.GetVisible()
	if index >= 0 && index < len(visible) {
		return visible[index].Name
	}
	return ""
}

func (l *ChannelList) GetVisibleNumber(name string) int {
	for idx, ch := range l.GetVisible() {
		if ch.Name == name {
			return idx
		}
	}
	return -1
}

func (l *ChannelList) AddChannel(name string) {
	if _, ok := l.inputs[name]; !ok {
		l.inputs[name] = NewChannel(name)
		if client != nil {
			l.getBaseInfos(name)
		}
	}
}

func (l *ChannelList) RemoveChannel(name string) {
	if _, ok := l.inputs[name]; ok {
		delete(l.inputs, name)
		l.sync()
	}
}

// RenameChannel keeps the state of an input that got a new name.
func (l *ChannelList) RenameChannel(oldName, newName string) {
	if channel, ok := l.inputs[oldName]; ok {
		delete(l.inputs, oldName)
		channel.Name = newName
		l.inputs[newName] = channel
		if l.SelectedChannel == oldName {
			l.SelectedChannel = newName
		}
		l.sync()
	}
}

func (l *ChannelList) SetVisible(name string, visible bool) {
	if channel, ok := l.inputs[name]; ok {
		if channel.Visible != visible {
			channel.Visible = visible
			l.sync()
		}
	}
}

func (l *ChannelList) setVisible(name string, visible bool) {
	if channel, ok := l.inputs[name]; ok {
		channel.Visible = visible
	}
}

func (l *ChannelList) SetMuted(name string, muted bool) {
	if channel, ok := l.inputs[name]; ok {
		if channel.Muted != muted {
			channel.Muted = muted
			if num := l.GetVisibleNumber(name); num != -1 {
				fromObs <- msg.MuteMessage{
					FaderNumber: num,
					Value:       muted,
				}
			}
		}
	}
}

func (l *ChannelList) SetPan(name string, pan float64) {
	if channel, ok := l.inputs[name]; ok {
		if channel.Pan != pan {
			channel.Pan = pan
			if num := l.GetVisibleNumber(name); num != -1 {
				fromObs <- msg.VPotLedMessage{
					FaderNumber: num,
					Position:    pan,
				}
			}
		}
	}
}

func (l *ChannelList) GetPan(name string) float64 {
	if channel, ok := l.inputs[name]; ok {
		return channel.Pan
	}
	return 0.5
}

// PanBy moves the balance of an input by pot steps and returns the new value.
func (l *ChannelList) PanBy(name string, steps int) float64 {
	pan := l.GetPan(name) + float64(steps)/panStepsPerFullBalance
	return math.Max(0, math.Min(1, pan))
}

func (l *ChannelList) SetSelected(fader int) {
	name := l.GetVisibleName(fader)
	if name != "" && name != l.SelectedChannel {
		l.SelectedChannel = name
		fromObs <- msg.SelectMessage{
			FaderNumber: fader,
			Value:       true,
		}
	}
}

func (l *ChannelList) SetMonitorType(name string, mon string) {
	if channel, ok := l.inputs[name]; ok {
		if channel.MonitorType != mon {
			channel.MonitorType = mon
			if number := l.GetVisibleNumber(name); number != -1 {
				fromObs <- msg.SoloMessage{
					FaderNumber: number,
					Value:       mon != MonitorNone,
				}
			}
		}
	}
}

func (l *ChannelList) GetMonitorType(name string) string {
	if channel, ok := l.inputs[name]; ok {
		return channel.MonitorType
	}
	return ""
}

// ToggledMonitorType is the monitor type a solo press switches to.
func (l *ChannelList) ToggledMonitorType(name string) string {
	if l.GetMonitorType(name) == MonitorNone {
		return MonitorAndOutput
	}
	return MonitorNone
}

func (l *ChannelList) SetVolume(name string, volume float64) {
	if channel, ok := l.inputs[name]; ok {
		if channel.Volume != volume {
			channel.Volume = volume
			if number := l.GetVisibleNumber(name); number != -1 {
				fromObs <- msg.FaderMessage{
					FaderNumber: number,
					FaderValue:  volume,
				}
			}
		}
	}
}

func (l *ChannelList) Clear() {
	l.inputs = make(map[string]*Channel)
	l.sync()
}

func (l *ChannelList) sync() {
	if l.syncRetry != nil {
		l.syncRetry.Stop()
		l.syncRetry = nil
	}
	l.syncRetry = time.AfterFunc(syncDelay, func() { synch <- l.SyncHui })
}

// SyncHui sends the complete channel state, the surfaces drop what did not
// change.
func (l *ChannelList) SyncHui() {
	visible := l.GetVisible()
	for i, input := range visible {
		fromObs <- msg.FaderMessage{
			FaderNumber: i,
			FaderValue:  input.Volume,
		}
		fromObs <- msg.MuteMessage{
			FaderNumber: i,
			Value:       input.Muted,
		}
		fromObs <- msg.SoloMessage{
			FaderNumber: i,
			Value:       input.MonitorType != MonitorNone,
		}
		fromObs <- msg.ChannelTextMessage{
			FaderNumber: i,
			Text:        input.Name,
		}
		fromObs <- msg.VPotLedMessage{
			FaderNumber: i,
			Position:    input.Pan,
		}
	}
	for i := len(visible); i < l.Width; i++ {
		fromObs <- msg.FaderMessage{
			FaderNumber: i,
			FaderValue:  0,
		}
		fromObs <- msg.MuteMessage{
			FaderNumber: i,
			Value:       false,
		}
		fromObs <- msg.SoloMessage{
			FaderNumber: i,
			Value:       false,
		}
		fromObs <- msg.ChannelTextMessage{
			FaderNumber: i,
			Text:        "",
		}
		fromObs <- msg.VPotLedMessage{
			FaderNumber: i,
			Position:    0.5,
		}
	}
	// assign display
	fromObs <- msg.AssignTextMessage{
		Text: fmt.Sprintf("%4d", l.FirstChannel+1),
	}
	// select button
	if selectNo := l.GetVisibleNumber(l.SelectedChannel); selectNo != -1 {
		fromObs <- msg.SelectMessage{
			FaderNumber: selectNo,
			Value:       true,
		}
	} else {
		fromObs <- msg.SelectMessage{
			FaderNumber: 0,
			Value:       false,
		}
	}
	states.SendAll()
}

// UpdateVisible shows the inputs used in the current program scene and its
// groups.
func (l *ChannelList) UpdateVisible() error {
	resp, err := client.Scenes.GetCurrentProgramScene()
	if err != nil {
		return err
	}
	list, err := client.SceneItems.GetSceneItemList(&sceneitems.GetSceneItemListParams{SceneName: &resp.CurrentProgramSceneName})
	if err != nil {
		return err
	}
	for _, item := range list.SceneItems {
		if item.SceneItemEnabled {
			l.setVisible(item.SourceName, true)
		}
		if item.SourceType == sceneSourceType {
			sublist, err := client.SceneItems.GetGroupSceneItemList(&sceneitems.GetGroupSceneItemListParams{SceneName: &item.SourceName})
			if err != nil {
				logger.Debug("group items", zap.String("group", item.SourceName), zap.Error(err))
				continue
			}
			for _, subItem := range sublist.SceneItems {
				if subItem.SceneItemEnabled {
					l.setVisible(subItem.SourceName, true)
				}
			}
		}
	}
	l.sync()
	return nil
}

// AddInput adds an input if it has audio and gets its basic info (mute
// state, volume etc)
func (l *ChannelList) AddInput(inputName string) {
	if l.addInput(inputName) {
		l.sync()
	}
}

func (l *ChannelList) addInput(inputName string) bool {
	if len(inputName) == 0 {
		return false
	}
	if _, ok := l.inputs[inputName]; ok {
		return false
	}
	tracks, err := client.Inputs.GetInputAudioTracks(&inputs.GetInputAudioTracksParams{InputName: &inputName})
	if err != nil || tracks.InputAudioTracks == nil {
		return false
	}
	l.AddChannel(inputName)
	return true
}

func (l *ChannelList) UpdateSpecialInputs() error {
	resp, err := client.Inputs.GetSpecialInputs()
	if err != nil {
		return err
	}
	for _, name := range []string{resp.Desktop1, resp.Desktop2, resp.Mic1, resp.Mic2, resp.Mic3, resp.Mic4} {
		l.addSpecialInput(name)
	}
	return nil
}

func (l *ChannelList) addSpecialInput(inputName string) {
	l.addInput(inputName)
	l.setVisible(inputName, true)
}

func (l *ChannelList) getBaseInfos(inputName string) {
	volume, err := client.Inputs.GetInputVolume(&inputs.GetInputVolumeParams{InputName: &inputName})
	if err == nil {
		l.SetVolume(inputName, volume.InputVolumeMul)
	} else {
		logger.Debug("input volume", zap.String("input", inputName), zap.Error(err))
	}
	muted, err := client.Inputs.GetInputMute(&inputs.GetInputMuteParams{InputName: &inputName})
	if err == nil {
		l.SetMuted(inputName, muted.InputMuted)
	} else {
		logger.Debug("input mute", zap.String("input", inputName), zap.Error(err))
	}
	pan, err := client.Inputs.GetInputAudioBalance(&inputs.GetInputAudioBalanceParams{InputName: &inputName})
	if err == nil {
		l.SetPan(inputName, pan.InputAudioBalance)
	} else {
		logger.Debug("input balance", zap.String("input", inputName), zap.Error(err))
	}
	mon, err := client.Inputs.GetInputAudioMonitorType(&inputs.GetInputAudioMonitorTypeParams{InputName: &inputName})
	if err == nil {
		l.SetMonitorType(inputName, mon.MonitorType)
	} else {
		logger.Debug("input monitor type", zap.String("input", inputName), zap.Error(err))
	}
}
