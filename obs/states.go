package obs

import (
	"sort"
	"strings"

	"github.com/normen/obs-hui/msg"
	"go.uber.org/zap"
)

// ObsState is an obs output state shown on a surface LED.
type ObsState struct {
	StateName string
	LedName   string
	State     bool
}

type ObsStates struct {
	states map[string][]*ObsState
}

// NewObsStates reads a [hui_leds] style map of led names to "STATE:<name>".
func NewObsStates(leds map[string]string) *ObsStates {
	ret := &ObsStates{
		states: make(map[string][]*ObsState),
	}
	ret.getConfig(leds)
	return ret
}

func (s *ObsStates) SetState(name string, state bool) {
	for _, st := range s.states[name] {
		if st.State != state {
			st.State = state
			fromObs <- msg.LedMessage{
				LedName:  st.LedName,
				LedState: st.State,
			}
		}
	}
}

func (s *ObsStates) SendAll() {
	for _, list := range s.states {
		for _, st := range list {
			fromObs <- msg.LedMessage{
				LedName:  st.LedName,
				LedState: st.State,
			}
		}
	}
}

func (s *ObsStates) GetState(name string) []*ObsState {
	return s.states[name]
}

func (s *ObsStates) getConfig(leds map[string]string) {
	names := make([]string, 0, len(leds))
	for name := range leds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, ledName := range names {
		configVal := leds[ledName]
		if configVal == "" {
			continue
		}
		ledType, stateName, found := strings.Cut(configVal, ":")
		if !found {
			logger.Warn("malformed led config", zap.String("led", ledName), zap.String("value", configVal))
			continue
		}
		switch ledType {
		case "STATE":
			s.states[stateName] = append(s.states[stateName], &ObsState{
				StateName: stateName,
				LedName:   ledName,
			})
		default:
			logger.Warn("unknown led type", zap.String("led", ledName), zap.String("type", ledType))
		}
	}
}
