package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/ini.v1"
)

const (
	buttonsSection = "hui_buttons"
	ledsSection    = "hui_leds"
	bankPrefix     = "bank."
)

var configFilePath string
var banks []BankConfig

type IniFile struct {
	*General
	*HuiFaders
	HuiButtons map[string]string `ini:"-"`
	HuiLeds    map[string]string `ini:"-"`
}

type General struct {
	ObsHost      string
	ObsPassword  string
	Debug        bool
	PingInterval time.Duration
}

type HuiFaders struct {
	ShowTimecode bool
	// how long a fader counts as touched after the last move without a
	// touch switch
	TouchTimeout time.Duration
}

// BankConfig is one [bank.N] section: a HUI surface on its own pair of MIDI
// ports showing eight channels starting at FirstChannel.
type BankConfig struct {
	Name            string        `mapstructure:"-"`
	PortIn          string        `mapstructure:"port_in"`
	PortOut         string        `mapstructure:"port_out"`
	PresenceTimeout time.Duration `mapstructure:"presence_timeout"`
	FirstChannel    int           `mapstructure:"first_channel"`
}

var Config = defaultConfig()

func defaultConfig() IniFile {
	return IniFile{
		&General{
			ObsHost:      "localhost:4455",
			ObsPassword:  "",
			Debug:        false,
			PingInterval: time.Second,
		},
		&HuiFaders{
			ShowTimecode: true,
			TouchTimeout: 300 * time.Millisecond,
		},
		map[string]string{
			"transport.play":   "STREAM:start",
			"transport.stop":   "STREAM:stop",
			"transport.record": "RECORD:toggle",
			"function.f1":      "",
			"function.f2":      "",
		},
		map[string]string{
			"transport.play":   "STATE:StreamState",
			"transport.record": "STATE:RecordState",
		},
	}
}

func defaultBanks() []BankConfig {
	return []BankConfig{{
		Name:         "1",
		PortIn:       "HUI",
		PortOut:      "HUI",
		FirstChannel: 0,
	}}
}

// InitConfig loads the config file at path, or the default location when path
// is empty, and writes it back so that new keys show up. A missing file is
// created with the defaults.
func InitConfig(path string) error {
	var err error
	if path == "" {
		if path, err = xdg.ConfigFile("obs-hui/obs-hui.config"); err != nil {
			return fmt.Errorf("config path: %w", err)
		}
	}
	configFilePath = path
	Config = defaultConfig()
	banks = nil

	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	cfg.NameMapper = ini.TitleUnderscore
	cfg.ValueMapper = os.ExpandEnv
	if section, err := cfg.GetSection("general"); err == nil {
		if err = section.MapTo(Config.General); err != nil {
			return fmt.Errorf("section general: %w", err)
		}
	}
	if section, err := cfg.GetSection("hui_faders"); err == nil {
		if err = section.MapTo(Config.HuiFaders); err != nil {
			return fmt.Errorf("section hui_faders: %w", err)
		}
	}
	if section, err := cfg.GetSection(buttonsSection); err == nil {
		Config.HuiButtons = section.KeysHash()
	}
	if section, err := cfg.GetSection(ledsSection); err == nil {
		Config.HuiLeds = section.KeysHash()
	}
	for _, section := range cfg.Sections() {
		name, ok := strings.CutPrefix(section.Name(), bankPrefix)
		if !ok {
			continue
		}
		bank, err := decodeBank(name, section.KeysHash())
		if err != nil {
			return fmt.Errorf("section %s: %w", section.Name(), err)
		}
		banks = append(banks, bank)
	}
	if len(banks) == 0 {
		banks = defaultBanks()
	}
	sortBanks(banks)

	return save(path)
}

func decodeBank(name string, values map[string]string) (BankConfig, error) {
	bank := BankConfig{Name: name, PortIn: "HUI", PortOut: "HUI"}
	if n, err := strconv.Atoi(name); err == nil && n > 0 {
		bank.FirstChannel = (n - 1) * 8
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &bank,
	})
	if err != nil {
		return bank, err
	}
	if err := decoder.Decode(values); err != nil {
		return bank, err
	}
	if bank.FirstChannel < 0 {
		return bank, fmt.Errorf("first_channel %d below zero", bank.FirstChannel)
	}
	return bank, nil
}

// banks numbered by their section name come first, in numeric order
func sortBanks(b []BankConfig) {
	sort.SliceStable(b, func(i, j int) bool {
		ni, erri := strconv.Atoi(b[i].Name)
		nj, errj := strconv.Atoi(b[j].Name)
		switch {
		case erri == nil && errj == nil:
			return ni < nj
		case erri == nil:
			return true
		case errj == nil:
			return false
		}
		return b[i].Name < b[j].Name
	})
}

func save(path string) error {
	newCfg := ini.Empty()
	if err := ini.ReflectFromWithMapper(newCfg, &Config, ini.TitleUnderscore); err != nil {
		return fmt.Errorf("reflect config: %w", err)
	}
	if err := writeMap(newCfg, buttonsSection, Config.HuiButtons); err != nil {
		return err
	}
	if err := writeMap(newCfg, ledsSection, Config.HuiLeds); err != nil {
		return err
	}
	for _, bank := range banks {
		section, err := newCfg.NewSection(bankPrefix + bank.Name)
		if err != nil {
			return err
		}
		section.NewKey("port_in", bank.PortIn)
		section.NewKey("port_out", bank.PortOut)
		section.NewKey("first_channel", strconv.Itoa(bank.FirstChannel))
		if bank.PresenceTimeout > 0 {
			section.NewKey("presence_timeout", bank.PresenceTimeout.String())
		}
	}
	if err := newCfg.SaveTo(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeMap(cfg *ini.File, name string, values map[string]string) error {
	section, err := cfg.NewSection(name)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := section.NewKey(k, values[k]); err != nil {
			return fmt.Errorf("%s.%s: %w", name, k, err)
		}
	}
	return nil
}

// Banks returns the configured banks, at least one.
func Banks() []BankConfig {
	return append([]BankConfig(nil), banks...)
}

// ChannelCount is the number of channels shown by all banks together.
func ChannelCount() int {
	count := 0
	for _, bank := range banks {
		count = max(count, bank.FirstChannel+8)
	}
	return count
}

func GetConfigFilePath() string {
	return configFilePath
}
