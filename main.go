package main

/**
Compile Linux:
sudo apt install clang libasound2-dev
**/

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/normen/obs-hui/config"
	"github.com/normen/obs-hui/hui"
	"github.com/normen/obs-hui/obs"
	"github.com/skratchdot/open-golang/open"
	"go.uber.org/zap"
)

var VERSION string = "v0.1.0"

func main() {
	var showMidi bool
	var showHelp bool
	var editConfig bool
	var configPath string
	flag.BoolVar(&showMidi, "l", false, "List all installed MIDI devices")
	flag.BoolVar(&editConfig, "e", false, "Open the config file in the default editor")
	flag.StringVar(&configPath, "c", "", "Path of the config file")
	flag.BoolVar(&obs.ShowHotkeyNames, "k", false, "Log the OBS hotkey names after connecting")
	flag.BoolVar(&showHelp, "h", false, "Show Help")
	flag.Parse()
	if showHelp {
		fmt.Printf("OBS-HUI %v\n", VERSION)
		fmt.Println("Usage: obs-hui [options]")
		flag.PrintDefaults()
		return
	}
	if showMidi {
		ShowMidiPorts()
		return
	}

	configErr := config.InitConfig(configPath)
	logger := newLogger(configErr == nil && config.Config.General.Debug)
	defer logger.Sync()
	if configErr != nil {
		logger.Fatal("could not load config", zap.Error(configErr))
	}
	logger.Info("OBS-HUI", zap.String("version", VERSION), zap.String("config", config.GetConfigFilePath()))
	if editConfig {
		if err := open.Run(config.GetConfigFilePath()); err != nil {
			logger.Fatal("could not open config file", zap.Error(err))
		}
		return
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	var wg sync.WaitGroup
	fromHui := make(chan interface{}, 100)
	fromObs := make(chan interface{}, 100)
	obs.InitObs(fromHui, fromObs, &wg, logger)
	hui.InitHui(fromHui, fromObs, &wg, logger)
	<-interrupt
	wg.Wait()
}

func newLogger(debug bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return zap.NewNop()
	}
	return logger
}

func ShowMidiPorts() {
	inputs := hui.GetMidiInputs()
	for _, v := range inputs {
		fmt.Printf("MIDI Input: %s\n", v)
	}
	outputs := hui.GetMidiOutputs()
	for _, v := range outputs {
		fmt.Printf("MIDI Output: %s\n", v)
	}
}
