//go:build !linux

package main

import (
	"fmt"
	"runtime"

	"github.com/KenKaminsky/voice-dictation/config"
	"github.com/KenKaminsky/voice-dictation/hotkey"
)

func newObserver(kind string, preset hotkey.Preset) (hotkey.Observer, error) {
	switch kind {
	case config.ObserverTap:
		return hotkey.NewTap(), nil
	case config.ObserverRegistered:
		return hotkey.NewRegistered(preset), nil
	}
	return nil, fmt.Errorf("observer %q is not available on %s", kind, runtime.GOOS)
}
