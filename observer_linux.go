//go:build linux

package main

import (
	"fmt"

	"github.com/KenKaminsky/voice-dictation/config"
	"github.com/KenKaminsky/voice-dictation/hotkey"
)

func newObserver(kind string, preset hotkey.Preset) (hotkey.Observer, error) {
	switch kind {
	case config.ObserverTap:
		return hotkey.NewTap(), nil
	case config.ObserverEvdev:
		return hotkey.NewEvdev(), nil
	}
	return nil, fmt.Errorf("observer %q is not available on linux (use tap or evdev)", kind)
}
