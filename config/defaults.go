package config

import (
	"github.com/KenKaminsky/voice-dictation/encoder"
	"github.com/KenKaminsky/voice-dictation/paste"
	"github.com/KenKaminsky/voice-dictation/transcriber"
)

const (
	ObserverTap        = "tap"
	ObserverRegistered = "registered"
	ObserverEvdev      = "evdev"
)

func Default() Config {
	return Config{
		Engine: EngineConfig{
			URL:      transcriber.DefaultURL,
			Model:    transcriber.DefaultModel,
			Language: transcriber.DefaultLanguage,
			Format:   encoder.FormatFLAC,
		},
		Paste: PasteConfig{
			Mode:        string(paste.ModeClipboard),
			SettleMS:    int(paste.DefaultSettleDelay.Milliseconds()),
			CharDelayMS: int(paste.DefaultCharDelay.Milliseconds()),
		},
		UI: UIConfig{
			Tray:   true,
			Sounds: true,
		},
		Hotkey: HotkeyConfig{
			Observer: ObserverTap,
		},
	}
}
