package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/KenKaminsky/voice-dictation/encoder"
	"github.com/KenKaminsky/voice-dictation/paste"
)

// Validate enforces config invariants.
func Validate(cfg Config) error {
	u, err := url.Parse(strings.TrimSpace(cfg.Engine.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("engine.url must be an http(s) URL, got %q", cfg.Engine.URL)
	}
	if strings.TrimSpace(cfg.Engine.Model) == "" {
		return fmt.Errorf("engine.model must not be empty")
	}
	switch cfg.Engine.Format {
	case encoder.FormatFLAC, encoder.FormatWAV:
	default:
		return fmt.Errorf("engine.format must be one of: flac, wav")
	}
	if _, err := paste.ParseMode(cfg.Paste.Mode); err != nil {
		return fmt.Errorf("paste.mode: %w", err)
	}
	if cfg.Paste.SettleMS < 0 {
		return fmt.Errorf("paste.settle_ms must be >= 0")
	}
	if cfg.Paste.CharDelayMS < 0 {
		return fmt.Errorf("paste.char_delay_ms must be >= 0")
	}
	switch cfg.Hotkey.Observer {
	case ObserverTap, ObserverRegistered, ObserverEvdev:
	default:
		return fmt.Errorf("hotkey.observer must be one of: tap, registered, evdev")
	}
	return nil
}
