// Package config loads config.toml and .env from the application-support
// directory.
package config

import "os"

type Config struct {
	Engine EngineConfig `toml:"engine"`
	Paste  PasteConfig  `toml:"paste"`
	Audio  AudioConfig  `toml:"audio"`
	UI     UIConfig     `toml:"ui"`
	Hotkey HotkeyConfig `toml:"hotkey"`
}

// EngineConfig points at the local OpenAI-compatible speech server.
type EngineConfig struct {
	URL       string `toml:"url"`
	Model     string `toml:"model"`
	Language  string `toml:"language"`
	Format    string `toml:"format"`
	APIKeyEnv string `toml:"api_key_env"`
}

// APIKey reads the key from the environment variable named by APIKeyEnv.
// Local servers usually accept anything, so empty is fine.
func (e EngineConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

type PasteConfig struct {
	Mode             string `toml:"mode"`
	SettleMS         int    `toml:"settle_ms"`
	CharDelayMS      int    `toml:"char_delay_ms"`
	RestoreClipboard bool   `toml:"restore_clipboard"`
}

type AudioConfig struct {
	Device        string `toml:"device"`
	RecordingsDir string `toml:"recordings_dir"`
}

type UIConfig struct {
	Tray   bool `toml:"tray"`
	Sounds bool `toml:"sounds"`
}

type HotkeyConfig struct {
	Observer string `toml:"observer"`
}
