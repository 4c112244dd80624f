package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VOICE_DICTATION_HOME", "")
	t.Setenv("VOICE_DICTATION_ENGINE_URL", "")
	t.Setenv("VOICE_DICTATION_MODEL", "")
}

func TestResolveDirPrecedence(t *testing.T) {
	clearEnv(t)
	explicit := t.TempDir()
	resolved, err := ResolveDir(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	env := t.TempDir()
	t.Setenv("VOICE_DICTATION_HOME", env)
	resolved, err = ResolveDir("")
	require.NoError(t, err)
	require.Equal(t, env, resolved)

	t.Setenv("VOICE_DICTATION_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	resolved, err = ResolveDir("")
	require.NoError(t, err)
	if runtime.GOOS == "darwin" {
		require.Equal(t, filepath.Join(home, "Library", "Application Support", "VoiceDictation"), resolved)
	} else {
		require.Equal(t, filepath.Join(home, ".config", "voice-dictation"), resolved)
	}
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.False(t, loaded.Exists)
	require.Equal(t, filepath.Join(dir, FileName), loaded.Path)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0], "not found")

	want := Default()
	want.Audio.RecordingsDir = filepath.Join(dir, "recordings")
	require.Equal(t, want, loaded.Config)
	require.Equal(t, filepath.Join(dir, "history.json"), loaded.HistoryPath())
	require.Equal(t, filepath.Join(dir, "prefs.json"), loaded.PrefsPath())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `
[engine]
url = "http://localhost:9000/v1"
model = "base.en"
format = "wav"
api_key_env = "TEST_ENGINE_KEY"

[paste]
mode = "typing"
char_delay_ms = 12
restore_clipboard = true

[audio]
device = "USB Mic"
recordings_dir = "` + filepath.ToSlash(filepath.Join(dir, "wavs")) + `"

[ui]
tray = false
sounds = false

[hotkey]
observer = "registered"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFile), []byte("TEST_ENGINE_KEY=sk-local\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("TEST_ENGINE_KEY") })

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Empty(t, loaded.Warnings)

	cfg := loaded.Config
	require.Equal(t, "http://localhost:9000/v1", cfg.Engine.URL)
	require.Equal(t, "base.en", cfg.Engine.Model)
	require.Equal(t, "en", cfg.Engine.Language)
	require.Equal(t, "wav", cfg.Engine.Format)
	require.Equal(t, "sk-local", cfg.Engine.APIKey())
	require.Equal(t, "typing", cfg.Paste.Mode)
	require.Equal(t, 12, cfg.Paste.CharDelayMS)
	require.Equal(t, 50, cfg.Paste.SettleMS)
	require.True(t, cfg.Paste.RestoreClipboard)
	require.Equal(t, "USB Mic", cfg.Audio.Device)
	require.Equal(t, filepath.Join(dir, "wavs"), cfg.Audio.RecordingsDir)
	require.False(t, cfg.UI.Tray)
	require.False(t, cfg.UI.Sounds)
	require.Equal(t, ObserverRegistered, cfg.Hotkey.Observer)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("[engine]\nmodel = \"from-file\"\n"), 0644))
	t.Setenv("VOICE_DICTATION_ENGINE_URL", "http://10.0.0.5:8080/v1")
	t.Setenv("VOICE_DICTATION_MODEL", "from-env")

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.5:8080/v1", loaded.Config.Engine.URL)
	require.Equal(t, "from-env", loaded.Config.Engine.Model)
}

func TestLoadUnknownKeysWarn(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("[paste]\nmode = \"clipboard\"\nspeed = 3\n\n[extra]\nx = 1\n"), 0644))

	loaded, err := Load(dir)
	require.NoError(t, err)
	all := strings.Join(loaded.Warnings, "\n")
	require.Contains(t, all, `"extra`)
	require.Contains(t, all, `"paste.speed"`)
	require.NotContains(t, all, `"paste.mode"`)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[engine\n", "parse config"},
		{"bad url", "[engine]\nurl = \"localhost\"\n", "engine.url"},
		{"bad format", "[engine]\nformat = \"mp3\"\n", "engine.format"},
		{"bad mode", "[paste]\nmode = \"voice\"\n", "paste.mode"},
		{"negative delay", "[paste]\nsettle_ms = -1\n", "paste.settle_ms"},
		{"bad observer", "[hotkey]\nobserver = \"magic\"\n", "hotkey.observer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0644))
			_, err := Load(dir)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
