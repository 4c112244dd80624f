package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	FileName = "config.toml"
	EnvFile  = ".env"
)

// ResolveDir applies flag > VOICE_DICTATION_HOME > OS default for the
// application-support directory.
func ResolveDir(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return expandHome(explicit)
	}
	if env := strings.TrimSpace(os.Getenv("VOICE_DICTATION_HOME")); env != "" {
		return expandHome(env)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for application support dir")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "VoiceDictation"), nil
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "voice-dictation"), nil
	}
	return filepath.Join(home, ".config", "voice-dictation"), nil
}

func expandHome(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}
