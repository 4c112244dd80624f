package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Loaded captures the resolved paths, parsed values, and non-fatal warnings.
type Loaded struct {
	Dir      string
	Path     string
	Config   Config
	Warnings []string
	Exists   bool
}

func (l Loaded) HistoryPath() string { return filepath.Join(l.Dir, "history.json") }
func (l Loaded) PrefsPath() string   { return filepath.Join(l.Dir, "prefs.json") }

// Load reads .env (without overriding variables already set) and config.toml
// from dir, applies environment overrides, and validates the result.
func Load(dir string) (Loaded, error) {
	resolved, err := ResolveDir(dir)
	if err != nil {
		return Loaded{}, err
	}
	l := Loaded{
		Dir:  resolved,
		Path: filepath.Join(resolved, FileName),
	}

	envPath := filepath.Join(resolved, EnvFile)
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.Warnings = append(l.Warnings, fmt.Sprintf("ignoring %s: %v", envPath, err))
	}

	cfg := Default()
	md, err := toml.DecodeFile(l.Path, &cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		l.Warnings = append(l.Warnings, fmt.Sprintf("config file %q not found; using defaults", l.Path))
	case err != nil:
		return Loaded{}, fmt.Errorf("parse config %q: %w", l.Path, err)
	default:
		l.Exists = true
		var unknown []string
		for _, k := range md.Undecoded() {
			unknown = append(unknown, k.String())
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			l.Warnings = append(l.Warnings, fmt.Sprintf("unknown config key %q", k))
		}
	}

	applyEnv(&cfg)

	if cfg.Audio.RecordingsDir == "" {
		cfg.Audio.RecordingsDir = filepath.Join(resolved, "recordings")
	} else if cfg.Audio.RecordingsDir, err = expandHome(cfg.Audio.RecordingsDir); err != nil {
		return Loaded{}, fmt.Errorf("audio.recordings_dir: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Loaded{}, fmt.Errorf("config %q: %w", l.Path, err)
	}
	l.Config = cfg
	return l, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("VOICE_DICTATION_ENGINE_URL")); v != "" {
		cfg.Engine.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("VOICE_DICTATION_MODEL")); v != "" {
		cfg.Engine.Model = v
	}
}
