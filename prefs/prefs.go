// Package prefs persists user choices made from the menu.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/KenKaminsky/voice-dictation/hotkey"
	"github.com/KenKaminsky/voice-dictation/internal/atomicfile"
	"github.com/KenKaminsky/voice-dictation/log"
)

const FileName = "prefs.json"

const hotkeyKey = "hotkey"

// Store holds prefs.json. Keys it does not know about are preserved on write.
type Store struct {
	path string

	mu     sync.Mutex
	hotkey hotkey.Preset
	raw    map[string]json.RawMessage
}

// Open reads path. A missing or corrupt file, or an unknown hotkey, falls
// back to the default preset.
func Open(path string) *Store {
	s := &Store{path: path}
	p, raw, err := read(path)
	if err != nil {
		log.Warnf("prefs: using defaults: %v", err)
	}
	s.hotkey, s.raw = p, raw
	return s
}

func read(path string) (hotkey.Preset, map[string]json.RawMessage, error) {
	raw := map[string]json.RawMessage{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return hotkey.DefaultPreset, raw, nil
	}
	if err != nil {
		return hotkey.DefaultPreset, raw, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return hotkey.DefaultPreset, map[string]json.RawMessage{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	msg, ok := raw[hotkeyKey]
	if !ok {
		return hotkey.DefaultPreset, raw, nil
	}
	var name string
	if err := json.Unmarshal(msg, &name); err != nil {
		return hotkey.DefaultPreset, raw, fmt.Errorf("%s: hotkey must be a string", path)
	}
	p, err := hotkey.ParsePreset(name)
	if err != nil {
		return hotkey.DefaultPreset, raw, fmt.Errorf("%s: %w", path, err)
	}
	return p, raw, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Hotkey() hotkey.Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hotkey
}

// SetHotkey records the selection and writes it through. Only an invalid
// preset is an error; write failures are logged.
func (s *Store) SetHotkey(p hotkey.Preset) error {
	if !p.Valid() {
		return fmt.Errorf("unknown hotkey %q", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotkey = p
	s.raw[hotkeyKey], _ = json.Marshal(string(p))

	data, err := json.MarshalIndent(s.raw, "", "  ")
	if err != nil {
		log.Errorf("prefs: encoding: %v", err)
		return nil
	}
	if err := atomicfile.WriteFile(s.path, data, 0644); err != nil {
		log.Errorf("prefs: saving: %v", err)
	}
	return nil
}

// Watch reloads the file whenever it changes on disk and calls onChange when
// the hotkey differs from the current one. It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, onChange func(hotkey.Preset)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("prefs watcher: %w", err)
	}
	defer w.Close()

	// watch the directory: atomic replaces swap the inode under the file
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			s.reload(onChange)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warnf("prefs watcher: %v", err)
		}
	}
}

func (s *Store) reload(onChange func(hotkey.Preset)) {
	p, raw, err := read(s.path)
	if err != nil {
		// half-written or hand-edited into garbage; keep what we have
		log.Warnf("prefs: ignoring change: %v", err)
		return
	}
	s.mu.Lock()
	changed := p != s.hotkey
	s.hotkey, s.raw = p, raw
	s.mu.Unlock()

	if changed {
		log.Infof("prefs: hotkey changed on disk to %s", p)
		onChange(p)
	}
}
