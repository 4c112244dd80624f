// Package history keeps the capped, most-recent-first log of transcriptions.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KenKaminsky/voice-dictation/internal/atomicfile"
	"github.com/KenKaminsky/voice-dictation/log"
)

const (
	FileName   = "history.json"
	MaxEntries = 100
)

// Entry is immutable once stored.
type Entry struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	DurationSeconds float64   `json:"duration_seconds"`
	AudioFile       string    `json:"audio_file,omitempty"`
}

// legacyTimestamp is ISO 8601 without a zone, as older history files wrote it.
const legacyTimestamp = "2006-01-02T15:04:05.999999"

func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var raw struct {
		plain
		Timestamp string  `json:"timestamp"`
		AudioFile *string `json:"audio_file"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry(raw.plain)
	if raw.AudioFile != nil {
		e.AudioFile = *raw.AudioFile
	}
	if raw.Timestamp == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw.Timestamp)
	if err != nil {
		ts, err = time.ParseInLocation(legacyTimestamp, raw.Timestamp, time.Local)
		if err != nil {
			return fmt.Errorf("entry %s: bad timestamp %q", e.ID, raw.Timestamp)
		}
	}
	e.Timestamp = ts
	return nil
}

// Store persists entries as a JSON array. Every mutation is written through
// synchronously; write failures are logged and the in-memory state is kept.
type Store struct {
	path  string
	now   func() time.Time
	newID func() string

	mu      sync.RWMutex
	entries []Entry
}

// Open loads path. A missing or unreadable file yields an empty store.
func Open(path string) *Store {
	s := &Store{
		path:  path,
		now:   time.Now,
		newID: uuid.NewString,
	}
	entries, err := load(path)
	if err != nil {
		log.Warnf("history: starting empty: %v", err)
	}
	s.entries = entries
	return s
}

func load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries, nil
}

func (s *Store) Path() string { return s.path }

// Add records a transcription at the front of the log.
func (s *Store) Add(text string, durationSeconds float64, audioFile string) Entry {
	e := Entry{
		ID:              s.newID(),
		Text:            text,
		Timestamp:       s.now(),
		DurationSeconds: durationSeconds,
		AudioFile:       audioFile,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, min(len(s.entries)+1, MaxEntries))
	entries = append(entries, e)
	entries = append(entries, s.entries[:min(len(s.entries), MaxEntries-1)]...)
	s.entries = entries
	s.saveLocked()
	return e
}

func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.entries...)
}

// Recent returns at most n of the newest entries.
func (s *Store) Recent(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n = max(0, min(n, len(s.entries)))
	return append([]Entry(nil), s.entries[:n]...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Search returns entries whose text contains query, ignoring case. An empty
// query matches everything.
func (s *Store) Search(query string) []Entry {
	return Filter(s.All(), query)
}

func Filter(entries []Entry, query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Text), q) {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.saveLocked()
}

func (s *Store) saveLocked() {
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Errorf("history: encoding: %v", err)
		return
	}
	if err := atomicfile.WriteFile(s.path, data, 0644); err != nil {
		log.Errorf("history: saving: %v", err)
	}
}
