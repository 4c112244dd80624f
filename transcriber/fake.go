package transcriber

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// FakeEngine returns canned text and records what it was given.
type FakeEngine struct {
	mu      sync.Mutex
	text    string
	err     error
	delay   time.Duration
	calls   [][]float32
	loadErr error
	loads   atomic.Int32
	loaded  atomic.Bool
}

func NewFake(text string, err error) *FakeEngine {
	return &FakeEngine{text: text, err: err}
}

func (f *FakeEngine) Name() string { return "fake" }

// SetDelay makes every Transcribe take d.
func (f *FakeEngine) SetDelay(d time.Duration) {
	f.mu.Lock()
	f.delay = d
	f.mu.Unlock()
}

func (f *FakeEngine) SetLoadError(err error) {
	f.mu.Lock()
	f.loadErr = err
	f.mu.Unlock()
}

func (f *FakeEngine) LoadModel(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded.Load() {
		return nil
	}
	f.loads.Add(1)
	if err := f.loadErr; err != nil {
		return fmt.Errorf("fake load: %w", err)
	}
	f.loaded.Store(true)
	return nil
}

func (f *FakeEngine) Loaded() bool { return f.loaded.Load() }

// Loads counts LoadModel attempts that did real work.
func (f *FakeEngine) Loads() int { return int(f.loads.Load()) }

func (f *FakeEngine) Transcribe(ctx context.Context, samples []float32) (string, error) {
	f.mu.Lock()
	cp := make([]float32, len(samples))
	copy(cp, samples)
	f.calls = append(f.calls, cp)
	text, err, delay := f.text, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", fmt.Errorf("fake transcriber error: %w", err)
	}
	return text, nil
}

func (f *FakeEngine) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
