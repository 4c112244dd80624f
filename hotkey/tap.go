package hotkey

import (
	"sync"
	"time"

	hook "github.com/robotn/gohook"
)

const tapInstallTimeout = 2 * time.Second

// Tap is a listen-only global keyboard observer. Events are copied, never
// swallowed, so typing in other apps is unaffected.
type Tap struct {
	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

func NewTap() *Tap {
	return &Tap{}
}

func (t *Tap) Supports(Preset) error { return nil }

// Start installs the hook and waits for the OS to confirm it. Without
// Accessibility permission the hook never reports itself enabled and Start
// returns ErrPermissionDenied.
func (t *Tap) Start(handle func(Event)) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return nil
	}
	t.running = true
	t.mu.Unlock()

	events := hook.Start()
	enabled := make(chan struct{})

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		var once sync.Once
		mods := newModTracker()
		for ev := range events {
			once.Do(func() { close(enabled) })
			if out, ok := translate(mods, ev); ok {
				handle(out)
			}
		}
	}()

	select {
	case <-enabled:
		return nil
	case <-time.After(tapInstallTimeout):
		t.Stop()
		return ErrPermissionDenied
	}
}

func (t *Tap) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()
	hook.End()
	t.wg.Wait()
}

// translate maps a gohook event onto the flags-changed / key-down / key-up
// model. gohook reports modifiers as individual key presses, so the held
// set is tracked here and turned back into a flags mask.
func translate(mods *modTracker, ev hook.Event) (Event, bool) {
	var down bool
	switch ev.Kind {
	case hook.KeyHold, hook.KeyDown:
		down = true
	case hook.KeyUp:
		down = false
	default:
		return Event{}, false
	}
	return mods.event(normalizeRawcode(ev.Rawcode), down), true
}
