//go:build !linux

package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// grab is one OS hotkey registration.
type grab interface {
	Register() error
	Unregister() error
	Keydown() <-chan hotkey.Event
	Keyup() <-chan hotkey.Event
}

var newGrab = func(mods []hotkey.Modifier, key hotkey.Key) grab {
	return hotkey.New(mods, key)
}

// Registered grabs the active combo preset with the OS hotkey API. Unlike Tap
// it consumes the combination, and modifier-only presets cannot be
// expressed. Only the selected combo is held; Retarget moves the grab when
// the preset changes. Each grab replays the preset's key sequence so the
// Detector sees the same events a tap would produce.
type Registered struct {
	mu     sync.Mutex
	preset Preset
	handle func(Event)
	g      grab
	stop   chan struct{}
	done   chan struct{}
}

func NewRegistered(p Preset) *Registered {
	return &Registered{preset: p}
}

func (r *Registered) Supports(p Preset) error {
	if _, ok := comboMods(p); !ok {
		return fmt.Errorf("%s: %w", p.Label(), ErrUnsupportedPreset)
	}
	return nil
}

func (r *Registered) Start(handle func(Event)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handle != nil {
		return nil
	}
	r.handle = handle
	if err := r.grabLocked(); err != nil {
		r.handle = nil
		return err
	}
	return nil
}

// Retarget releases the current combo and grabs p instead. Before Start it
// only records the preset.
func (r *Registered) Retarget(p Preset) error {
	if err := r.Supports(p); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == r.preset && (r.handle == nil || r.g != nil) {
		return nil
	}
	r.releaseLocked()
	r.preset = p
	if r.handle == nil {
		return nil
	}
	return r.grabLocked()
}

// Preset reports the combo currently targeted.
func (r *Registered) Preset() Preset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preset
}

func (r *Registered) grabLocked() error {
	mods, ok := comboMods(r.preset)
	if !ok {
		return fmt.Errorf("%s: %w", r.preset.Label(), ErrUnsupportedPreset)
	}
	g := newGrab(mods, hotkey.KeySpace)
	if err := g.Register(); err != nil {
		return fmt.Errorf("register %s: %w", r.preset.Label(), err)
	}
	r.g = g
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go pump(r.preset, g, r.handle, r.stop, r.done)
	return nil
}

func (r *Registered) releaseLocked() {
	if r.g == nil {
		return
	}
	close(r.stop)
	<-r.done
	r.g.Unregister()
	r.g, r.stop, r.done = nil, nil, nil
}

// pump replays grab events as p's key sequence. A combo still held when the
// grab is released gets its release events, so the detector never keeps
// stale modifiers.
func pump(p Preset, g grab, handle func(Event), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	held := false
	for {
		select {
		case <-stop:
			if held {
				for _, ev := range p.ReleaseEvents() {
					handle(ev)
				}
			}
			return
		case <-g.Keydown():
			held = true
			for _, ev := range p.PressEvents() {
				handle(ev)
			}
		case <-g.Keyup():
			held = false
			for _, ev := range p.ReleaseEvents() {
				handle(ev)
			}
		}
	}
}

func (r *Registered) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked()
	r.handle = nil
}
