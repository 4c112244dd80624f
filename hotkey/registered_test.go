//go:build !linux

package hotkey

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"golang.design/x/hotkey"
)

type fakeGrab struct {
	mods         []hotkey.Modifier
	down, up     chan hotkey.Event
	unregistered bool
}

func (g *fakeGrab) Register() error              { return nil }
func (g *fakeGrab) Unregister() error            { g.unregistered = true; return nil }
func (g *fakeGrab) Keydown() <-chan hotkey.Event { return g.down }
func (g *fakeGrab) Keyup() <-chan hotkey.Event   { return g.up }

type grabRecorder struct {
	mu    sync.Mutex
	grabs []*fakeGrab
}

func (gr *grabRecorder) install(t *testing.T) {
	t.Helper()
	orig := newGrab
	newGrab = func(mods []hotkey.Modifier, key hotkey.Key) grab {
		gr.mu.Lock()
		defer gr.mu.Unlock()
		g := &fakeGrab{mods: mods, down: make(chan hotkey.Event), up: make(chan hotkey.Event)}
		gr.grabs = append(gr.grabs, g)
		return g
	}
	t.Cleanup(func() { newGrab = orig })
}

func (gr *grabRecorder) all() []*fakeGrab {
	gr.mu.Lock()
	defer gr.mu.Unlock()
	return slices.Clone(gr.grabs)
}

func mods(t *testing.T, p Preset) []hotkey.Modifier {
	t.Helper()
	m, ok := comboMods(p)
	if !ok {
		t.Fatalf("%s is not a combo", p)
	}
	return m
}

type eventLog struct {
	mu  sync.Mutex
	evs []Event
}

func (l *eventLog) handle(ev Event) {
	l.mu.Lock()
	l.evs = append(l.evs, ev)
	l.mu.Unlock()
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.evs)
}

func TestRegisteredGrabsOnlyActivePreset(t *testing.T) {
	var gr grabRecorder
	gr.install(t)

	r := NewRegistered(PresetCmdShiftSpace)
	if err := r.Start(func(Event) {}); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	grabs := gr.all()
	if len(grabs) != 1 {
		t.Fatalf("grabbed %d combos, want 1", len(grabs))
	}
	if want := mods(t, PresetCmdShiftSpace); fmt.Sprint(grabs[0].mods) != fmt.Sprint(want) {
		t.Errorf("grabbed %v, want %v", grabs[0].mods, want)
	}
}

func TestRegisteredRetarget(t *testing.T) {
	var gr grabRecorder
	gr.install(t)

	var log eventLog
	r := NewRegistered(PresetCmdShiftSpace)
	if err := r.Start(log.handle); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	if err := r.Retarget(PresetCtrlSpace); err != nil {
		t.Fatal(err)
	}
	grabs := gr.all()
	if len(grabs) != 2 {
		t.Fatalf("grabs = %d, want 2", len(grabs))
	}
	if !grabs[0].unregistered {
		t.Error("old combo still registered")
	}
	if want := mods(t, PresetCtrlSpace); fmt.Sprint(grabs[1].mods) != fmt.Sprint(want) {
		t.Errorf("grabbed %v, want %v", grabs[1].mods, want)
	}
	if r.Preset() != PresetCtrlSpace {
		t.Errorf("preset = %s", r.Preset())
	}

	grabs[1].down <- hotkey.Event{}
	want := len(PresetCtrlSpace.PressEvents())
	deadline := time.Now().Add(time.Second)
	for log.len() < want && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if log.len() != want {
		t.Fatalf("events = %d, want %d", log.len(), want)
	}

	// same preset again is a no-op
	if err := r.Retarget(PresetCtrlSpace); err != nil {
		t.Fatal(err)
	}
	if n := len(gr.all()); n != 2 {
		t.Errorf("grabs = %d after no-op retarget", n)
	}
}

func TestRegisteredReleasesHeldComboOnRetarget(t *testing.T) {
	var gr grabRecorder
	gr.install(t)

	var log eventLog
	r := NewRegistered(PresetOptSpace)
	if err := r.Start(log.handle); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	gr.all()[0].down <- hotkey.Event{}
	if err := r.Retarget(PresetCmdShiftSpace); err != nil {
		t.Fatal(err)
	}

	want := len(PresetOptSpace.PressEvents()) + len(PresetOptSpace.ReleaseEvents())
	if log.len() != want {
		t.Errorf("events = %d, want %d", log.len(), want)
	}
}

func TestRegisteredRetargetUnsupported(t *testing.T) {
	var gr grabRecorder
	gr.install(t)

	r := NewRegistered(PresetCmdShiftSpace)
	if err := r.Start(func(Event) {}); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()

	if err := r.Retarget(PresetFn); !errors.Is(err, ErrUnsupportedPreset) {
		t.Fatalf("err = %v", err)
	}
	if r.Preset() != PresetCmdShiftSpace || len(gr.all()) != 1 || gr.all()[0].unregistered {
		t.Error("unsupported retarget dropped the current grab")
	}
}

func TestRegisteredRetargetBeforeStart(t *testing.T) {
	var gr grabRecorder
	gr.install(t)

	r := NewRegistered(PresetCmdShiftSpace)
	if err := r.Retarget(PresetOptSpace); err != nil {
		t.Fatal(err)
	}
	if len(gr.all()) != 0 {
		t.Fatal("grabbed before Start")
	}
	if err := r.Start(func(Event) {}); err != nil {
		t.Fatal(err)
	}
	defer r.Stop()
	if want := mods(t, PresetOptSpace); fmt.Sprint(gr.all()[0].mods) != fmt.Sprint(want) {
		t.Errorf("grabbed %v, want %v", gr.all()[0].mods, want)
	}
}
