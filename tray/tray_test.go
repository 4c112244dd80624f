package tray

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/KenKaminsky/voice-dictation/app"
	"github.com/KenKaminsky/voice-dictation/hotkey"
)

func TestTitles(t *testing.T) {
	if got := statusTitle(app.StatusRecording); got != "Status: Recording..." {
		t.Errorf("statusTitle = %q", got)
	}
	if got := hotkeyTitle(hotkey.PresetCmdShiftSpace); got != "Hotkey: "+hotkey.PresetCmdShiftSpace.Label() {
		t.Errorf("hotkeyTitle = %q", got)
	}
}

func TestMenuKeepsStateBeforeStart(t *testing.T) {
	m := New(hotkey.PresetFn, Actions{})
	if m.Status() != app.StatusReady || m.Icon() != app.IconIdle {
		t.Fatalf("initial = %q %q", m.Status(), m.Icon())
	}
	m.SetStatus(app.StatusTranscribing)
	m.SetIcon(app.IconProcessing)
	m.SetHotkey(hotkey.PresetOptSpace)
	if m.Status() != app.StatusTranscribing || m.Icon() != app.IconProcessing {
		t.Errorf("after updates = %q %q", m.Status(), m.Icon())
	}
	if m.preset != hotkey.PresetOptSpace {
		t.Errorf("preset = %s", m.preset)
	}
}

func TestQuitClosesOnce(t *testing.T) {
	m := New(hotkey.DefaultPreset, Actions{})
	m.closeQuit()
	m.closeQuit()
	select {
	case <-m.Quit():
	default:
		t.Fatal("quit not closed")
	}
}

func TestIcons(t *testing.T) {
	for _, title := range []string{app.IconRecording, app.IconProcessing} {
		b, ok := iconFor(title)
		if !ok {
			t.Fatalf("no icon for %q", title)
		}
		img, err := png.Decode(bytes.NewReader(b))
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != 44 {
			t.Errorf("%q width = %d", title, img.Bounds().Dx())
		}
	}
	if _, ok := iconFor(app.IconIdle); ok {
		t.Error("idle should use the template icon")
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.SetIcon(app.IconRecording)
	c.SetStatus(app.StatusRecording)
	c.SetHotkey(hotkey.PresetFn)
	want := "ICON ◉ REC\nSTATUS Recording...\nHOTKEY fn\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if c.Status() != app.StatusRecording {
		t.Errorf("Status = %q", c.Status())
	}
}
