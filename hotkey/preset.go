package hotkey

import "fmt"

type Preset string

const (
	PresetFn            Preset = "fn"
	PresetRightCmd      Preset = "right_cmd"
	PresetCmdShiftSpace Preset = "cmd_shift_space"
	PresetOptSpace      Preset = "opt_space"
	PresetCtrlSpace     Preset = "ctrl_space"

	DefaultPreset = PresetCmdShiftSpace
)

// Presets lists every selectable hotkey in menu order.
var Presets = []Preset{
	PresetFn,
	PresetRightCmd,
	PresetCmdShiftSpace,
	PresetOptSpace,
	PresetCtrlSpace,
}

var labels = map[Preset]string{
	PresetFn:            "Fn (Globe)",
	PresetRightCmd:      "Right ⌘",
	PresetCmdShiftSpace: "⌘ + Shift + Space",
	PresetOptSpace:      "⌥ + Space",
	PresetCtrlSpace:     "⌃ + Space",
}

func ParsePreset(s string) (Preset, error) {
	p := Preset(s)
	if _, ok := labels[p]; !ok {
		return "", fmt.Errorf("unknown hotkey %q", s)
	}
	return p, nil
}

func (p Preset) Valid() bool {
	_, ok := labels[p]
	return ok
}

// Label is the human readable name shown in the menu.
func (p Preset) Label() string {
	if l, ok := labels[p]; ok {
		return l
	}
	return "Unknown"
}

// ModifierOnly reports whether the preset is a single modifier key, detected
// purely from flags-changed events.
func (p Preset) ModifierOnly() bool {
	return p == PresetFn || p == PresetRightCmd
}

// Held evaluates the preset's predicate against the current key state.
func (p Preset) Held(s KeyState) bool {
	switch p {
	case PresetFn:
		return s.Fn
	case PresetRightCmd:
		return s.RightCmd
	case PresetCmdShiftSpace:
		return s.Cmd && s.Shift && s.Space
	case PresetOptSpace:
		return s.Opt && s.Space
	case PresetCtrlSpace:
		return s.Ctrl && s.Space
	}
	return false
}

// keys lists the physical keys of a preset in press order.
func (p Preset) keys() []uint16 {
	switch p {
	case PresetFn:
		return []uint16{CodeFn}
	case PresetRightCmd:
		return []uint16{CodeRightCmd}
	case PresetCmdShiftSpace:
		return []uint16{CodeLeftCmd, CodeShift, CodeSpace}
	case PresetOptSpace:
		return []uint16{CodeOpt, CodeSpace}
	case PresetCtrlSpace:
		return []uint16{CodeCtrl, CodeSpace}
	}
	return nil
}

// PressEvents is the event sequence a keyboard produces when the preset is
// pressed from an idle keyboard.
func (p Preset) PressEvents() []Event {
	m := newModTracker()
	var evs []Event
	for _, code := range p.keys() {
		evs = append(evs, m.event(code, true))
	}
	return evs
}

// ReleaseEvents undoes PressEvents in reverse order.
func (p Preset) ReleaseEvents() []Event {
	m := newModTracker()
	keys := p.keys()
	for _, code := range keys {
		m.event(code, true)
	}
	var evs []Event
	for i := len(keys) - 1; i >= 0; i-- {
		evs = append(evs, m.event(keys[i], false))
	}
	return evs
}
