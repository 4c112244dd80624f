package hotkey

var modifierFlags = map[uint16]Flags{
	CodeLeftCmd:  FlagCmd | DevLeftCmd,
	CodeRightCmd: FlagCmd | DevRightCmd,
	CodeShift:    FlagShift | DevLeftShift,
	CodeRShift:   FlagShift | DevRightShift,
	CodeOpt:      FlagOpt | DevLeftOpt,
	CodeROpt:     FlagOpt | DevRightOpt,
	CodeCtrl:     FlagCtrl | DevLeftCtrl,
	CodeRCtrl:    FlagCtrl | DevRightCtrl,
	CodeFn:       FlagFn,
}

func isModifier(code uint16) bool {
	_, ok := modifierFlags[code]
	return ok
}

// modTracker rebuilds CGEventFlags-style masks for backends that only report
// individual key transitions.
type modTracker struct {
	held map[uint16]bool
}

func newModTracker() *modTracker {
	return &modTracker{held: make(map[uint16]bool)}
}

func (m *modTracker) flags() Flags {
	var f Flags
	for code := range m.held {
		f |= modifierFlags[code]
	}
	return f
}

// event turns a key transition into the Event a macOS tap would have seen.
func (m *modTracker) event(code uint16, down bool) Event {
	if isModifier(code) {
		if down {
			m.held[code] = true
		} else {
			delete(m.held, code)
		}
		return Event{Kind: FlagsChanged, Keycode: code, Flags: m.flags()}
	}
	kind := KeyDown
	if !down {
		kind = KeyUp
	}
	return Event{Kind: kind, Keycode: code, Flags: m.flags()}
}
