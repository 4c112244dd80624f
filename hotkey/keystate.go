package hotkey

// KeyState is the set of logical keys currently held. Only the detector
// mutates it.
type KeyState struct {
	Fn       bool
	Cmd      bool
	RightCmd bool
	Shift    bool
	Opt      bool
	Ctrl     bool
	Space    bool
}

// Apply folds one event into the state.
func (s *KeyState) Apply(ev Event) {
	switch ev.Kind {
	case FlagsChanged:
		f := ev.Flags
		s.Fn = f&FlagFn != 0
		s.Cmd = f&FlagCmd != 0
		s.Shift = f&FlagShift != 0
		s.Opt = f&FlagOpt != 0
		s.Ctrl = f&FlagCtrl != 0
		switch {
		case f.HasDeviceBits():
			s.RightCmd = f&DevRightCmd != 0
		case ev.Keycode == CodeRightCmd:
			s.RightCmd = s.Cmd
		case !s.Cmd:
			// keyboards without side bits: a left cmd event cannot tell
			// us about the right key, but no cmd at all means both are up
			s.RightCmd = false
		}
	case KeyDown:
		if ev.Keycode == CodeSpace {
			s.Space = true
		}
	case KeyUp:
		if ev.Keycode == CodeSpace {
			s.Space = false
		}
	}
}
