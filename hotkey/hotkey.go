package hotkey

import "errors"

var (
	// ErrPermissionDenied means the OS refused to install the keyboard
	// observer (Accessibility / Input Monitoring not granted).
	ErrPermissionDenied = errors.New("keyboard observer not permitted: grant Accessibility access")

	// ErrUnsupportedPreset means the active observer cannot detect the preset.
	ErrUnsupportedPreset = errors.New("hotkey not supported by this observer")
)

// Observer watches the global keyboard and feeds events to handle. handle is
// called on the observer's own goroutine and must not block.
type Observer interface {
	Start(handle func(Event)) error
	Stop()
	Supports(p Preset) error
}

// Retargeter is implemented by observers that watch only the active preset
// and must be moved when it changes.
type Retargeter interface {
	Retarget(p Preset) error
}

// Probe installs and immediately removes o, reporting whether the OS allows it.
func Probe(o Observer) error {
	if err := o.Start(func(Event) {}); err != nil {
		return err
	}
	o.Stop()
	return nil
}
