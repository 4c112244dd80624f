package hotkey

// Kind is the class of a keyboard event seen by an observer.
type Kind int

const (
	KeyDown Kind = iota
	KeyUp
	FlagsChanged
)

func (k Kind) String() string {
	switch k {
	case KeyDown:
		return "key_down"
	case KeyUp:
		return "key_up"
	case FlagsChanged:
		return "flags_changed"
	}
	return "unknown"
}

// Flags mirror the CGEventFlags layout: the high bits are the
// device-independent modifier masks, the low bits are the device-dependent
// side bits that only some keyboards report.
type Flags uint64

const (
	FlagShift Flags = 0x20000
	FlagCtrl  Flags = 0x40000
	FlagOpt   Flags = 0x80000
	FlagCmd   Flags = 0x100000
	FlagFn    Flags = 0x800000

	DevLeftCtrl   Flags = 0x1
	DevLeftShift  Flags = 0x2
	DevRightShift Flags = 0x4
	DevLeftCmd    Flags = 0x8
	DevRightCmd   Flags = 0x10
	DevLeftOpt    Flags = 0x20
	DevRightOpt   Flags = 0x40
	DevRightCtrl  Flags = 0x2000

	deviceMask = DevLeftCtrl | DevLeftShift | DevRightShift | DevLeftCmd |
		DevRightCmd | DevLeftOpt | DevRightOpt | DevRightCtrl
)

// HasDeviceBits reports whether the keyboard that produced f tells left and
// right modifiers apart.
func (f Flags) HasDeviceBits() bool { return f&deviceMask != 0 }

// Keycodes are normalized to macOS virtual keycodes on every platform.
const (
	CodeSpace    uint16 = 49
	CodeRightCmd uint16 = 54
	CodeLeftCmd  uint16 = 55
	CodeShift    uint16 = 56
	CodeOpt      uint16 = 58
	CodeCtrl     uint16 = 59
	CodeRShift   uint16 = 60
	CodeROpt     uint16 = 61
	CodeRCtrl    uint16 = 62
	CodeFn       uint16 = 63
)

// Event is one keyboard observation. Observers translate platform events into
// this form before handing them to a Detector.
type Event struct {
	Kind    Kind
	Keycode uint16
	Flags   Flags
}

// CodeOther stands for any key the detector does not track.
const CodeOther uint16 = 0xffff
