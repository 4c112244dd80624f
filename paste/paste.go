package paste

import (
	"fmt"
	"sync"
	"time"
	"unicode"

	"github.com/KenKaminsky/voice-dictation/log"
)

type Mode string

const (
	ModeClipboard Mode = "clipboard"
	ModeTyping    Mode = "typing"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeClipboard, ModeTyping:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown paste mode %q (want clipboard or typing)", s)
}

const (
	DefaultSettleDelay  = 50 * time.Millisecond
	DefaultCharDelay    = 5 * time.Millisecond
	DefaultRestoreDelay = 600 * time.Millisecond
)

type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// Keyboard synthesizes key presses in the focused application.
type Keyboard interface {
	// PasteShortcut presses and releases Cmd+V (Ctrl+V off macOS).
	PasteShortcut() error
	// TypeKey presses and releases one key, optionally with shift held.
	TypeKey(vk int, shift bool) error
}

type Config struct {
	Mode             Mode
	SettleDelay      time.Duration
	CharDelay        time.Duration
	RestoreClipboard bool
	RestoreDelay     time.Duration
}

// Dispatcher delivers recognized text to whatever app has focus. Delivery is
// fire-and-forget: failures are logged and nothing checks that the text
// actually landed.
type Dispatcher struct {
	cfg   Config
	clip  Clipboard
	kb    Keyboard
	sleep func(time.Duration)

	mu sync.Mutex // one paste at a time
}

func New(cfg Config, clip Clipboard, kb Keyboard) *Dispatcher {
	if cfg.Mode == "" {
		cfg.Mode = ModeClipboard
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.CharDelay == 0 {
		cfg.CharDelay = DefaultCharDelay
	}
	if cfg.RestoreDelay == 0 {
		cfg.RestoreDelay = DefaultRestoreDelay
	}
	return &Dispatcher{cfg: cfg, clip: clip, kb: kb, sleep: time.Sleep}
}

func (d *Dispatcher) Mode() Mode { return d.cfg.Mode }

// Paste delivers text. Empty text is a no-op.
func (d *Dispatcher) Paste(text string) {
	if text == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	switch d.cfg.Mode {
	case ModeTyping:
		err = d.typeText(text)
	default:
		err = d.viaClipboard(text)
	}
	if err != nil {
		log.Errorf("paste (%s): %v", d.cfg.Mode, err)
	}
}

func (d *Dispatcher) viaClipboard(text string) error {
	var previous string
	var hadPrevious bool
	if d.cfg.RestoreClipboard {
		if p, err := d.clip.Read(); err == nil {
			previous, hadPrevious = p, true
		}
	}

	if err := d.clip.Write(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	d.sleep(d.cfg.SettleDelay)
	if err := d.kb.PasteShortcut(); err != nil {
		return fmt.Errorf("paste keystroke: %w", err)
	}

	if hadPrevious && previous != text {
		time.AfterFunc(d.cfg.RestoreDelay, func() { d.restore(text, previous) })
	}
	return nil
}

// restore puts the old clipboard back unless something else replaced our
// text in the meantime.
func (d *Dispatcher) restore(ours, previous string) {
	current, err := d.clip.Read()
	if err != nil || current != ours {
		return
	}
	if err := d.clip.Write(previous); err != nil {
		log.Warnf("clipboard restore: %v", err)
	}
}

// typeText sends one key press per rune. Runes with no key on a US layout
// go through the clipboard one at a time, and the clipboard is put back
// afterwards.
func (d *Dispatcher) typeText(text string) error {
	var previous, last string
	var borrowed, hadPrevious bool
	defer func() {
		if borrowed && hadPrevious && previous != last {
			time.AfterFunc(d.cfg.RestoreDelay, func() { d.restore(last, previous) })
		}
	}()

	for i, r := range text {
		if i > 0 {
			d.sleep(d.cfg.CharDelay)
		}
		vk, shift, ok := keyFor(r)
		if ok {
			if err := d.kb.TypeKey(vk, shift); err != nil {
				return fmt.Errorf("typing %q: %w", r, err)
			}
			continue
		}

		if !borrowed {
			if p, err := d.clip.Read(); err == nil {
				previous, hadPrevious = p, true
			}
			borrowed = true
		}
		if err := d.clip.Write(string(r)); err != nil {
			return fmt.Errorf("clipboard write %q: %w", r, err)
		}
		last = string(r)
		d.sleep(d.cfg.SettleDelay)
		if err := d.kb.PasteShortcut(); err != nil {
			return fmt.Errorf("paste keystroke: %w", err)
		}
	}
	return nil
}

// shifted maps symbols to the unshifted key that produces them with shift
// held on a US layout.
var shifted = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
	'_': '-', '+': '=', '{': '[', '}': ']', ':': ';',
	'"': '\'', '|': '\\', '<': ',', '>': '.', '?': '/',
	'~': '`',
}

func keyFor(r rune) (vk int, shift bool, ok bool) {
	if r > unicode.MaxASCII {
		return 0, false, false
	}
	if unicode.IsUpper(r) {
		vk, ok = keycodes[unicode.ToLower(r)]
		return vk, true, ok
	}
	if base, isShifted := shifted[r]; isShifted {
		vk, ok = keycodes[base]
		return vk, true, ok
	}
	vk, ok = keycodes[r]
	return vk, false, ok
}
