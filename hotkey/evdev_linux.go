//go:build linux

package hotkey

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// struct input_event on 64-bit kernels: timeval(16) type(2) code(2) value(4)
const inputEventSize = 24

const (
	evKey      = 0x01
	valRelease = 0
	valPress   = 1
	valRepeat  = 2
)

// linux/input-event-codes.h
var evdevCodes = map[uint16]uint16{
	29:  CodeCtrl,
	97:  CodeRCtrl,
	42:  CodeShift,
	54:  CodeRShift,
	56:  CodeOpt,
	100: CodeROpt,
	125: CodeLeftCmd,
	126: CodeRightCmd,
	57:  CodeSpace,
	464: CodeFn,
}

const evdevSpace = 57

type inputEvent struct {
	typ   uint16
	code  uint16
	value int32
}

func parseInputEvent(b []byte) inputEvent {
	return inputEvent{
		typ:   binary.LittleEndian.Uint16(b[16:]),
		code:  binary.LittleEndian.Uint16(b[18:]),
		value: int32(binary.LittleEndian.Uint32(b[20:])),
	}
}

// Evdev reads keyboards straight from /dev/input. It works under Wayland
// where the X11 hook sees nothing, but needs the user in the input group.
type Evdev struct {
	root string // sysfs/devfs prefix, "" in production

	mu      sync.Mutex
	devices []*os.File
	done    chan struct{}
	stopped sync.Once
}

func NewEvdev() *Evdev { return &Evdev{} }

func (e *Evdev) Supports(Preset) error { return nil }

func (e *Evdev) Start(handle func(Event)) error {
	paths, err := keyboardDevices(e.root)
	if err != nil {
		return fmt.Errorf("scanning input devices: %w", err)
	}
	e.done = make(chan struct{})
	// shared so a modifier held on one keyboard combines with space on another
	mods := newModTracker()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		e.devices = append(e.devices, f)
		go e.read(f, mods, handle)
	}
	if len(e.devices) == 0 {
		return fmt.Errorf("no readable keyboard under /dev/input (sudo usermod -aG input $USER, then log in again): %w", ErrPermissionDenied)
	}
	return nil
}

func (e *Evdev) read(f *os.File, mods *modTracker, handle func(Event)) {
	buf := make([]byte, 64*inputEventSize)
	for {
		n, err := f.Read(buf)
		if err != nil {
			return
		}
		for off := 0; off+inputEventSize <= n; off += inputEventSize {
			ie := parseInputEvent(buf[off:])
			if ie.typ != evKey || ie.value == valRepeat {
				continue
			}
			code, ok := evdevCodes[ie.code]
			if !ok {
				code = CodeOther
			}
			select {
			case <-e.done:
				return
			default:
			}
			// handle runs under the lock too, so events from different
			// keyboards arrive in the order their flags were computed
			e.mu.Lock()
			handle(mods.event(code, ie.value == valPress))
			e.mu.Unlock()
		}
	}
}

// Stop closes the device files, which unblocks the readers.
func (e *Evdev) Stop() {
	e.stopped.Do(func() {
		if e.done != nil {
			close(e.done)
		}
		for _, f := range e.devices {
			f.Close()
		}
	})
}

// keyboardDevices lists event nodes whose key capability bitmap includes the
// space bar, which leaves out power buttons, lid switches and mice.
func keyboardDevices(root string) ([]string, error) {
	nodes, err := filepath.Glob(filepath.Join(root, "/dev/input/event*"))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range nodes {
		caps, err := os.ReadFile(filepath.Join(root, "/sys/class/input", filepath.Base(n), "device/capabilities/key"))
		if err != nil {
			continue
		}
		if hasKey(string(caps), evdevSpace) {
			out = append(out, n)
		}
	}
	return out, nil
}

// hasKey reads a sysfs capability bitmap: space-separated hex words, most
// significant first.
func hasKey(bitmap string, code uint) bool {
	var hex strings.Builder
	for _, w := range strings.Fields(bitmap) {
		if len(w) > 16 {
			return false
		}
		hex.WriteString(strings.Repeat("0", 16-len(w)))
		hex.WriteString(w)
	}
	v, ok := new(big.Int).SetString(hex.String(), 16)
	return ok && v.Bit(int(code)) == 1
}
