package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var ErrSelectionCancelled = errors.New("device selection cancelled")

// picker is the state of the interactive device list.
type picker struct {
	devices []DeviceInfo
	cursor  int
}

func newPicker(devices []DeviceInfo, current string) *picker {
	p := &picker{devices: devices}
	for i, d := range devices {
		if d.Name == current {
			p.cursor = i
		}
	}
	return p
}

type pickAction int

const (
	pickNone pickAction = iota
	pickDone
	pickCancel
)

// key applies one read from a raw-mode terminal: arrows or j/k move,
// Enter confirms, Ctrl+C or q cancels.
func (p *picker) key(b []byte) pickAction {
	switch {
	case len(b) == 1:
		switch b[0] {
		case '\r', '\n':
			return pickDone
		case 3, 'q':
			return pickCancel
		case 'j':
			p.down()
		case 'k':
			p.up()
		}
	case len(b) == 3 && b[0] == 0x1b && b[1] == '[':
		switch b[2] {
		case 'A':
			p.up()
		case 'B':
			p.down()
		}
	}
	return pickNone
}

func (p *picker) up() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *picker) down() {
	if p.cursor < len(p.devices)-1 {
		p.cursor++
	}
}

func (p *picker) render(w io.Writer) {
	fmt.Fprint(w, "\r\x1b[J")
	fmt.Fprint(w, "Select input device (↑/↓, Enter to confirm, q to cancel):\r\n\r\n")
	for i, d := range p.devices {
		tag := ""
		if IsBluetooth(d.Name) {
			tag = " \x1b[33m[low quality over Bluetooth]\x1b[0m"
		}
		if i == p.cursor {
			fmt.Fprintf(w, "  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, tag)
		} else {
			fmt.Fprintf(w, "    %s%s\r\n", d.Name, tag)
		}
	}
}

// SelectDevice shows a picker on the terminal, starting at the device named
// current. A single device is returned without prompting.
func SelectDevice(ctx Context, current string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, errors.New("no capture devices found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	return runPicker(newPicker(devices, current), os.Stdin, os.Stdout)
}

func runPicker(p *picker, in io.Reader, out io.Writer) (*DeviceInfo, error) {
	p.render(out)
	buf := make([]byte, 3)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		switch p.key(buf[:n]) {
		case pickDone:
			fmt.Fprint(out, "\r\n")
			return &p.devices[p.cursor], nil
		case pickCancel:
			fmt.Fprint(out, "\r\n")
			return nil, ErrSelectionCancelled
		}
		fmt.Fprintf(out, "\x1b[%dA", len(p.devices)+2)
		p.render(out)
	}
}
