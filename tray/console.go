package tray

import (
	"fmt"
	"io"
	"sync"

	"github.com/KenKaminsky/voice-dictation/app"
	"github.com/KenKaminsky/voice-dictation/hotkey"
)

// Console is the UI used without a menu bar. Each change is printed as one
// line so scripts driving the headless mode can wait on it.
type Console struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

var _ app.UI = (*Console)(nil)

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) SetStatus(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = s
	fmt.Fprintf(c.w, "STATUS %s\n", s)
}

func (c *Console) SetIcon(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "ICON %s\n", title)
}

func (c *Console) SetHotkey(p hotkey.Preset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "HOTKEY %s\n", p)
}

// Status is the last status printed.
func (c *Console) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
