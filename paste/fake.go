package paste

import (
	"fmt"
	"sync"
)

type FakeClipboard struct {
	mu       sync.Mutex
	text     string
	writes   []string
	WriteErr error
}

func NewFakeClipboard(initial string) *FakeClipboard {
	return &FakeClipboard{text: initial}
}

func (c *FakeClipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

func (c *FakeClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.text = text
	c.writes = append(c.writes, text)
	return nil
}

func (c *FakeClipboard) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

// FakeKeyboard records synthesized keys as "paste" or "key:<vk>" /
// "key:<vk>+shift".
type FakeKeyboard struct {
	mu      sync.Mutex
	actions []string
	clip    *FakeClipboard
	pasted  []string
}

// NewFakeKeyboard returns a keyboard whose paste shortcut reads clip, so
// tests can see what text a paste would have inserted.
func NewFakeKeyboard(clip *FakeClipboard) *FakeKeyboard {
	return &FakeKeyboard{clip: clip}
}

func (k *FakeKeyboard) PasteShortcut() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.actions = append(k.actions, "paste")
	if k.clip != nil {
		text, _ := k.clip.Read()
		k.pasted = append(k.pasted, text)
	}
	return nil
}

func (k *FakeKeyboard) TypeKey(vk int, shift bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	a := fmt.Sprintf("key:%d", vk)
	if shift {
		a += "+shift"
	}
	k.actions = append(k.actions, a)
	return nil
}

func (k *FakeKeyboard) Actions() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.actions...)
}

// Pasted lists the clipboard contents at each paste shortcut.
func (k *FakeKeyboard) Pasted() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.pasted...)
}
