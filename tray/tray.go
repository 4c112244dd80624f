// Package tray is the menu-bar surface: a status line, the current hotkey
// with a picker, View History, Load Model Now and Quit.
package tray

import (
	"sync"

	"fyne.io/systray"

	"github.com/KenKaminsky/voice-dictation/app"
	"github.com/KenKaminsky/voice-dictation/hotkey"
	"github.com/KenKaminsky/voice-dictation/log"
)

// Actions are the menu callbacks. Each runs on its own goroutine and may
// block.
type Actions struct {
	SelectHotkey func(hotkey.Preset)
	ViewHistory  func()
	LoadModel    func()
	// Supported filters the hotkey picker; nil allows every preset.
	Supported func(hotkey.Preset) bool
}

// Menu implements app.UI on top of systray. Updates made before Start are
// kept and applied once the menu exists.
type Menu struct {
	act Actions

	mu      sync.Mutex
	ready   bool
	status  string
	icon    string
	preset  hotkey.Preset
	mStatus *systray.MenuItem
	mHotkey *systray.MenuItem
	choices map[hotkey.Preset]*systray.MenuItem

	quit      chan struct{}
	closeOnce sync.Once
}

var _ app.UI = (*Menu)(nil)

func New(current hotkey.Preset, act Actions) *Menu {
	return &Menu{
		act:    act,
		status: app.StatusReady,
		icon:   app.IconIdle,
		preset: current,
		quit:   make(chan struct{}),
	}
}

func statusTitle(s string) string { return "Status: " + s }

func hotkeyTitle(p hotkey.Preset) string { return "Hotkey: " + p.Label() }

// Quit is closed when the user picks Quit or the tray shuts down.
func (m *Menu) Quit() <-chan struct{} { return m.quit }

func (m *Menu) closeQuit() {
	m.closeOnce.Do(func() { close(m.quit) })
}

func (m *Menu) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Menu) Icon() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.icon
}

func (m *Menu) SetStatus(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
	if m.ready {
		m.mStatus.SetTitle(statusTitle(s))
	}
}

func (m *Menu) SetIcon(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.icon = title
	if m.ready {
		applyIcon(title)
	}
}

func (m *Menu) SetHotkey(p hotkey.Preset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preset = p
	if m.ready {
		m.syncHotkeyLocked()
	}
}

func (m *Menu) syncHotkeyLocked() {
	m.mHotkey.SetTitle(hotkeyTitle(m.preset))
	for p, item := range m.choices {
		if p == m.preset {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

func applyIcon(title string) {
	systray.SetTitle(title)
	if b, ok := iconFor(title); ok {
		systray.SetIcon(b)
		return
	}
	systray.SetTemplateIcon(iconIdleHi, iconIdle)
}

func (m *Menu) onReady() {
	m.mu.Lock()
	defer m.mu.Unlock()

	systray.SetTooltip("Voice Dictation")
	applyIcon(m.icon)

	m.mStatus = systray.AddMenuItem(statusTitle(m.status), "")
	m.mStatus.Disable()
	systray.AddSeparator()

	m.mHotkey = systray.AddMenuItem(hotkeyTitle(m.preset), "Hold to record")
	m.choices = make(map[hotkey.Preset]*systray.MenuItem, len(hotkey.Presets))
	for _, p := range hotkey.Presets {
		item := m.mHotkey.AddSubMenuItemCheckbox(p.Label(), string(p), p == m.preset)
		if m.act.Supported != nil && !m.act.Supported(p) {
			item.Disable()
		}
		m.choices[p] = item
		go m.clicks(item, func() {
			if m.act.SelectHotkey != nil {
				m.act.SelectHotkey(p)
			}
		})
	}
	systray.AddSeparator()

	mHistory := systray.AddMenuItem("View History", "Browse past transcriptions")
	go m.clicks(mHistory, m.act.ViewHistory)
	mLoad := systray.AddMenuItem("Load Model Now", "Warm up the speech model")
	go m.clicks(mLoad, m.act.LoadModel)
	systray.AddSeparator()

	mQuit := systray.AddMenuItem("Quit", "Quit Voice Dictation")
	go m.clicks(mQuit, m.closeQuit)

	m.ready = true
	log.Info("tray_ready")
}

func (m *Menu) clicks(item *systray.MenuItem, fn func()) {
	for {
		select {
		case <-m.quit:
			return
		case <-item.ClickedCh:
			if fn != nil {
				fn()
			}
		}
	}
}

// Start creates the status item. The returned channel is the same as Quit.
func (m *Menu) Start() <-chan struct{} {
	start, _ := systray.RunWithExternalLoop(m.onReady, m.closeQuit)
	runOnMain(start)
	return m.quit
}

// Stop removes the status item.
func (m *Menu) Stop() {
	m.mu.Lock()
	ready := m.ready
	m.ready = false
	m.mu.Unlock()
	if ready {
		systray.Quit()
	}
	m.closeQuit()
}
