// Package browser is the terminal history viewer started by the
// "history" subcommand.
package browser

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/KenKaminsky/voice-dictation/history"
	"github.com/KenKaminsky/voice-dictation/paste"
)

// Store is the part of history.Store the viewer needs.
type Store interface {
	All() []history.Entry
	Clear()
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	searchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	previewStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	flashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type reloadMsg struct{ entries []history.Entry }

type clearFlashMsg struct{ id int }

const flashFor = 2 * time.Second

type Model struct {
	store Store
	clip  paste.Clipboard
	now   func() time.Time

	all      []history.Entry
	shown    []history.Entry
	query    string
	cursor   int
	offset   int
	confirm  bool
	flash    string
	flashID  int
	width    int
	height   int
	quitting bool
}

func New(store Store, clip paste.Clipboard) Model {
	m := Model{store: store, clip: clip, now: time.Now, width: 80, height: 24}
	m.all = store.All()
	m.refilter()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Shown is the filtered list, most recent first.
func (m Model) Shown() []history.Entry { return m.shown }

func (m Model) Query() string { return m.query }

func (m Model) Cursor() int { return m.cursor }

func (m Model) Selected() (history.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.shown) {
		return history.Entry{}, false
	}
	return m.shown[m.cursor], true
}

func (m *Model) refilter() {
	m.shown = history.Filter(m.all, m.query)
	if m.cursor >= len(m.shown) {
		m.cursor = max(len(m.shown)-1, 0)
	}
	m.clampOffset()
}

func (m *Model) listHeight() int {
	// title, search, blank, preview (3 + border), help
	return max(m.height-9, 3)
}

func (m *Model) clampOffset() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(m.offset, 0)
}

func (m *Model) setFlash(s string) tea.Cmd {
	m.flashID++
	m.flash = s
	id := m.flashID
	return tea.Tick(flashFor, func(time.Time) tea.Msg { return clearFlashMsg{id: id} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.clampOffset()

	case reloadMsg:
		m.all = msg.entries
		m.refilter()

	case clearFlashMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}

	case tea.KeyMsg:
		if m.confirm {
			return m.updateConfirm(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirm = false
	switch msg.String() {
	case "y", "Y":
		m.store.Clear()
		m.all = nil
		m.cursor, m.offset = 0, 0
		m.refilter()
		return m, m.setFlash("History cleared")
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEsc:
		if m.query == "" {
			m.quitting = true
			return m, tea.Quit
		}
		m.query = ""
		m.cursor, m.offset = 0, 0
		m.refilter()
	case tea.KeyUp, tea.KeyCtrlP:
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}
	case tea.KeyDown, tea.KeyCtrlN:
		if m.cursor < len(m.shown)-1 {
			m.cursor++
			m.clampOffset()
		}
	case tea.KeyPgUp:
		m.cursor = max(m.cursor-m.listHeight(), 0)
		m.clampOffset()
	case tea.KeyPgDown:
		m.cursor = max(min(m.cursor+m.listHeight(), len(m.shown)-1), 0)
		m.clampOffset()
	case tea.KeyEnter:
		e, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if err := m.clip.Write(e.Text); err != nil {
			return m, m.setFlash("Copy failed: " + err.Error())
		}
		return m, m.setFlash("Copied to clipboard")
	case tea.KeyCtrlX:
		if len(m.all) > 0 {
			m.confirm = true
		}
	case tea.KeyCtrlR:
		return m, m.reload()
	case tea.KeyBackspace:
		if m.query != "" {
			_, size := utf8.DecodeLastRuneInString(m.query)
			m.query = m.query[:len(m.query)-size]
			m.cursor, m.offset = 0, 0
			m.refilter()
		}
	case tea.KeyRunes, tea.KeySpace:
		m.query += string(msg.Runes)
		m.cursor, m.offset = 0, 0
		m.refilter()
	}
	return m, nil
}

func (m Model) reload() tea.Cmd {
	return func() tea.Msg { return reloadMsg{entries: m.store.All()} }
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	count := fmt.Sprintf("%d of %d", len(m.shown), len(m.all))
	b.WriteString(titleStyle.Render("Voice Dictation History") + "  " + dimStyle.Render(count) + "\n")
	b.WriteString(searchStyle.Render("Search: "+m.query+"▏") + "\n\n")

	if len(m.shown) == 0 {
		if len(m.all) == 0 {
			b.WriteString(dimStyle.Render("  No transcriptions yet.") + "\n")
		} else {
			b.WriteString(dimStyle.Render("  Nothing matches.") + "\n")
		}
	}

	end := min(m.offset+m.listHeight(), len(m.shown))
	for i := m.offset; i < end; i++ {
		line := m.row(m.shown[i])
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if e, ok := m.Selected(); ok {
		b.WriteString(previewStyle.Width(max(m.width-4, 20)).Render(e.Text) + "\n")
	}

	switch {
	case m.confirm:
		b.WriteString(warnStyle.Render("Clear all history? (y/n)"))
	case m.flash != "":
		b.WriteString(flashStyle.Render(m.flash))
	default:
		b.WriteString(dimStyle.Render("type to search · ↑/↓ move · enter copy · ctrl+x clear · ctrl+r reload · esc quit"))
	}
	return b.String()
}

func (m Model) row(e history.Entry) string {
	when := humanize.RelTime(e.Timestamp, m.now(), "ago", "from now")
	prefix := fmt.Sprintf(" %-16s %5.1fs  ", when, e.DurationSeconds)
	room := max(m.width-utf8.RuneCountInString(prefix)-1, 10)
	return prefix + ellipsize(oneLine(e.Text), room)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func ellipsize(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run shows the viewer full screen until the user quits.
func Run(store Store, clip paste.Clipboard) error {
	p := tea.NewProgram(New(store, clip), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
