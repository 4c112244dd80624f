package browser

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/KenKaminsky/voice-dictation/history"
	"github.com/KenKaminsky/voice-dictation/paste"
)

type memStore struct {
	entries []history.Entry
	cleared int
}

func (s *memStore) All() []history.Entry {
	return append([]history.Entry(nil), s.entries...)
}

func (s *memStore) Clear() {
	s.entries = nil
	s.cleared++
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sample() *memStore {
	return &memStore{entries: []history.Entry{
		{ID: "3", Text: "Ship the release notes", Timestamp: base.Add(-2 * time.Minute), DurationSeconds: 2.5},
		{ID: "2", Text: "hello world", Timestamp: base.Add(-3 * time.Hour), DurationSeconds: 1.2},
		{ID: "1", Text: "Remember to call HELLO Kitty", Timestamp: base.Add(-50 * time.Hour), DurationSeconds: 3},
	}}
}

func newModel(s Store, clip paste.Clipboard) Model {
	m := New(s, clip)
	m.now = func() time.Time { return base }
	return m
}

func keys(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func ids(entries []history.Entry) string {
	var out []string
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return strings.Join(out, ",")
}

func TestListsMostRecentFirst(t *testing.T) {
	m := newModel(sample(), paste.NewFakeClipboard(""))
	if got := ids(m.Shown()); got != "3,2,1" {
		t.Errorf("shown = %s", got)
	}
	view := m.View()
	for _, want := range []string{"2 minutes ago", "3 hours ago", "2 days ago", "3 of 3"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestIncrementalSearch(t *testing.T) {
	m := newModel(sample(), paste.NewFakeClipboard(""))

	m = keys(m, typed("hel"))
	if got := ids(m.Shown()); got != "2,1" {
		t.Fatalf("after 'hel' shown = %s", got)
	}
	m = keys(m, typed("lo w"))
	if got := ids(m.Shown()); got != "2" {
		t.Fatalf("after 'hello w' shown = %s", got)
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Query() != "hello" || ids(m.Shown()) != "2,1" {
		t.Fatalf("after backspace query %q shown %s", m.Query(), ids(m.Shown()))
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Query() != "" || ids(m.Shown()) != "3,2,1" {
		t.Fatalf("esc did not reset search: %q %s", m.Query(), ids(m.Shown()))
	}

	m = keys(m, typed("zebra"))
	if len(m.Shown()) != 0 || !strings.Contains(m.View(), "Nothing matches") {
		t.Errorf("expected empty result view:\n%s", m.View())
	}
}

func TestNavigationAndCopy(t *testing.T) {
	clip := paste.NewFakeClipboard("")
	m := newModel(sample(), clip)

	m = keys(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor() != 0 {
		t.Fatalf("cursor moved above top: %d", m.Cursor())
	}
	m = keys(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2", m.Cursor())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Error("copy should schedule the flash to clear")
	}
	if got := clip.Writes(); len(got) != 1 || got[0] != "Remember to call HELLO Kitty" {
		t.Fatalf("clipboard writes = %q", got)
	}
	if !strings.Contains(m.View(), "Copied to clipboard") {
		t.Error("no copy confirmation")
	}

	m = keys(m, clearFlashMsg{id: m.flashID})
	if strings.Contains(m.View(), "Copied to clipboard") {
		t.Error("flash not cleared")
	}
}

func TestCopyFailureIsShown(t *testing.T) {
	clip := paste.NewFakeClipboard("")
	clip.WriteErr = errors.New("pasteboard locked")
	m := newModel(sample(), clip)
	m = keys(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "Copy failed: pasteboard locked") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestClearNeedsConfirmation(t *testing.T) {
	store := sample()
	m := newModel(store, paste.NewFakeClipboard(""))

	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if !strings.Contains(m.View(), "Clear all history? (y/n)") {
		t.Fatalf("no confirmation prompt:\n%s", m.View())
	}
	m = keys(m, typed("n"))
	if store.cleared != 0 || len(m.Shown()) != 3 {
		t.Fatal("declined clear still cleared")
	}
	if m.Query() != "" {
		t.Errorf("answer leaked into search: %q", m.Query())
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyCtrlX}, typed("y"))
	if store.cleared != 1 || len(m.Shown()) != 0 {
		t.Fatalf("cleared = %d, shown = %d", store.cleared, len(m.Shown()))
	}
	if !strings.Contains(m.View(), "No transcriptions yet") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestReload(t *testing.T) {
	store := sample()
	m := newModel(store, paste.NewFakeClipboard(""))
	store.entries = append([]history.Entry{{ID: "4", Text: "new one", Timestamp: base}}, store.entries...)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatal("reload returned no command")
	}
	m = keys(m, cmd())
	if got := ids(m.Shown()); got != "4,3,2,1" {
		t.Errorf("after reload shown = %s", got)
	}
}

func TestQuit(t *testing.T) {
	m := newModel(sample(), paste.NewFakeClipboard(""))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc with empty search should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	store := &memStore{}
	for i := range 40 {
		store.entries = append(store.entries, history.Entry{ID: string(rune('a' + i%26)), Text: "entry", Timestamp: base})
	}
	m := newModel(store, paste.NewFakeClipboard(""))
	m = keys(m, tea.WindowSizeMsg{Width: 80, Height: 15})
	for range 20 {
		m = keys(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.cursor < m.offset || m.cursor >= m.offset+m.listHeight() {
		t.Errorf("cursor %d outside window [%d, %d)", m.cursor, m.offset, m.offset+m.listHeight())
	}
}

func TestEllipsize(t *testing.T) {
	if got := ellipsize("hello world", 5); got != "hell…" {
		t.Errorf("ellipsize = %q", got)
	}
	if got := oneLine("a\n b\tc"); got != "a b c" {
		t.Errorf("oneLine = %q", got)
	}
}
