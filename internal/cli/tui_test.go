package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/theme"
)

func newTestBrowser(t *testing.T) (BrowseModel, *theme.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	cat, err := content.Parse(strings.NewReader(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	store := theme.NewMemoryStore()
	pref, err := theme.Init(ctx, store, theme.Dark)
	if err != nil {
		t.Fatal(err)
	}
	return NewBrowseModel(ctx, cat, pref), store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m BrowseModel, msg tea.Msg) (BrowseModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(BrowseModel), cmd
}

func TestBrowseNavigation(t *testing.T) {
	m, _ := newTestBrowser(t)

	m, _ = send(m, key("up"))
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}
	m, _ = send(m, key("down"))
	m, _ = send(m, key("down"))
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want clamped to 1", m.Cursor)
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "▸") || !strings.Contains(view, "[2/2]") {
		t.Errorf("list view:\n%s", view)
	}
}

func TestBrowseDetail(t *testing.T) {
	m, _ := newTestBrowser(t)

	m, _ = send(m, key("enter"))
	if !m.open || m.detail == "" {
		t.Fatal("enter should open the detail pane")
	}
	view := stripANSI(m.View())
	for _, want := range []string{"Alpha", "First capability.", "esc back"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q:\n%s", want, view)
		}
	}

	m, _ = send(m, key("esc"))
	if m.open {
		t.Error("esc should close the detail pane")
	}
	_, cmd := send(m, key("esc"))
	if cmd == nil {
		t.Fatal("esc on the list should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc on the list should return tea.Quit")
	}
}

func TestBrowseDetailScroll(t *testing.T) {
	m, _ := newTestBrowser(t)
	m, _ = send(m, tea.WindowSizeMsg{Width: 60, Height: 11})
	m, _ = send(m, key("enter"))

	if m.vp.Width != 60 || m.vp.Height != m.Height {
		t.Errorf("viewport = %dx%d, want 60x%d", m.vp.Width, m.vp.Height, m.Height)
	}

	total := m.vp.TotalLineCount()
	limit := max(total-m.Height, 0)
	for i := 0; i < total+5; i++ {
		m, _ = send(m, key("j"))
	}
	if m.vp.YOffset != limit {
		t.Errorf("offset = %d, want clamped to %d", m.vp.YOffset, limit)
	}
	if view := stripANSI(m.View()); !strings.Contains(view, fmt.Sprintf("of %d", total)) {
		t.Errorf("detail footer missing line count:\n%s", view)
	}
	m, _ = send(m, key("pgup"))
	if m.vp.YOffset != max(limit-m.Height, 0) {
		t.Errorf("offset after pgup = %d", m.vp.YOffset)
	}

	// Reopening starts at the top.
	m, _ = send(m, key("esc"))
	m, _ = send(m, key("enter"))
	if m.vp.YOffset != 0 {
		t.Errorf("offset after reopen = %d, want 0", m.vp.YOffset)
	}
}

func TestBrowseToggleTheme(t *testing.T) {
	m, store := newTestBrowser(t)
	m, _ = send(m, key("enter"))
	before := m.detail

	m, cmd := send(m, key("t"))
	if cmd == nil {
		t.Fatal("t should return a command")
	}
	if m.Theme != theme.Dark {
		t.Error("theme must not change before the toggle is stored")
	}

	m, _ = send(m, cmd())
	if m.Theme != theme.Light {
		t.Errorf("Theme = %s, want light", m.Theme)
	}
	if stored, _, _ := store.Load(context.Background()); stored != theme.Light {
		t.Errorf("stored theme = %s, want light", stored)
	}
	if m.detail == before {
		t.Error("detail was not re-rendered for the new theme")
	}
	if !strings.Contains(stripANSI(m.View()), "[light]") {
		t.Error("header does not show the new theme")
	}
	if !strings.Contains(stripANSI(m.View()), "theme: light") {
		t.Error("status line does not confirm the saved theme")
	}
}

func TestBrowseQuit(t *testing.T) {
	m, _ := newTestBrowser(t)
	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := send(m, key(k))
		if cmd == nil {
			t.Fatalf("%s should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not return tea.Quit", k)
		}
	}
}
