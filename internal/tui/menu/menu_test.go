// ABOUTME: Tests for the home navigation menu
// ABOUTME: Validates cursor movement, selection messages and labels

package menu

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMenuOptions(t *testing.T) {
	m := New("Ada")

	if len(m.options) != 5 {
		t.Errorf("expected 5 options, got %d", len(m.options))
	}
	if m.options[0].value != DestFeed {
		t.Errorf("expected feed first, got %s", m.options[0].value)
	}
}

func TestMenuNavigationClamps(t *testing.T) {
	m := New("")

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", m.cursor)
	}

	for i := 0; i < 10; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.Selected() != DestLogout {
		t.Errorf("expected last option selected, got %s", m.Selected())
	}
}

func TestMenuEnterSendsSelection(t *testing.T) {
	m := New("")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", cmd())
	}
	if msg.Dest != DestSaved {
		t.Errorf("expected saved, got %s", msg.Dest)
	}
}

func TestMenuQuit(t *testing.T) {
	m := New("")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("expected CancelledMsg, got %T", cmd())
	}
}

func TestMenuViewGreets(t *testing.T) {
	view := New("Ada").View()
	if !strings.Contains(view, "Welcome back, Ada") {
		t.Errorf("expected greeting in view, got %q", view)
	}
	if !strings.Contains(view, "Job feed") {
		t.Error("expected feed option in view")
	}
}

func TestDestinationString(t *testing.T) {
	tests := []struct {
		dest     Destination
		expected string
	}{
		{DestFeed, "feed"},
		{DestSaved, "saved"},
		{DestResume, "resume"},
		{DestProfile, "profile"},
		{DestLogout, "logout"},
		{Destination(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.dest.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
