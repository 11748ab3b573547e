// ABOUTME: Saved jobs screen with saved and applied tabs
// ABOUTME: Lists tracked jobs and emits intents to mark applied, remove or draft an email

package saved

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/widgets"
)

// Tab selects which collection is listed
type Tab int

const (
	TabSaved Tab = iota
	TabApplied
)

// MarkAppliedMsg asks to move a saved entry to applied
type MarkAppliedMsg struct{ SavedID int64 }

// RemoveMsg asks to delete a saved entry
type RemoveMsg struct{ SavedID int64 }

// DraftEmailMsg asks to generate an outreach email for a job
type DraftEmailMsg struct{ Job client.Job }

// RefreshMsg asks to resync the collections from the server
type RefreshMsg struct{}

// BackMsg is sent when the user leaves the screen
type BackMsg struct{}

// Model is the saved jobs list
type Model struct {
	saved   []client.SavedJob
	applied []client.SavedJob
	tab     Tab
	cursor  int
	width   int
	height  int
	now     func() time.Time
}

// New creates the saved jobs screen
func New(saved, applied []client.SavedJob) *Model {
	return &Model{saved: saved, applied: applied, now: time.Now}
}

// SetItems replaces both collections, keeping the cursor in range
func (m *Model) SetItems(saved, applied []client.SavedJob) {
	m.saved = saved
	m.applied = applied
	m.clamp()
}

// SetSize updates the list dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Tab returns the active tab
func (m *Model) Tab() Tab {
	return m.tab
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "tab", "left", "right", "h", "l":
		m.tab = 1 - m.tab
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items())-1 {
			m.cursor++
		}
	case "a":
		if sj, ok := m.selected(); ok && m.tab == TabSaved {
			return m, func() tea.Msg { return MarkAppliedMsg{SavedID: sj.ID} }
		}
	case "d", "delete":
		if sj, ok := m.selected(); ok {
			return m, func() tea.Msg { return RemoveMsg{SavedID: sj.ID} }
		}
	case "e":
		if sj, ok := m.selected(); ok {
			return m, func() tea.Msg { return DraftEmailMsg{Job: sj.Job} }
		}
	case "r":
		return m, func() tea.Msg { return RefreshMsg{} }
	case "esc", "b":
		return m, func() tea.Msg { return BackMsg{} }
	}
	return m, nil
}

func (m *Model) items() []client.SavedJob {
	if m.tab == TabApplied {
		return m.applied
	}
	return m.saved
}

func (m *Model) selected() (client.SavedJob, bool) {
	items := m.items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return client.SavedJob{}, false
	}
	return items[m.cursor], true
}

func (m *Model) clamp() {
	if n := len(m.items()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.renderTabs())
	sb.WriteString("\n\n")

	items := m.items()
	if len(items) == 0 {
		empty := "No saved jobs yet. Swipe up on a card to save it."
		if m.tab == TabApplied {
			empty = "No applications yet. Swipe right on a card to apply."
		}
		sb.WriteString(styles.Help.UnsetMarginTop().Render(empty))
		return sb.String()
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	for i, sj := range items {
		sb.WriteString(m.renderRow(sj, i == m.cursor, width))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderTabs() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(styles.Text).Background(styles.Primary).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(styles.Muted).Padding(0, 1)

	savedLabel := fmt.Sprintf("Saved (%d)", len(m.saved))
	appliedLabel := fmt.Sprintf("Applied (%d)", len(m.applied))
	if m.tab == TabSaved {
		return active.Render(savedLabel) + " " + inactive.Render(appliedLabel)
	}
	return inactive.Render(savedLabel) + " " + active.Render(appliedLabel)
}

func (m *Model) renderRow(sj client.SavedJob, selected bool, width int) string {
	cursor := "  "
	titleStyle := styles.Normal
	if selected {
		cursor = "> "
		titleStyle = styles.Selected
	}

	when := sj.SavedAt
	verb := "saved"
	if sj.Status == client.StatusApplied {
		verb = "applied"
		if sj.AppliedAt != nil {
			when = *sj.AppliedAt
		}
	}
	age := ""
	if !when.IsZero() {
		age = fmt.Sprintf("%s %s", verb, humanize.RelTime(when, m.now(), "ago", "from now"))
	}

	match := -1.0
	if sj.MatchScore != nil {
		match = *sj.MatchScore * 100
	} else if p := sj.Job.MatchPercent(); p >= 0 {
		match = p
	}

	right := widgets.MatchBadge(match) + " " + widgets.SavedStatusBadge(sj.Status)
	title := fmt.Sprintf("%s · %s", sj.Job.Title, sj.Job.Company)
	room := max(10, width-lipgloss.Width(right)-lipgloss.Width(cursor)-2)
	line := cursor + titleStyle.Render(widgets.Truncate(title, room))
	pad := max(1, width-lipgloss.Width(line)-lipgloss.Width(right))
	line += strings.Repeat(" ", pad) + right

	meta := []string{}
	if sj.Job.Location != "" {
		meta = append(meta, sj.Job.Location)
	}
	if age != "" {
		meta = append(meta, age)
	}
	if sj.EmailDraft != "" {
		meta = append(meta, "email drafted")
	}
	if len(meta) > 0 {
		line += "\n    " + lipgloss.NewStyle().Foreground(styles.Muted).Render(strings.Join(meta, " · "))
	}
	return line
}
