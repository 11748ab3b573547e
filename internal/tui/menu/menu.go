// ABOUTME: Home navigation menu shown once the user is signed in
// ABOUTME: Routes to the feed, saved jobs, resume analysis and profile screens

package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/icons"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
)

// Destination is a screen the menu can route to
type Destination int

const (
	DestFeed Destination = iota
	DestSaved
	DestResume
	DestProfile
	DestLogout
)

// SelectedMsg is sent when the user picks a destination
type SelectedMsg struct {
	Dest Destination
}

// CancelledMsg is sent when the user quits from the menu
type CancelledMsg struct{}

type option struct {
	icon  icons.Icon
	label string
	hint  string
	value Destination
}

// Menu is the home navigation list
type Menu struct {
	options []option
	cursor  int
	greet   string
}

// New creates the home menu. name is shown in the greeting.
func New(name string) *Menu {
	return &Menu{
		options: []option{
			{icons.Job, "Job feed", "swipe through recommended jobs", DestFeed},
			{icons.Save, "Saved jobs", "saved and applied jobs", DestSaved},
			{icons.Resume, "Analyze resume", "upload a PDF/DOCX or paste text", DestResume},
			{icons.User, "Profile", "skills and preferences", DestProfile},
			{icons.Logout, "Log out", "forget this device's session", DestLogout},
		},
		greet: name,
	}
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		dest := m.options[m.cursor].value
		return m, func() tea.Msg { return SelectedMsg{Dest: dest} }
	case "q", "esc":
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, nil
}

// Selected returns the destination under the cursor
func (m *Menu) Selected() Destination {
	return m.options[m.cursor].value
}

// View implements tea.Model
func (m *Menu) View() string {
	var b strings.Builder

	title := "Where to next?"
	if m.greet != "" {
		title = "Welcome back, " + m.greet
	}
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")

	for i, opt := range m.options {
		cursor := "  "
		style := styles.Normal
		if i == m.cursor {
			cursor = "> "
			style = styles.Selected
		}
		b.WriteString(cursor + style.Render(opt.icon.String()+" "+opt.label))
		b.WriteString("  " + styles.Help.UnsetMarginTop().Render(opt.hint) + "\n")
	}
	return b.String()
}

// String returns the string representation of a Destination
func (d Destination) String() string {
	switch d {
	case DestFeed:
		return "feed"
	case DestSaved:
		return "saved"
	case DestResume:
		return "resume"
	case DestProfile:
		return "profile"
	case DestLogout:
		return "logout"
	default:
		return "unknown"
	}
}
