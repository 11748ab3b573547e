// ABOUTME: Outreach email screen showing a generated draft in a scrollable viewport
// ABOUTME: Lets the user cycle the tone and regenerate for the selected job

package email

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/icons"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
)

// GenerateMsg asks the app to generate a draft with the given tone
type GenerateMsg struct {
	Job  client.Job
	Tone string
}

// BackMsg is sent when the user leaves the screen
type BackMsg struct{}

// Model shows one email draft
type Model struct {
	job      client.Job
	tone     string
	draft    *client.EmailDraft
	err      string
	loading  bool
	viewport viewport.Model
	spinner  spinner.Model
}

// New creates the email screen for job and starts with the first tone
func New(job client.Job, width, height int) *Model {
	vp := viewport.New(max(20, width), max(3, height-4))
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)
	return &Model{
		job:      job,
		tone:     client.EmailTones[0],
		viewport: vp,
		spinner:  sp,
	}
}

// Job returns the job the draft is for
func (m *Model) Job() client.Job {
	return m.job
}

// Tone returns the selected tone
func (m *Model) Tone() string {
	return m.tone
}

// Generate marks the model as loading and returns the request intent
func (m *Model) Generate() tea.Cmd {
	m.loading = true
	m.err = ""
	req := GenerateMsg{Job: m.job, Tone: m.tone}
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return req })
}

// SetDraft shows a finished draft
func (m *Model) SetDraft(d *client.EmailDraft) {
	m.loading = false
	m.draft = d
	m.err = ""
	m.viewport.SetContent(m.renderDraft())
	m.viewport.GotoTop()
}

// SetError shows a failed generation
func (m *Model) SetError(msg string) {
	m.loading = false
	m.err = msg
}

// SetSize resizes the viewport
func (m *Model) SetSize(width, height int) {
	m.viewport.Width = max(20, width)
	m.viewport.Height = max(3, height-4)
	if m.draft != nil {
		m.viewport.SetContent(m.renderDraft())
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "b":
			return m, func() tea.Msg { return BackMsg{} }
		case "t":
			if m.loading {
				return m, nil
			}
			m.tone = nextTone(m.tone)
			return m, m.Generate()
		case "g":
			if m.loading {
				return m, nil
			}
			return m, m.Generate()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.UnsetMarginBottom().Render(fmt.Sprintf("%s Email for %s at %s",
		icons.Email.String(), m.job.Title, m.job.Company)))
	sb.WriteString("\n")
	sb.WriteString(styles.KeyStyle.Render("Tone: ") + m.tone)
	sb.WriteString("\n\n")

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View() + " Writing your email...")
	case m.err != "":
		sb.WriteString(styles.ErrorMsg.Render("Error: " + m.err))
	case m.draft == nil:
		sb.WriteString(styles.Help.UnsetMarginTop().Render("Press g to generate a draft"))
	default:
		sb.WriteString(m.viewport.View())
	}
	return sb.String()
}

func (m *Model) renderDraft() string {
	if m.draft == nil {
		return ""
	}
	body := lipgloss.NewStyle().Width(m.viewport.Width).Render(m.draft.Body)
	var sb strings.Builder
	sb.WriteString(styles.ValueStyle.Render("Subject: " + m.draft.Subject))
	sb.WriteString("\n\n")
	sb.WriteString(body)
	if m.draft.WordCount > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(fmt.Sprintf("%d words", m.draft.WordCount)))
	}
	return sb.String()
}

func nextTone(current string) string {
	for i, t := range client.EmailTones {
		if t == current {
			return client.EmailTones[(i+1)%len(client.EmailTones)]
		}
	}
	return client.EmailTones[0]
}
