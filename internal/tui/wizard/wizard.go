// ABOUTME: Account registration wizard as a bubbletea model
// ABOUTME: Uses huh forms with visual progress indicator for step navigation

package wizard

import (
	"fmt"
	"net/mail"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/icons"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
)

// MinPasswordLength mirrors the server's password policy
const MinPasswordLength = 8

// WizardCompleteMsg is sent when the wizard finishes successfully
type WizardCompleteMsg struct {
	Input client.RegisterInput
}

// WizardCancelledMsg is sent when the wizard is cancelled
type WizardCancelledMsg struct{}

// Wizard manages the registration flow as a bubbletea model
type Wizard struct {
	input client.RegisterInput
	form  *huh.Form
	step  int
	width int
}

// Step names for progress indicator
var stepNames = []string{"Account", "Password", "About You"}

// New creates a new registration wizard
func New() *Wizard {
	w := &Wizard{step: 1}
	w.form = w.createStep1Form()
	return w
}

func (w *Wizard) createStep1Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Description("Used to log in").
				CharLimit(150).
				Value(&w.input.Username).
				Validate(validateUsername),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				CharLimit(254).
				Value(&w.input.Email).
				Validate(validateEmail),
		).Title("Step 1: Account").
			Description("Pick a username and tell us where to reach you"),
	).WithTheme(styles.FormTheme())
}

func (w *Wizard) createStep2Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				Description(fmt.Sprintf("At least %d characters", MinPasswordLength)).
				EchoMode(huh.EchoModePassword).
				Value(&w.input.Password).
				Validate(validatePassword),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&w.input.PasswordConfirm).
				Validate(w.validateConfirm),
		).Title("Step 2: Password"),
	).WithTheme(styles.FormTheme())
}

func (w *Wizard) createStep3Form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("First name").
				Description("Optional").
				CharLimit(150).
				Value(&w.input.FirstName),
			huh.NewInput().
				Title("Last name").
				Description("Optional").
				CharLimit(150).
				Value(&w.input.LastName),
		).Title("Step 3: About You").
			Description("Shown in generated outreach emails"),
	).WithTheme(styles.FormTheme())
}

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return w.form.Init()
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		form, cmd := w.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			w.form = f
		}
		return w, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return w, func() tea.Msg { return WizardCancelledMsg{} }
		}
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	if w.form.State == huh.StateCompleted {
		return w.advanceStep()
	}

	return w, cmd
}

func (w *Wizard) advanceStep() (tea.Model, tea.Cmd) {
	switch w.step {
	case 1:
		w.input.Username = strings.TrimSpace(w.input.Username)
		w.input.Email = strings.TrimSpace(w.input.Email)
		w.step = 2
		w.form = w.createStep2Form()
		return w, w.form.Init()

	case 2:
		w.step = 3
		w.form = w.createStep3Form()
		return w, w.form.Init()

	case 3:
		w.input.FirstName = strings.TrimSpace(w.input.FirstName)
		w.input.LastName = strings.TrimSpace(w.input.LastName)
		input := w.input
		return w, func() tea.Msg {
			return WizardCompleteMsg{Input: input}
		}
	}

	return w, nil
}

// Step returns the current step, starting at 1
func (w *Wizard) Step() int {
	return w.step
}

// SetWidth sets the wizard width for proper rendering
func (w *Wizard) SetWidth(width int) {
	w.width = width
}

// View implements tea.Model
func (w *Wizard) View() string {
	var sb strings.Builder

	sb.WriteString(w.renderProgress())
	sb.WriteString("\n\n")
	sb.WriteString(w.form.View())

	return sb.String()
}

// renderProgress renders the step progress indicator
func (w *Wizard) renderProgress() string {
	// w.width is already a.width - 1, so this gives a.width - 2 total
	width := w.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum < w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == w.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}

	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │" = 5 chars overhead
	barWidth := width - 5
	filledWidth := (w.step * barWidth) / len(stepNames)
	emptyWidth := barWidth - filledWidth

	progressBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", emptyWidth))

	title := "Create your account"
	topBorder := "┌─ " + titleStyle.Render(title) + " " + strings.Repeat("─", max(0, width-5-lipgloss.Width(title))) + "┐"

	stepsPadding := max(0, width-4-lipgloss.Width(stepsLine))
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", stepsPadding) + " │"
	progressLinePadded := "│  " + progressBar + " │"
	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLinePadded,
		bottomBorder,
	}, "\n"))
}

// Input returns the collected registration input
func (w *Wizard) Input() client.RegisterInput {
	return w.input
}

func validateUsername(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("username is required")
	}
	if strings.ContainsAny(s, " \t") {
		return fmt.Errorf("username cannot contain spaces")
	}
	return nil
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil || !strings.Contains(s, "@") {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < MinPasswordLength {
		return fmt.Errorf("must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func (w *Wizard) validateConfirm(s string) error {
	if s != w.input.Password {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}
