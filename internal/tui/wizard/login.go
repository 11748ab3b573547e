// ABOUTME: Login form as a bubbletea model
// ABOUTME: Collects username or email and password with a huh form

package wizard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
)

// LoginSubmittedMsg carries the entered credentials
type LoginSubmittedMsg struct {
	Identifier string
	Secret     string
}

// RegisterRequestedMsg is sent when the user asks to create an account
type RegisterRequestedMsg struct{}

// Login is the sign-in form
type Login struct {
	identifier string
	secret     string
	form       *huh.Form
	err        string
	width      int
}

// NewLogin creates a login form, prefilled with identifier when known
func NewLogin(identifier string) *Login {
	l := &Login{identifier: identifier}
	l.form = l.createForm()
	return l
}

func (l *Login) createForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username or email").
				Value(&l.identifier).
				Validate(required("username or email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&l.secret).
				Validate(required("password")),
		).Title("Log in to NextStep").
			Description("ctrl+r creates a new account"),
	).WithTheme(styles.FormTheme())
}

// Init implements tea.Model
func (l *Login) Init() tea.Cmd {
	return l.form.Init()
}

// Update implements tea.Model
func (l *Login) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "ctrl+r" {
			return l, func() tea.Msg { return RegisterRequestedMsg{} }
		}
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}

	if l.form.State == huh.StateCompleted {
		submitted := LoginSubmittedMsg{Identifier: strings.TrimSpace(l.identifier), Secret: l.secret}
		return l, func() tea.Msg { return submitted }
	}
	return l, cmd
}

// Reset clears the password and rebuilds the form after a failed attempt,
// keeping the identifier
func (l *Login) Reset(errMsg string) tea.Cmd {
	l.secret = ""
	l.err = errMsg
	l.form = l.createForm()
	return l.form.Init()
}

// View implements tea.Model
func (l *Login) View() string {
	view := l.form.View()
	if l.err != "" {
		view += "\n" + styles.ErrorMsg.Render("Error: "+l.err)
	}
	return view
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
