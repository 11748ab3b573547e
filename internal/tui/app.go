// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state and routes keyboard and mouse input to child components

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/feed"
	"github.com/ParthhMahajann/Nextstep-AI/internal/resume"
	"github.com/ParthhMahajann/Nextstep-AI/internal/session"
	"github.com/ParthhMahajann/Nextstep-AI/internal/swipe"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/analysis"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/card"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/dashboard"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/email"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/filepicker"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/icons"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/menu"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/saved"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/wizard"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenBoot Screen = iota
	ScreenLogin
	ScreenRegister
	ScreenHome
	ScreenFeed
	ScreenSaved
	ScreenEmail
	ScreenResume
	ScreenAnalysis
	ScreenProfile
)

// Layout constants
const (
	minTerminalWidth = 80 // Frame never renders narrower than this
	frameLines       = 2  // header + footer
	feedStatusLines  = 2  // blank line + counters under the stack
	behindCardLines  = 2  // each card behind the top one shows text + border
	minCardHeight    = 8
)

// SessionExpiredMsg is sent by the gateway hook when a refresh fails
type SessionExpiredMsg struct{}

type bootDoneMsg struct{ err error }

type loginDoneMsg struct{ err error }

type registerDoneMsg struct{ err error }

type feedLoadedMsg struct{ err error }

type savedLoadedMsg struct{ err error }

type swipeDoneMsg struct {
	action swipe.Action
	job    client.Job
	err    error
}

type savedActionDoneMsg struct {
	verb string
	err  error
}

type emailDoneMsg struct {
	jobID int64
	draft *client.EmailDraft
	err   error
}

type analysisDoneMsg struct {
	source string
	result *client.ResumeAnalysis
	err    error
}

// Options configure the App
type Options struct {
	SwipeThreshold float64
	MaxResumeBytes int64
	ConfigDir      string
}

// App is the root model for the TUI
type App struct {
	client  *client.Client
	session *session.Store
	feed    *feed.Store
	recent  *resume.Recent
	swipe   *swipe.Controller
	opts    Options
	ctx     context.Context

	screen     Screen
	returnTo   Screen // where Email and Analysis go back to
	width      int
	height     int
	flash      string // inline error or status, cleared on the next key
	busy       bool   // a swipe is waiting on the server
	lastUpdate time.Time
	analyzeJob *client.Job // job the next resume analysis is matched against

	// Child models
	spinner      spinner.Model
	login        *wizard.Login
	wizardScreen *wizard.Wizard
	menu         *menu.Menu
	savedView    *saved.Model
	emailView    *email.Model
	picker       *filepicker.FilePicker
	analysisView *analysis.Analysis
	profileView  *dashboard.Dashboard
}

// New creates a new TUI application
func New(ctx context.Context, apiClient *client.Client, sess *session.Store, jobs *feed.Store, opts Options) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &App{
		client:  apiClient,
		session: sess,
		feed:    jobs,
		recent:  resume.NewRecent(opts.ConfigDir),
		swipe:   swipe.NewController(opts.SwipeThreshold),
		opts:    opts,
		ctx:     ctx,
		screen:  ScreenBoot,
		spinner: sp,
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.boot())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		childMsg := tea.WindowSizeMsg{Width: a.innerWidth(), Height: a.contentHeight()}
		if a.picker != nil {
			a.picker.Update(childMsg)
		}
		if a.login != nil {
			a.login.Update(childMsg)
		}
		if a.wizardScreen != nil {
			return a.updateWizard(childMsg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		a.flash = ""

		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenRegister:
			return a.updateWizard(msg)
		case ScreenHome:
			return a.updateMenu(msg)
		case ScreenFeed:
			return a.updateFeed(msg)
		case ScreenSaved:
			return a.updateSaved(msg)
		case ScreenEmail:
			return a.updateEmail(msg)
		case ScreenResume:
			return a.updatePicker(msg)
		case ScreenAnalysis, ScreenProfile:
			return a.updateReadOnly(msg)
		}
		return a, nil

	case tea.MouseMsg:
		if a.screen == ScreenFeed {
			return a.updateMouse(msg)
		}
		return a, nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if a.emailView != nil {
			_, cmd := a.emailView.Update(msg)
			cmds = append(cmds, cmd)
		}
		if a.screen == ScreenBoot || a.busy || a.feed.IsLoading() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case SessionExpiredMsg:
		return a.handleExpired()

	case bootDoneMsg:
		return a.handleBoot(msg)

	case loginDoneMsg:
		return a.handleLogin(msg)

	case registerDoneMsg:
		return a.handleRegister(msg)

	case wizard.LoginSubmittedMsg:
		return a, a.submitLogin(msg)

	case wizard.RegisterRequestedMsg:
		return a, a.openRegister()

	case wizard.WizardCompleteMsg:
		return a, a.submitRegister(msg.Input)

	case wizard.WizardCancelledMsg:
		a.wizardScreen = nil
		return a, a.openLogin("")

	case menu.SelectedMsg:
		return a.handleMenu(msg)

	case menu.CancelledMsg:
		return a, tea.Quit

	case feedLoadedMsg:
		if msg.err != nil {
			a.flash = "Could not load jobs: " + client.UserMessage(msg.err)
		} else {
			a.lastUpdate = time.Now()
		}
		return a, nil

	case swipeDoneMsg:
		return a.handleSwipeDone(msg)

	case savedLoadedMsg, savedActionDoneMsg:
		return a.handleSavedResult(msg)

	case saved.MarkAppliedMsg:
		return a, a.savedAction("marked applied", func(ctx context.Context) error {
			return a.feed.MarkApplied(ctx, msg.SavedID)
		})

	case saved.RemoveMsg:
		return a, a.savedAction("removed", func(ctx context.Context) error {
			return a.feed.Remove(ctx, msg.SavedID)
		})

	case saved.RefreshMsg:
		return a, a.fetchSaved()

	case saved.DraftEmailMsg:
		return a, a.openEmail(msg.Job)

	case saved.BackMsg:
		return a, a.goHome()

	case email.GenerateMsg:
		return a, a.generateEmail(msg)

	case emailDoneMsg:
		if a.emailView != nil && a.emailView.Job().ID == msg.jobID {
			if msg.err != nil {
				a.emailView.SetError(client.UserMessage(msg.err))
			} else {
				a.emailView.SetDraft(msg.draft)
			}
		}
		return a, nil

	case email.BackMsg:
		a.emailView = nil
		a.screen = a.returnTo
		return a, nil

	case filepicker.FileSelectedMsg:
		if err := a.recent.Add(msg.Path); err != nil {
			slog.Warn("Failed to record recent resume", "path", msg.Path, "error", err)
		}
		return a, a.analyzeFile(msg.File)

	case filepicker.TextEnteredMsg:
		return a, a.analyzeText(msg.Text)

	case filepicker.CancelledMsg:
		a.picker = nil
		a.screen = a.returnTo
		return a, nil

	case analysisDoneMsg:
		if msg.err != nil {
			if a.picker != nil {
				a.picker.SetError(client.UserMessage(msg.err))
			}
			return a, nil
		}
		a.analysisView = analysis.New(msg.result, msg.source, a.innerWidth())
		a.picker = nil
		a.screen = ScreenAnalysis
		return a, nil

	default:
		// huh forms need their internal messages
		switch a.screen {
		case ScreenLogin:
			return a.forwardLogin(msg)
		case ScreenRegister:
			return a.updateWizard(msg)
		case ScreenEmail:
			if a.emailView != nil {
				_, cmd := a.emailView.Update(msg)
				return a, cmd
			}
		case ScreenResume:
			if a.picker != nil {
				_, cmd := a.picker.Update(msg)
				return a, cmd
			}
		}
	}

	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		return a, tea.Quit
	}
	return a.forwardLogin(msg)
}

func (a *App) forwardLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.login == nil {
		return a, nil
	}
	model, cmd := a.login.Update(msg)
	a.login = model.(*wizard.Login)
	return a, cmd
}

func (a *App) updateWizard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.wizardScreen == nil {
		return a, nil
	}
	model, cmd := a.wizardScreen.Update(msg)
	a.wizardScreen = model.(*wizard.Wizard)
	return a, cmd
}

func (a *App) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.menu == nil {
		return a, nil
	}
	model, cmd := a.menu.Update(msg)
	a.menu = model.(*menu.Menu)
	return a, cmd
}

func (a *App) updateFeed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if action := swipe.FromKey(msg.String()); action != swipe.None {
		return a, a.commitSwipe(action)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "b":
		a.swipe.Cancel()
		return a, a.goHome()
	case "r":
		return a, a.fetchFeed()
	case "s":
		return a, a.openSaved()
	case "e":
		if job, ok := a.feed.Current(); ok {
			return a, a.openEmail(job)
		}
	case "m":
		if job, ok := a.feed.Current(); ok {
			return a, a.openResume(&job)
		}
	}
	return a, nil
}

func (a *App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := swipe.Point{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && !a.busy {
			a.swipe.Press(p)
		}
	case tea.MouseActionMotion:
		a.swipe.Move(p)
	case tea.MouseActionRelease:
		if action := a.swipe.Release(p); action != swipe.None {
			return a, a.commitSwipe(action)
		}
	}
	return a, nil
}

func (a *App) updateSaved(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return a, tea.Quit
	}
	if a.savedView == nil {
		return a, nil
	}
	_, cmd := a.savedView.Update(msg)
	return a, cmd
}

func (a *App) updateEmail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.emailView == nil {
		return a, nil
	}
	_, cmd := a.emailView.Update(msg)
	return a, cmd
}

func (a *App) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.picker == nil {
		return a, nil
	}
	if msg.String() == "q" && !a.picker.Editing() {
		return a, tea.Quit
	}
	model, cmd := a.picker.Update(msg)
	a.picker = model.(*filepicker.FilePicker)
	return a, cmd
}

func (a *App) updateReadOnly(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "b":
		if a.screen == ScreenAnalysis {
			a.analysisView = nil
			a.screen = a.returnTo
			return a, nil
		}
		a.profileView = nil
		return a, a.goHome()
	case "n":
		if a.screen == ScreenAnalysis {
			return a, a.openResume(a.analyzeJob)
		}
	}
	return a, nil
}

func (a *App) handleMenu(msg menu.SelectedMsg) (tea.Model, tea.Cmd) {
	switch msg.Dest {
	case menu.DestFeed:
		return a, a.openFeed()
	case menu.DestSaved:
		return a, a.openSaved()
	case menu.DestResume:
		return a, a.openResume(nil)
	case menu.DestProfile:
		snap := a.session.Snapshot()
		s := a.feed.Saved()
		ap := a.feed.Applied()
		stats := dashboard.FeedStats(a.feed.Window(a.feed.Len()), len(s), len(ap))
		a.profileView = dashboard.New(snap.User, snap.Profile, stats, a.innerWidth(), a.contentHeight())
		a.screen = ScreenProfile
		return a, nil
	case menu.DestLogout:
		a.session.Logout()
		a.feed.Reset()
		a.menu = nil
		return a, a.openLogin("")
	}
	return a, nil
}

func (a *App) handleBoot(msg bootDoneMsg) (tea.Model, tea.Cmd) {
	if a.session.IsAuthenticated() {
		return a, a.openFeed()
	}
	errMsg := ""
	if msg.err != nil && !isNotAuthenticated(msg.err) {
		errMsg = client.UserMessage(msg.err)
	}
	return a, a.openLogin(errMsg)
}

func (a *App) handleLogin(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if a.login == nil {
			return a, a.openLogin(client.UserMessage(msg.err))
		}
		return a, a.login.Reset(client.UserMessage(msg.err))
	}
	a.login = nil
	return a, a.openFeed()
}

func (a *App) handleRegister(msg registerDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.flash = client.UserMessage(msg.err)
		a.wizardScreen = wizard.New()
		a.wizardScreen.SetWidth(a.innerWidth())
		return a, a.wizardScreen.Init()
	}
	a.wizardScreen = nil
	return a, a.openFeed()
}

func (a *App) handleExpired() (tea.Model, tea.Cmd) {
	a.feed.Reset()
	a.swipe.Cancel()
	a.busy = false
	a.menu = nil
	a.savedView = nil
	a.emailView = nil
	a.picker = nil
	a.analysisView = nil
	a.profileView = nil
	a.wizardScreen = nil
	return a, a.openLogin(session.ErrExpired.Error())
}

func (a *App) handleSwipeDone(msg swipeDoneMsg) (tea.Model, tea.Cmd) {
	a.finishSwipe(msg)
	return a, nil
}

// finishSwipe reports the outcome of any swipe, synchronous or not
func (a *App) finishSwipe(msg swipeDoneMsg) {
	a.busy = false
	if msg.err != nil {
		a.flash = fmt.Sprintf("Could not %s %q: %s", msg.action, msg.job.Title, client.UserMessage(msg.err))
		return
	}
	switch msg.action {
	case swipe.Skip:
		a.flash = "Skipped " + msg.job.Title
	case swipe.Save:
		a.flash = "Saved " + msg.job.Title
	case swipe.Apply:
		a.flash = "Applied to " + msg.job.Title
	}
}

func (a *App) handleSavedResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	var err error
	verb := ""
	switch m := msg.(type) {
	case savedLoadedMsg:
		err = m.err
	case savedActionDoneMsg:
		err, verb = m.err, m.verb
	}
	if err != nil {
		a.flash = client.UserMessage(err)
	} else if verb != "" {
		a.flash = "Job " + verb
	}
	if a.savedView != nil {
		a.savedView.SetItems(a.feed.Saved(), a.feed.Applied())
	}
	return a, nil
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenBoot:
		content = a.viewBoot()
	case ScreenLogin:
		if a.login != nil {
			content = a.login.View()
		}
	case ScreenRegister:
		if a.wizardScreen != nil {
			content = a.wizardScreen.View()
		}
	case ScreenHome:
		if a.menu != nil {
			content = a.menu.View()
		}
	case ScreenFeed:
		content = a.viewFeed()
	case ScreenSaved:
		if a.savedView != nil {
			content = a.savedView.View()
		}
	case ScreenEmail:
		if a.emailView != nil {
			content = a.emailView.View()
		}
	case ScreenResume:
		if a.picker != nil {
			content = a.picker.View()
		}
	case ScreenAnalysis:
		if a.analysisView != nil {
			content = a.analysisView.View()
		}
	case ScreenProfile:
		if a.profileView != nil {
			content = a.profileView.View()
		}
	}

	if a.flash != "" {
		content += "\n" + a.renderFlash()
	}
	return a.wrapWithFrame(content)
}

func (a *App) viewBoot() string {
	label := "Starting..."
	if a.session.Snapshot().Restoring {
		label = "Restoring session..."
	}
	return a.spinner.View() + " " + label
}

func (a *App) viewFeed() string {
	if a.feed.IsLoading() && a.feed.Len() == 0 {
		return a.spinner.View() + " Finding jobs for you..."
	}
	if !a.feed.HasMore() {
		msg := "No more jobs right now. Press r to refresh."
		if a.feed.Len() == 0 && a.feed.Err() == nil {
			msg = "No recommendations yet. Analyze a resume or add skills to your profile, then press r."
		}
		return styles.Panel.Render(msg)
	}

	dx, _ := a.swipe.Cells()
	stack := card.Stack(a.feed.Window(card.StackDepth), card.Options{
		Width:   a.innerWidth(),
		Height:  a.cardHeight(),
		DX:      dx,
		Preview: a.swipe.Preview(),
	})

	status := fmt.Sprintf("%d of %d", a.feed.Cursor()+1, a.feed.Len())
	if saved, applied := len(a.feed.Saved()), len(a.feed.Applied()); saved+applied > 0 {
		status += fmt.Sprintf(" · %d saved · %d applied", saved, applied)
	}
	if a.busy {
		status += " · " + a.spinner.View() + " saving"
	}
	return stack + "\n\n" + lipgloss.NewStyle().Foreground(styles.Muted).Render(status)
}

func (a *App) renderFlash() string {
	if strings.HasPrefix(a.flash, "Saved") || strings.HasPrefix(a.flash, "Applied") || strings.HasPrefix(a.flash, "Job ") {
		return styles.StatusOK.Render(icons.CheckOK.String() + " " + a.flash)
	}
	return styles.ErrorMsg.Render(icons.Warning.String() + " " + a.flash)
}

// layout recomputes the top card's hit box for mouse drags
func (a *App) layout() {
	bounds := card.Bounds(card.Options{Width: a.innerWidth(), Height: a.cardHeight()})
	bounds.Y++ // header line
	a.swipe.SetBounds(bounds)
	if a.savedView != nil {
		a.savedView.SetSize(a.innerWidth(), a.contentHeight())
	}
	if a.emailView != nil {
		a.emailView.SetSize(a.innerWidth(), a.contentHeight())
	}
	if a.profileView != nil {
		a.profileView.SetSize(a.innerWidth(), a.contentHeight())
	}
}

// innerWidth is the width children render into. It matches the frame: one
// column short of the terminal so the last column never wraps, but never
// below the minimum.
func (a *App) innerWidth() int {
	return max(minTerminalWidth, a.width-1)
}

// contentHeight is the height between header and footer
func (a *App) contentHeight() int {
	return max(minCardHeight, a.height-frameLines)
}

// cardHeight leaves room for the cards behind the top one and the counters
func (a *App) cardHeight() int {
	return max(minCardHeight, a.contentHeight()-feedStatusLines-(card.StackDepth-1)*behindCardLines)
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.innerWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("NextStep"))

	rightText := ""
	if a.screen > ScreenRegister {
		if snap := a.session.Snapshot(); snap.User != nil {
			rightText = " " + contextStyle.Render(icons.User.String()+" "+snap.User.Username) + " "
		}
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftText)-lipgloss.Width(rightText)) // -4 for ╭─ and ─╮
	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"

	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.innerWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()
	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}

	leftText := " " + strings.Join(styled, "  ") + " "
	leftPlain := " " + strings.Join(shortcuts, "  ") + " "

	rightText, rightPlain := "", ""
	if a.screen == ScreenFeed && !a.lastUpdate.IsZero() {
		rightPlain = " Updated " + humanize.Time(a.lastUpdate) + " "
		rightText = statusStyle.Render(rightPlain)
	}

	fillWidth := max(0, width-4-lipgloss.Width(leftPlain)-lipgloss.Width(rightPlain)) // -4 for ╰─ and ─╯
	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"

	return borderStyle.Render(footer)
}

func (a *App) shortcuts() []string {
	switch a.screen {
	case ScreenLogin:
		return []string{"Enter Next", "ctrl+r Register", "Esc Quit"}
	case ScreenRegister:
		return []string{"Enter Next", "Esc Cancel"}
	case ScreenHome:
		return []string{"↑↓ Navigate", "Enter Select", "q Quit"}
	case ScreenFeed:
		return []string{"← Skip", "↑ Save", "→ Apply", "e Email", "m Match", "r Refresh", "b Back"}
	case ScreenSaved:
		return []string{"Tab Switch", "a Applied", "d Remove", "e Email", "b Back"}
	case ScreenEmail:
		return []string{"t Tone", "g Regenerate", "↑↓ Scroll", "b Back"}
	case ScreenResume:
		return []string{"↑↓ Navigate", "Enter Select", "ctrl+s Submit", "Esc Back"}
	case ScreenAnalysis:
		return []string{"n New analysis", "b Back", "q Quit"}
	case ScreenProfile:
		return []string{"b Back", "q Quit"}
	}
	return []string{"ctrl+c Quit"}
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// boot rehydrates the persisted session
func (a *App) boot() tea.Cmd {
	return func() tea.Msg {
		return bootDoneMsg{err: a.session.Boot(a.ctx)}
	}
}

func (a *App) openLogin(errMsg string) tea.Cmd {
	identifier := ""
	if snap := a.session.Snapshot(); snap.User != nil {
		identifier = snap.User.Username
	}
	a.login = wizard.NewLogin(identifier)
	a.screen = ScreenLogin
	if errMsg != "" {
		return a.login.Reset(errMsg)
	}
	return a.login.Init()
}

func (a *App) openRegister() tea.Cmd {
	a.login = nil
	a.wizardScreen = wizard.New()
	a.wizardScreen.SetWidth(a.innerWidth())
	a.screen = ScreenRegister
	return a.wizardScreen.Init()
}

func (a *App) submitLogin(msg wizard.LoginSubmittedMsg) tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{err: a.session.Login(a.ctx, msg.Identifier, msg.Secret)}
	}
}

func (a *App) submitRegister(input client.RegisterInput) tea.Cmd {
	return func() tea.Msg {
		return registerDoneMsg{err: a.session.Register(a.ctx, input)}
	}
}

func (a *App) goHome() tea.Cmd {
	name := ""
	if snap := a.session.Snapshot(); snap.User != nil {
		name = snap.User.DisplayName()
	}
	a.menu = menu.New(name)
	a.savedView = nil
	a.screen = ScreenHome
	return nil
}

func (a *App) openFeed() tea.Cmd {
	a.screen = ScreenFeed
	a.returnTo = ScreenFeed
	a.layout()
	if a.feed.Len() == 0 {
		return a.fetchFeed()
	}
	return nil
}

func (a *App) openSaved() tea.Cmd {
	a.savedView = saved.New(a.feed.Saved(), a.feed.Applied())
	a.savedView.SetSize(a.innerWidth(), a.contentHeight())
	a.screen = ScreenSaved
	a.returnTo = ScreenSaved
	return a.fetchSaved()
}

func (a *App) openEmail(job client.Job) tea.Cmd {
	if a.screen == ScreenFeed || a.screen == ScreenSaved {
		a.returnTo = a.screen
	}
	a.emailView = email.New(job, a.innerWidth(), a.contentHeight())
	a.screen = ScreenEmail
	return a.emailView.Generate()
}

func (a *App) openResume(job *client.Job) tea.Cmd {
	switch a.screen {
	case ScreenFeed, ScreenHome:
		a.returnTo = a.screen
	}
	a.analyzeJob = job
	recent, err := a.recent.Load()
	if err != nil {
		slog.Warn("Failed to load recent resumes", "error", err)
	}
	a.picker = filepicker.New(recent, a.opts.MaxResumeBytes)
	a.picker.Update(tea.WindowSizeMsg{Width: a.innerWidth(), Height: a.contentHeight()})
	a.screen = ScreenResume
	return nil
}

func (a *App) fetchFeed() tea.Cmd {
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		return feedLoadedMsg{err: a.feed.FetchRecommended(a.ctx)}
	})
}

func (a *App) fetchSaved() tea.Cmd {
	return func() tea.Msg {
		return savedLoadedMsg{err: a.feed.FetchSaved(a.ctx)}
	}
}

func (a *App) savedAction(verb string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return savedActionDoneMsg{verb: verb, err: fn(a.ctx)}
	}
}

// commitSwipe sends a drag or key action through the shared swipe contract
func (a *App) commitSwipe(action swipe.Action) tea.Cmd {
	if a.busy {
		return nil
	}
	job, ok := a.feed.Current()
	if !ok {
		return nil
	}
	if action == swipe.Skip {
		err := swipe.HandleSwipe(a.ctx, a.feed, action)
		a.finishSwipe(swipeDoneMsg{action: action, job: job, err: err})
		return nil
	}
	a.busy = true
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		return swipeDoneMsg{action: action, job: job, err: swipe.HandleSwipe(a.ctx, a.feed, action)}
	})
}

func (a *App) generateEmail(msg email.GenerateMsg) tea.Cmd {
	return func() tea.Msg {
		draft, err := a.client.GenerateEmail(a.ctx, client.EmailRequest{JobID: msg.Job.ID, Tone: msg.Tone})
		return emailDoneMsg{jobID: msg.Job.ID, draft: draft, err: err}
	}
}

func (a *App) analyzeFile(file *client.ResumeFile) tea.Cmd {
	jobID := a.analyzeJobID()
	return func() tea.Msg {
		result, err := a.client.AnalyzeResumeFile(a.ctx, file, jobID)
		return analysisDoneMsg{source: file.Name, result: result, err: err}
	}
}

func (a *App) analyzeText(text string) tea.Cmd {
	jobID := a.analyzeJobID()
	return func() tea.Msg {
		result, err := a.client.AnalyzeResumeText(a.ctx, text, jobID)
		return analysisDoneMsg{source: "pasted text", result: result, err: err}
	}
}

func (a *App) analyzeJobID() int64 {
	if a.analyzeJob == nil {
		return 0
	}
	return a.analyzeJob.ID
}

func isNotAuthenticated(err error) bool {
	return errors.Is(err, session.ErrNotAuthenticated)
}

// Run starts the TUI. The gateway's session-expired hook is wired to send
// the app back to the login screen.
func Run(ctx context.Context, apiClient *client.Client, sess *session.Store, opts Options) error {
	app := New(ctx, apiClient, sess, feed.New(apiClient), opts)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	apiClient.OnSessionExpired(func() {
		sess.Expire()
		p.Send(SessionExpiredMsg{})
	})

	_, err := p.Run()
	return err
}
