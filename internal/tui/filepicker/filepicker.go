// ABOUTME: Resume picker TUI component
// ABOUTME: Shows recent resumes, a path input and a paste-text area, validating before upload

package filepicker

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/resume"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
)

// State represents the current UI state
type state int

const (
	stateList state = iota
	stateInput
	stateText
)

// FileSelectedMsg is sent when a resume file passed validation
type FileSelectedMsg struct {
	Path string
	File *client.ResumeFile
}

// TextEnteredMsg is sent when pasted resume text passed validation
type TextEnteredMsg struct {
	Text string
}

// CancelledMsg is sent when the user cancels
type CancelledMsg struct{}

// FilePicker is the resume selection component
type FilePicker struct {
	recentFiles []string
	maxBytes    int64
	cursor      int
	state       state
	textInput   textinput.Model
	textArea    textarea.Model
	err         string
	width       int
	height      int
}

// New creates a new FilePicker. maxBytes <= 0 uses the default limit.
func New(recentFiles []string, maxBytes int64) *FilePicker {
	if maxBytes <= 0 {
		maxBytes = resume.DefaultMaxBytes
	}

	ti := textinput.New()
	ti.Placeholder = "~/Documents/resume.pdf"
	ti.CharLimit = 256
	ti.Width = 60

	ta := textarea.New()
	ta.Placeholder = "Paste your resume here..."
	ta.ShowLineNumbers = false
	ta.SetWidth(70)
	ta.SetHeight(12)

	return &FilePicker{
		recentFiles: recentFiles,
		maxBytes:    maxBytes,
		state:       stateList,
		textInput:   ti,
		textArea:    ta,
	}
}

// Init implements tea.Model
func (fp *FilePicker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (fp *FilePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		fp.width = msg.Width
		fp.height = msg.Height
		if msg.Width > 10 {
			fp.textArea.SetWidth(min(90, msg.Width-6))
		}
		return fp, nil

	case tea.KeyMsg:
		// Clear error on any key press
		fp.err = ""

		switch fp.state {
		case stateList:
			return fp.updateList(msg)
		case stateInput:
			return fp.updateInput(msg)
		case stateText:
			return fp.updateText(msg)
		}
	}

	return fp, nil
}

func (fp *FilePicker) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maxItems := fp.listItemCount()

	switch msg.String() {
	case "up", "k":
		if fp.cursor > 0 {
			fp.cursor--
		}
	case "down", "j":
		if fp.cursor < maxItems-1 {
			fp.cursor++
		}
	case "enter":
		return fp.selectListItem()
	case "esc", "b":
		return fp, func() tea.Msg { return CancelledMsg{} }
	}

	return fp, nil
}

func (fp *FilePicker) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fp.state = stateList
		fp.textInput.SetValue("")
		return fp, nil
	case "enter":
		path := strings.TrimSpace(fp.textInput.Value())
		if path == "" {
			fp.err = "Please enter a file path"
			return fp, nil
		}
		return fp.loadFile(path)
	}

	var cmd tea.Cmd
	fp.textInput, cmd = fp.textInput.Update(msg)
	return fp, cmd
}

func (fp *FilePicker) updateText(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fp.state = stateList
		fp.textArea.Blur()
		return fp, nil
	case "ctrl+s":
		text, err := resume.ValidateText(fp.textArea.Value())
		if err != nil {
			fp.err = err.Error()
			return fp, nil
		}
		return fp, func() tea.Msg { return TextEnteredMsg{Text: text} }
	}

	var cmd tea.Cmd
	fp.textArea, cmd = fp.textArea.Update(msg)
	return fp, cmd
}

func (fp *FilePicker) listItemCount() int {
	return len(fp.recentFiles) + 2 // "Enter path..." and "Paste text..."
}

func (fp *FilePicker) selectListItem() (tea.Model, tea.Cmd) {
	recentCount := len(fp.recentFiles)

	switch {
	case fp.cursor < recentCount:
		return fp.loadFile(fp.recentFiles[fp.cursor])
	case fp.cursor == recentCount:
		fp.state = stateInput
		fp.textInput.Focus()
		return fp, textinput.Blink
	case fp.cursor == recentCount+1:
		fp.state = stateText
		return fp, fp.textArea.Focus()
	}
	return fp, nil
}

func (fp *FilePicker) loadFile(path string) (tea.Model, tea.Cmd) {
	expandedPath := expandPath(path)

	file, err := resume.ReadFile(expandedPath, fp.maxBytes)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			fp.err = "File not found: " + path
		case errors.Is(err, fs.ErrPermission):
			fp.err = "Cannot read file: permission denied"
		default:
			fp.err = err.Error()
		}
		return fp, nil
	}

	return fp, func() tea.Msg {
		return FileSelectedMsg{Path: expandedPath, File: file}
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	return path
}

// SetError sets an error message to display
func (fp *FilePicker) SetError(msg string) {
	fp.err = msg
}

// Editing reports whether a text field has focus, so global keys stay local
func (fp *FilePicker) Editing() bool {
	return fp.state != stateList
}

// View implements tea.Model
func (fp *FilePicker) View() string {
	switch fp.state {
	case stateInput:
		return fp.viewInput()
	case stateText:
		return fp.viewText()
	default:
		return fp.viewList()
	}
}

func (fp *FilePicker) viewList() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Analyze a resume"))
	b.WriteString("\n")

	if len(fp.recentFiles) > 0 {
		b.WriteString(styles.Subtitle.UnsetMarginBottom().Render("Recent resumes:"))
		b.WriteString("\n")
		for i, path := range fp.recentFiles {
			display := path
			if len(display) > fp.width-10 && fp.width > 20 {
				display = "..." + display[len(display)-(fp.width-13):]
			}
			b.WriteString(fp.item(i, display))
		}
		b.WriteString("\n")

		dividerWidth := min(40, fp.width-4)
		if dividerWidth < 1 {
			dividerWidth = 40 // Default width if terminal size unknown
		}
		b.WriteString(styles.Divider.Render(strings.Repeat("─", dividerWidth)))
		b.WriteString("\n")
	}

	idx := len(fp.recentFiles)
	b.WriteString(fp.item(idx, "Enter path..."))
	b.WriteString(fp.item(idx+1, "Paste resume text..."))

	if fp.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + fp.err))
	}

	return b.String()
}

func (fp *FilePicker) item(idx int, label string) string {
	if idx == fp.cursor {
		return "> " + styles.Selected.Render(label) + "\n"
	}
	return "  " + styles.Normal.Render(label) + "\n"
}

func (fp *FilePicker) viewInput() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Enter resume path (.pdf or .docx)"))
	b.WriteString("\n")
	b.WriteString(fp.textInput.View())

	if fp.err != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + fp.err))
	}

	return b.String()
}

func (fp *FilePicker) viewText() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Paste resume text"))
	b.WriteString("\n")
	b.WriteString(fp.textArea.View())

	if fp.err != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.ErrorMsg.Render("Error: " + fp.err))
	}

	return b.String()
}
