// ABOUTME: Job card rendering for the swipe feed
// ABOUTME: Draws the top card with match bar, skills and description, plus the cards behind it

package card

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/swipe"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/icons"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/widgets"
)

// Gutter is the number of columns the top card may slide left or right
const Gutter = 4

// StackDepth is how many cards the feed shows at once
const StackDepth = 3

// Options control how the stack is drawn
type Options struct {
	Width   int // total width available to the stack
	Height  int // height of the top card, borders included
	DX      int // live horizontal drag offset in cells
	Preview swipe.Action
}

// Description converts a job description to plain markdown text. Plain
// text passes through untouched.
func Description(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "<") {
		return raw
	}
	md, err := htmltomarkdown.ConvertString(raw)
	if err != nil {
		return raw
	}
	return strings.TrimSpace(md)
}

// Width returns the outer width of the top card for a stack width
func Width(stackWidth int) int {
	return max(24, stackWidth-2*Gutter)
}

// Bounds returns where the top card sits relative to the stack origin
func Bounds(opts Options) swipe.Rect {
	return swipe.Rect{X: Gutter, Y: 0, W: Width(opts.Width), H: opts.Height}
}

// Stack renders up to StackDepth jobs. The first job is the top card.
func Stack(jobs []client.Job, opts Options) string {
	if len(jobs) == 0 {
		return ""
	}
	if len(jobs) > StackDepth {
		jobs = jobs[:StackDepth]
	}

	parts := []string{renderTop(jobs[0], opts)}
	for i, job := range jobs[1:] {
		parts = append(parts, renderBehind(job, opts, i+1))
	}
	return strings.Join(parts, "\n")
}

func renderTop(job client.Job, opts Options) string {
	width := Width(opts.Width)
	inner := width - 6 // border + padding

	var lines []string
	lines = append(lines, styles.CardTitle.Render(widgets.Truncate(icons.Job.String()+" "+job.Title, inner)))
	lines = append(lines, styles.CardCompany.Render(widgets.Truncate(icons.Company.String()+" "+job.Company, inner)))

	meta := []string{}
	if job.Location != "" {
		meta = append(meta, icons.Location.String()+" "+job.Location)
	}
	if job.JobType != "" {
		meta = append(meta, job.JobType)
	}
	if job.Source != "" {
		meta = append(meta, icons.Source.String()+" "+job.Source)
	}
	if len(meta) > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(styles.Muted).Render(widgets.Truncate(strings.Join(meta, "  "), inner)))
	}
	lines = append(lines, "")

	bar := widgets.DefaultMatchBarConfig()
	bar.Width = max(10, min(30, inner-6))
	lines = append(lines, widgets.MatchBarWithLabel(job.MatchPercent(), bar))

	if len(job.MatchedSkills) > 0 {
		matched := make(map[string]bool, len(job.MatchedSkills))
		for _, s := range job.MatchedSkills {
			matched[strings.ToLower(s)] = true
		}
		lines = append(lines, widgets.SkillBadges(job.MatchedSkills, matched, inner))
	}
	if job.MatchExplanation != "" {
		lines = append(lines, lipgloss.NewStyle().Italic(true).Foreground(styles.Muted).
			Width(inner).Render(job.MatchExplanation))
	}

	if desc := Description(job.Description); desc != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(inner).Render(desc))
	}

	body := strings.Join(lines, "\n")
	if opts.Height > 2 {
		body = clip(body, opts.Height-2)
	}

	style := styles.Card.Width(width - 2)
	if opts.Height > 2 {
		style = style.Height(opts.Height - 2)
	}
	if opts.Preview != swipe.None {
		style = style.BorderForeground(styles.ActionColor(opts.Preview.String()))
		body = stamp(opts.Preview, inner) + "\n" + clip(body, max(1, opts.Height-3))
	}

	shift := max(-Gutter, min(Gutter, opts.DX))
	return lipgloss.NewStyle().MarginLeft(Gutter + shift).Render(style.Render(body))
}

func renderBehind(job client.Job, opts Options, depth int) string {
	width := Width(opts.Width) - 2*depth
	inner := max(1, width-6)
	text := widgets.Truncate(fmt.Sprintf("%s · %s", job.Title, job.Company), inner)
	return lipgloss.NewStyle().MarginLeft(Gutter + depth).
		Render(styles.CardBehind.Width(width - 2).BorderTop(false).Render(text))
}

func stamp(action swipe.Action, width int) string {
	var icon icons.Icon
	switch action {
	case swipe.Skip:
		icon = icons.Skip
	case swipe.Save:
		icon = icons.Save
	case swipe.Apply:
		icon = icons.Apply
	}
	label := fmt.Sprintf(" %s %s ", icon.String(), strings.ToUpper(action.String()))
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).
			Background(styles.ActionColor(action.String())).Render(label))
}

func clip(s string, rows int) string {
	lines := strings.Split(s, "\n")
	if rows <= 0 || len(lines) <= rows {
		return s
	}
	lines = lines[:rows]
	lines[rows-1] = lipgloss.NewStyle().Foreground(styles.Muted).Render("…")
	return strings.Join(lines, "\n")
}
