// ABOUTME: Resume analysis view showing strengths against improvements
// ABOUTME: Displays found vs missing keywords, suggestions and an optional match score

package analysis

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/icons"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/widgets"
)

// Analysis displays resume analysis results
type Analysis struct {
	result *client.ResumeAnalysis
	source string // file name or "pasted text"
	width  int
}

// New creates a new analysis view
func New(result *client.ResumeAnalysis, source string, width int) *Analysis {
	return &Analysis{
		result: result,
		source: source,
		width:  width,
	}
}

// View renders the analysis
func (a *Analysis) View() string {
	if a.result == nil {
		return "No analysis data"
	}

	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Resume.String() + " Resume Analysis"))
	sb.WriteString("\n")
	if a.source != "" {
		sb.WriteString(styles.Subtitle.Render(a.source))
		sb.WriteString("\n")
	}

	if a.result.MatchScore != nil {
		bar := widgets.DefaultMatchBarConfig()
		bar.Width = 30
		sb.WriteString("Job match  ")
		sb.WriteString(widgets.MatchBarWithLabel(*a.result.MatchScore*100, bar))
		sb.WriteString("\n\n")
	}

	colWidth := max(20, (a.width-4)/2)

	sb.WriteString(sideBySide(
		a.renderList("Strengths", styles.StatusOK, icons.CheckOK, a.result.Strengths, colWidth),
		a.renderList("Improvements", styles.StatusWarning, icons.Warning, a.result.Improvements, colWidth),
		colWidth))
	sb.WriteString("\n")

	sb.WriteString(sideBySide(
		a.renderKeywords("Keywords found", a.result.KeywordsFound, widgets.StatusOK, colWidth),
		a.renderKeywords("Keywords missing", a.result.KeywordsMissing, widgets.StatusCritical, colWidth),
		colWidth))

	if s := strings.TrimSpace(a.result.Suggestions); s != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.Subtitle.UnsetMarginBottom().Render("Suggestions"))
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Width(max(20, a.width-2)).Render(s))
		sb.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(max(20, a.width)).Render(sb.String())
}

func (a *Analysis) renderList(title string, style lipgloss.Style, icon icons.Icon, items []string, width int) string {
	var sb strings.Builder
	sb.WriteString(style.Render(title))
	sb.WriteString("\n")
	if len(items) == 0 {
		sb.WriteString(styles.Help.UnsetMarginTop().Render("  none"))
		sb.WriteString("\n")
	}
	item := lipgloss.NewStyle().Width(width - 4)
	for _, it := range items {
		lines := strings.Split(item.Render(it), "\n")
		for i, line := range lines {
			prefix := "  "
			if i == 0 {
				prefix = style.Render(icon.String()) + " "
			}
			sb.WriteString(prefix + line + "\n")
		}
	}
	return sb.String()
}

func (a *Analysis) renderKeywords(title string, words []string, level widgets.StatusLevel, width int) string {
	var sb strings.Builder
	sb.WriteString(styles.ValueStyle.Render(fmt.Sprintf("%s (%d)", title, len(words))))
	sb.WriteString("\n")
	if len(words) == 0 {
		sb.WriteString(styles.Help.UnsetMarginTop().Render("  none"))
		sb.WriteString("\n")
		return sb.String()
	}
	matched := map[string]bool{}
	if level == widgets.StatusOK {
		for _, w := range words {
			matched[strings.ToLower(w)] = true
		}
	}
	sb.WriteString(widgets.SkillBadges(words, matched, width))
	sb.WriteString("\n")
	return sb.String()
}

// sideBySide joins two columns, padding the left one to width
func sideBySide(left, right string, width int) string {
	leftLines := strings.Split(strings.TrimRight(left, "\n"), "\n")
	rightLines := strings.Split(strings.TrimRight(right, "\n"), "\n")

	var sb strings.Builder
	for i := 0; i < max(len(leftLines), len(rightLines)); i++ {
		l, r := "", ""
		if i < len(leftLines) {
			l = leftLines[i]
		}
		if i < len(rightLines) {
			r = rightLines[i]
		}
		pad := max(0, width-lipgloss.Width(l))
		sb.WriteString(l + strings.Repeat(" ", pad) + "  " + r + "\n")
	}
	return sb.String()
}
