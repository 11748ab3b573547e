// ABOUTME: Compact stat block widget for the profile summary
// ABOUTME: Combines icon, value, optional match bar and subtitle in a bordered panel

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       22,
		BorderColor: lipgloss.Color("#6B7280"), // Muted gray
		TitleColor:  lipgloss.Color("#7C3AED"), // Purple
		ValueColor:  lipgloss.Color("#F9FAFB"), // Light
	}
}

// MetricBlock renders a compact metric display block
func MetricBlock(icon icons.Icon, title, value, subtitle string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	innerWidth := config.Width - 4

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return frameBlock(icon, title, []string{
		valueStyle.Render(Truncate(value, innerWidth)),
		subtitleStyle.Render(Truncate(subtitle, innerWidth)),
	}, config)
}

// MatchBlock renders a block with a match percentage and bar
func MatchBlock(icon icons.Icon, title string, percent float64, details string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	innerWidth := config.Width - 4

	barConfig := DefaultMatchBarConfig()
	level := LevelFromMatch(percent)
	color, _ := levelColors(level)

	var value string
	if percent < 0 {
		value = lipgloss.NewStyle().Foreground(barConfig.EmptyColor).Render("n/a")
	} else {
		value = lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%3.0f%%", percent)) +
			" " + StatusIcon(level)
	}
	bar := CompactBar(percent, max(1, innerWidth), color)
	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return frameBlock(icon, title, []string{
		value,
		bar,
		detailStyle.Render(Truncate(details, innerWidth)),
	}, config)
}

// CountBlock renders a simple count metric
func CountBlock(icon icons.Icon, title string, count int, label string, config MetricBlockConfig) string {
	return MetricBlock(icon, title, fmt.Sprintf("%d", count), label, config)
}

// frameBlock draws lines inside a border with the title set into the top edge
func frameBlock(icon icons.Icon, title string, lines []string, config MetricBlockConfig) string {
	innerWidth := config.Width - 4
	titleStr := Truncate(fmt.Sprintf("%s %s", icon.String(), title), max(1, innerWidth-1))
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)

	out := []string{borderStyle.Render("┌─ ") + titleStyle.Render(titleStr) + borderStyle.Render(" "+
		strings.Repeat("─", max(0, config.Width-5-lipgloss.Width(titleStr)))+"┐")}
	for _, line := range lines {
		pad := max(0, innerWidth-lipgloss.Width(line))
		out = append(out, borderStyle.Render("│  ")+line+strings.Repeat(" ", pad)+borderStyle.Render("│"))
	}
	out = append(out, borderStyle.Render(fmt.Sprintf("└%s┘", strings.Repeat("─", config.Width-2))))
	return strings.Join(out, "\n")
}

// Truncate shortens a string to maxLen display cells with an ellipsis
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:min(len(runes), maxLen)])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxLen {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
