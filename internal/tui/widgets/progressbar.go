// ABOUTME: Match-score bar with visual threshold zones
// ABOUTME: Shows red/amber/green regions where a higher score is better

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MatchBarConfig holds configuration for the match bar
type MatchBarConfig struct {
	Width         int
	FairThreshold float64 // Percentage where the amber zone starts (default 40)
	GoodThreshold float64 // Percentage where the green zone starts (default 70)
	PoorColor     lipgloss.Color
	FairColor     lipgloss.Color
	GoodColor     lipgloss.Color
	EmptyColor    lipgloss.Color
	ShowZones     bool // Show threshold markers in the bar
}

// DefaultMatchBarConfig returns sensible defaults
func DefaultMatchBarConfig() MatchBarConfig {
	return MatchBarConfig{
		Width:         20,
		FairThreshold: 40,
		GoodThreshold: 70,
		PoorColor:     lipgloss.Color("#EF4444"), // Red
		FairColor:     lipgloss.Color("#F59E0B"), // Amber
		GoodColor:     lipgloss.Color("#10B981"), // Green
		EmptyColor:    lipgloss.Color("#374151"), // Dark gray
		ShowZones:     true,
	}
}

// MatchBar renders a bar whose filled cells take the color of their zone
func MatchBar(percent float64, config MatchBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}
	percent = clampPercent(percent)

	filled := int(percent / 100.0 * float64(config.Width))
	fairPos := int(config.FairThreshold / 100.0 * float64(config.Width))
	goodPos := int(config.GoodThreshold / 100.0 * float64(config.Width))

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < config.Width; i++ {
		char := "░"
		color := config.EmptyColor
		switch {
		case i < filled && i >= goodPos:
			char, color = "█", config.GoodColor
		case i < filled && i >= fairPos:
			char, color = "█", config.FairColor
		case i < filled:
			char, color = "█", config.PoorColor
		case config.ShowZones && (i == fairPos || i == goodPos):
			char = "│"
		}
		bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(char))
	}
	bar.WriteString("]")
	return bar.String()
}

// MatchBarWithLabel renders the bar followed by the percentage, or a
// placeholder when no score exists
func MatchBarWithLabel(percent float64, config MatchBarConfig) string {
	if percent < 0 {
		return lipgloss.NewStyle().Foreground(config.EmptyColor).Render("no match score yet")
	}
	color := config.PoorColor
	if percent >= config.GoodThreshold {
		color = config.GoodColor
	} else if percent >= config.FairThreshold {
		color = config.FairColor
	}
	label := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%3.0f%%", clampPercent(percent)))
	return MatchBar(percent, config) + " " + label
}

// CompactBar renders a minimal bar for tight spaces
func CompactBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}
	filled := int(clampPercent(percent) / 100.0 * float64(width))
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(strings.Repeat("░", width-filled))
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
