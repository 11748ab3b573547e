// ABOUTME: Badge widgets for quick visual status indication
// ABOUTME: Skill chips, saved-job status badges and match-score levels

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/icons"
)

// StatusLevel represents the tone of a badge
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#10B981")
	BadgeOKFg      = lipgloss.Color("#FFFFFF")
	BadgeWarnBg    = lipgloss.Color("#F59E0B")
	BadgeWarnFg    = lipgloss.Color("#000000")
	BadgeCritBg    = lipgloss.Color("#EF4444")
	BadgeCritFg    = lipgloss.Color("#FFFFFF")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeInfoFg    = lipgloss.Color("#FFFFFF")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeNeutralFg = lipgloss.Color("#FFFFFF")
)

func levelColors(level StatusLevel) (bg, fg lipgloss.Color) {
	switch level {
	case StatusOK:
		return BadgeOKBg, BadgeOKFg
	case StatusWarning:
		return BadgeWarnBg, BadgeWarnFg
	case StatusCritical:
		return BadgeCritBg, BadgeCritFg
	case StatusInfo:
		return BadgeInfoBg, BadgeInfoFg
	}
	return BadgeNeutralBg, BadgeNeutralFg
}

// Badge renders a colored inline badge
func Badge(text string, level StatusLevel) string {
	bg, fg := levelColors(level)
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// LevelFromMatch maps a 0..100 match percentage to a level. Negative means
// no score was computed.
func LevelFromMatch(percent float64) StatusLevel {
	switch {
	case percent < 0:
		return StatusNeutral
	case percent >= 70:
		return StatusOK
	case percent >= 40:
		return StatusWarning
	}
	return StatusCritical
}

// MatchBadge renders "87% match", or "new" when no score exists
func MatchBadge(percent float64) string {
	if percent < 0 {
		return Badge("new", StatusNeutral)
	}
	return Badge(fmt.Sprintf("%.0f%% match", percent), LevelFromMatch(percent))
}

// SavedStatusBadge renders the saved/applied tag of a saved job
func SavedStatusBadge(status client.JobStatus) string {
	switch status {
	case client.StatusApplied:
		return Badge("APPLIED", StatusOK)
	case client.StatusSaved:
		return Badge("SAVED", StatusInfo)
	}
	return Badge(strings.ToUpper(string(status)), StatusNeutral)
}

// SkillBadges renders skills as chips, wrapping at width. Matched skills are
// highlighted.
func SkillBadges(skills []string, matched map[string]bool, width int) string {
	if len(skills) == 0 {
		return ""
	}
	chip := lipgloss.NewStyle().Padding(0, 1).MarginRight(1)

	var lines []string
	var line string
	for _, s := range skills {
		style := chip.Foreground(BadgeNeutralFg).Background(BadgeNeutralBg)
		if matched[strings.ToLower(s)] {
			style = chip.Foreground(BadgeOKFg).Background(BadgeOKBg)
		}
		rendered := style.Render(s)
		if line != "" && width > 0 && lipgloss.Width(line)+lipgloss.Width(rendered) > width {
			lines = append(lines, line)
			line = ""
		}
		line += rendered
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	switch level {
	case StatusOK:
		return lipgloss.NewStyle().Foreground(BadgeOKBg).Render(icons.CheckOK.String())
	case StatusWarning:
		return lipgloss.NewStyle().Foreground(BadgeWarnBg).Render(icons.Warning.String())
	case StatusCritical:
		return lipgloss.NewStyle().Foreground(BadgeCritBg).Render(icons.Critical.String())
	case StatusInfo:
		return lipgloss.NewStyle().Foreground(BadgeInfoBg).Render(icons.Info.String())
	}
	return lipgloss.NewStyle().Foreground(BadgeNeutralBg).Render("•")
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	bg, _ := levelColors(level)
	return fmt.Sprintf("%s %s", StatusIcon(level), lipgloss.NewStyle().Foreground(bg).Render(text))
}
