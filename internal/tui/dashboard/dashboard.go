// ABOUTME: Profile dashboard shown from the home menu
// ABOUTME: Summarizes the account, skills, preferences and job activity counts

package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/icons"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/styles"
	"github.com/ParthhMahajann/Nextstep-AI/internal/tui/widgets"
)

// Stats are the local job activity counts
type Stats struct {
	Remaining int     // jobs left in the feed
	Saved     int
	Applied   int
	AvgMatch  float64 // mean match percent of the feed, -1 when unknown
}

// Dashboard displays the user's profile
type Dashboard struct {
	user    *client.User
	profile *client.Profile
	stats   Stats
	width   int
	height  int
	now     func() time.Time
}

// New creates a new dashboard
func New(user *client.User, profile *client.Profile, stats Stats, width, height int) *Dashboard {
	return &Dashboard{
		user:    user,
		profile: profile,
		stats:   stats,
		width:   width,
		height:  height,
		now:     time.Now,
	}
}

// Update refreshes the dashboard with new account data
func (d *Dashboard) Update(user *client.User, profile *client.Profile, stats Stats) {
	d.user = user
	d.profile = profile
	d.stats = stats
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.user == nil {
		return styles.Panel.Width(max(20, d.width)).Render("Loading profile...")
	}

	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.User.String() + " " + d.user.DisplayName()))
	sb.WriteString("\n")
	sub := d.user.Email
	if !d.user.DateJoined.IsZero() {
		sub += " · joined " + humanize.RelTime(d.user.DateJoined, d.now(), "ago", "from now")
	}
	sb.WriteString(styles.Subtitle.Render(sub))
	sb.WriteString("\n")

	sb.WriteString(d.renderStats())
	sb.WriteString("\n\n")

	if d.profile == nil {
		sb.WriteString(styles.Help.Render("No profile yet. Analyze a resume to get started."))
		return d.frame(sb.String())
	}

	if d.profile.Bio != "" {
		sb.WriteString(lipgloss.NewStyle().Width(max(20, d.width-2)).Render(d.profile.Bio))
		sb.WriteString("\n\n")
	}

	sb.WriteString(styles.ValueStyle.Render(fmt.Sprintf("%s Skills (%d)", icons.Skills.String(), skillCount(d.profile))))
	sb.WriteString("\n")
	if len(d.profile.Skills) == 0 {
		sb.WriteString(styles.Help.UnsetMarginTop().Render("none listed, add them with `nextstep skills add`"))
	} else {
		names := make([]string, 0, len(d.profile.Skills))
		for _, s := range d.profile.Skills {
			names = append(names, s.Skill.Name)
		}
		sb.WriteString(widgets.SkillBadges(names, nil, max(20, d.width-2)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(preference("Job types", d.profile.PreferredJobTypes))
	sb.WriteString(preference("Locations", d.profile.PreferredLocations))

	if d.profile.ResumeText != "" {
		sb.WriteString(fmt.Sprintf("\n%s Resume on file (%s)\n", icons.Resume.String(),
			humanize.Bytes(uint64(len(d.profile.ResumeText)))))
	}

	return d.frame(sb.String())
}

func (d *Dashboard) renderStats() string {
	cfg := widgets.DefaultMetricBlockConfig()
	blocks := []string{
		widgets.CountBlock(icons.Job, "Feed", d.stats.Remaining, "jobs to review", cfg),
		widgets.CountBlock(icons.Save, "Saved", d.stats.Saved, "saved jobs", cfg),
		widgets.CountBlock(icons.Apply, "Applied", d.stats.Applied, "applications", cfg),
	}
	avg := widgets.MatchBlock(icons.Match, "Avg match", d.stats.AvgMatch, "across your feed", cfg)

	// Wrap onto a second row when the blocks do not fit side by side
	if d.width > 0 && d.width < 4*cfg.Width {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, blocks[0], blocks[1]),
			lipgloss.JoinHorizontal(lipgloss.Top, blocks[2], avg))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, append(blocks, avg)...)
}

func (d *Dashboard) frame(content string) string {
	style := lipgloss.NewStyle()
	if d.width > 0 {
		style = style.Width(d.width)
	}
	if d.height > 0 {
		style = style.Height(d.height)
	}
	return style.Render(content)
}

func preference(label string, values []string) string {
	value := "any"
	if len(values) > 0 {
		value = strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s %s\n", styles.KeyStyle.Render(label+":"), value)
}

func skillCount(p *client.Profile) int {
	if p.SkillCount > 0 {
		return p.SkillCount
	}
	return len(p.Skills)
}

// FeedStats computes Stats from the current feed window and collections
func FeedStats(remaining []client.Job, saved, applied int) Stats {
	s := Stats{Remaining: len(remaining), Saved: saved, Applied: applied, AvgMatch: -1}
	var sum float64
	var n int
	for _, j := range remaining {
		if p := j.MatchPercent(); p >= 0 {
			sum += p
			n++
		}
	}
	if n > 0 {
		s.AvgMatch = sum / float64(n)
	}
	return s
}
