// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("NEXTSTEP_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// Terminals that commonly ship with a Nerd Font configured
	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}

	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Job card
	Job      = Icon{"󰃖", "▣"} // nf-md-briefcase
	Company  = Icon{"󰇄", "▢"} // nf-md-domain
	Location = Icon{"󰍎", "◉"} // nf-md-map_marker
	Source   = Icon{"󰌹", "↪"} // nf-md-link
	Match    = Icon{"󰓅", "◐"} // nf-md-gauge

	// Swipe actions
	Skip  = Icon{"󰅖", "✗"} // nf-md-close
	Save  = Icon{"󰃃", "★"} // nf-md-bookmark
	Apply = Icon{"󰄬", "✓"} // nf-md-check

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	// Screens
	User   = Icon{"󰀄", "●"} // nf-md-account
	Email  = Icon{"󰇮", "✉"} // nf-md-email
	Resume = Icon{"󰈙", "▤"} // nf-md-file_document
	Skills = Icon{"󰓎", "◆"} // nf-md-star_circle

	// Actions
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app
	Logout  = Icon{"󰍃", "⏻"} // nf-md-logout

	// Application
	App = Icon{"󰜎", "➜"} // nf-md-run_fast
)
