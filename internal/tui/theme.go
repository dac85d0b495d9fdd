package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette. Adaptive colors keep the UI readable on light and dark terminals.
func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted      = ac("240", "243")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorAccent     = ac("27", "62")
	colorAccentFg   = ac("255", "235")
	colorBorder     = ac("250", "240")
	colorFavorite   = ac("172", "214")
	colorWarn       = ac("130", "214")
	colorError      = ac("160", "203")
	colorInputBg    = ac("254", "234")
)

// faintIfDark applies faint only on dark backgrounds; faint text on light terminals is
// hard to read.
func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
}

func stylePane(focused bool) lipgloss.Style {
	st := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder)
	if focused {
		st = st.BorderForeground(colorAccent)
	}
	return st
}

// applyColorProfilePreference picks the color profile for the TUI. Only NO_COLOR turns
// colors off; CLICOLOR is left to non-interactive output.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	term := strings.ToLower(os.Getenv("TERM"))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color") && profile != termenv.TrueColor:
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference decides between the light and dark palette.
//
// Priority:
// 1) PASTEMYPROMPT_TUI_THEME=light|dark|auto
// 2) COLORFGBG ("fg;bg", last segment is the background)
// 3) the stored dark mode preference, when the terminal cannot tell
func applyThemePreference(storedDark bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PASTEMYPROMPT_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
			return
		}
	}
	if termenv.DefaultOutput().Profile == termenv.Ascii {
		lipgloss.SetHasDarkBackground(storedDark)
	}
}
