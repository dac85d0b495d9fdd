package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// fitBlock forces s to exactly width columns (ANSI-aware) and height lines so panes line
// up under lipgloss.JoinHorizontal.
func fitBlock(s string, width, height int) string {
	width, height = max(width, 0), max(height, 0)
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, ln := range lines {
		lines[i] = fitLine(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitLine pads or truncates one line to width columns.
func fitLine(ln string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(ln)
	if w > width {
		ln = xansi.Truncate(ln, width, "…")
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}
