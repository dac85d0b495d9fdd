package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/AstralShardio/pastemyprompt/internal/session"
	"github.com/AstralShardio/pastemyprompt/internal/vars"
)

type dims struct {
	leftW, rightW int
	bodyH         int
	listH         int
	previewH      int
}

func (m appModel) dims() dims {
	helpH := lipgloss.Height(m.help.View(m.keys))
	d := dims{bodyH: max(m.height-2-helpH, 3)}
	d.leftW = min(max(m.width/3, 20), 36)
	d.rightW = max(m.width-d.leftW, 10)
	inner := d.bodyH - 2
	d.listH = inner
	if m.showPreview && inner >= 10 {
		d.listH = inner / 2
		d.previewH = inner - d.listH - 1
	}
	return d
}

func (m *appModel) layout() {
	m.help.Width = m.width
	d := m.dims()
	m.prompts.SetSize(d.rightW-2, max(d.listH, 1))
}

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	d := m.dims()

	var body string
	switch m.mode {
	case modeWelcome:
		body = m.overlay(d, "Welcome to PasteMyPrompt", welcomeText)
	case modePalette:
		body = m.overlay(d, "Jump to prompt", m.paletteView())
	case modeVars:
		body = m.overlay(d, "Fill variables", m.varsView())
	default:
		left := stylePane(m.pane == paneProjects).Render(fitBlock(m.projectsView(d.leftW-2), d.leftW-2, d.bodyH-2))
		right := stylePane(m.pane == panePrompts).Render(fitBlock(m.promptsView(d), d.rightW-2, d.bodyH-2))
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	return strings.Join([]string{
		fitLine(m.headerView(), m.width),
		body,
		fitLine(m.statusView(), m.width),
		m.help.View(m.keys),
	}, "\n")
}

func (m appModel) headerView() string {
	title := styleHeader().Render("PasteMyPrompt")
	if m.mode == modeSearch {
		return title + " " + m.search.View()
	}
	parts := []string{m.projectName(m.project), fmt.Sprintf("%d prompts", len(m.prompts.Items())), "sort: " + sortLabel(m.s.DB().SortBy)}
	if m.favoritesOnly {
		parts = append(parts, "★ only")
	}
	if m.query != "" {
		parts = append(parts, "search: "+m.query)
	}
	if m.s.Pro() {
		parts = append(parts, "Pro")
	}
	return title + " " + styleMuted().Render(strings.Join(parts, " · "))
}

func (m appModel) projectsView(width int) string {
	counts := m.s.ProjectCounts()
	total := 0
	for _, n := range counts {
		total += n
	}
	lines := make([]string, 0, len(m.rows)+1)
	lines = append(lines, m.projectLine(0, "All prompts", total, width))
	for i, r := range m.rows {
		marker := "  "
		if r.HasChildren {
			marker = "▸ "
			if r.Expanded {
				marker = "▾ "
			}
		}
		p := r.Node.Project
		name := strings.Repeat("  ", r.Depth) + marker
		if p.Icon != "" {
			name += p.Icon + " "
		}
		name += p.Name
		lines = append(lines, m.projectLine(i+1, name, counts[p.ID], width))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) projectLine(idx int, name string, count int, width int) string {
	n := fmt.Sprintf("%d", count)
	line := fitLine(name, max(width-len(n)-1, 1)) + " " + n
	rowID := ""
	if idx > 0 {
		rowID = m.rows[idx-1].Node.Project.ID
	}
	switch {
	case idx == m.projectIdx && m.pane == paneProjects:
		return styleSelected().Render(line)
	case rowID == m.project:
		return lipgloss.NewStyle().Bold(true).Render(line)
	}
	return line
}

func (m appModel) promptsView(d dims) string {
	if len(m.prompts.Items()) == 0 {
		msg := "No prompts here yet. Press n to add one from the clipboard."
		if m.query != "" {
			msg = "No prompts match " + quote(m.query) + ". Press esc to clear the search."
		}
		return styleMuted().Render(msg)
	}
	out := m.prompts.View()
	if d.previewH <= 0 {
		return out
	}
	p, ok := m.selectedPrompt()
	if !ok {
		return out
	}
	w := d.rightW - 2
	preview := renderMarkdown(p.Prompt, w)
	var meta []string
	if len(p.Tags) > 0 {
		meta = append(meta, "#"+strings.Join(p.Tags, " #"))
	}
	if names := vars.Names(p.Prompt); len(names) > 0 {
		meta = append(meta, "vars: "+strings.Join(names, ", "))
	}
	meta = append(meta, fmt.Sprintf("v%d · copied %d×", p.Version, p.CopyCount))
	preview += "\n" + styleMuted().Render(strings.Join(meta, "  "))
	sep := styleMuted().Render(strings.Repeat("─", w))
	return fitBlock(out, w, d.listH) + "\n" + sep + "\n" + fitBlock(preview, w, d.previewH)
}

func (m appModel) statusView() string {
	if m.notice.text == "" {
		return ""
	}
	st := lipgloss.NewStyle()
	switch m.notice.level {
	case session.LevelWarn:
		st = st.Foreground(colorWarn)
	case session.LevelError:
		st = st.Foreground(colorError)
	}
	text := m.notice.text
	if !m.undoUntil.IsZero() {
		left := m.undoUntil.Sub(m.s.Now()).Round(time.Second)
		if left > 0 {
			text += fmt.Sprintf(" (%ds)", int(left.Seconds()))
		}
	}
	return st.Render(text)
}

func (m appModel) paletteView() string {
	lines := []string{m.palette.View(), ""}
	if len(m.paletteResults) == 0 {
		lines = append(lines, styleMuted().Render("No matches"))
	}
	for i, p := range m.paletteResults {
		line := p.Title + styleMuted().Render("  "+m.projectName(p.ProjectID))
		if i == m.paletteIdx {
			line = styleSelected().Render(p.Title + "  " + m.projectName(p.ProjectID))
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", styleMuted().Render("↑/↓ move · enter copy · esc close"))
	return strings.Join(lines, "\n")
}

func (m appModel) varsView() string {
	lines := []string{}
	for _, in := range m.varInputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, "", styleMuted().Render("tab next · enter copy · esc cancel · empty values stay as [name]"))
	return strings.Join(lines, "\n")
}

const welcomeText = `Save the prompts you reuse and copy them in one keystroke.

  enter/c   copy the selected prompt
  1 2 3     copy one of your recent prompts
  n         add the clipboard as a new prompt
  /         search, ctrl+k jump anywhere
  {{name}}  placeholders are filled in when you copy

Press any key to start.`

func (m appModel) overlay(d dims, title, content string) string {
	w := min(m.width-4, 72)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1).
		Width(w).
		Render(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n" + content)
	return lipgloss.Place(m.width, d.bodyH, lipgloss.Center, lipgloss.Center, box)
}
