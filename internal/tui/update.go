package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/vars"
	"github.com/AstralShardio/pastemyprompt/internal/view"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case queryMsg:
		if m.mode == modeSearch || m.query != string(msg) {
			m.query = string(msg)
			m.refresh()
		}
		return m, waitForQuery(m.queries)

	case tickMsg:
		if m.undoUntil.IsZero() {
			return m, nil
		}
		if !m.s.Now().Before(m.undoUntil) {
			m.undoUntil = time.Time{}
			m.notice = notice{}
			return m, nil
		}
		return m, tick()

	case tea.KeyMsg:
		switch m.mode {
		case modeWelcome:
			m.mode = modeBrowse
			m.report(m.s.CompleteOnboarding(), "Welcome! Press ? for all keys.")
			return m, nil
		case modeSearch:
			return m.updateSearch(msg)
		case modePalette:
			return m.updatePalette(msg)
		case modeVars:
			return m.updateVars(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	if !key.Matches(msg, k.QuickAdd) {
		m.confirmQuickAdd = false
	}
	switch {
	case key.Matches(msg, k.Quit):
		m.saveState()
		m.debounce.Stop()
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()

	case key.Matches(msg, k.SwitchPane):
		if m.pane == paneProjects {
			m.pane = panePrompts
		} else {
			m.pane = paneProjects
		}

	case msg.String() == "esc":
		if m.query != "" {
			m.query = ""
			m.search.SetValue("")
			m.refresh()
		}

	case key.Matches(msg, k.Search):
		m.mode = modeSearch
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, k.Palette):
		m.mode = modePalette
		m.palette.SetValue("")
		m.paletteResults = m.s.Palette("")
		m.paletteIdx = 0
		cmd := m.palette.Focus()
		return m, cmd

	case key.Matches(msg, k.CopyRecent):
		n := int(msg.String()[0] - '0')
		recent := view.RecentPrompts(m.s.DB())
		if n > len(recent) {
			m.report(mutate.ValidationError{Field: "recent", Message: fmt.Sprintf("no recent prompt #%d yet", n)}, "")
			return m, nil
		}
		return m.startCopy(recent[n-1])

	case key.Matches(msg, k.Undo):
		p, err := m.s.UndoLatest()
		m.undoUntil = time.Time{}
		m.report(err, "Restored "+quote(p.Title))
		m.refresh()
		if err == nil {
			m.selectPrompt(p.ID)
		}

	case key.Matches(msg, k.Sort):
		sk, err := m.s.CycleSortBy()
		m.report(err, "Sorted by "+sortLabel(sk))
		m.refresh()

	case key.Matches(msg, k.FavoritesOnly):
		m.favoritesOnly = !m.favoritesOnly
		m.refresh()

	case key.Matches(msg, k.Preview):
		m.showPreview = !m.showPreview
		m.layout()

	case key.Matches(msg, k.DarkMode):
		on := !m.s.DB().DarkMode
		err := m.s.SetDarkMode(on)
		lipgloss.SetHasDarkBackground(on)
		if on {
			m.report(err, "Dark mode on")
		} else {
			m.report(err, "Dark mode off")
		}

	case key.Matches(msg, k.QuickAdd):
		return m.quickAdd()

	default:
		if m.pane == paneProjects {
			return m.updateProjects(msg)
		}
		return m.updatePrompts(msg)
	}
	return m, nil
}

func (m appModel) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Up):
		if m.projectIdx > 0 {
			m.projectIdx--
		}
	case key.Matches(msg, k.Down):
		if m.projectIdx < len(m.rows) {
			m.projectIdx++
		}
	case key.Matches(msg, k.Toggle):
		if m.projectIdx == 0 {
			return m, nil
		}
		r := m.rows[m.projectIdx-1]
		if !r.HasChildren {
			return m, nil
		}
		// left collapses and right expands; space flips.
		want := !r.Expanded
		switch msg.String() {
		case "left", "h":
			want = false
		case "right", "l":
			want = true
		}
		if want != r.Expanded {
			m.report(m.s.SetExpanded(r.Node.Project.ID, want), "")
			m.refresh()
		}
	case key.Matches(msg, k.Select):
		m.project = m.projectRowID()
		m.pane = panePrompts
		m.prompts.Select(0)
		m.refresh()
	}
	return m, nil
}

func (m appModel) updatePrompts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	p, ok := m.selectedPrompt()
	switch {
	case key.Matches(msg, k.Select), key.Matches(msg, k.Copy):
		if ok {
			return m.startCopy(p)
		}
	case key.Matches(msg, k.Favorite):
		if ok {
			np, err := m.s.ToggleFavorite(p.ID)
			label := "Removed " + quote(np.Title) + " from favorites"
			if m.s.DB().IsFavorite(p.ID) {
				label = "Added " + quote(np.Title) + " to favorites"
			}
			m.report(err, label)
			m.refresh()
		}
	case key.Matches(msg, k.Archive):
		if ok {
			t, err := m.s.Archive(p.ID)
			m.report(err, "Archived "+quote(p.Title)+". Press u to undo.")
			m.refresh()
			if err == nil && t.Token != "" {
				m.undoUntil = t.Deadline
				return m, tick()
			}
		}
	default:
		var cmd tea.Cmd
		m.prompts, cmd = m.prompts.Update(msg)
		return m, cmd
	}
	return m, nil
}

// startCopy copies p right away, or asks for its variables first.
func (m appModel) startCopy(p model.Prompt) (tea.Model, tea.Cmd) {
	names := vars.Names(p.Prompt)
	if len(names) == 0 {
		m.copy(p.ID, nil)
		return m, nil
	}
	m.mode = modeVars
	m.varsFor = p.ID
	m.varNames = names
	m.varIdx = 0
	m.varInputs = make([]textinput.Model, len(names))
	for i, name := range names {
		ti := textinput.New()
		ti.Prompt = name + ": "
		ti.Placeholder = "[" + name + "]"
		m.varInputs[i] = ti
	}
	cmd := m.varInputs[0].Focus()
	return m, cmd
}

func (m *appModel) copy(id string, values map[string]string) {
	res, err := m.s.Copy(id, values)
	msg := "Copied " + quote(res.Prompt.Title)
	if len(res.Unfilled) > 0 {
		msg += " (unfilled: " + strings.Join(res.Unfilled, ", ") + ")"
	}
	m.report(err, msg)
	m.refresh()
}

func (m appModel) quickAdd() (tea.Model, tea.Cmd) {
	project := m.project
	accept := m.confirmQuickAdd
	m.confirmQuickAdd = false
	p, err := m.s.QuickAdd(project, accept)
	var dup mutate.DuplicatesFoundError
	if errors.As(err, &dup) {
		m.confirmQuickAdd = true
		m.report(err, "")
		m.notice.text += ". Press n again to save anyway."
		return m, nil
	}
	m.report(err, "Added "+quote(p.Title)+" from the clipboard")
	m.refresh()
	if err == nil {
		m.selectPrompt(p.ID)
	}
	return m, nil
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.debounce.Cancel()
		m.search.SetValue("")
		m.search.Blur()
		m.mode = modeBrowse
		m.query = ""
		m.refresh()
		return m, nil
	case "enter":
		m.debounce.Cancel()
		m.search.Blur()
		m.mode = modeBrowse
		m.query = m.search.Value()
		m.refresh()
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.debounce.Call(m.search.Value())
	}
	return m, cmd
}

func (m appModel) updatePalette(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.palette.Blur()
		m.mode = modeBrowse
		return m, nil
	case "up", "ctrl+k":
		if m.paletteIdx > 0 {
			m.paletteIdx--
		}
		return m, nil
	case "down", "ctrl+j":
		if m.paletteIdx < len(m.paletteResults)-1 {
			m.paletteIdx++
		}
		return m, nil
	case "enter":
		m.palette.Blur()
		m.mode = modeBrowse
		if m.paletteIdx >= len(m.paletteResults) {
			return m, nil
		}
		p := m.paletteResults[m.paletteIdx]
		m.project, m.query, m.favoritesOnly = "", "", false
		m.search.SetValue("")
		m.pane = panePrompts
		m.refresh()
		m.selectProjectRow()
		m.selectPrompt(p.ID)
		return m.startCopy(p)
	}
	before := m.palette.Value()
	var cmd tea.Cmd
	m.palette, cmd = m.palette.Update(msg)
	if m.palette.Value() != before {
		m.paletteResults = m.s.Palette(m.palette.Value())
		m.paletteIdx = 0
	}
	return m, cmd
}

func (m appModel) updateVars(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = modeBrowse
		m.varInputs = nil
		return m, nil
	case "tab", "down":
		cmd := m.focusVar(m.varIdx + 1)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusVar(m.varIdx - 1)
		return m, cmd
	case "enter":
		if m.varIdx < len(m.varInputs)-1 {
			cmd := m.focusVar(m.varIdx + 1)
			return m, cmd
		}
		values := make(map[string]string, len(m.varNames))
		for i, name := range m.varNames {
			values[name] = m.varInputs[i].Value()
		}
		m.mode = modeBrowse
		m.varInputs = nil
		m.copy(m.varsFor, values)
		return m, nil
	}
	var cmd tea.Cmd
	m.varInputs[m.varIdx], cmd = m.varInputs[m.varIdx].Update(msg)
	return m, cmd
}

func (m *appModel) focusVar(i int) tea.Cmd {
	if i < 0 || i >= len(m.varInputs) {
		return nil
	}
	m.varInputs[m.varIdx].Blur()
	m.varIdx = i
	return m.varInputs[i].Focus()
}

func sortLabel(k model.SortKey) string {
	switch k {
	case model.SortCopyCount:
		return "most copied"
	case model.SortTitle:
		return "title"
	case model.SortCreated:
		return "newest"
	default:
		return "last used"
	}
}
