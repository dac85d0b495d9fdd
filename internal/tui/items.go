package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/AstralShardio/pastemyprompt/internal/model"
)

type promptItem struct {
	prompt   model.Prompt
	favorite bool
}

func (it promptItem) FilterValue() string { return it.prompt.Title }

func (it promptItem) Title() string {
	star := "  "
	if it.favorite {
		star = "★ "
	}
	return star + it.prompt.Title
}

func promptItems(ps []model.Prompt, isFavorite func(string) bool) []list.Item {
	out := make([]list.Item, 0, len(ps))
	for _, p := range ps {
		out = append(out, promptItem{prompt: p, favorite: isFavorite(p.ID)})
	}
	return out
}

// promptDelegate renders one prompt per line: title on the left, tags and copy count
// right-aligned.
type promptDelegate struct{}

func (promptDelegate) Height() int                             { return 1 }
func (promptDelegate) Spacing() int                            { return 0 }
func (promptDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (promptDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(promptItem)
	width := m.Width()
	if !ok || width < 4 {
		return
	}
	title := it.Title()
	if it.favorite {
		title = lipgloss.NewStyle().Foreground(colorFavorite).Render("★ ") + it.prompt.Title
	}
	meta := "×" + strconv.Itoa(it.prompt.CopyCount)
	if len(it.prompt.Tags) > 0 {
		meta = "#" + strings.Join(it.prompt.Tags, " #") + "  " + meta
	}
	metaW := xansi.StringWidth(meta)
	titleW := width - metaW - 2
	if titleW < 8 {
		meta, metaW, titleW = "", 0, width
	}
	line := fitLine(title, titleW)
	if metaW > 0 {
		line += "  " + styleMuted().Render(meta)
	}
	if index == m.Index() {
		plain := fitLine(it.Title(), titleW)
		if metaW > 0 {
			plain += "  " + meta
		}
		line = styleSelected().Render(fitLine(plain, width))
	}
	fmt.Fprint(w, line)
}
