package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/charmbracelet/x/ansi"
)

// TextRenderer is implemented by results with a human-readable form.
type TextRenderer interface {
	RenderText() string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	rootStyle   = lipgloss.NewStyle().Bold(true)
)

// WriteText unwraps a {"data": ...} envelope and prints its text form. Values without
// one fall back to YAML.
func WriteText(w io.Writer, v any) error {
	if env, ok := v.(map[string]any); ok {
		if data, ok := env["data"]; ok && len(env) == 1 {
			v = data
		}
	}
	switch x := v.(type) {
	case TextRenderer:
		_, err := fmt.Fprintln(w, strings.TrimRight(x.RenderText(), "\n"))
		return err
	case string:
		_, err := fmt.Fprintln(w, x)
		return err
	case nil:
		return nil
	}
	return WriteYAML(w, v)
}

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// TreeItem is one labelled node for Tree.
type TreeItem struct {
	Label    string
	Children []TreeItem
}

// Tree renders items as an indented tree under root.
func Tree(root string, items []TreeItem) string {
	t := tree.Root(rootStyle.Render(root)).Enumerator(tree.RoundedEnumerator)
	for _, it := range items {
		t.Child(subtree(it))
	}
	return t.String()
}

func subtree(it TreeItem) any {
	if len(it.Children) == 0 {
		return it.Label
	}
	t := tree.Root(it.Label).Enumerator(tree.RoundedEnumerator)
	for _, c := range it.Children {
		t.Child(subtree(c))
	}
	return t
}

// Truncate shortens s to width cells, keeping ANSI sequences intact.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// OneLine collapses whitespace so multi-line prompt bodies fit a table cell.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Muted renders s dimmed.
func Muted(s string) string { return mutedStyle.Render(s) }
