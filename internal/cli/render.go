package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AstralShardio/pastemyprompt/internal/format"
	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/similar"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
	"github.com/AstralShardio/pastemyprompt/internal/view"
)

const titleWidth = 40

// promptRow is a prompt plus the per-user flags list output carries.
type promptRow struct {
	model.Prompt
	Favorite bool `json:"favorite"`
	Archived bool `json:"archived,omitempty"`
}

type promptRows []promptRow

func (rs promptRows) RenderText() string {
	if len(rs) == 0 {
		return format.Muted("No prompts.")
	}
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		star := ""
		if r.Favorite {
			star = "★"
		}
		rows = append(rows, []string{
			r.ID,
			star,
			format.Truncate(format.OneLine(r.Title), titleWidth),
			r.ProjectID,
			strings.Join(r.Tags, ", "),
			strconv.Itoa(r.CopyCount),
			ago(r.LastUsed),
		})
	}
	return format.Table([]string{"ID", "", "Title", "Project", "Tags", "Copies", "Last used"}, rows)
}

type promptDetail struct {
	promptRow
	Variables []string `json:"variables"`
}

func (d promptDetail) RenderText() string {
	var b strings.Builder
	title := d.Title
	if d.Favorite {
		title = "★ " + title
	}
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "%s\n\n", format.Muted(fmt.Sprintf("%s · project %s · v%d · copied %d× · %s",
		d.ID, d.ProjectID, d.Version, d.CopyCount, ago(d.LastUsed))))
	b.WriteString(d.Prompt.Prompt)
	b.WriteString("\n")
	if len(d.Tags) > 0 {
		fmt.Fprintf(&b, "\n%s %s\n", format.Muted("tags:"), strings.Join(d.Tags, ", "))
	}
	if len(d.Variables) > 0 {
		fmt.Fprintf(&b, "%s %s\n", format.Muted("variables:"), strings.Join(d.Variables, ", "))
	}
	return b.String()
}

type historyList []model.HistoryEntry

func (h historyList) RenderText() string {
	if len(h) == 0 {
		return format.Muted("No history.")
	}
	rows := make([][]string, 0, len(h))
	for i, e := range h {
		rows = append(rows, []string{
			strconv.Itoa(i),
			time.UnixMilli(e.Timestamp).Local().Format("2006-01-02 15:04"),
			format.Truncate(format.OneLine(e.Title), titleWidth),
			format.Truncate(format.OneLine(e.Prompt), titleWidth),
		})
	}
	return format.Table([]string{"#", "Saved", "Title", "Prompt"}, rows)
}

type matchList []similar.Match

func (ms matchList) RenderText() string {
	if len(ms) == 0 {
		return format.Muted("No similar prompts.")
	}
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, []string{m.Prompt.ID, format.Truncate(m.Prompt.Title, titleWidth), fmt.Sprintf("%d%%", m.Percent)})
	}
	return format.Table([]string{"ID", "Title", "Similarity"}, rows)
}

type pairList []similar.Pair

func (ps pairList) RenderText() string {
	if len(ps) == 0 {
		return format.Muted("No near-duplicates found.")
	}
	rows := make([][]string, 0, len(ps))
	for _, p := range ps {
		rows = append(rows, []string{p.A.ID, p.B.ID,
			format.Truncate(p.A.Title, 30), format.Truncate(p.B.Title, 30),
			fmt.Sprintf("%d%%", p.Percent)})
	}
	return format.Table([]string{"A", "B", "Title A", "Title B", "Similarity"}, rows)
}

type projectRow struct {
	model.Project
	Prompts  int  `json:"prompts"`
	Expanded bool `json:"expanded"`
	Depth    int  `json:"depth"`
}

type projectRows []projectRow

func (rs projectRows) RenderText() string {
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		name := strings.Repeat("  ", r.Depth) + r.Name
		if r.Locked {
			name += " " + format.Muted("(built-in)")
		}
		rows = append(rows, []string{r.ID, name, strconv.Itoa(r.Prompts)})
	}
	return format.Table([]string{"ID", "Name", "Prompts"}, rows)
}

// projectTree is the forest with prompt counts, ignoring collapse state.
type projectTree struct {
	Forest []*tree.Node
	Counts map[string]int
}

type treeJSON struct {
	model.Project
	Prompts  int        `json:"prompts"`
	Children []treeJSON `json:"children,omitempty"`
}

func (t projectTree) nodes(ns []*tree.Node) []treeJSON {
	out := make([]treeJSON, 0, len(ns))
	for _, n := range ns {
		out = append(out, treeJSON{Project: n.Project, Prompts: t.Counts[n.Project.ID], Children: t.nodes(n.Children)})
	}
	return out
}

func (t projectTree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.nodes(t.Forest))
}

func (t projectTree) items(ns []*tree.Node) []format.TreeItem {
	out := make([]format.TreeItem, 0, len(ns))
	for _, n := range ns {
		label := fmt.Sprintf("%s %s", n.Project.Name, format.Muted(fmt.Sprintf("(%d)", t.Counts[n.Project.ID])))
		if n.Project.Icon != "" {
			label = n.Project.Icon + " " + label
		}
		out = append(out, format.TreeItem{Label: label, Children: t.items(n.Children)})
	}
	return out
}

func (t projectTree) RenderText() string {
	return format.Tree("Projects", t.items(t.Forest))
}

type templateList []model.Template

func (ts templateList) RenderText() string {
	if len(ts) == 0 {
		return format.Muted("No templates.")
	}
	rows := make([][]string, 0, len(ts))
	for _, tp := range ts {
		rows = append(rows, []string{tp.ID, tp.Name, format.Truncate(format.OneLine(tp.Prompt), titleWidth)})
	}
	return format.Table([]string{"ID", "Name", "Prompt"}, rows)
}

type tagList []view.TagCount

func (ts tagList) RenderText() string {
	if len(ts) == 0 {
		return format.Muted("No tags.")
	}
	rows := make([][]string, 0, len(ts))
	for _, tc := range ts {
		rows = append(rows, []string{tc.Tag, strconv.Itoa(tc.Count)})
	}
	return format.Table([]string{"Tag", "Prompts"}, rows)
}

type lines []string

func (ls lines) RenderText() string {
	if len(ls) == 0 {
		return format.Muted("(none)")
	}
	return strings.Join(ls, "\n")
}

func ago(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	d := time.Since(time.UnixMilli(ms))
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
