package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
	"github.com/AstralShardio/pastemyprompt/internal/vars"
)

type RenderOptions struct {
	IncludeArchived bool
	IncludeHistory  bool
	// ProjectID limits the index to one project and its sub-projects.
	ProjectID string
}

func RenderPromptMarkdown(db *store.DB, promptID string, opt RenderOptions) (string, error) {
	if db == nil {
		return "", fmt.Errorf("missing db")
	}
	p, ok := db.FindPrompt(strings.TrimSpace(promptID))
	if !ok {
		return "", fmt.Errorf("prompt not found: %s", promptID)
	}
	if db.IsArchived(p.ID) && !opt.IncludeArchived {
		return "", fmt.Errorf("prompt archived (use --include-archived): %s", p.ID)
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(p.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn("- ID: " + p.ID)
	if proj, ok := db.FindProject(p.ProjectID); ok {
		writeLn("- Project: " + strings.TrimSpace(proj.Name) + " (" + p.ProjectID + ")")
	} else {
		writeLn("- Project: " + p.ProjectID)
	}
	if len(p.Tags) > 0 {
		writeLn("- Tags: " + strings.Join(p.Tags, ", "))
	}
	if db.IsFavorite(p.ID) {
		writeLn("- Favorite: yes")
	}
	if db.IsArchived(p.ID) {
		writeLn("- Archived: yes")
	}
	writeLn(fmt.Sprintf("- Version: %d", p.Version))
	writeLn(fmt.Sprintf("- Copied: %d times", p.CopyCount))
	writeLn("- Created: " + formatMillis(p.CreatedAt))
	if p.LastUsed > 0 {
		writeLn("- Last used: " + formatMillis(p.LastUsed))
	}
	writeLn("")

	if names := vars.Names(p.Prompt); len(names) > 0 {
		writeLn("## Variables")
		writeLn("")
		for _, n := range names {
			writeLn("- `" + n + "`")
		}
		writeLn("")
	}

	writeLn("## Prompt")
	writeLn("")
	writeFenced(&buf, p.Prompt)

	if hist := db.History[p.ID]; opt.IncludeHistory && len(hist) > 0 {
		writeLn("")
		writeLn("## History")
		for i := len(hist) - 1; i >= 0; i-- {
			h := hist[i]
			writeLn("")
			writeLn(fmt.Sprintf("### %d. %s (%s)", i, strings.TrimSpace(h.Title), formatMillis(h.Timestamp)))
			writeLn("")
			writeFenced(&buf, h.Prompt)
		}
	}
	return buf.String(), nil
}

// writeFenced writes body in a text fence long enough not to be closed by backticks inside it.
func writeFenced(buf *bytes.Buffer, body string) {
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	fmt.Fprintf(buf, "%stext\n%s\n%s\n", fence, strings.TrimRight(body, "\n"), fence)
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return "never"
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04")
}

// RenderIndexMarkdown lists the projects as a nested list with links to each prompt page.
func RenderIndexMarkdown(db *store.DB, opt RenderOptions) (string, error) {
	if db == nil {
		return "", fmt.Errorf("missing db")
	}
	forest := tree.BuildForest(db.Projects)
	title := "Prompt library"
	if opt.ProjectID != "" {
		proj, ok := db.FindProject(opt.ProjectID)
		if !ok {
			return "", fmt.Errorf("project not found: %s", opt.ProjectID)
		}
		forest = subForest(forest, proj.ID)
		title = strings.TrimSpace(proj.Name)
	}

	var buf bytes.Buffer
	buf.WriteString("# " + title + "\n")

	byProject := promptsByProject(db, opt.IncludeArchived)
	tree.Walk(forest, func(n *tree.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		if depth == 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "%s- **%s**\n", indent, strings.TrimSpace(n.Project.Name))
		if d := strings.TrimSpace(n.Project.Description); d != "" {
			fmt.Fprintf(&buf, "%s  %s\n", indent, d)
		}
		for _, p := range byProject[n.Project.ID] {
			fmt.Fprintf(&buf, "%s  - [%s](prompts/%s.md)\n", indent, strings.TrimSpace(p.Title), p.ID)
		}
	})
	return buf.String(), nil
}

func subForest(forest []*tree.Node, id string) []*tree.Node {
	var found *tree.Node
	tree.Walk(forest, func(n *tree.Node, _ int) {
		if found == nil && n.Project.ID == id {
			found = n
		}
	})
	if found == nil {
		return nil
	}
	return []*tree.Node{found}
}

func promptsByProject(db *store.DB, includeArchived bool) map[string][]model.Prompt {
	out := map[string][]model.Prompt{}
	for _, p := range db.Prompts {
		if db.IsArchived(p.ID) && !includeArchived {
			continue
		}
		out[p.ProjectID] = append(out[p.ProjectID], p)
	}
	return out
}
