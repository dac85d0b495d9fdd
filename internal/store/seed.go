package store

import (
	"strings"
	"time"

	"github.com/AstralShardio/pastemyprompt/internal/model"
)

// BuiltinProjects returns the locked projects every store carries, in display order.
func BuiltinProjects() []model.Project {
	return []model.Project{
		{ID: model.ProjectGeneral, Name: "General", Locked: true},
		{ID: model.ProjectBlogs, Name: "Blogs", Locked: true},
		{ID: model.ProjectX, Name: "X", Locked: true},
	}
}

type samplePrompt struct {
	projectID string
	title     string
	body      string
	tags      []string
	age       time.Duration
	copies    int
}

var samplePrompts = []samplePrompt{
	{model.ProjectGeneral, "Cold Email Opener", "Write a 3-line cold email opener that grabs attention and introduces [product/service] to [target audience]. Make it personal and value-driven.", []string{"Sales", "Outreach"}, 24 * time.Hour, 5},
	{model.ProjectBlogs, "Blog Intro Hook", "Start a blog post about [topic] with a compelling hook that makes readers want to continue. Use storytelling or a surprising statistic.", []string{"Blog", "Hook"}, 12 * time.Hour, 3},
	{model.ProjectX, "X Thread Starter", "Begin a viral thread on [topic] that will get high engagement. Start with a bold statement or question that makes people curious.", []string{"X", "Viral"}, 6 * time.Hour, 8},
	{model.ProjectGeneral, "Git Commit", "Write a conventional commit message for: [describe changes]. Format: type(scope): subject. Types: feat, fix, docs, style, refactor, test, chore.", []string{"Code", "Git"}, 2 * time.Hour, 12},
	{model.ProjectBlogs, "Meta Description", "Write a 155-character meta description for a blog post titled \"[title]\". Include the main keyword and a call-to-action.", []string{"SEO", "Blog"}, time.Hour, 2},
}

// Seed returns the initial state of a brand-new store: built-in projects, sample
// prompts and the first three samples as recent.
func Seed(now time.Time) *DB {
	db := Empty()
	db.Projects = BuiltinProjects()
	db.FirstTimeUser = true
	for _, sp := range samplePrompts {
		id, err := NewID(db, PromptIDPrefix)
		if err != nil {
			continue
		}
		ts := now.Add(-sp.age).UnixMilli()
		db.Prompts = append(db.Prompts, model.Prompt{
			ID:        id,
			ProjectID: sp.projectID,
			Title:     sp.title,
			Prompt:    sp.body,
			Tags:      append([]string(nil), sp.tags...),
			LastUsed:  ts,
			CopyCount: sp.copies,
			CreatedAt: ts,
			Version:   1,
		})
	}
	for i := 0; i < len(db.Prompts) && i < model.MaxRecent; i++ {
		db.Recent = append(db.Recent, db.Prompts[i].ID)
	}
	return db
}

// Migrate brings loaded state up to the current invariants. It reports whether
// anything changed.
func Migrate(db *DB, now time.Time) bool {
	changed := ensureBuiltins(db)
	if breakProjectCycles(db) {
		changed = true
	}

	for i := range db.Prompts {
		p := &db.Prompts[i]
		if p.CopyCount < 0 {
			p.CopyCount = 0
			changed = true
		}
		if p.CreatedAt == 0 {
			if p.LastUsed != 0 {
				p.CreatedAt = p.LastUsed
			} else {
				p.CreatedAt = now.UnixMilli()
			}
			changed = true
		}
		if p.Version < 1 {
			p.Version = 1
			changed = true
		}
		if strings.TrimSpace(p.ProjectID) == "" || !db.ProjectExists(p.ProjectID) {
			p.ProjectID = model.ProjectGeneral
			changed = true
		}
	}

	for _, set := range []*[]string{&db.Recent, &db.Favorites, &db.Archived} {
		kept := dedupeExisting(db, *set)
		if len(kept) != len(*set) {
			*set = kept
			changed = true
		}
	}
	if len(db.Recent) > model.MaxRecent {
		db.Recent = db.Recent[:model.MaxRecent]
		changed = true
	}
	for id, hist := range db.History {
		if _, ok := db.FindPrompt(id); !ok {
			delete(db.History, id)
			changed = true
			continue
		}
		if len(hist) > model.MaxHistory {
			db.History[id] = hist[len(hist)-model.MaxHistory:]
			changed = true
		}
	}
	return changed
}

// ensureBuiltins adds missing built-in projects and re-asserts their lock.
func ensureBuiltins(db *DB) bool {
	changed := false
	var missing []model.Project
	for _, b := range BuiltinProjects() {
		p, ok := db.FindProject(b.ID)
		if !ok {
			missing = append(missing, b)
			continue
		}
		if !p.Locked {
			p.Locked = true
			changed = true
		}
		if p.ParentID != nil {
			p.ParentID = nil
			changed = true
		}
		if strings.TrimSpace(p.Name) == "" {
			p.Name = b.Name
			changed = true
		}
	}
	if len(missing) > 0 {
		db.Projects = append(missing, db.Projects...)
		changed = true
	}
	return changed
}

func dedupeExisting(db *DB, ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if _, ok := db.FindPrompt(id); !ok {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// breakProjectCycles detaches projects parented under a locked project or under
// themselves through their ancestor chain. Missing parents are left alone; such
// projects render as roots.
func breakProjectCycles(db *DB) bool {
	changed := false
	for i := range db.Projects {
		p := &db.Projects[i]
		if p.ParentID == nil {
			continue
		}
		if parent, ok := db.FindProject(*p.ParentID); ok && parent.Locked {
			p.ParentID = nil
			changed = true
			continue
		}
		seen := map[string]bool{}
		cur := *p.ParentID
		for cur != "" && !seen[cur] {
			if cur == p.ID {
				p.ParentID = nil
				changed = true
				break
			}
			seen[cur] = true
			next, ok := db.FindProject(cur)
			if !ok {
				break
			}
			cur = next.Parent()
		}
	}
	return changed
}
