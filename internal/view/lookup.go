package view

import (
	"sort"
	"strings"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

// PredefinedTags are offered as suggestions before any prompt uses them.
var PredefinedTags = []string{"SEO", "X", "Code", "Funny", "Blog", "Dev"}

const (
	maxTagSuggestions = 5
	maxPaletteResults = 10
)

// AllTags lists predefined tags followed by every prompt tag, without exact repeats.
func AllTags(db *store.DB) []string {
	out := append([]string{}, PredefinedTags...)
	seen := map[string]bool{}
	for _, t := range out {
		seen[t] = true
	}
	for _, p := range db.Prompts {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// TagSuggestions completes a partially typed tag: case-insensitive substring matches,
// excluding the input itself.
func TagSuggestions(db *store.DB, input string) []string {
	in := strings.ToLower(strings.TrimSpace(input))
	out := []string{}
	for _, t := range AllTags(db) {
		lt := strings.ToLower(t)
		if lt == in || !strings.Contains(lt, in) {
			continue
		}
		out = append(out, t)
		if len(out) == maxTagSuggestions {
			break
		}
	}
	return out
}

// Palette returns quick-search results for the command palette. An empty query lists
// the first prompts.
func Palette(db *store.DB, query string) []model.Prompt {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []model.Prompt{}
	for _, p := range db.Prompts {
		if db.IsArchived(p.ID) {
			continue
		}
		if q != "" && !Matches(p, q) {
			continue
		}
		out = append(out, p)
		if len(out) == maxPaletteResults {
			break
		}
	}
	return out
}

// RecentPrompts resolves the recent list, most recent first.
func RecentPrompts(db *store.DB) []model.Prompt {
	out := make([]model.Prompt, 0, len(db.Recent))
	for _, id := range db.Recent {
		if p, ok := db.FindPrompt(id); ok && !db.IsArchived(id) {
			out = append(out, *p)
		}
	}
	return out
}

// ProjectCounts counts visible prompts per project id.
func ProjectCounts(db *store.DB) map[string]int {
	out := map[string]int{}
	for _, p := range db.Prompts {
		if !db.IsArchived(p.ID) {
			out[p.ProjectID]++
		}
	}
	return out
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts counts tag usage across visible prompts, most used first.
func TagCounts(db *store.DB) []TagCount {
	counts := map[string]int{}
	var order []string
	for _, p := range db.Prompts {
		if db.IsArchived(p.ID) {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := counts[t]; !ok {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(order))
	for _, t := range order {
		out = append(out, TagCount{Tag: t, Count: counts[t]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
