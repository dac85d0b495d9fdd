// Package view derives the read-only lists the CLI and TUI render.
package view

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

type DateRange string

const (
	RangeAll   DateRange = ""
	RangeToday DateRange = "today"
	RangeWeek  DateRange = "week"
	RangeMonth DateRange = "month"
)

func ParseDateRange(s string) (DateRange, bool) {
	switch DateRange(strings.ToLower(strings.TrimSpace(s))) {
	case RangeAll, "all":
		return RangeAll, true
	case RangeToday:
		return RangeToday, true
	case RangeWeek:
		return RangeWeek, true
	case RangeMonth:
		return RangeMonth, true
	}
	return RangeAll, false
}

func (r DateRange) window() time.Duration {
	switch r {
	case RangeToday:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

type Filters struct {
	FavoritesOnly bool
	// CurrentProject restricts the list to one project. When set, Projects is ignored.
	CurrentProject string
	Query          string
	// Tags keeps prompts carrying any of these tags.
	Tags      []string
	Projects  []string
	DateRange DateRange
	SortBy    model.SortKey
	// Language selects the collation for title sorting. Defaults to English.
	Language language.Tag
}

// ListVisible returns the non-archived prompts that pass filters, favorites first.
func ListVisible(db *store.DB, f Filters, now time.Time) []model.Prompt {
	out := make([]model.Prompt, 0, len(db.Prompts))
	for _, p := range db.Prompts {
		if !db.IsArchived(p.ID) {
			out = append(out, p)
		}
	}

	if f.FavoritesOnly {
		out = keep(out, func(p model.Prompt) bool { return db.IsFavorite(p.ID) })
	}
	if f.CurrentProject != "" {
		out = keep(out, func(p model.Prompt) bool { return p.ProjectID == f.CurrentProject })
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		out = keep(out, func(p model.Prompt) bool { return Matches(p, q) })
	}
	if len(f.Tags) > 0 {
		out = keep(out, func(p model.Prompt) bool {
			for _, t := range f.Tags {
				if p.HasTag(t) {
					return true
				}
			}
			return false
		})
	}
	if f.CurrentProject == "" && len(f.Projects) > 0 {
		wanted := map[string]bool{}
		for _, id := range f.Projects {
			wanted[id] = true
		}
		out = keep(out, func(p model.Prompt) bool { return wanted[p.ProjectID] })
	}
	if w := f.DateRange.window(); w > 0 {
		cutoff := now.Add(-w).UnixMilli()
		out = keep(out, func(p model.Prompt) bool { return activity(p) >= cutoff })
	}

	sortPrompts(out, f, db)
	return out
}

// Matches reports whether lowered query is a substring of the title, body or any tag.
func Matches(p model.Prompt, lowered string) bool {
	if strings.Contains(strings.ToLower(p.Title), lowered) || strings.Contains(strings.ToLower(p.Prompt), lowered) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), lowered) {
			return true
		}
	}
	return false
}

func activity(p model.Prompt) int64 {
	if p.LastUsed != 0 {
		return p.LastUsed
	}
	return p.CreatedAt
}

func keep(in []model.Prompt, fn func(model.Prompt) bool) []model.Prompt {
	out := in[:0]
	for _, p := range in {
		if fn(p) {
			out = append(out, p)
		}
	}
	return out
}

func sortPrompts(ps []model.Prompt, f Filters, db *store.DB) {
	key := f.SortBy
	if key == "" {
		key = model.SortLastUsed
	}
	var less func(a, b model.Prompt) bool
	switch key {
	case model.SortCopyCount:
		less = func(a, b model.Prompt) bool { return a.CopyCount > b.CopyCount }
	case model.SortTitle:
		tag := f.Language
		if tag == language.Und {
			tag = language.English
		}
		col := collate.New(tag, collate.IgnoreCase)
		less = func(a, b model.Prompt) bool { return col.CompareString(a.Title, b.Title) < 0 }
	case model.SortCreated:
		less = func(a, b model.Prompt) bool { return a.CreatedAt > b.CreatedAt }
	default:
		less = func(a, b model.Prompt) bool { return a.LastUsed > b.LastUsed }
	}
	sort.SliceStable(ps, func(i, j int) bool {
		fi, fj := db.IsFavorite(ps[i].ID), db.IsFavorite(ps[j].ID)
		if fi != fj {
			return fi
		}
		return less(ps[i], ps[j])
	})
}
