package view

import (
	"reflect"
	"testing"
	"time"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) int64 { return now.Add(-d).UnixMilli() }

func fixtureDB() *store.DB {
	db := store.Empty()
	db.Projects = store.BuiltinProjects()
	db.Prompts = []model.Prompt{
		{ID: "a", ProjectID: "general", Title: "beta", Prompt: "write an email", Tags: []string{"Sales"}, LastUsed: ago(time.Hour), CopyCount: 3, CreatedAt: ago(40 * 24 * time.Hour)},
		{ID: "b", ProjectID: "blogs", Title: "Alpha", Prompt: "blog intro", Tags: []string{"Blog", "SEO"}, LastUsed: ago(3 * 24 * time.Hour), CopyCount: 9, CreatedAt: ago(10 * 24 * time.Hour)},
		{ID: "c", ProjectID: "x", Title: "Émile", Prompt: "thread starter", Tags: []string{"X"}, LastUsed: 0, CopyCount: 0, CreatedAt: ago(20 * 24 * time.Hour)},
		{ID: "d", ProjectID: "general", Title: "gamma", Prompt: "commit message", Tags: []string{"Code"}, LastUsed: ago(2 * time.Hour), CopyCount: 1, CreatedAt: ago(time.Hour)},
		{ID: "e", ProjectID: "blogs", Title: "delta", Prompt: "archived email", Tags: []string{"Sales"}, LastUsed: ago(time.Minute), CopyCount: 50, CreatedAt: ago(time.Minute)},
	}
	db.Archived = []string{"e"}
	return db
}

func promptIDs(ps []model.Prompt) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestListVisible(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		favorites []string
		f         Filters
		want      []string
	}{
		{"default lastUsed desc", nil, Filters{}, []string{"a", "d", "b", "c"}},
		{"copyCount desc", nil, Filters{SortBy: model.SortCopyCount}, []string{"b", "a", "d", "c"}},
		{"title collated", nil, Filters{SortBy: model.SortTitle}, []string{"b", "a", "c", "d"}},
		{"createdAt desc", nil, Filters{SortBy: model.SortCreated}, []string{"d", "b", "c", "a"}},
		{"favorites first", []string{"c"}, Filters{}, []string{"c", "a", "d", "b"}},
		{"favorites only", []string{"c", "b"}, Filters{FavoritesOnly: true}, []string{"b", "c"}},
		{"current project", nil, Filters{CurrentProject: "general"}, []string{"a", "d"}},
		{"query matches title body or tag", nil, Filters{Query: "  EMAIL "}, []string{"a"}},
		{"query on tag", nil, Filters{Query: "seo"}, []string{"b"}},
		{"tag filter is OR", nil, Filters{Tags: []string{"x", "Code"}}, []string{"d", "c"}},
		{"project multi", nil, Filters{Projects: []string{"x", "blogs"}}, []string{"b", "c"}},
		{"project multi ignored with current", nil, Filters{CurrentProject: "general", Projects: []string{"x"}}, []string{"a", "d"}},
		{"today", nil, Filters{DateRange: RangeToday}, []string{"a", "d"}},
		{"week", nil, Filters{DateRange: RangeWeek}, []string{"a", "d", "b"}},
		{"month falls back to createdAt", nil, Filters{DateRange: RangeMonth}, []string{"a", "d", "b", "c"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			db := fixtureDB()
			db.Favorites = tc.favorites
			got := promptIDs(ListVisible(db, tc.f, now))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestListVisible_ArchivedNeverShown(t *testing.T) {
	t.Parallel()

	db := fixtureDB()
	db.Favorites = []string{"e"}
	filters := []Filters{
		{},
		{FavoritesOnly: true},
		{Query: "archived"},
		{Tags: []string{"Sales"}},
		{CurrentProject: "blogs"},
		{DateRange: RangeToday, SortBy: model.SortCopyCount},
	}
	for _, f := range filters {
		for _, p := range ListVisible(db, f, now) {
			if p.ID == "e" {
				t.Fatalf("archived prompt listed with filters %+v", f)
			}
		}
	}
}

func TestListVisible_DoesNotMutateStore(t *testing.T) {
	t.Parallel()

	db := fixtureDB()
	before := promptIDs(db.Prompts)
	_ = ListVisible(db, Filters{Query: "email", SortBy: model.SortTitle}, now)
	if got := promptIDs(db.Prompts); !reflect.DeepEqual(got, before) {
		t.Fatalf("store order changed: %v", got)
	}
}

func TestTagSuggestions(t *testing.T) {
	t.Parallel()

	db := fixtureDB()
	db.Prompts[0].Tags = append(db.Prompts[0].Tags, "Seoul", "Coding", "Codex", "Codec", "Music")
	if got, want := TagSuggestions(db, "seo"), []string{"Seoul"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("TagSuggestions(seo) = %v, want %v", got, want)
	}
	got := TagSuggestions(db, "c")
	if len(got) != 5 {
		t.Fatalf("expected 5 suggestions, got %v", got)
	}
	if got[0] != "Code" {
		t.Fatalf("expected predefined tags first, got %v", got)
	}
}

func TestPalette(t *testing.T) {
	t.Parallel()

	db := fixtureDB()
	for i := 0; i < 20; i++ {
		db.Prompts = append(db.Prompts, model.Prompt{ID: string(rune('A' + i)), Title: "bulk", Prompt: "bulk"})
	}
	if got := Palette(db, ""); len(got) != 10 {
		t.Fatalf("expected 10 results, got %d", len(got))
	}
	if got := promptIDs(Palette(db, "email")); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("Palette(email) = %v", got)
	}
}

func TestRecentAndCounts(t *testing.T) {
	t.Parallel()

	db := fixtureDB()
	db.Recent = []string{"d", "ghost", "a"}
	if got := promptIDs(RecentPrompts(db)); !reflect.DeepEqual(got, []string{"d", "a"}) {
		t.Fatalf("RecentPrompts = %v", got)
	}
	counts := ProjectCounts(db)
	if counts["general"] != 2 || counts["blogs"] != 1 || counts["x"] != 1 {
		t.Fatalf("ProjectCounts = %v", counts)
	}
	tags := TagCounts(db)
	if len(tags) == 0 || tags[0].Tag != "Sales" || tags[0].Count != 1 {
		t.Fatalf("TagCounts = %v", tags)
	}
}
