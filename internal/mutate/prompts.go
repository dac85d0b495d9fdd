package mutate

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/similar"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

const maxTitleLength = 200

type PromptInput struct {
	Title     string   `json:"title"`
	Prompt    string   `json:"prompt"`
	Tags      []string `json:"tags"`
	ProjectID string   `json:"projectId"`
}

func (in *PromptInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Prompt = strings.TrimSpace(in.Prompt)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	if in.ProjectID == "" {
		in.ProjectID = model.ProjectGeneral
	}
	in.Tags = CleanTags(in.Tags)
}

func (in PromptInput) validate() error {
	return validationFromOzzo(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required.Error("title is required"), validation.RuneLength(1, maxTitleLength)),
		validation.Field(&in.Prompt, validation.Required.Error("prompt text is required")),
	))
}

// CreateOptions controls the pre-save duplicate gate.
type CreateOptions struct {
	// AcceptDuplicates saves even when near-duplicates exist.
	AcceptDuplicates bool
	Threshold        float64
}

type PromptResult struct {
	Prompt  *model.Prompt
	Changed bool
}

// CreatePrompt validates in and appends a new prompt. Unless opts.AcceptDuplicates is
// set, it first looks for near-duplicate bodies and returns DuplicatesFoundError with
// the top three matches instead of saving.
func CreatePrompt(db *store.DB, in PromptInput, opts CreateOptions, now time.Time) (PromptResult, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return PromptResult{}, err
	}
	if !db.ProjectExists(in.ProjectID) {
		return PromptResult{}, NotFoundError{Kind: "project", ID: in.ProjectID}
	}
	id, err := store.NewID(db, store.PromptIDPrefix)
	if err != nil {
		return PromptResult{}, err
	}
	p := model.Prompt{
		ID:        id,
		ProjectID: in.ProjectID,
		Title:     in.Title,
		Prompt:    in.Prompt,
		Tags:      in.Tags,
		CreatedAt: now.UnixMilli(),
		Version:   1,
	}
	if !opts.AcceptDuplicates {
		threshold := opts.Threshold
		if threshold <= 0 {
			threshold = similar.DefaultThreshold
		}
		if matches := similar.FindDuplicates(p, db.Prompts, threshold); len(matches) > 0 {
			return PromptResult{}, DuplicatesFoundError{Matches: similar.Top(matches, 3)}
		}
	}
	db.Prompts = append(db.Prompts, p)
	return PromptResult{Prompt: &db.Prompts[len(db.Prompts)-1], Changed: true}, nil
}

// PromptPatch holds the fields an edit replaces. Nil fields are kept.
type PromptPatch struct {
	Title     *string
	Prompt    *string
	Tags      *[]string
	ProjectID *string
}

// EditPrompt records the current state in the prompt's history, applies patch and bumps
// the version. History keeps the newest model.MaxHistory snapshots.
func EditPrompt(db *store.DB, promptID string, patch PromptPatch, now time.Time) (PromptResult, error) {
	p, ok := db.FindPrompt(promptID)
	if !ok {
		return PromptResult{}, NotFoundError{Kind: "prompt", ID: promptID}
	}

	next := PromptInput{Title: p.Title, Prompt: p.Prompt, Tags: p.Tags, ProjectID: p.ProjectID}
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Prompt != nil {
		next.Prompt = *patch.Prompt
	}
	if patch.Tags != nil {
		next.Tags = *patch.Tags
	}
	if patch.ProjectID != nil {
		next.ProjectID = *patch.ProjectID
	}
	next.normalize()
	if err := next.validate(); err != nil {
		return PromptResult{}, err
	}
	if !db.ProjectExists(next.ProjectID) {
		return PromptResult{}, NotFoundError{Kind: "project", ID: next.ProjectID}
	}

	pushHistory(db, *p, now)
	p.Title = next.Title
	p.Prompt = next.Prompt
	p.Tags = next.Tags
	p.ProjectID = next.ProjectID
	p.Version++
	return PromptResult{Prompt: p, Changed: true}, nil
}

func pushHistory(db *store.DB, p model.Prompt, now time.Time) {
	if db.History == nil {
		db.History = map[string][]model.HistoryEntry{}
	}
	hist := append(db.History[p.ID], model.HistoryEntry{
		Title:     p.Title,
		Prompt:    p.Prompt,
		Tags:      append([]string{}, p.Tags...),
		ProjectID: p.ProjectID,
		Timestamp: now.UnixMilli(),
	})
	if len(hist) > model.MaxHistory {
		hist = hist[len(hist)-model.MaxHistory:]
	}
	db.History[p.ID] = hist
}

// RevertToHistory re-applies snapshot index (0 = oldest) as a regular edit.
func RevertToHistory(db *store.DB, promptID string, index int, now time.Time) (PromptResult, error) {
	if _, ok := db.FindPrompt(promptID); !ok {
		return PromptResult{}, NotFoundError{Kind: "prompt", ID: promptID}
	}
	hist := db.History[promptID]
	if index < 0 || index >= len(hist) {
		return PromptResult{}, ValidationError{Field: "version", Message: "no such history entry"}
	}
	h := hist[index]
	projectID := h.ProjectID
	if !db.ProjectExists(projectID) {
		projectID = model.ProjectGeneral
	}
	tags := append([]string{}, h.Tags...)
	return EditPrompt(db, promptID, PromptPatch{Title: &h.Title, Prompt: &h.Prompt, Tags: &tags, ProjectID: &projectID}, now)
}

// RecordUsage marks a prompt as copied: lastUsed, copyCount and the recent list.
func RecordUsage(db *store.DB, promptID string, now time.Time) (PromptResult, error) {
	p, ok := db.FindPrompt(promptID)
	if !ok {
		return PromptResult{}, NotFoundError{Kind: "prompt", ID: promptID}
	}
	p.LastUsed = now.UnixMilli()
	p.CopyCount++
	recent := append([]string{promptID}, store.Without(db.Recent, promptID)...)
	if len(recent) > model.MaxRecent {
		recent = recent[:model.MaxRecent]
	}
	db.Recent = recent
	return PromptResult{Prompt: p, Changed: true}, nil
}

// SetFavorite adds or removes the prompt from favorites.
func SetFavorite(db *store.DB, promptID string, favorite bool) (PromptResult, error) {
	p, ok := db.FindPrompt(promptID)
	if !ok {
		return PromptResult{}, NotFoundError{Kind: "prompt", ID: promptID}
	}
	if db.IsFavorite(promptID) == favorite {
		return PromptResult{Prompt: p}, nil
	}
	if favorite {
		db.Favorites = append(db.Favorites, promptID)
	} else {
		db.Favorites = store.Without(db.Favorites, promptID)
	}
	return PromptResult{Prompt: p, Changed: true}, nil
}

func ToggleFavorite(db *store.DB, promptID string) (PromptResult, error) {
	return SetFavorite(db, promptID, !db.IsFavorite(promptID))
}

// DuplicatePrompt copies a prompt under a new id with "(Copy)" appended to the title.
// Usage stats start over. The duplicate gate does not apply.
func DuplicatePrompt(db *store.DB, promptID string, now time.Time) (PromptResult, error) {
	src, ok := db.FindPrompt(promptID)
	if !ok {
		return PromptResult{}, NotFoundError{Kind: "prompt", ID: promptID}
	}
	id, err := store.NewID(db, store.PromptIDPrefix)
	if err != nil {
		return PromptResult{}, err
	}
	cp := *src
	cp.ID = id
	cp.Title = src.Title + " (Copy)"
	cp.Tags = append([]string{}, src.Tags...)
	cp.LastUsed = 0
	cp.CopyCount = 0
	cp.CreatedAt = now.UnixMilli()
	cp.Version = 1
	db.Prompts = append(db.Prompts, cp)
	return PromptResult{Prompt: &db.Prompts[len(db.Prompts)-1], Changed: true}, nil
}

type MergeResult struct {
	Target  *model.Prompt
	Changed bool
}

// MergeDuplicates folds source into target: tags are unioned (target's first), copyCount
// and lastUsed take the larger value, and source is deleted everywhere. Nothing happens
// when either id is missing or both are the same.
func MergeDuplicates(db *store.DB, sourceID, targetID string) MergeResult {
	if sourceID == targetID {
		return MergeResult{}
	}
	src, ok := db.FindPrompt(sourceID)
	if !ok {
		return MergeResult{}
	}
	if _, ok := db.FindPrompt(targetID); !ok {
		return MergeResult{}
	}
	source := *src

	db.RemovePrompt(sourceID)
	target, _ := db.FindPrompt(targetID)
	target.Tags = unionTags(target.Tags, source.Tags)
	target.CopyCount = max(target.CopyCount, source.CopyCount)
	target.LastUsed = max(target.LastUsed, source.LastUsed)
	return MergeResult{Target: target, Changed: true}
}

func unionTags(first, second []string) []string {
	out := make([]string, 0, len(first)+len(second))
	seen := map[string]bool{}
	for _, list := range [][]string{first, second} {
		for _, t := range list {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// ParseTags splits a comma separated tag list.
func ParseTags(s string) []string {
	return CleanTags(strings.Split(s, ","))
}

// CleanTags trims tags and drops empties and exact repeats, keeping order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
