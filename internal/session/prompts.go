package session

import (
	"strings"
	"unicode/utf8"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/similar"
	"github.com/AstralShardio/pastemyprompt/internal/vars"
	"github.com/AstralShardio/pastemyprompt/internal/view"
)

// quickAddTitleLimit is the longest first line quick add uses as a title.
const quickAddTitleLimit = 50

// List returns the visible prompts. An unset sort key uses the stored preference.
func (s *Session) List(f view.Filters) []model.Prompt {
	if f.SortBy == "" {
		f.SortBy = s.db.SortBy
	}
	return view.ListVisible(s.db, f, s.now())
}

func (s *Session) Prompt(id string) (model.Prompt, error) {
	p, ok := s.db.FindPrompt(id)
	if !ok {
		return model.Prompt{}, mutate.NotFoundError{Kind: "prompt", ID: id}
	}
	return *p, nil
}

func (s *Session) History(id string) ([]model.HistoryEntry, error) {
	if _, ok := s.db.FindPrompt(id); !ok {
		return nil, mutate.NotFoundError{Kind: "prompt", ID: id}
	}
	return append([]model.HistoryEntry{}, s.db.History[id]...), nil
}

func (s *Session) createOptions(accept bool) mutate.CreateOptions {
	return mutate.CreateOptions{AcceptDuplicates: accept, Threshold: s.settings.Threshold}
}

// CreatePrompt runs the duplicate gate unless accept is set.
func (s *Session) CreatePrompt(in mutate.PromptInput, accept bool) (model.Prompt, error) {
	res, err := mutate.CreatePrompt(s.db, in, s.createOptions(accept), s.now())
	if err != nil {
		return model.Prompt{}, s.fail("prompt.create", err)
	}
	return *res.Prompt, s.commit("prompt.create", "prompt_id", res.Prompt.ID)
}

func (s *Session) EditPrompt(id string, patch mutate.PromptPatch) (model.Prompt, error) {
	res, err := mutate.EditPrompt(s.db, id, patch, s.now())
	if err != nil {
		return model.Prompt{}, s.fail("prompt.edit", err, "prompt_id", id)
	}
	return *res.Prompt, s.commit("prompt.edit", "prompt_id", id, "version", res.Prompt.Version)
}

func (s *Session) RevertPrompt(id string, index int) (model.Prompt, error) {
	res, err := mutate.RevertToHistory(s.db, id, index, s.now())
	if err != nil {
		return model.Prompt{}, s.fail("prompt.revert", err, "prompt_id", id)
	}
	return *res.Prompt, s.commit("prompt.revert", "prompt_id", id, "index", index)
}

// CopyResult is what a copy put on the clipboard.
type CopyResult struct {
	Prompt model.Prompt `json:"prompt"`
	Text   string       `json:"text"`
	// Unfilled lists variables that were rendered as [name] placeholders.
	Unfilled []string `json:"unfilled,omitempty"`
}

// Copy renders the prompt with values, writes it to the clipboard and records usage.
// A clipboard failure leaves the state untouched.
func (s *Session) Copy(id string, values map[string]string) (CopyResult, error) {
	p, ok := s.db.FindPrompt(id)
	if !ok {
		return CopyResult{}, s.fail("prompt.copy", mutate.NotFoundError{Kind: "prompt", ID: id})
	}
	text := vars.Render(p.Prompt, values)
	var unfilled []string
	for _, name := range vars.Names(p.Prompt) {
		if values[name] == "" {
			unfilled = append(unfilled, name)
		}
	}
	if err := s.clip.WriteAll(text); err != nil {
		return CopyResult{}, s.fail("prompt.copy", err, "prompt_id", id)
	}
	res, err := mutate.RecordUsage(s.db, id, s.now())
	if err != nil {
		return CopyResult{}, s.fail("prompt.copy", err, "prompt_id", id)
	}
	out := CopyResult{Prompt: *res.Prompt, Text: text, Unfilled: unfilled}
	return out, s.commit("prompt.copy", "prompt_id", id, "copy_count", res.Prompt.CopyCount)
}

// CopyRecent copies the n-th recent prompt, counting from 1.
func (s *Session) CopyRecent(n int, values map[string]string) (CopyResult, error) {
	recent := view.RecentPrompts(s.db)
	if n < 1 || n > len(recent) {
		return CopyResult{}, s.fail("prompt.copy_recent", mutate.ValidationError{Field: "recent", Message: "no recent prompt at that position"})
	}
	return s.Copy(recent[n-1].ID, values)
}

// QuickAdd creates a prompt from the clipboard text. The first line becomes the title
// when it is short enough; otherwise the title is its leading characters.
func (s *Session) QuickAdd(projectID string, accept bool) (model.Prompt, error) {
	text, err := s.clip.ReadAll()
	if err != nil {
		return model.Prompt{}, s.fail("prompt.quick_add", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Prompt{}, s.fail("prompt.quick_add", mutate.ValidationError{Field: "prompt", Message: "the clipboard is empty"})
	}
	return s.CreatePrompt(mutate.PromptInput{
		Title:     QuickAddTitle(text),
		Prompt:    text,
		ProjectID: projectID,
	}, accept)
}

// QuickAddTitle derives a title from pasted text.
func QuickAddTitle(text string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	first = strings.TrimSpace(first)
	if utf8.RuneCountInString(first) < quickAddTitleLimit {
		return first
	}
	r := []rune(first)
	return strings.TrimSpace(string(r[:quickAddTitleLimit-3])) + "..."
}

func (s *Session) SetFavorite(id string, on bool) (model.Prompt, error) {
	res, err := mutate.SetFavorite(s.db, id, on)
	if err != nil {
		return model.Prompt{}, s.fail("prompt.favorite", err, "prompt_id", id)
	}
	if !res.Changed {
		return *res.Prompt, nil
	}
	return *res.Prompt, s.commit("prompt.favorite", "prompt_id", id, "favorite", on)
}

func (s *Session) ToggleFavorite(id string) (model.Prompt, error) {
	return s.SetFavorite(id, !s.db.IsFavorite(id))
}

func (s *Session) Duplicate(id string) (model.Prompt, error) {
	res, err := mutate.DuplicatePrompt(s.db, id, s.now())
	if err != nil {
		return model.Prompt{}, s.fail("prompt.duplicate", err, "prompt_id", id)
	}
	return *res.Prompt, s.commit("prompt.duplicate", "prompt_id", res.Prompt.ID, "source_id", id)
}

// Duplicates lists prompts whose body is similar to the given prompt's.
func (s *Session) Duplicates(id string) ([]similar.Match, error) {
	p, ok := s.db.FindPrompt(id)
	if !ok {
		return nil, mutate.NotFoundError{Kind: "prompt", ID: id}
	}
	return similar.FindDuplicates(*p, s.db.Prompts, s.settings.Threshold), nil
}

// ScanDuplicates finds every similar pair in the collection.
func (s *Session) ScanDuplicates(fast bool) []similar.Pair {
	return similar.Scan(s.db.Prompts, similar.ScanOptions{Threshold: s.settings.Threshold, Fast: fast})
}

// Merge folds source into target. Missing ids make it a no-op.
func (s *Session) Merge(sourceID, targetID string) (mutate.MergeResult, error) {
	res := mutate.MergeDuplicates(s.db, sourceID, targetID)
	if !res.Changed {
		return res, nil
	}
	return res, s.commit("prompt.merge", "prompt_id", targetID, "source_id", sourceID)
}

// Palette searches non-archived prompts for the quick switcher.
func (s *Session) Palette(query string) []model.Prompt {
	return view.Palette(s.db, query)
}

func (s *Session) TagSuggestions(input string) []string {
	return view.TagSuggestions(s.db, input)
}
