package mutate

import (
	"slices"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

// ArchiveSnapshot records where an archived prompt sat in the recent list. RecentIndex
// is -1 when it was not recent.
type ArchiveSnapshot struct {
	PromptID    string `json:"promptId"`
	RecentIndex int    `json:"recentIndex"`
}

type ArchiveResult struct {
	Prompt  *model.Prompt
	Changed bool
	Undo    ArchiveSnapshot
}

// Archive soft-deletes a prompt: it joins the archived set and leaves the recent list.
func Archive(db *store.DB, promptID string) (ArchiveResult, error) {
	p, ok := db.FindPrompt(promptID)
	if !ok {
		return ArchiveResult{}, NotFoundError{Kind: "prompt", ID: promptID}
	}
	if db.IsArchived(promptID) {
		return ArchiveResult{Prompt: p}, nil
	}
	snap := ArchiveSnapshot{PromptID: promptID, RecentIndex: slices.Index(db.Recent, promptID)}
	db.Archived = append(db.Archived, promptID)
	db.Recent = store.Without(db.Recent, promptID)
	return ArchiveResult{Prompt: p, Changed: true, Undo: snap}, nil
}

// UndoArchive reverses the archive recorded in snap and nothing else. The prompt leaves
// the archived set and goes back to its old slot in recent unless it was used again
// since.
func UndoArchive(db *store.DB, snap ArchiveSnapshot) error {
	if _, ok := db.FindPrompt(snap.PromptID); !ok {
		return NotFoundError{Kind: "prompt", ID: snap.PromptID}
	}
	db.Archived = store.Without(db.Archived, snap.PromptID)
	if snap.RecentIndex < 0 || db.IsRecent(snap.PromptID) {
		return nil
	}
	i := min(snap.RecentIndex, len(db.Recent))
	recent := make([]string, 0, len(db.Recent)+1)
	recent = append(recent, db.Recent[:i]...)
	recent = append(recent, snap.PromptID)
	recent = append(recent, db.Recent[i:]...)
	if len(recent) > model.MaxRecent {
		recent = recent[:model.MaxRecent]
	}
	db.Recent = recent
	return nil
}

// Restore takes a prompt out of the archive.
func Restore(db *store.DB, promptID string) (ArchiveResult, error) {
	p, ok := db.FindPrompt(promptID)
	if !ok {
		return ArchiveResult{}, NotFoundError{Kind: "prompt", ID: promptID}
	}
	if !db.IsArchived(promptID) {
		return ArchiveResult{Prompt: p}, nil
	}
	db.Archived = store.Without(db.Archived, promptID)
	return ArchiveResult{Prompt: p, Changed: true}, nil
}

// PermanentlyDelete removes an archived prompt from every collection. It refuses to run
// without confirmed, and only accepts prompts that are already archived.
func PermanentlyDelete(db *store.DB, promptID string, confirmed bool) error {
	if _, ok := db.FindPrompt(promptID); !ok {
		return NotFoundError{Kind: "prompt", ID: promptID}
	}
	if !db.IsArchived(promptID) {
		return ValidationError{Field: "prompt", Message: "archive the prompt before deleting it permanently"}
	}
	if !confirmed {
		return ConfirmationRequiredError{Action: "permanently delete", ID: promptID}
	}
	db.RemovePrompt(promptID)
	return nil
}

// ArchivedPrompts lists archived prompts in archive order.
func ArchivedPrompts(db *store.DB) []model.Prompt {
	out := make([]model.Prompt, 0, len(db.Archived))
	for _, id := range db.Archived {
		if p, ok := db.FindPrompt(id); ok {
			out = append(out, *p)
		}
	}
	return out
}
