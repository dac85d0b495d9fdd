package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
)

// ArchiveTicket identifies an archive that can still be undone until Deadline.
type ArchiveTicket struct {
	Prompt   model.Prompt `json:"prompt"`
	Token    string       `json:"undoToken,omitempty"`
	Deadline time.Time    `json:"undoDeadline,omitempty"`
}

// Archive hides a prompt and opens an undo window for it.
func (s *Session) Archive(id string) (ArchiveTicket, error) {
	res, err := mutate.Archive(s.db, id)
	if err != nil {
		return ArchiveTicket{}, s.fail("prompt.archive", err, "prompt_id", id)
	}
	t := ArchiveTicket{Prompt: *res.Prompt}
	if !res.Changed {
		return t, nil
	}
	t.Token = uuid.NewString()
	t.Deadline = s.undo.Put(t.Token, res.Undo)
	s.saveUndo()
	return t, s.commit("prompt.archive", "prompt_id", id, "undo_token", t.Token)
}

// Undo reverts the archive identified by token, restoring the archived and recent sets
// exactly as they were.
func (s *Session) Undo(token string) (model.Prompt, error) {
	snap, err := s.undo.Take(token)
	s.saveUndo()
	if err != nil {
		return model.Prompt{}, s.fail("prompt.undo", err, "undo_token", token)
	}
	if err := mutate.UndoArchive(s.db, snap); err != nil {
		return model.Prompt{}, s.fail("prompt.undo", err, "prompt_id", snap.PromptID)
	}
	p, _ := s.db.FindPrompt(snap.PromptID)
	return *p, s.commit("prompt.undo", "prompt_id", snap.PromptID)
}

// UndoLatest reverts the most recent archive still in its window.
func (s *Session) UndoLatest() (model.Prompt, error) {
	live := s.undo.Live()
	if len(live) == 0 {
		return s.Undo("")
	}
	return s.Undo(live[len(live)-1].Token)
}

// PendingUndo lists archives that can still be undone, soonest expiry first.
func (s *Session) PendingUndo() []ArchiveTicket {
	var out []ArchiveTicket
	for _, e := range s.undo.Live() {
		t := ArchiveTicket{Token: e.Token, Deadline: e.Deadline}
		if p, ok := s.db.FindPrompt(e.Value.PromptID); ok {
			t.Prompt = *p
		}
		out = append(out, t)
	}
	return out
}

func (s *Session) Restore(id string) (model.Prompt, error) {
	res, err := mutate.Restore(s.db, id)
	if err != nil {
		return model.Prompt{}, s.fail("prompt.restore", err, "prompt_id", id)
	}
	if !res.Changed {
		return *res.Prompt, nil
	}
	return *res.Prompt, s.commit("prompt.restore", "prompt_id", id)
}

// DeletePermanently removes an archived prompt. It needs confirmed.
func (s *Session) DeletePermanently(id string, confirmed bool) error {
	if err := mutate.PermanentlyDelete(s.db, id, confirmed); err != nil {
		return s.fail("prompt.delete", err, "prompt_id", id)
	}
	return s.commit("prompt.delete", "prompt_id", id)
}

func (s *Session) Archived() []model.Prompt {
	return mutate.ArchivedPrompts(s.db)
}
