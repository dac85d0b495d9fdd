package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/schedule"
)

// UndoFileName is the file, inside the store directory, that carries pending undos from
// one CLI invocation to the next.
const UndoFileName = "undo.json"

type undoFile struct {
	Entries []schedule.UndoEntry[mutate.ArchiveSnapshot] `json:"entries"`
}

// loadUndo is best effort; a missing or corrupt file means nothing can be undone.
func (s *Session) loadUndo() {
	if s.undoFile == "" {
		return
	}
	b, err := os.ReadFile(s.undoFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("read undo file", "path", s.undoFile, "err", err)
		}
		return
	}
	var f undoFile
	if err := json.Unmarshal(b, &f); err != nil {
		s.log.Warn("decode undo file", "path", s.undoFile, "err", err)
		return
	}
	s.undo.Load(f.Entries)
}

func (s *Session) saveUndo() {
	if s.undoFile == "" {
		return
	}
	s.undo.Sweep()
	b, err := json.MarshalIndent(undoFile{Entries: s.undo.Live()}, "", "  ")
	if err != nil {
		s.log.Warn("encode undo file", "err", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.undoFile), 0o755); err != nil {
		s.log.Warn("write undo file", "path", s.undoFile, "err", err)
		return
	}
	tmp := s.undoFile + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		s.log.Warn("write undo file", "path", s.undoFile, "err", err)
		return
	}
	if err := os.Rename(tmp, s.undoFile); err != nil {
		s.log.Warn("write undo file", "path", s.undoFile, "err", err)
	}
}
