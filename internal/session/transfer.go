package session

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/AstralShardio/pastemyprompt/internal/store"
	"github.com/AstralShardio/pastemyprompt/internal/transfer"
)

type ImportKind string

const (
	ImportJSON ImportKind = "json"
	ImportCSV  ImportKind = "csv"
	ImportText ImportKind = "text"
)

// ParseImportKind accepts a kind name or a file extension.
func ParseImportKind(s string) (ImportKind, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "json":
		return ImportJSON, nil
	case "csv":
		return ImportCSV, nil
	case "text", "txt", "md":
		return ImportText, nil
	}
	return "", fmt.Errorf("unknown import format %q (use json, csv or text)", s)
}

type ImportOutcome struct {
	transfer.Result
	// Backup is the snapshot written before the import, when the persister supports it.
	Backup string `json:"backup,omitempty"`
}

// Import parses data into a copy of the state. Only a successful parse is committed, and
// the previous state is backed up first.
func (s *Session) Import(kind ImportKind, data []byte) (ImportOutcome, error) {
	work := s.db.Clone()
	now := s.now()
	var (
		res transfer.Result
		err error
	)
	switch kind {
	case ImportJSON:
		res, err = transfer.ImportJSON(work, data, now)
	case ImportCSV:
		res, err = transfer.ImportCSV(work, bytes.NewReader(data), now)
	case ImportText:
		res, err = transfer.ImportText(work, string(data), now)
	default:
		err = fmt.Errorf("unknown import format %q", kind)
	}
	if err != nil {
		return ImportOutcome{}, s.fail("import", err, "kind", string(kind))
	}

	out := ImportOutcome{Result: res}
	if b, ok := s.persist.(Backuper); ok {
		path, err := b.WriteBackup(s.db, now)
		if err != nil {
			return ImportOutcome{}, s.fail("import", store.PersistenceError{Op: "backup", Err: err})
		}
		out.Backup = path
	}
	s.db = work
	return out, s.commit("import", "kind", string(kind), "added", res.PromptsAdded, "merged", res.PromptsMerged)
}

func (s *Session) Export() transfer.Document {
	return transfer.Export(s.db, s.now())
}

// RestoreBackup replaces the state with a backup file. The current state is backed up
// first.
func (s *Session) RestoreBackup(path string) (ImportOutcome, error) {
	db, err := store.ReadBackup(path)
	if err != nil {
		return ImportOutcome{}, s.fail("backup.restore", err, "path", path)
	}
	store.Migrate(db, s.now())
	var out ImportOutcome
	if b, ok := s.persist.(Backuper); ok {
		p, err := b.WriteBackup(s.db, s.now())
		if err != nil {
			return ImportOutcome{}, s.fail("backup.restore", store.PersistenceError{Op: "backup", Err: err})
		}
		out.Backup = p
	}
	out.PromptsAdded = len(db.Prompts)
	s.db = db
	return out, s.commit("backup.restore", "path", path)
}
