// Package session owns the in-memory state for one run of the CLI or TUI. Every user
// action goes through a Session method, which applies the mutation in memory and then
// saves the whole state. Session is not safe for concurrent use.
package session

import (
	"errors"
	"log/slog"
	"time"

	"github.com/AstralShardio/pastemyprompt/internal/clipboard"
	"github.com/AstralShardio/pastemyprompt/internal/logging"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/schedule"
	"github.com/AstralShardio/pastemyprompt/internal/similar"
	"github.com/AstralShardio/pastemyprompt/internal/store"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
)

// Persister loads and saves the whole state. store.Store implements it.
type Persister interface {
	Load() (*store.DB, error)
	Save(db *store.DB) error
}

// Backuper is implemented by persisters that can snapshot state before an import.
type Backuper interface {
	WriteBackup(db *store.DB, now time.Time) (string, error)
}

type Settings struct {
	Threshold    float64
	UndoWindow   time.Duration
	EdgeFraction float64
	// Pro grants the entitlement on top of the stored flag.
	Pro bool
}

type Options struct {
	Persister Persister
	Clipboard clipboard.Clipboard
	Logger    *slog.Logger
	Now       func() time.Time
	Settings  Settings
	// UndoFile keeps pending archive undos across processes. Empty keeps them in memory.
	UndoFile string
}

type Session struct {
	db       *store.DB
	persist  Persister
	clip     clipboard.Clipboard
	log      *slog.Logger
	now      func() time.Time
	settings Settings
	undo     *schedule.UndoWindow[mutate.ArchiveSnapshot]
	undoFile string
}

// Open loads state through opts.Persister and returns a ready session.
func Open(opts Options) (*Session, error) {
	if opts.Persister == nil {
		return nil, errors.New("session: no persister")
	}
	s := &Session{
		persist:  opts.Persister,
		clip:     opts.Clipboard,
		log:      opts.Logger,
		now:      opts.Now,
		settings: opts.Settings,
		undoFile: opts.UndoFile,
	}
	if s.clip == nil {
		s.clip = clipboard.System{}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.settings.Threshold <= 0 {
		s.settings.Threshold = similar.DefaultThreshold
	}
	if s.settings.EdgeFraction <= 0 {
		s.settings.EdgeFraction = tree.DefaultEdgeFraction
	}
	s.undo = schedule.NewUndoWindow[mutate.ArchiveSnapshot](s.settings.UndoWindow, s.now)

	db, err := s.persist.Load()
	if err != nil {
		return nil, err
	}
	s.db = db
	s.loadUndo()
	return s, nil
}

// DB exposes the live state for read-only derivations. Callers must not mutate it.
func (s *Session) DB() *store.DB { return s.db }

func (s *Session) Now() time.Time { return s.now() }

func (s *Session) Settings() Settings { return s.settings }

// Pro reports the pro entitlement: configured or stored.
func (s *Session) Pro() bool { return s.settings.Pro || s.db.Pro }

// Reload replaces the in-memory state with what the persister holds.
func (s *Session) Reload() error {
	db, err := s.persist.Load()
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// commit saves the whole state. On failure the in-memory state stays as is and a
// PersistenceError is returned.
func (s *Session) commit(op string, attrs ...any) error {
	if err := s.persist.Save(s.db); err != nil {
		var pe store.PersistenceError
		if !errors.As(err, &pe) {
			err = store.PersistenceError{Op: "save", Err: err}
		}
		s.log.Error("save failed", append([]any{"op", op, "err", err}, attrs...)...)
		return err
	}
	s.log.Debug("saved", append([]any{"op", op}, attrs...)...)
	return nil
}

func (s *Session) fail(op string, err error, attrs ...any) error {
	s.log.Warn("action rejected", append([]any{"op", op, "err", err}, attrs...)...)
	return err
}
