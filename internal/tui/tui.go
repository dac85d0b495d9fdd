// Package tui is the interactive terminal UI: a project tree next to the prompt list,
// with search, a command palette, variable filling and archive undo.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AstralShardio/pastemyprompt/internal/session"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

// StateStore keeps the last screen between launches. store.Store implements it.
type StateStore interface {
	LoadTUIState() (*store.TUIState, error)
	SaveTUIState(st *store.TUIState) error
}

type Options struct {
	Store          StateStore
	SearchDebounce time.Duration
}

func Run(s *session.Session, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(s.DB().DarkMode)
	m := newModel(s, opts)
	defer m.debounce.Stop()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
