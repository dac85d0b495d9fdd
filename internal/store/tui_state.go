package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const tuiStateFileName = "tui_state.json"

// TUIState is what the TUI restores on relaunch. Missing or unreadable state yields the
// defaults, never an error that blocks startup.
type TUIState struct {
	Version int `json:"version"`

	// Pane is "projects" or "prompts"; anything else is dropped on load.
	Pane string `json:"pane,omitempty"`

	SelectedProjectID string `json:"selectedProjectId,omitempty"`
	SelectedPromptID  string `json:"selectedPromptId,omitempty"`

	FavoritesOnly bool `json:"favoritesOnly,omitempty"`
	ShowPreview   bool `json:"showPreview,omitempty"`
}

func (s Store) LoadTUIState() (*TUIState, error) {
	st := &TUIState{Version: 1}
	if s.Dir == "" {
		return st, nil
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, tuiStateFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return st, nil
	case err != nil:
		return nil, err
	}
	if json.Unmarshal(b, st) != nil {
		return &TUIState{Version: 1}, nil
	}
	if st.Pane != "projects" && st.Pane != "prompts" {
		st.Pane = ""
	}
	st.Version = max(st.Version, 1)
	return st, nil
}

func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil || s.Dir == "" {
		return nil
	}
	out := *st
	out.Version = max(out.Version, 1)
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.Dir, tuiStateFileName), b)
}
