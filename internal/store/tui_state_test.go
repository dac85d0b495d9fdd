package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTUIState_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := Store{Dir: dir}

	// Missing file => default state.
	st0, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st0 == nil || st0.Version != 1 {
		t.Fatalf("expected default Version=1; got %#v", st0)
	}

	want := &TUIState{
		Version:           1,
		Pane:              "prompts",
		SelectedProjectID: "proj-1",
		SelectedPromptID:  "pr-1",
		FavoritesOnly:     true,
		ShowPreview:       true,
	}
	if err := s.SaveTUIState(want); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}
	got, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", want, got)
	}
}

func TestTUIState_CorruptFileIsTreatedAsMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, tuiStateFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	st, err := (Store{Dir: dir}).LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.Version != 1 || st.SelectedProjectID != "" {
		t.Fatalf("expected default state, got %#v", st)
	}
}

func TestTUIState_UnknownPaneIsDropped(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}
	if err := s.SaveTUIState(&TUIState{Pane: "outline", SelectedPromptID: "pr-1"}); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}
	st, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.Pane != "" || st.SelectedPromptID != "pr-1" || st.Version != 1 {
		t.Fatalf("unexpected state: %#v", st)
	}
}
