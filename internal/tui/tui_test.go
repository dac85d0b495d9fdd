package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/AstralShardio/pastemyprompt/internal/clipboard"
	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/session"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

type memPersister struct{ db *store.DB }

func (m *memPersister) Load() (*store.DB, error) { return m.db.Clone(), nil }
func (m *memPersister) Save(db *store.DB) error  { m.db = db.Clone(); return nil }

type memStates struct{ st *store.TUIState }

func (m *memStates) LoadTUIState() (*store.TUIState, error) {
	if m.st == nil {
		return &store.TUIState{Version: 1}, nil
	}
	cp := *m.st
	return &cp, nil
}

func (m *memStates) SaveTUIState(st *store.TUIState) error {
	cp := *st
	m.st = &cp
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type harness struct {
	m      appModel
	s      *session.Session
	clip   *clipboard.Memory
	clock  *clock
	states *memStates
}

func fixture() *store.DB {
	db := store.Empty()
	db.Projects = append(store.BuiltinProjects(),
		model.Project{ID: "c1", Name: "Clients"},
		model.Project{ID: "c2", Name: "Acme", ParentID: model.StrPtr("c1")},
	)
	db.Prompts = []model.Prompt{
		{ID: "p1", ProjectID: "general", Title: "Cold email", Prompt: "Write a cold email to {{name}} about {{product}}", Tags: []string{"Sales"}, LastUsed: 300, CreatedAt: 1, Version: 1},
		{ID: "p2", ProjectID: "blogs", Title: "Blog intro", Prompt: "Start a blog post about cats", Tags: []string{"Blog"}, LastUsed: 200, CreatedAt: 2, Version: 1},
		{ID: "p3", ProjectID: "c2", Title: "Thread", Prompt: "Begin a viral thread on Go", LastUsed: 100, CreatedAt: 3, Version: 1},
	}
	db.Recent = []string{"p2", "p1", "p3"}
	return db
}

func newHarness(t *testing.T, db *store.DB, states *memStates) *harness {
	t.Helper()
	if states == nil {
		states = &memStates{}
	}
	h := &harness{clip: &clipboard.Memory{}, clock: &clock{t: time.UnixMilli(1_700_000_000_000)}, states: states}
	s, err := session.Open(session.Options{Persister: &memPersister{db: db}, Clipboard: h.clip, Now: h.clock.now})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	h.s = s
	h.m = newModel(s, Options{Store: states, SearchDebounce: time.Millisecond})
	h.send(tea.WindowSizeMsg{Width: 110, Height: 32})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(appModel)
	return cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		h.send(keyMsg(k))
	}
}

func (h *harness) selectedID() string {
	p, _ := h.m.selectedPrompt()
	return p.ID
}

func (h *harness) visibleIDs() []string {
	var out []string
	for _, it := range h.m.prompts.Items() {
		out = append(out, it.(promptItem).prompt.ID)
	}
	return out
}

func TestCopyPromptWithoutVariables(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	if got := h.selectedID(); got != "p1" {
		t.Fatalf("expected most recently used prompt first; got %s", got)
	}
	h.press("down", "c")

	if got, _ := h.clip.ReadAll(); got != "Start a blog post about cats" {
		t.Fatalf("clipboard: %q", got)
	}
	if !strings.Contains(h.m.notice.text, "Copied") {
		t.Fatalf("notice: %q", h.m.notice.text)
	}
	if h.s.DB().Recent[0] != "p2" || h.selectedID() != "p2" {
		t.Fatalf("expected p2 to stay selected and lead recent; recent=%v selected=%s", h.s.DB().Recent, h.selectedID())
	}
}

func TestCopyFillsVariables(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	h.press("enter")
	if h.m.mode != modeVars || len(h.m.varInputs) != 2 {
		t.Fatalf("expected the variables form; mode=%v inputs=%d", h.m.mode, len(h.m.varInputs))
	}
	h.press("Ada", "enter", "enter")
	if h.m.mode != modeBrowse {
		t.Fatalf("expected to return to browse mode")
	}
	got, _ := h.clip.ReadAll()
	if got != "Write a cold email to Ada about [product]" {
		t.Fatalf("clipboard: %q", got)
	}
	if !strings.Contains(h.m.notice.text, "unfilled: product") {
		t.Fatalf("notice: %q", h.m.notice.text)
	}
}

func TestCopyRecentByNumber(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	h.press("1")
	if got, _ := h.clip.ReadAll(); got != "Start a blog post about cats" {
		t.Fatalf("expected recent #1 (p2) on the clipboard; got %q", got)
	}
	h.s.DB().Recent = h.s.DB().Recent[:1]
	h.press("3")
	if h.m.notice.level != session.LevelWarn {
		t.Fatalf("expected a warning for a missing recent slot; got %+v", h.m.notice)
	}
}

func TestArchiveUndoWithinWindowAndAfterExpiry(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	h.press("a")
	for _, id := range h.visibleIDs() {
		if id == "p1" {
			t.Fatalf("archived prompt still listed")
		}
	}
	if h.m.undoUntil.IsZero() {
		t.Fatalf("expected an undo deadline")
	}
	h.press("u")
	if h.selectedID() != "p1" || !strings.Contains(h.m.notice.text, "Restored") {
		t.Fatalf("undo: selected=%s notice=%q", h.selectedID(), h.m.notice.text)
	}

	h.press("a")
	h.clock.t = h.clock.t.Add(6 * time.Second)
	h.send(tickMsg(h.clock.t))
	if !h.m.undoUntil.IsZero() || h.m.notice.text != "" {
		t.Fatalf("expected the undo notice to clear after the window")
	}
	h.press("u")
	if !strings.Contains(h.m.notice.text, "no longer available") {
		t.Fatalf("notice: %q", h.m.notice.text)
	}
}

func TestSearchIsDebounced(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	h.press("/", "blog")
	if len(h.visibleIDs()) != 3 {
		t.Fatalf("query must not apply before the debounce fires")
	}
	select {
	case q := <-h.m.queries:
		h.send(queryMsg(q))
	case <-time.After(2 * time.Second):
		t.Fatalf("debounced query never arrived")
	}
	if ids := h.visibleIDs(); len(ids) != 1 || ids[0] != "p2" {
		t.Fatalf("expected only p2; got %v", ids)
	}
	h.press("esc")
	if h.m.query != "" || len(h.visibleIDs()) != 3 {
		t.Fatalf("esc should clear the search")
	}
}

func TestSearchEnterAppliesImmediately(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	h.press("/", "viral", "enter")
	if ids := h.visibleIDs(); len(ids) != 1 || ids[0] != "p3" {
		t.Fatalf("expected only p3; got %v", ids)
	}
}

func TestProjectTreeCollapseAndFilter(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	h.press("tab")
	if h.m.pane != paneProjects || len(h.m.rows) != 5 {
		t.Fatalf("expected 5 visible project rows; got %d", len(h.m.rows))
	}
	h.press("down", "down", "down", "down")
	if h.m.projectRowID() != "c1" {
		t.Fatalf("cursor on %q", h.m.projectRowID())
	}
	h.press("left")
	if len(h.m.rows) != 4 || h.s.DB().Expanded["c1"] {
		t.Fatalf("expected Clients collapsed; rows=%d expanded=%v", len(h.m.rows), h.s.DB().Expanded)
	}
	h.press("enter")
	if h.m.project != "c1" || h.m.pane != panePrompts {
		t.Fatalf("expected the Clients filter and prompt pane")
	}
	if ids := h.visibleIDs(); len(ids) != 0 {
		t.Fatalf("the current project filter is exact; got %v", ids)
	}
}

func TestPaletteJumpsAndCopies(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	h.press("ctrl+k", "thread")
	if len(h.m.paletteResults) != 1 {
		t.Fatalf("palette results: %v", h.m.paletteResults)
	}
	h.press("enter")
	if got, _ := h.clip.ReadAll(); got != "Begin a viral thread on Go" {
		t.Fatalf("clipboard: %q", got)
	}
	if h.selectedID() != "p3" {
		t.Fatalf("expected the palette pick to be selected")
	}
}

func TestWelcomeCompletesOnboarding(t *testing.T) {
	db := fixture()
	db.FirstTimeUser = true
	h := newHarness(t, db, nil)
	if h.m.mode != modeWelcome || !strings.Contains(h.m.View(), "Welcome") {
		t.Fatalf("expected the welcome screen")
	}
	h.press("x")
	if h.m.mode != modeBrowse || h.s.DB().FirstTimeUser {
		t.Fatalf("expected onboarding completed")
	}
}

func TestQuitSavesAndRestoresState(t *testing.T) {
	states := &memStates{}
	h := newHarness(t, fixture(), states)
	h.press("down", "v", "q")
	if states.st == nil || states.st.SelectedPromptID != "p2" || states.st.ShowPreview {
		t.Fatalf("saved state: %+v", states.st)
	}

	h2 := newHarness(t, fixture(), states)
	if h2.selectedID() != "p2" || h2.m.showPreview {
		t.Fatalf("expected selection and preview toggle restored")
	}
}

func TestQuickAddAsksBeforeSavingDuplicate(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	_ = h.clip.WriteAll("Start a blog post about cats!")
	h.press("n")
	if !h.m.confirmQuickAdd || len(h.s.DB().Prompts) != 3 {
		t.Fatalf("expected the duplicate warning first")
	}
	h.press("n")
	if len(h.s.DB().Prompts) != 4 {
		t.Fatalf("expected the second n to save anyway")
	}
}

func TestViewFitsWidth(t *testing.T) {
	h := newHarness(t, fixture(), nil)
	out := h.m.View()
	if !strings.Contains(out, "PasteMyPrompt") || !strings.Contains(out, "Clients") {
		t.Fatalf("view:\n%s", out)
	}
	for i, ln := range strings.Split(out, "\n") {
		if w := xansi.StringWidth(ln); w > 110 {
			t.Fatalf("line %d is %d wide", i, w)
		}
	}
}

func TestFitBlock(t *testing.T) {
	got := fitBlock("abcdef\nxy", 4, 3)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("height: %d", len(lines))
	}
	for _, ln := range lines {
		if xansi.StringWidth(ln) != 4 {
			t.Fatalf("width of %q", ln)
		}
	}
	if lines[0] != "abc…" {
		t.Fatalf("truncation: %q", lines[0])
	}
}
