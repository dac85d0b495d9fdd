package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/schedule"
	"github.com/AstralShardio/pastemyprompt/internal/session"
	"github.com/AstralShardio/pastemyprompt/internal/store"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
	"github.com/AstralShardio/pastemyprompt/internal/view"
)

type pane int

const (
	paneProjects pane = iota
	panePrompts
)

func (p pane) String() string {
	if p == paneProjects {
		return "projects"
	}
	return "prompts"
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modePalette
	modeVars
	modeWelcome
)

// queryMsg carries a debounced search query.
type queryMsg string

// tickMsg drives the undo countdown.
type tickMsg time.Time

type notice struct {
	text  string
	level session.Level
}

type appModel struct {
	s      *session.Session
	states StateStore
	keys   keyMap
	help   help.Model

	width  int
	height int

	pane pane
	mode mode

	// rows are the visible project rows; projectIdx 0 is the "All prompts" row.
	rows       []tree.Row
	projectIdx int
	project    string

	prompts       list.Model
	favoritesOnly bool
	showPreview   bool

	search   textinput.Model
	query    string
	queries  chan string
	debounce *schedule.Debouncer[string]

	palette        textinput.Model
	paletteResults []model.Prompt
	paletteIdx     int

	varsFor   string
	varNames  []string
	varInputs []textinput.Model
	varIdx    int

	notice          notice
	undoUntil       time.Time
	confirmQuickAdd bool
}

func newModel(s *session.Session, opts Options) appModel {
	m := appModel{
		s:           s,
		states:      opts.Store,
		keys:        defaultKeyMap(),
		help:        help.New(),
		pane:        panePrompts,
		showPreview: true,
		queries:     make(chan string, 1),
	}
	queries := m.queries
	m.debounce = schedule.NewDebouncer(opts.SearchDebounce, func(q string) { sendLatest(queries, q) })

	m.search = textinput.New()
	m.search.Prompt = "/ "
	m.search.Placeholder = "search titles, prompts and tags"
	m.palette = textinput.New()
	m.palette.Prompt = "> "
	m.palette.Placeholder = "jump to a prompt"

	m.prompts = list.New(nil, promptDelegate{}, 0, 0)
	m.prompts.SetShowTitle(false)
	m.prompts.SetShowStatusBar(false)
	m.prompts.SetShowHelp(false)
	m.prompts.SetShowPagination(false)
	m.prompts.SetFilteringEnabled(false)
	m.prompts.KeyMap.Quit.SetEnabled(false)
	m.prompts.KeyMap.ForceQuit.SetEnabled(false)

	selectID := ""
	if m.states != nil {
		if st, err := m.states.LoadTUIState(); err == nil && st != nil && st.Pane != "" {
			if st.Pane == paneProjects.String() {
				m.pane = paneProjects
			}
			m.project = st.SelectedProjectID
			m.favoritesOnly = st.FavoritesOnly
			m.showPreview = st.ShowPreview
			selectID = st.SelectedPromptID
		}
	}
	if s.DB().FirstTimeUser {
		m.mode = modeWelcome
	}
	m.refresh()
	m.selectProjectRow()
	if selectID != "" {
		m.selectPrompt(selectID)
	}
	return m
}

// sendLatest replaces whatever is waiting in ch with q.
func sendLatest(ch chan string, q string) {
	for {
		select {
		case ch <- q:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

func waitForQuery(ch chan string) tea.Cmd {
	return func() tea.Msg { return queryMsg(<-ch) }
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m appModel) Init() tea.Cmd {
	return waitForQuery(m.queries)
}

// refresh rebuilds the project rows and the prompt list from the session, keeping the
// selected prompt when it is still visible.
func (m *appModel) refresh() {
	m.rows = m.s.Rows()
	if m.project != "" && !m.s.DB().ProjectExists(m.project) {
		m.project = ""
	}
	if m.projectIdx > len(m.rows) {
		m.projectIdx = len(m.rows)
	}

	prev, _ := m.selectedPrompt()
	ps := m.s.List(view.Filters{
		FavoritesOnly:  m.favoritesOnly,
		CurrentProject: m.project,
		Query:          m.query,
	})
	m.prompts.SetItems(promptItems(ps, m.s.DB().IsFavorite))
	if prev.ID != "" {
		m.selectPrompt(prev.ID)
	}
}

func (m *appModel) selectPrompt(id string) bool {
	for i, it := range m.prompts.Items() {
		if pi, ok := it.(promptItem); ok && pi.prompt.ID == id {
			m.prompts.Select(i)
			return true
		}
	}
	return false
}

// selectProjectRow moves the project cursor onto the current project filter.
func (m *appModel) selectProjectRow() {
	m.projectIdx = 0
	for i, r := range m.rows {
		if r.Node.Project.ID == m.project {
			m.projectIdx = i + 1
			return
		}
	}
}

func (m appModel) selectedPrompt() (model.Prompt, bool) {
	it, ok := m.prompts.SelectedItem().(promptItem)
	if !ok {
		return model.Prompt{}, false
	}
	return it.prompt, true
}

// projectRowID returns the project id under the cursor, or "" for "All prompts".
func (m appModel) projectRowID() string {
	if m.projectIdx <= 0 || m.projectIdx > len(m.rows) {
		return ""
	}
	return m.rows[m.projectIdx-1].Node.Project.ID
}

func (m appModel) projectName(id string) string {
	if id == "" {
		return "All prompts"
	}
	if p, ok := m.s.DB().FindProject(id); ok {
		return p.Name
	}
	return id
}

// report turns an action result into the status line.
func (m *appModel) report(err error, ok string) {
	if err != nil {
		n := session.Describe(err)
		m.notice = notice{text: n.Message, level: n.Level}
		return
	}
	m.notice = notice{text: ok, level: session.LevelInfo}
}

func (m appModel) saveState() {
	if m.states == nil {
		return
	}
	st := &store.TUIState{
		Version:           1,
		Pane:              m.pane.String(),
		SelectedProjectID: m.project,
		FavoritesOnly:     m.favoritesOnly,
		ShowPreview:       m.showPreview,
	}
	if p, ok := m.selectedPrompt(); ok {
		st.SelectedPromptID = p.ID
	}
	_ = m.states.SaveTUIState(st)
}

func quote(s string) string {
	return "“" + strings.TrimSpace(s) + "”"
}
