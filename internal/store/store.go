package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/AstralShardio/pastemyprompt/internal/model"
)

// DirName is the store directory looked up from the working directory and the home dir.
const DirName = ".pastemyprompt"

// Persisted keys. Each key holds one JSON value in the state table.
const (
	KeyProjects      = "projects"
	KeyPrompts       = "prompts"
	KeyRecent        = "recent"
	KeyFavorites     = "favorites"
	KeyPro           = "pro"
	KeyDarkMode      = "darkMode"
	KeySortBy        = "sortBy"
	KeyFirstTimeUser = "firstTimeUser"
	KeyArchived      = "archivedPrompts"
	KeyHistory       = "promptHistory"
	KeyTemplates     = "templates"
	KeyExpanded      = "expandedProjects"
)

// AllKeys lists every persisted key in load order.
func AllKeys() []string {
	return []string{
		KeyProjects, KeyPrompts, KeyRecent, KeyFavorites, KeyPro, KeyDarkMode,
		KeySortBy, KeyFirstTimeUser, KeyArchived, KeyHistory, KeyTemplates, KeyExpanded,
	}
}

// DB is the whole in-memory state. Slices keep their persisted order; project order is
// the order of Projects.
type DB struct {
	Projects      []model.Project                 `json:"projects"`
	Prompts       []model.Prompt                  `json:"prompts"`
	Recent        []string                        `json:"recent"`
	Favorites     []string                        `json:"favorites"`
	Pro           bool                            `json:"pro"`
	DarkMode      bool                            `json:"darkMode"`
	SortBy        model.SortKey                   `json:"sortBy"`
	FirstTimeUser bool                            `json:"firstTimeUser"`
	Archived      []string                        `json:"archivedPrompts"`
	History       map[string][]model.HistoryEntry `json:"promptHistory"`
	Templates     []model.Template                `json:"templates"`
	Expanded      map[string]bool                 `json:"expandedProjects"`
}

type Store struct {
	Dir string
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, DirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the nearest .pastemyprompt directory above the working directory,
// falling back to ~/.pastemyprompt.
func DefaultDir() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		if found, ok := DiscoverDir(cwd); ok {
			return found, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

// Load reads the full state. A brand-new store is seeded and persisted once.
func (s Store) Load() (*DB, error) {
	return s.LoadSQLite(context.Background())
}

func (s Store) Save(db *DB) error {
	return s.SaveSQLite(context.Background(), db)
}

// Empty returns a state with every collection initialized and no data.
func Empty() *DB {
	return &DB{
		Projects:  []model.Project{},
		Prompts:   []model.Prompt{},
		Recent:    []string{},
		Favorites: []string{},
		SortBy:    model.SortLastUsed,
		Archived:  []string{},
		History:   map[string][]model.HistoryEntry{},
		Templates: []model.Template{},
		Expanded:  map[string]bool{},
	}
}

// Clone returns a deep copy of db.
func (db *DB) Clone() *DB {
	b, err := json.Marshal(db)
	if err != nil {
		panic(err)
	}
	out := Empty()
	if err := json.Unmarshal(b, out); err != nil {
		panic(err)
	}
	out.normalize()
	return out
}

// values maps each persisted key to its current value.
func (db *DB) values() map[string]any {
	return map[string]any{
		KeyProjects:      db.Projects,
		KeyPrompts:       db.Prompts,
		KeyRecent:        db.Recent,
		KeyFavorites:     db.Favorites,
		KeyPro:           db.Pro,
		KeyDarkMode:      db.DarkMode,
		KeySortBy:        db.SortBy,
		KeyFirstTimeUser: db.FirstTimeUser,
		KeyArchived:      db.Archived,
		KeyHistory:       db.History,
		KeyTemplates:     db.Templates,
		KeyExpanded:      db.Expanded,
	}
}

// assign decodes raw into the field behind key. Unknown keys are ignored.
func (db *DB) assign(key string, raw []byte) error {
	var target any
	switch key {
	case KeyProjects:
		target = &db.Projects
	case KeyPrompts:
		target = &db.Prompts
	case KeyRecent:
		target = &db.Recent
	case KeyFavorites:
		target = &db.Favorites
	case KeyPro:
		target = &db.Pro
	case KeyDarkMode:
		target = &db.DarkMode
	case KeySortBy:
		target = &db.SortBy
	case KeyFirstTimeUser:
		target = &db.FirstTimeUser
	case KeyArchived:
		target = &db.Archived
	case KeyHistory:
		target = &db.History
	case KeyTemplates:
		target = &db.Templates
	case KeyExpanded:
		target = &db.Expanded
	default:
		return nil
	}
	return json.Unmarshal(raw, target)
}

// normalize replaces nil collections with empty ones so JSON output never carries null.
func (db *DB) normalize() {
	if db.Projects == nil {
		db.Projects = []model.Project{}
	}
	if db.Prompts == nil {
		db.Prompts = []model.Prompt{}
	}
	if db.Recent == nil {
		db.Recent = []string{}
	}
	if db.Favorites == nil {
		db.Favorites = []string{}
	}
	if db.Archived == nil {
		db.Archived = []string{}
	}
	if db.History == nil {
		db.History = map[string][]model.HistoryEntry{}
	}
	if db.Templates == nil {
		db.Templates = []model.Template{}
	}
	if db.Expanded == nil {
		db.Expanded = map[string]bool{}
	}
	if sk, ok := model.ParseSortKey(string(db.SortBy)); ok {
		db.SortBy = sk
	} else {
		db.SortBy = model.SortLastUsed
	}
	for i := range db.Prompts {
		if db.Prompts[i].Tags == nil {
			db.Prompts[i].Tags = []string{}
		}
	}
}

func (db *DB) FindProject(id string) (*model.Project, bool) {
	for i := range db.Projects {
		if db.Projects[i].ID == id {
			return &db.Projects[i], true
		}
	}
	return nil, false
}

// FindProjectByName matches case-insensitively.
func (db *DB) FindProjectByName(name string) (*model.Project, bool) {
	name = strings.TrimSpace(name)
	for i := range db.Projects {
		if strings.EqualFold(db.Projects[i].Name, name) {
			return &db.Projects[i], true
		}
	}
	return nil, false
}

func (db *DB) FindPrompt(id string) (*model.Prompt, bool) {
	for i := range db.Prompts {
		if db.Prompts[i].ID == id {
			return &db.Prompts[i], true
		}
	}
	return nil, false
}

func (db *DB) FindTemplate(id string) (*model.Template, bool) {
	for i := range db.Templates {
		if db.Templates[i].ID == id {
			return &db.Templates[i], true
		}
	}
	return nil, false
}

func (db *DB) IsArchived(id string) bool  { return contains(db.Archived, id) }
func (db *DB) IsFavorite(id string) bool  { return contains(db.Favorites, id) }
func (db *DB) IsRecent(id string) bool    { return contains(db.Recent, id) }
func (db *DB) ProjectExists(id string) bool {
	_, ok := db.FindProject(id)
	return ok
}

// CustomProjectCount counts projects that are not locked built-ins.
func (db *DB) CustomProjectCount() int {
	n := 0
	for _, p := range db.Projects {
		if !p.Locked {
			n++
		}
	}
	return n
}

// RemovePrompt deletes the prompt and scrubs its id from every set and from history.
func (db *DB) RemovePrompt(id string) bool {
	idx := -1
	for i := range db.Prompts {
		if db.Prompts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	db.Prompts = append(db.Prompts[:idx], db.Prompts[idx+1:]...)
	db.Archived = Without(db.Archived, id)
	db.Recent = Without(db.Recent, id)
	db.Favorites = Without(db.Favorites, id)
	delete(db.History, id)
	return true
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns ids minus every occurrence of id, as a new slice.
func Without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
