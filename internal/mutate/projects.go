package mutate

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
)

// MaxFreeCustomProjects is how many unlocked projects a user without the pro
// entitlement may create.
const MaxFreeCustomProjects = 3

const maxProjectNameLength = 50

type ProjectInput struct {
	Name        string `json:"name"`
	ParentID    string `json:"parentId"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type ProjectResult struct {
	Project *model.Project
	Changed bool
}

func validateProjectName(name string) error {
	return validationFromOzzo(validation.Errors{
		"name": validation.Validate(name,
			validation.Required.Error("project name is required"),
			validation.RuneLength(1, maxProjectNameLength),
		),
	}.Filter())
}

func ensureUniqueName(db *store.DB, name, exceptID string) error {
	if p, ok := db.FindProjectByName(name); ok && p.ID != exceptID {
		return ValidationError{Field: "name", Message: "a project named " + p.Name + " already exists"}
	}
	return nil
}

// CreateProject appends a new unlocked project. Names are unique case-insensitively.
// Without pro, at most MaxFreeCustomProjects custom projects may exist.
func CreateProject(db *store.DB, in ProjectInput, pro bool) (ProjectResult, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateProjectName(name); err != nil {
		return ProjectResult{}, err
	}
	if err := ensureUniqueName(db, name, ""); err != nil {
		return ProjectResult{}, err
	}
	if !pro && db.CustomProjectCount() >= MaxFreeCustomProjects {
		return ProjectResult{}, ValidationError{Field: "project", Message: "the free plan allows 3 custom projects; upgrade to pro for more"}
	}
	parentID := strings.TrimSpace(in.ParentID)
	if parentID != "" {
		parent, ok := db.FindProject(parentID)
		if !ok {
			return ProjectResult{}, NotFoundError{Kind: "project", ID: parentID}
		}
		if parent.Locked {
			return ProjectResult{}, tree.LockedTargetError{TargetID: parentID, ProjectID: name}
		}
	}
	id, err := store.NewID(db, store.ProjectIDPrefix)
	if err != nil {
		return ProjectResult{}, err
	}
	p := model.Project{
		ID:          id,
		Name:        name,
		Color:       strings.TrimSpace(in.Color),
		Icon:        strings.TrimSpace(in.Icon),
		Description: strings.TrimSpace(in.Description),
	}
	db.Projects = append(db.Projects, p)
	if parentID != "" {
		out, err := tree.Reparent(db.Projects, id, tree.Placement{Mode: tree.ModeNest, Parent: parentID})
		if err != nil {
			db.Projects = db.Projects[:len(db.Projects)-1]
			return ProjectResult{}, err
		}
		db.Projects = out
	}
	created, _ := db.FindProject(id)
	return ProjectResult{Project: created, Changed: true}, nil
}

// RenameProject changes an unlocked project's name.
func RenameProject(db *store.DB, projectID, name string) (ProjectResult, error) {
	p, ok := db.FindProject(projectID)
	if !ok {
		return ProjectResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if p.Locked {
		return ProjectResult{}, LockedProjectError{ID: projectID, Action: "renamed"}
	}
	name = strings.TrimSpace(name)
	if err := validateProjectName(name); err != nil {
		return ProjectResult{}, err
	}
	if err := ensureUniqueName(db, name, projectID); err != nil {
		return ProjectResult{}, err
	}
	if p.Name == name {
		return ProjectResult{Project: p}, nil
	}
	p.Name = name
	return ProjectResult{Project: p, Changed: true}, nil
}

// ProjectMeta holds display-only fields. Nil fields are kept.
type ProjectMeta struct {
	Color       *string
	Icon        *string
	Description *string
}

func UpdateProjectMeta(db *store.DB, projectID string, meta ProjectMeta) (ProjectResult, error) {
	p, ok := db.FindProject(projectID)
	if !ok {
		return ProjectResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	changed := false
	set := func(dst *string, v *string) {
		if v == nil {
			return
		}
		nv := strings.TrimSpace(*v)
		if *dst != nv {
			*dst = nv
			changed = true
		}
	}
	set(&p.Color, meta.Color)
	set(&p.Icon, meta.Icon)
	set(&p.Description, meta.Description)
	return ProjectResult{Project: p, Changed: changed}, nil
}

type DeleteProjectResult struct {
	Project    model.Project
	Reassigned int
	Reparented int
}

// DeleteProject removes an unlocked project. Its prompts move to the general project and
// its child projects move up to the deleted project's parent.
func DeleteProject(db *store.DB, projectID string) (DeleteProjectResult, error) {
	p, ok := db.FindProject(projectID)
	if !ok {
		return DeleteProjectResult{}, NotFoundError{Kind: "project", ID: projectID}
	}
	if p.Locked {
		return DeleteProjectResult{}, LockedProjectError{ID: projectID, Action: "deleted"}
	}
	deleted := *p
	res := DeleteProjectResult{Project: deleted}

	kept := make([]model.Project, 0, len(db.Projects)-1)
	for _, other := range db.Projects {
		if other.ID == projectID {
			continue
		}
		if other.Parent() == projectID {
			other.ParentID = deleted.ParentID
			res.Reparented++
		}
		kept = append(kept, other)
	}
	db.Projects = kept

	for i := range db.Prompts {
		if db.Prompts[i].ProjectID == projectID {
			db.Prompts[i].ProjectID = model.ProjectGeneral
			res.Reassigned++
		}
	}
	for i := range db.Templates {
		if db.Templates[i].ProjectID == projectID {
			db.Templates[i].ProjectID = ""
		}
	}
	delete(db.Expanded, projectID)
	return res, nil
}

// MoveProject reparents or reorders a project. On error the project list is untouched.
func MoveProject(db *store.DB, projectID string, pl tree.Placement) (ProjectResult, error) {
	out, err := tree.Reparent(db.Projects, projectID, pl)
	if err != nil {
		return ProjectResult{}, err
	}
	db.Projects = out
	p, _ := db.FindProject(projectID)
	return ProjectResult{Project: p, Changed: true}, nil
}

// DropProject interprets a drag-and-drop gesture and applies it.
func DropProject(db *store.DB, draggedID, targetID string, offset, extent, edgeFraction float64) (tree.Drop, error) {
	for _, id := range []string{draggedID, targetID} {
		if !db.ProjectExists(id) {
			return tree.Drop{}, NotFoundError{Kind: "project", ID: id}
		}
	}
	out, d, err := tree.ApplyDrop(db.Projects, draggedID, targetID, offset, extent, edgeFraction)
	if err != nil {
		return d, err
	}
	db.Projects = out
	return d, nil
}

// SetExpanded records the expand/collapse state of a project.
func SetExpanded(db *store.DB, projectID string, expanded bool) error {
	if !db.ProjectExists(projectID) {
		return NotFoundError{Kind: "project", ID: projectID}
	}
	if db.Expanded == nil {
		db.Expanded = map[string]bool{}
	}
	tree.ExpandState(db.Expanded).Set(projectID, expanded)
	return nil
}
