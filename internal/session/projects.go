package session

import (
	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
	"github.com/AstralShardio/pastemyprompt/internal/view"
)

// Forest is the project tree as of now.
func (s *Session) Forest() []*tree.Node {
	return tree.BuildForest(s.db.Projects)
}

// Rows flattens the forest using the stored expand state.
func (s *Session) Rows() []tree.Row {
	return tree.Flatten(s.Forest(), tree.ExpandState(s.db.Expanded))
}

func (s *Session) ProjectCounts() map[string]int {
	return view.ProjectCounts(s.db)
}

func (s *Session) CreateProject(in mutate.ProjectInput) (model.Project, error) {
	res, err := mutate.CreateProject(s.db, in, s.Pro())
	if err != nil {
		return model.Project{}, s.fail("project.create", err)
	}
	return *res.Project, s.commit("project.create", "project_id", res.Project.ID)
}

func (s *Session) RenameProject(id, name string) (model.Project, error) {
	res, err := mutate.RenameProject(s.db, id, name)
	if err != nil {
		return model.Project{}, s.fail("project.rename", err, "project_id", id)
	}
	if !res.Changed {
		return *res.Project, nil
	}
	return *res.Project, s.commit("project.rename", "project_id", id)
}

func (s *Session) UpdateProjectMeta(id string, meta mutate.ProjectMeta) (model.Project, error) {
	res, err := mutate.UpdateProjectMeta(s.db, id, meta)
	if err != nil {
		return model.Project{}, s.fail("project.meta", err, "project_id", id)
	}
	if !res.Changed {
		return *res.Project, nil
	}
	return *res.Project, s.commit("project.meta", "project_id", id)
}

func (s *Session) DeleteProject(id string) (mutate.DeleteProjectResult, error) {
	res, err := mutate.DeleteProject(s.db, id)
	if err != nil {
		return res, s.fail("project.delete", err, "project_id", id)
	}
	return res, s.commit("project.delete", "project_id", id, "reassigned", res.Reassigned)
}

// MoveProject reparents or reorders a project. A rejected move changes nothing.
func (s *Session) MoveProject(id string, pl tree.Placement) (model.Project, error) {
	res, err := mutate.MoveProject(s.db, id, pl)
	if err != nil {
		return model.Project{}, s.fail("project.move", err, "project_id", id, "mode", pl.Mode.String())
	}
	return *res.Project, s.commit("project.move", "project_id", id, "mode", pl.Mode.String(), "parent_id", res.Project.Parent())
}

// DropProject applies a drag of dragged onto target at offset within extent.
func (s *Session) DropProject(draggedID, targetID string, offset, extent float64) (tree.Drop, error) {
	d, err := mutate.DropProject(s.db, draggedID, targetID, offset, extent, s.settings.EdgeFraction)
	if err != nil {
		return d, s.fail("project.drop", err, "project_id", draggedID, "target_id", targetID)
	}
	return d, s.commit("project.drop", "project_id", draggedID, "target_id", targetID, "mode", d.Mode.String())
}

func (s *Session) SetExpanded(id string, expanded bool) error {
	if err := mutate.SetExpanded(s.db, id, expanded); err != nil {
		return s.fail("project.expand", err, "project_id", id)
	}
	return s.commit("project.expand", "project_id", id, "expanded", expanded)
}

// ToggleExpanded flips a project's expand state and returns the new value.
func (s *Session) ToggleExpanded(id string) (bool, error) {
	next := !tree.ExpandState(s.db.Expanded).IsExpanded(id)
	return next, s.SetExpanded(id, next)
}
