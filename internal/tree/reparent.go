package tree

import (
	"fmt"

	"github.com/AstralShardio/pastemyprompt/internal/model"
)

type Mode int

const (
	// ModeNone means the drop does not change anything (dropped onto itself).
	ModeNone Mode = iota
	ModeNest
	ModeReorder
	ModeUnnest
)

func (m Mode) String() string {
	switch m {
	case ModeNest:
		return "nest"
	case ModeReorder:
		return "reorder"
	case ModeUnnest:
		return "unnest"
	default:
		return "none"
	}
}

// Placement describes where a moved project lands.
//
// ModeNest puts the project under Parent, after that parent's last existing child.
// ModeReorder and ModeUnnest put it next to Anchor (before, or after when After is set) and
// adopt the anchor's parent. ModeUnnest without an anchor appends it to the top level.
type Placement struct {
	Mode   Mode
	Parent string
	Anchor string
	After  bool
}

type CycleError struct {
	ProjectID string
	ParentID  string
}

func (e CycleError) Error() string {
	if e.ProjectID == e.ParentID {
		return fmt.Sprintf("cannot move project %s under itself", e.ProjectID)
	}
	return fmt.Sprintf("cannot move project %s under its own descendant %s", e.ProjectID, e.ParentID)
}

type LockedTargetError struct {
	ProjectID string
	TargetID  string
}

func (e LockedTargetError) Error() string {
	if e.TargetID == "" || e.TargetID == e.ProjectID {
		return fmt.Sprintf("project %s is locked and cannot be nested", e.ProjectID)
	}
	return fmt.Sprintf("cannot move project %s under locked project %s", e.ProjectID, e.TargetID)
}

type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("project not found: %s", e.ID)
}

// Reparent validates a move against projects and returns the new ordered sequence.
// projects is never modified; on error nothing changes.
func Reparent(projects []model.Project, projectID string, pl Placement) ([]model.Project, error) {
	idx := indexOf(projects, projectID)
	if idx < 0 {
		return nil, NotFoundError{ID: projectID}
	}
	moving := projects[idx]

	newParent, err := resolveParent(projects, projectID, pl)
	if err != nil {
		return nil, err
	}
	if err := CheckParent(projects, projectID, newParent); err != nil {
		return nil, err
	}
	if pl.Anchor == projectID {
		return clone(projects), nil
	}

	rest := make([]model.Project, 0, len(projects))
	rest = append(rest, projects[:idx]...)
	rest = append(rest, projects[idx+1:]...)

	moving.ParentID = model.StrPtr(newParent)
	pos := len(rest)
	switch pl.Mode {
	case ModeNest:
		pos = indexOf(rest, newParent) + 1
		for i, p := range rest {
			if p.Parent() == newParent {
				pos = i + 1
			}
		}
	case ModeReorder, ModeUnnest:
		if pl.Anchor != "" {
			pos = indexOf(rest, pl.Anchor)
			if pl.After {
				pos++
			}
		}
	}

	out := make([]model.Project, 0, len(projects))
	out = append(out, rest[:pos]...)
	out = append(out, moving)
	out = append(out, rest[pos:]...)
	return out, nil
}

// CheckParent reports whether projectID may live under newParent ("" = top level).
func CheckParent(projects []model.Project, projectID, newParent string) error {
	idx := indexOf(projects, projectID)
	if idx < 0 {
		return NotFoundError{ID: projectID}
	}
	if newParent == "" {
		return nil
	}
	if newParent == projectID || IsDescendant(projects, newParent, projectID) {
		return CycleError{ProjectID: projectID, ParentID: newParent}
	}
	pi := indexOf(projects, newParent)
	if pi < 0 {
		return NotFoundError{ID: newParent}
	}
	if projects[pi].Locked {
		return LockedTargetError{ProjectID: projectID, TargetID: newParent}
	}
	if projects[idx].Locked {
		return LockedTargetError{ProjectID: projectID}
	}
	return nil
}

func resolveParent(projects []model.Project, projectID string, pl Placement) (string, error) {
	switch pl.Mode {
	case ModeNest:
		if pl.Parent == "" {
			return "", fmt.Errorf("nest requires a parent project")
		}
		return pl.Parent, nil
	case ModeReorder, ModeUnnest:
		if pl.Anchor == "" {
			if pl.Mode == ModeReorder {
				return "", fmt.Errorf("reorder requires an anchor project")
			}
			return "", nil
		}
		ai := indexOf(projects, pl.Anchor)
		if ai < 0 {
			return "", NotFoundError{ID: pl.Anchor}
		}
		if pl.Anchor == projectID {
			return projects[ai].Parent(), nil
		}
		parent := projects[ai].Parent()
		if parent != "" && indexOf(projects, parent) < 0 {
			// Orphaned anchors render at the top level.
			parent = ""
		}
		return parent, nil
	default:
		return "", fmt.Errorf("unknown placement mode %d", pl.Mode)
	}
}

func indexOf(projects []model.Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(projects []model.Project) []model.Project {
	out := make([]model.Project, len(projects))
	copy(out, projects)
	return out
}
