package tree

import "github.com/AstralShardio/pastemyprompt/internal/model"

const DefaultEdgeFraction = 0.25

// Drop is the interpreted result of dropping one project onto another.
type Drop struct {
	Mode      Mode
	Placement Placement
}

// ClassifyDrop decides between reorder, unnest and nest from where the cursor sits on the
// target row. offset is measured from the top of the target and extent is its height; the
// top and bottom edgeFraction of the extent count as edges.
func ClassifyDrop(projects []model.Project, draggedID, targetID string, offset, extent, edgeFraction float64) Drop {
	if draggedID == targetID {
		return Drop{Mode: ModeNone}
	}
	di := indexOf(projects, draggedID)
	ti := indexOf(projects, targetID)
	if di < 0 || ti < 0 {
		return Drop{Mode: ModeNone}
	}
	if edgeFraction <= 0 || edgeFraction >= 0.5 {
		edgeFraction = DefaultEdgeFraction
	}
	rel := 0.5
	if extent > 0 {
		rel = offset / extent
	}
	if rel < 0 {
		rel = 0
	}
	if rel > 1 {
		rel = 1
	}
	top := rel < edgeFraction
	bottom := rel > 1-edgeFraction

	dragged := projects[di]
	target := projects[ti]
	draggedParent := effectiveParent(projects, dragged)
	targetParent := effectiveParent(projects, target)

	if draggedParent != "" && top {
		for _, anc := range Ancestors(projects, draggedID) {
			if effectiveParent(projects, projects[indexOf(projects, anc)]) == targetParent {
				return Drop{Mode: ModeUnnest, Placement: Placement{Mode: ModeUnnest, Anchor: targetID}}
			}
		}
	}

	if draggedParent == targetParent {
		if top || bottom {
			return Drop{Mode: ModeReorder, Placement: Placement{Mode: ModeReorder, Anchor: targetID, After: bottom}}
		}
		if target.Locked {
			return Drop{Mode: ModeReorder, Placement: Placement{Mode: ModeReorder, Anchor: targetID, After: rel >= 0.5}}
		}
	}

	return Drop{Mode: ModeNest, Placement: Placement{Mode: ModeNest, Parent: targetID}}
}

// ApplyDrop classifies the drop and performs the resulting move.
func ApplyDrop(projects []model.Project, draggedID, targetID string, offset, extent, edgeFraction float64) ([]model.Project, Drop, error) {
	d := ClassifyDrop(projects, draggedID, targetID, offset, extent, edgeFraction)
	if d.Mode == ModeNone {
		return clone(projects), d, nil
	}
	out, err := Reparent(projects, draggedID, d.Placement)
	if err != nil {
		return nil, d, err
	}
	return out, d, nil
}

// effectiveParent returns the parent a project renders under: "" for roots and orphans.
func effectiveParent(projects []model.Project, p model.Project) string {
	pid := p.Parent()
	if pid == "" || indexOf(projects, pid) < 0 {
		return ""
	}
	return pid
}
