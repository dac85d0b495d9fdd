package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AstralShardio/pastemyprompt/internal/model"
)

func proj(id, parent string) model.Project {
	return model.Project{ID: id, Name: id, ParentID: model.StrPtr(parent)}
}

func locked(id string) model.Project {
	return model.Project{ID: id, Name: id, Locked: true}
}

func ids(projects []model.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.ID)
	}
	return out
}

func parentOf(t *testing.T, projects []model.Project, id string) string {
	t.Helper()
	i := indexOf(projects, id)
	require.GreaterOrEqual(t, i, 0, "project %s missing", id)
	return projects[i].Parent()
}

// fixture:
//
//	general (locked)
//	A
//	  B
//	    C
//	  D
//	E
func fixture() []model.Project {
	return []model.Project{
		locked("general"),
		proj("A", ""),
		proj("B", "A"),
		proj("C", "B"),
		proj("D", "A"),
		proj("E", ""),
	}
}

func rowIDs(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Node.Project.ID)
	}
	return out
}

func TestBuildForest_OrdersSiblingsBySequence(t *testing.T) {
	t.Parallel()

	projects := []model.Project{
		proj("z", ""),
		proj("child2", "a"),
		proj("a", ""),
		proj("child1", "a"),
	}
	forest := BuildForest(projects)
	require.Len(t, forest, 2)
	assert.Equal(t, "z", forest[0].Project.ID)
	assert.Equal(t, "a", forest[1].Project.ID)
	require.Len(t, forest[1].Children, 2)
	assert.Equal(t, "child2", forest[1].Children[0].Project.ID)
	assert.Equal(t, "child1", forest[1].Children[1].Project.ID)
}

func TestBuildForest_OrphansAndCyclesBecomeRoots(t *testing.T) {
	t.Parallel()

	projects := []model.Project{
		proj("orphan", "missing"),
		proj("a", "b"),
		proj("b", "a"),
	}
	var seen []string
	Walk(BuildForest(projects), func(n *Node, _ int) { seen = append(seen, n.Project.ID) })
	assert.ElementsMatch(t, []string{"orphan", "a", "b"}, seen)
	assert.Equal(t, "orphan", seen[0])
}

func TestIsDescendant(t *testing.T) {
	t.Parallel()

	projects := fixture()
	cases := []struct {
		candidate, ancestor string
		want                bool
	}{
		{"C", "A", true},
		{"C", "B", true},
		{"B", "C", false},
		{"A", "A", false},
		{"C", "", false},
		{"E", "A", false},
		{"missing", "A", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsDescendant(projects, tc.candidate, tc.ancestor), "IsDescendant(%s, %s)", tc.candidate, tc.ancestor)
	}
}

func TestReparent_UnderOwnGrandchildIsCycleAndLeavesTreeUnchanged(t *testing.T) {
	t.Parallel()

	projects := fixture()
	before := ids(projects)
	_, err := Reparent(projects, "A", Placement{Mode: ModeNest, Parent: "C"})
	var ce CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "A", ce.ProjectID)
	assert.Equal(t, before, ids(projects))
	assert.Equal(t, "", parentOf(t, projects, "A"))
}

func TestReparent_UnderSelfIsCycle(t *testing.T) {
	t.Parallel()

	_, err := Reparent(fixture(), "B", Placement{Mode: ModeNest, Parent: "B"})
	require.ErrorAs(t, err, &CycleError{})
}

func TestReparent_LockedTargets(t *testing.T) {
	t.Parallel()

	projects := fixture()
	_, err := Reparent(projects, "E", Placement{Mode: ModeNest, Parent: "general"})
	require.ErrorAs(t, err, &LockedTargetError{})

	_, err = Reparent(projects, "general", Placement{Mode: ModeNest, Parent: "E"})
	require.ErrorAs(t, err, &LockedTargetError{})

	// Locked projects can still be reordered at the top level.
	out, err := Reparent(projects, "general", Placement{Mode: ModeReorder, Anchor: "E", After: true})
	require.NoError(t, err)
	assert.Equal(t, "general", out[len(out)-1].ID)
	assert.True(t, out[len(out)-1].Locked)
}

func TestReparent_NestPlacesAfterLastChild(t *testing.T) {
	t.Parallel()

	out, err := Reparent(fixture(), "E", Placement{Mode: ModeNest, Parent: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", parentOf(t, out, "E"))
	assert.Equal(t, []string{"general", "A", "B", "C", "D", "E"}, ids(out))

	forest := BuildForest(out)
	require.Len(t, forest[1].Children, 3)
	assert.Equal(t, "E", forest[1].Children[2].Project.ID)
}

func TestReparent_NestWithoutChildrenPlacesAfterParent(t *testing.T) {
	t.Parallel()

	out, err := Reparent(fixture(), "B", Placement{Mode: ModeNest, Parent: "E"})
	require.NoError(t, err)
	assert.Equal(t, []string{"general", "A", "C", "D", "E", "B"}, ids(out))
	assert.Equal(t, "E", parentOf(t, out, "B"))
	// C stays under B.
	assert.Equal(t, "B", parentOf(t, out, "C"))
}

func TestReparent_ReorderAmongSiblings(t *testing.T) {
	t.Parallel()

	out, err := Reparent(fixture(), "D", Placement{Mode: ModeReorder, Anchor: "B"})
	require.NoError(t, err)
	forest := BuildForest(out)
	require.Len(t, forest[1].Children, 2)
	assert.Equal(t, "D", forest[1].Children[0].Project.ID)
	assert.Equal(t, "B", forest[1].Children[1].Project.ID)
}

func TestReparent_UnnestWithoutAnchorMovesToTopLevelEnd(t *testing.T) {
	t.Parallel()

	out, err := Reparent(fixture(), "C", Placement{Mode: ModeUnnest})
	require.NoError(t, err)
	assert.Equal(t, "", parentOf(t, out, "C"))
	assert.Equal(t, "C", out[len(out)-1].ID)
}

func TestReparent_NeverCreatesCycle(t *testing.T) {
	t.Parallel()

	projects := fixture()
	all := ids(projects)
	for _, moving := range all {
		for _, target := range all {
			out, err := Reparent(projects, moving, Placement{Mode: ModeNest, Parent: target})
			if err != nil {
				continue
			}
			assert.False(t, IsDescendant(out, target, moving), "move %s under %s created a cycle", moving, target)
			assert.Len(t, out, len(projects))
		}
	}
}

func TestClassifyDrop(t *testing.T) {
	t.Parallel()

	projects := fixture()
	cases := []struct {
		name            string
		dragged, target string
		offset          float64
		want            Mode
		wantAfter       bool
	}{
		{"same parent top edge", "D", "B", 2, ModeReorder, false},
		{"same parent bottom edge", "D", "B", 9, ModeReorder, true},
		{"same parent middle", "D", "B", 5, ModeNest, false},
		{"different parent edge nests", "E", "B", 1, ModeNest, false},
		{"nested onto ancestor sibling top edge", "C", "E", 1, ModeUnnest, false},
		{"nested onto ancestor top edge", "B", "A", 1, ModeUnnest, false},
		{"locked middle same parent reorders", "E", "general", 6, ModeReorder, true},
		{"self", "A", "A", 5, ModeNone, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := ClassifyDrop(projects, tc.dragged, tc.target, tc.offset, 10, 0.25)
			assert.Equal(t, tc.want, d.Mode)
			if tc.want == ModeReorder {
				assert.Equal(t, tc.wantAfter, d.Placement.After)
			}
		})
	}
}

func TestApplyDrop_UnnestLandsBeforeTarget(t *testing.T) {
	t.Parallel()

	out, d, err := ApplyDrop(fixture(), "C", "E", 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, ModeUnnest, d.Mode)
	assert.Equal(t, "", parentOf(t, out, "C"))
	forest := BuildForest(out)
	var roots []string
	for _, n := range forest {
		roots = append(roots, n.Project.ID)
	}
	assert.Equal(t, []string{"general", "A", "C", "E"}, roots)
}

func TestApplyDrop_CycleRejectedWholesale(t *testing.T) {
	t.Parallel()

	projects := fixture()
	_, d, err := ApplyDrop(projects, "A", "C", 5, 10, 0.25)
	assert.Equal(t, ModeNest, d.Mode)
	require.ErrorAs(t, err, &CycleError{})
	assert.Equal(t, ids(fixture()), ids(projects))
}

func TestFlatten_RespectsExpandStateAcrossRebuilds(t *testing.T) {
	t.Parallel()

	expand := ExpandState{}
	expand.Set("A", false)
	rows := Flatten(BuildForest(fixture()), expand)
	assert.Equal(t, []string{"general", "A", "E"}, rowIDs(rows))
	assert.True(t, rows[1].HasChildren)
	assert.False(t, rows[1].Expanded)

	moved, err := Reparent(fixture(), "A", Placement{Mode: ModeReorder, Anchor: "E", After: true})
	require.NoError(t, err)
	rows = Flatten(BuildForest(moved), expand)
	assert.Equal(t, []string{"general", "E", "A"}, rowIDs(rows))

	assert.True(t, expand.Toggle("A"))
	rows = Flatten(BuildForest(moved), expand)
	assert.Equal(t, []string{"general", "E", "A", "B", "C", "D"}, rowIDs(rows))
	assert.Equal(t, 2, rows[4].Depth)
}

func TestExpandState_DefaultsExpandedAndPrunes(t *testing.T) {
	t.Parallel()

	expand := ExpandState{"gone": false, "A": false}
	assert.True(t, expand.IsExpanded("B"))
	expand.Prune(BuildForest(fixture()))
	_, ok := expand["gone"]
	assert.False(t, ok)
	assert.False(t, expand.IsExpanded("A"))
}
