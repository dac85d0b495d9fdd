package mutate

import (
	"errors"
	"testing"
	"time"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
)

func mustCreateProject(t *testing.T, db *store.DB, in ProjectInput) *model.Project {
	t.Helper()
	res, err := CreateProject(db, in, true)
	if err != nil {
		t.Fatalf("CreateProject(%q): %v", in.Name, err)
	}
	return res.Project
}

func TestCreateProject_UniqueNameCaseInsensitive(t *testing.T) {
	db := testDB()
	mustCreateProject(t, db, ProjectInput{Name: "Work"})

	var ve ValidationError
	if _, err := CreateProject(db, ProjectInput{Name: "  wORK "}, true); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := CreateProject(db, ProjectInput{Name: "general"}, true); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for built-in name, got %v", err)
	}
	if _, err := CreateProject(db, ProjectInput{Name: "   "}, true); !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("expected name ValidationError, got %v", err)
	}
}

func TestCreateProject_FreeLimit(t *testing.T) {
	db := testDB()
	for _, name := range []string{"A", "B", "C"} {
		if _, err := CreateProject(db, ProjectInput{Name: name}, false); err != nil {
			t.Fatalf("CreateProject(%s): %v", name, err)
		}
	}
	var ve ValidationError
	if _, err := CreateProject(db, ProjectInput{Name: "D"}, false); !errors.As(err, &ve) {
		t.Fatalf("expected limit ValidationError, got %v", err)
	}
	if _, err := CreateProject(db, ProjectInput{Name: "D"}, true); err != nil {
		t.Fatalf("pro should bypass the limit: %v", err)
	}
}

func TestCreateProject_WithParent(t *testing.T) {
	db := testDB()
	parent := mustCreateProject(t, db, ProjectInput{Name: "Parent"})
	parentID := parent.ID
	mustCreateProject(t, db, ProjectInput{Name: "Other"})
	child := mustCreateProject(t, db, ProjectInput{Name: "Child", ParentID: parentID})

	if child.Parent() != parentID {
		t.Fatalf("expected parent %s, got %q", parentID, child.Parent())
	}
	forest := tree.BuildForest(db.Projects)
	var under []string
	tree.Walk(forest, func(n *tree.Node, depth int) {
		if depth == 1 {
			under = append(under, n.Project.Name)
		}
	})
	if len(under) != 1 || under[0] != "Child" {
		t.Fatalf("unexpected children: %v", under)
	}

	var lt tree.LockedTargetError
	if _, err := CreateProject(db, ProjectInput{Name: "Nope", ParentID: "general"}, true); !errors.As(err, &lt) {
		t.Fatalf("expected LockedTargetError, got %v", err)
	}
}

func TestRenameProject(t *testing.T) {
	db := testDB()
	a := mustCreateProject(t, db, ProjectInput{Name: "A"})
	aID := a.ID
	mustCreateProject(t, db, ProjectInput{Name: "B"})

	var le LockedProjectError
	if _, err := RenameProject(db, "general", "Misc"); !errors.As(err, &le) {
		t.Fatalf("expected LockedProjectError, got %v", err)
	}
	var ve ValidationError
	if _, err := RenameProject(db, aID, "b"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	// Changing only the case of its own name is allowed.
	res, err := RenameProject(db, aID, "a")
	if err != nil || res.Project.Name != "a" {
		t.Fatalf("expected rename to succeed, got %+v %v", res.Project, err)
	}
}

func TestDeleteProject(t *testing.T) {
	db := testDB()
	parent := mustCreateProject(t, db, ProjectInput{Name: "Parent"})
	parentID := parent.ID
	mid := mustCreateProject(t, db, ProjectInput{Name: "Mid", ParentID: parentID})
	midID := mid.ID
	leaf := mustCreateProject(t, db, ProjectInput{Name: "Leaf", ParentID: midID})
	leafID := leaf.ID

	db.Prompts[1].ProjectID = midID
	db.Expanded[midID] = false
	if _, err := SaveTemplate(db, "p2", "", time.Now()); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}

	res, err := DeleteProject(db, midID)
	if err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if res.Reassigned != 1 || res.Reparented != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if db.ProjectExists(midID) {
		t.Fatalf("expected project removed")
	}
	if db.Prompts[1].ProjectID != model.ProjectGeneral {
		t.Fatalf("expected prompt moved to general, got %q", db.Prompts[1].ProjectID)
	}
	l, _ := db.FindProject(leafID)
	if l.Parent() != parentID {
		t.Fatalf("expected leaf reparented to %s, got %q", parentID, l.Parent())
	}
	if _, ok := db.Expanded[midID]; ok {
		t.Fatalf("expected expand state removed")
	}
	if db.Templates[0].ProjectID != "" {
		t.Fatalf("expected template project cleared")
	}
}

func TestDeleteProject_BuiltinsAreLocked(t *testing.T) {
	db := testDB()
	for _, id := range []string{"general", "blogs", "x"} {
		var le LockedProjectError
		if _, err := DeleteProject(db, id); !errors.As(err, &le) {
			t.Fatalf("expected LockedProjectError for %s, got %v", id, err)
		}
		p, ok := db.FindProject(id)
		if !ok || !p.Locked {
			t.Fatalf("built-in %s changed", id)
		}
	}
}

func TestMoveProject_CycleLeavesStateUnchanged(t *testing.T) {
	db := testDB()
	c := mustCreateProject(t, db, ProjectInput{Name: "C"})
	cID := c.ID
	child := mustCreateProject(t, db, ProjectInput{Name: "Child", ParentID: cID})
	childID := child.ID
	grand := mustCreateProject(t, db, ProjectInput{Name: "Grand", ParentID: childID})
	grandID := grand.ID
	before := db.Clone()

	_, err := MoveProject(db, cID, tree.Placement{Mode: tree.ModeNest, Parent: grandID})
	var ce tree.CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(db.Projects) != len(before.Projects) {
		t.Fatalf("project list changed")
	}
	for i := range db.Projects {
		if db.Projects[i].ID != before.Projects[i].ID || db.Projects[i].Parent() != before.Projects[i].Parent() {
			t.Fatalf("project %d changed: %+v vs %+v", i, db.Projects[i], before.Projects[i])
		}
	}
}

func TestDropProject(t *testing.T) {
	db := testDB()
	a := mustCreateProject(t, db, ProjectInput{Name: "A"})
	aID := a.ID
	b := mustCreateProject(t, db, ProjectInput{Name: "B"})
	bID := b.ID

	d, err := DropProject(db, bID, aID, 5, 10, 0.25)
	if err != nil {
		t.Fatalf("DropProject: %v", err)
	}
	if d.Mode != tree.ModeNest {
		t.Fatalf("expected nest, got %s", d.Mode)
	}
	if nb, _ := db.FindProject(bID); nb.Parent() != aID {
		t.Fatalf("expected B under A")
	}

	if _, err := DropProject(db, aID, "general", 5, 10, 0.25); err != nil {
		t.Fatalf("locked middle drop should reorder: %v", err)
	}
	if _, err := DropProject(db, "missing", aID, 5, 10, 0.25); err == nil {
		t.Fatalf("expected NotFoundError")
	}
}

func TestSettings(t *testing.T) {
	db := testDB()
	if _, err := SetSortBy(db, "bogus"); err == nil {
		t.Fatalf("expected error")
	}
	if sk, err := SetSortBy(db, "title"); err != nil || sk != model.SortTitle {
		t.Fatalf("SetSortBy: %v %v", sk, err)
	}
	if got := CycleSortBy(db); got != model.SortCreated {
		t.Fatalf("CycleSortBy = %s", got)
	}
	if got := CycleSortBy(db); got != model.SortLastUsed {
		t.Fatalf("CycleSortBy wrap = %s", got)
	}
	db.FirstTimeUser = true
	if !CompleteOnboarding(db) || db.FirstTimeUser || CompleteOnboarding(db) {
		t.Fatalf("CompleteOnboarding should flip once")
	}
}

func TestTemplates(t *testing.T) {
	db := testDB()
	tpl, err := SaveTemplate(db, "p3", "Thread base", t0)
	if err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	if _, err := SaveTemplate(db, "p1", "thread BASE", t0); err == nil {
		t.Fatalf("expected duplicate template name error")
	}
	res, err := PromptFromTemplate(db, tpl.ID, "Fresh thread", "", CreateOptions{AcceptDuplicates: true}, t0)
	if err != nil {
		t.Fatalf("PromptFromTemplate: %v", err)
	}
	if res.Prompt.Title != "Fresh thread" || res.Prompt.ProjectID != "x" || res.Prompt.Prompt != "Begin a viral thread on Go" {
		t.Fatalf("unexpected prompt: %+v", res.Prompt)
	}
	var dup DuplicatesFoundError
	if _, err := PromptFromTemplate(db, tpl.ID, "", "", CreateOptions{}, t0); !errors.As(err, &dup) {
		t.Fatalf("expected duplicate gate, got %v", err)
	}
	if err := DeleteTemplate(db, tpl.ID); err != nil || len(db.Templates) != 0 {
		t.Fatalf("DeleteTemplate: %v", err)
	}
}
