package diff

import (
	"testing"

	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/tree"
)

func TestApply_AddedOutOfTopologicalOrder(t *testing.T) {
	tr := newTestTree()

	grandchildID := tree.NewId()
	childID := tree.NewId()

	// Deliberately list the grandchild (whose parent is another Added
	// entry) before its parent, to exercise the deferred-insertion pass.
	patch := &PatchSet{
		Added: []AddedInstance{
			{Id: grandchildID, ParentId: childID, Name: "Grandchild", ClassName: "Part"},
			{Id: childID, ParentId: tr.GetRootID(), Name: "Child", ClassName: "Model"},
		},
	}

	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	child, ok := tr.Get(childID)
	if !ok {
		t.Fatal("child not inserted")
	}
	if len(child.Children) != 1 || child.Children[0] != grandchildID {
		t.Fatalf("expected child's children to be [%s], got %v", grandchildID, child.Children)
	}
	if _, ok := tr.Get(grandchildID); !ok {
		t.Fatal("grandchild not inserted")
	}
}

func TestApply_AddedWithUnresolvableParentErrors(t *testing.T) {
	tr := newTestTree()
	orphanID := tree.NewId()
	patch := &PatchSet{
		Added: []AddedInstance{
			{Id: orphanID, ParentId: tree.NewId(), Name: "Orphan", ClassName: "Folder"},
		},
	}
	if err := Apply(tr, patch); err == nil {
		t.Fatal("expected an error for an instance whose parent never appears")
	}
}

func TestApply_RemovedDeletesSubtree(t *testing.T) {
	tr := newTestTree()
	parentID, _ := tr.Insert(tree.InstanceProperties{Name: "Parent", ClassName: "Folder"}, tr.GetRootID())
	childID, _ := tr.Insert(tree.InstanceProperties{Name: "Child", ClassName: "Folder"}, parentID)

	patch := &PatchSet{Removed: []tree.Id{parentID}}
	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, ok := tr.Get(parentID); ok {
		t.Error("parent should be removed")
	}
	if _, ok := tr.Get(childID); ok {
		t.Error("child should be removed along with its parent")
	}
}

func TestApply_UpdatePropertiesAndDeletion(t *testing.T) {
	tr := newTestTree()
	id, _ := tr.Insert(tree.InstanceProperties{
		Name:      "Value",
		ClassName: "StringValue",
		Properties: map[string]rbxvalue.Value{
			"Value": rbxvalue.String("old"),
			"Stale": rbxvalue.Bool(true),
		},
	}, tr.GetRootID())

	newVal := rbxvalue.String("new")
	patch := &PatchSet{
		Updated: []Update{
			{
				Id: id,
				ChangedProperties: map[string]*rbxvalue.Value{
					"Value": &newVal,
					"Stale": nil,
				},
			},
		},
	}
	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	view, _ := tr.Get(id)
	if s, _ := view.Properties["Value"].AsString(); s != "new" {
		t.Errorf("Value = %q, want %q", s, "new")
	}
	if _, ok := view.Properties["Stale"]; ok {
		t.Error("Stale should have been deleted")
	}
}

func TestApply_ChangedChildrenReordersWithoutRemoveAdd(t *testing.T) {
	tr := newTestTree()
	aID, _ := tr.Insert(tree.InstanceProperties{Name: "A", ClassName: "Folder"}, tr.GetRootID())
	bID, _ := tr.Insert(tree.InstanceProperties{Name: "B", ClassName: "Folder"}, tr.GetRootID())

	patch := &PatchSet{
		Updated: []Update{
			{Id: tr.GetRootID(), ChangedChildren: []tree.Id{bID, aID}},
		},
	}
	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	root, _ := tr.Get(tr.GetRootID())
	if len(root.Children) != 2 || root.Children[0] != bID || root.Children[1] != aID {
		t.Fatalf("got %v, want [%s, %s]", root.Children, bID, aID)
	}
	// Same ids survive: no remove+add happened.
	if _, ok := tr.Get(aID); !ok {
		t.Error("A should still be the same instance")
	}
	if _, ok := tr.Get(bID); !ok {
		t.Error("B should still be the same instance")
	}
}

func TestApply_RootClassReplacement(t *testing.T) {
	tr := newTestTree()
	newClass := "Workspace"
	newName := "renamed"
	patch := &PatchSet{
		Updated: []Update{
			{Id: tr.GetRootID(), ChangedClassName: &newClass, ChangedName: &newName},
		},
	}
	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root, _ := tr.Get(tr.GetRootID())
	if root.ClassName != newClass || root.Name != newName {
		t.Errorf("got class=%q name=%q, want class=%q name=%q", root.ClassName, root.Name, newClass, newName)
	}
}

func TestApply_ReplaceRootClassOnNonRootFails(t *testing.T) {
	tr := newTestTree()
	childID, _ := tr.Insert(tree.InstanceProperties{Name: "Child", ClassName: "Folder"}, tr.GetRootID())
	if err := tr.ReplaceRootClass(childID, "Model"); err == nil {
		t.Fatal("expected an error replacing a non-root instance's class")
	}
}
