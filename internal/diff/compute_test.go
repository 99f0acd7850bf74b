package diff

import (
	"testing"

	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/snapshot"
	"github.com/jra3/instancesync/internal/tree"
)

func newTestTree() *tree.Tree {
	return tree.New(tree.InstanceProperties{Name: "root", ClassName: "DataModel"})
}

// buildFromSnapshot computes a patch against an empty tree and applies it,
// returning the resulting tree.
func buildFromSnapshot(t *testing.T, snap *snapshot.Instance) *tree.Tree {
	t.Helper()
	tr := newTestTree()
	patch, err := ComputePatch(tr, tr.GetRootID(), snap)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return tr
}

func TestRoundTrip_EmptyTreeToFolder(t *testing.T) {
	snap := &snapshot.Instance{
		Name:      "indirect-project",
		ClassName: "Folder",
		Metadata:  tree.Metadata{IgnoreUnknownInstances: true},
	}
	tr := buildFromSnapshot(t, snap)

	view, ok := tr.Get(tr.GetRootID())
	if !ok {
		t.Fatal("root missing after apply")
	}
	if view.Name != "indirect-project" || view.ClassName != "Folder" {
		t.Errorf("got name=%q class=%q, want name=%q class=%q", view.Name, view.ClassName, "indirect-project", "Folder")
	}
	if len(view.Children) != 0 {
		t.Errorf("expected no children, got %d", len(view.Children))
	}
	if !view.Metadata.IgnoreUnknownInstances {
		t.Error("expected IgnoreUnknownInstances = true")
	}
}

func TestRoundTrip_NestedChildren(t *testing.T) {
	snap := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{
				Name:      "Child",
				ClassName: "Model",
				Children: []*snapshot.Instance{
					{Name: "Grandchild", ClassName: "Part"},
				},
			},
		},
	}
	tr := buildFromSnapshot(t, snap)

	root, _ := tr.Get(tr.GetRootID())
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}
	child, ok := tr.Get(root.Children[0])
	if !ok || child.Name != "Child" || child.ClassName != "Model" {
		t.Fatalf("unexpected child: %+v (ok=%v)", child, ok)
	}
	if len(child.Children) != 1 {
		t.Fatalf("expected 1 grandchild, got %d", len(child.Children))
	}
	grandchild, ok := tr.Get(child.Children[0])
	if !ok || grandchild.Name != "Grandchild" || grandchild.ClassName != "Part" {
		t.Fatalf("unexpected grandchild: %+v (ok=%v)", grandchild, ok)
	}
}

func TestIdempotence_SecondSyncIsEmpty(t *testing.T) {
	snap := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{Name: "Child", ClassName: "Model", Properties: map[string]rbxvalue.Value{"Value": rbxvalue.String("hi")}},
		},
	}
	tr := buildFromSnapshot(t, snap)

	patch, err := ComputePatch(tr, tr.GetRootID(), snap)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if !patch.IsEmpty() {
		t.Errorf("expected empty patch on second sync, got added=%d removed=%d updated=%d",
			len(patch.Added), len(patch.Removed), len(patch.Updated))
	}
}

func TestMinimality_SinglePropertyChange(t *testing.T) {
	snap := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{
				Name:      "Child",
				ClassName: "StringValue",
				Properties: map[string]rbxvalue.Value{
					"Value": rbxvalue.String("Original"),
					"Other": rbxvalue.Int(1),
				},
			},
		},
	}
	tr := buildFromSnapshot(t, snap)

	changed := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{
				Name:      "Child",
				ClassName: "StringValue",
				Properties: map[string]rbxvalue.Value{
					"Value": rbxvalue.String("Changed"),
					"Other": rbxvalue.Int(1),
				},
			},
		},
	}

	patch, err := ComputePatch(tr, tr.GetRootID(), changed)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if len(patch.Added) != 0 || len(patch.Removed) != 0 {
		t.Fatalf("expected no structural changes, got added=%d removed=%d", len(patch.Added), len(patch.Removed))
	}
	if len(patch.Updated) != 1 {
		t.Fatalf("expected exactly 1 update, got %d", len(patch.Updated))
	}
	upd := patch.Updated[0]
	if len(upd.ChangedProperties) != 1 {
		t.Fatalf("expected exactly 1 changed property, got %d: %+v", len(upd.ChangedProperties), upd.ChangedProperties)
	}
	val, ok := upd.ChangedProperties["Value"]
	if !ok || val == nil {
		t.Fatalf("expected Value to change, got %+v", upd.ChangedProperties)
	}
	if s, _ := val.AsString(); s != "Changed" {
		t.Errorf("got %q, want %q", s, "Changed")
	}
}

func TestPreOrder_ParentAndChildUpdateTogether(t *testing.T) {
	snap := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{
				Name:      "Stuff",
				ClassName: "Folder",
				Properties: map[string]rbxvalue.Value{
					"Other": rbxvalue.Int(1),
				},
			},
		},
	}
	tr := buildFromSnapshot(t, snap)

	changed := &snapshot.Instance{
		Name:      "root-renamed",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{
				Name:      "Stuff",
				ClassName: "Folder",
				Properties: map[string]rbxvalue.Value{
					"Other": rbxvalue.Int(2),
				},
			},
		},
	}

	patch, err := ComputePatch(tr, tr.GetRootID(), changed)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if len(patch.Updated) != 2 {
		t.Fatalf("expected exactly 2 updates, got %d: %+v", len(patch.Updated), patch.Updated)
	}
	if patch.Updated[0].Id != tr.GetRootID() {
		t.Errorf("expected root's Update first (pre-order), got child first: %+v", patch.Updated)
	}
	if patch.Updated[0].ChangedName == nil || *patch.Updated[0].ChangedName != "root-renamed" {
		t.Errorf("expected patch.Updated[0] to carry the root's name change, got %+v", patch.Updated[0])
	}
	if patch.Updated[1].Id == tr.GetRootID() {
		t.Errorf("expected the child's Update second, got root again: %+v", patch.Updated)
	}
}

func TestOrderPreservation_ReorderOnlyChangesChangedChildren(t *testing.T) {
	original := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{Name: "A", ClassName: "Folder"},
			{Name: "B", ClassName: "Folder"},
		},
	}
	tr := buildFromSnapshot(t, original)

	reordered := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{Name: "B", ClassName: "Folder"},
			{Name: "A", ClassName: "Folder"},
		},
	}

	patch, err := ComputePatch(tr, tr.GetRootID(), reordered)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if len(patch.Added) != 0 || len(patch.Removed) != 0 {
		t.Fatalf("expected no structural changes, got added=%d removed=%d", len(patch.Added), len(patch.Removed))
	}
	if len(patch.Updated) != 1 {
		t.Fatalf("expected exactly 1 update (root's reorder), got %d", len(patch.Updated))
	}
	upd := patch.Updated[0]
	if upd.ChangedName != nil || len(upd.ChangedProperties) != 0 {
		t.Errorf("reorder should not touch name/properties, got name=%v props=%v", upd.ChangedName, upd.ChangedProperties)
	}
	if upd.ChangedChildren == nil {
		t.Fatal("expected ChangedChildren to be set")
	}

	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root, _ := tr.Get(tr.GetRootID())
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	first, _ := tr.Get(root.Children[0])
	second, _ := tr.Get(root.Children[1])
	if first.Name != "B" || second.Name != "A" {
		t.Errorf("got order [%s, %s], want [B, A]", first.Name, second.Name)
	}
}

func TestClassImmutability_ChangeForcesReplace(t *testing.T) {
	original := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{Name: "Child", ClassName: "Folder"},
		},
	}
	tr := buildFromSnapshot(t, original)
	root, _ := tr.Get(tr.GetRootID())
	oldChildID := root.Children[0]

	changed := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{Name: "Child", ClassName: "Model"},
		},
	}

	patch, err := ComputePatch(tr, tr.GetRootID(), changed)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if len(patch.Added) != 1 {
		t.Fatalf("expected 1 added instance, got %d", len(patch.Added))
	}
	if len(patch.Removed) != 1 || patch.Removed[0] != oldChildID {
		t.Fatalf("expected removal of old child %s, got %v", oldChildID, patch.Removed)
	}

	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root, _ = tr.Get(tr.GetRootID())
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child after apply, got %d", len(root.Children))
	}
	newChild, ok := tr.Get(root.Children[0])
	if !ok || newChild.ClassName != "Model" {
		t.Fatalf("expected replacement child with class Model, got %+v (ok=%v)", newChild, ok)
	}
	if _, stillThere := tr.Get(oldChildID); stillThere {
		t.Error("old child should have been removed")
	}
}

func TestClassImmutability_RootNeverPanics(t *testing.T) {
	tr := newTestTree()
	changed := &snapshot.Instance{Name: "root", ClassName: "Workspace"}

	patch, err := ComputePatch(tr, tr.GetRootID(), changed)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root, _ := tr.Get(tr.GetRootID())
	if root.ClassName != "Workspace" {
		t.Errorf("got class %q, want %q", root.ClassName, "Workspace")
	}
}

func TestIgnoreUnknownInstances_Retained(t *testing.T) {
	tr := newTestTree()
	extraID, err := tr.Insert(tree.InstanceProperties{Name: "Extra", ClassName: "Folder"}, tr.GetRootID())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tr.SetMetadata(tr.GetRootID(), tree.Metadata{IgnoreUnknownInstances: true}); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	snap := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Metadata:  tree.Metadata{IgnoreUnknownInstances: true},
	}

	patch, err := ComputePatch(tr, tr.GetRootID(), snap)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if len(patch.Removed) != 0 {
		t.Fatalf("expected Extra to be retained, got removed=%v", patch.Removed)
	}

	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := tr.Get(extraID); !ok {
		t.Error("Extra should still exist after apply")
	}
}

func TestIgnoreUnknownInstances_RemovedWhenFalse(t *testing.T) {
	tr := newTestTree()
	extraID, err := tr.Insert(tree.InstanceProperties{Name: "Extra", ClassName: "Folder"}, tr.GetRootID())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	snap := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
	}

	patch, err := ComputePatch(tr, tr.GetRootID(), snap)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if len(patch.Removed) != 1 || patch.Removed[0] != extraID {
		t.Fatalf("expected Extra to be removed, got removed=%v", patch.Removed)
	}

	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := tr.Get(extraID); ok {
		t.Error("Extra should have been removed")
	}
}

func TestIdHint_ClassChangeReplacesRatherThanReusesRemovedId(t *testing.T) {
	original := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{Name: "Thing", ClassName: "Folder"},
		},
	}
	tr := buildFromSnapshot(t, original)
	root, _ := tr.Get(tr.GetRootID())
	oldChildID := root.Children[0]

	hint := oldChildID
	changed := &snapshot.Instance{
		Name:      "root",
		ClassName: "DataModel",
		Children: []*snapshot.Instance{
			{Name: "Thing", ClassName: "Model", IdHint: &hint},
		},
	}

	patch, err := ComputePatch(tr, tr.GetRootID(), changed)
	if err != nil {
		t.Fatalf("ComputePatch: %v", err)
	}
	if len(patch.Added) != 1 {
		t.Fatalf("expected 1 added instance, got %d", len(patch.Added))
	}
	if len(patch.Removed) != 1 || patch.Removed[0] != oldChildID {
		t.Fatalf("expected removal of old child %s, got %v", oldChildID, patch.Removed)
	}
	if len(patch.Updated) != 1 {
		t.Fatalf("expected 1 update (root's ChangedChildren), got %d", len(patch.Updated))
	}
	order := patch.Updated[0].ChangedChildren
	if len(order) != 1 {
		t.Fatalf("expected 1 entry in root's child order, got %d", len(order))
	}
	if order[0] == oldChildID {
		t.Fatalf("root's child order still references the removed id %s instead of its replacement", oldChildID)
	}
	found := false
	for _, a := range patch.Added {
		if a.Id == order[0] {
			found = true
		}
	}
	if !found {
		t.Fatalf("root's child order entry %s does not match the minted replacement id", order[0])
	}

	if err := Apply(tr, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root, _ = tr.Get(tr.GetRootID())
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child after apply, got %d", len(root.Children))
	}
	newChild, ok := tr.Get(root.Children[0])
	if !ok || newChild.ClassName != "Model" || newChild.Name != "Thing" {
		t.Fatalf("expected replacement child Thing:Model, got %+v (ok=%v)", newChild, ok)
	}
}
