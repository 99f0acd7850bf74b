package diff

import (
	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/snapshot"
	"github.com/jra3/instancesync/internal/tree"
)

// ComputePatch walks the live tree at id in parallel with snap and returns
// the PatchSet that would bring id's subtree into agreement with snap. It
// never panics: a class-name mismatch at id is handled like any other
// mismatch — remove-and-add — except when id is the tree's root, which has
// nowhere to be removed to (see tree.ReplaceRootClass and §9's root
// class-mismatch design note).
func ComputePatch(t *tree.Tree, id tree.Id, snap *snapshot.Instance) (*PatchSet, error) {
	patch := &PatchSet{}

	view, ok := t.Get(id)
	if !ok {
		return nil, errUnknownInstance(id)
	}

	if view.ClassName != snap.ClassName {
		if id == t.GetRootID() {
			diffRootClassChange(t, id, view, snap, patch)
			return patch, nil
		}
		parent := view.Parent
		patch.Removed = append(patch.Removed, id)
		addSubtree(patch, parent, snap)
		return patch, nil
	}

	diffSameClass(t, id, view, snap, patch)
	return patch, nil
}

// diffRootClassChange handles a class mismatch at the root: the root
// instance can never be deleted, so instead of Removed+Added we emit an
// in-place Update carrying ChangedClassName, a full property replacement
// (old keys cleared, new keys set — a changed class has no reason to share
// property semantics with the old one), fresh metadata, and replace every
// existing child wholesale since nothing under the old class can be
// meaningfully paired against the new snapshot's children.
func diffRootClassChange(t *tree.Tree, id tree.Id, view tree.View, snap *snapshot.Instance, patch *PatchSet) {
	className := snap.ClassName
	upd := Update{
		Id:               id,
		ChangedClassName: &className,
	}
	if view.Name != snap.Name {
		name := snap.Name
		upd.ChangedName = &name
	}

	changedProps := map[string]*rbxvalue.Value{}
	for key := range view.Properties {
		changedProps[key] = nil
	}
	for key, val := range snap.Properties {
		v := val
		changedProps[key] = &v
	}
	if len(changedProps) > 0 {
		upd.ChangedProperties = changedProps
	}

	if !metadataEqual(view.Metadata, snap.Metadata) {
		md := snap.Metadata
		upd.ChangedMetadata = &md
	}

	patch.Removed = append(patch.Removed, view.Children...)

	newOrder := make([]tree.Id, 0, len(snap.Children))
	for _, child := range snap.Children {
		newOrder = append(newOrder, addSubtree(patch, id, child))
	}
	upd.ChangedChildren = newOrder

	patch.Updated = append(patch.Updated, upd)
}

// diffSameClass diffs name, properties, metadata, and children for a pair
// that shares a class. It appends id's own Update (if anything changed)
// before recursing into matched children, so that patch.Updated comes out
// in pre-order (§4.4: "the emitted updated list is ordered by a pre-order
// traversal of the tree") rather than post-order: planChildren below only
// computes the child pairing and order, deferring the recursive diff of
// each matched same-class pair until after this call's own Update has
// already been appended.
func diffSameClass(t *tree.Tree, id tree.Id, view tree.View, snap *snapshot.Instance, patch *PatchSet) {
	upd := Update{Id: id}
	changed := false

	if view.Name != snap.Name {
		name := snap.Name
		upd.ChangedName = &name
		changed = true
	}

	if changedProps := diffProperties(view.Properties, snap.Properties); len(changedProps) > 0 {
		upd.ChangedProperties = changedProps
		changed = true
	}

	plan := planChildren(t, id, view, snap, patch)
	if !idSliceEqual(plan.order, view.Children) {
		upd.ChangedChildren = plan.order
		changed = true
	}

	if !metadataEqual(view.Metadata, snap.Metadata) {
		md := snap.Metadata
		upd.ChangedMetadata = &md
		changed = true
	}

	if changed {
		patch.Updated = append(patch.Updated, upd)
	}

	for _, d := range plan.deferred {
		childView, ok := t.Get(d.existingID)
		if !ok {
			continue
		}
		diffSameClass(t, d.existingID, childView, d.snapChild, patch)
	}
}

// diffProperties implements §4.4 rule 3: every existing key absent from the
// snapshot is deleted; every snapshot key that's new or different is set.
func diffProperties(existing, snap map[string]rbxvalue.Value) map[string]*rbxvalue.Value {
	changed := map[string]*rbxvalue.Value{}
	for key := range existing {
		if _, ok := snap[key]; !ok {
			changed[key] = nil
		}
	}
	for key, val := range snap {
		old, ok := existing[key]
		if !ok || !old.Equal(val) {
			v := val
			changed[key] = &v
		}
	}
	return changed
}

// pairKey is the (ClassName, Name) stable-pairing key from §4.4/§9.
type pairKey struct {
	className, name string
}

// childPlan is planChildren's result: the final child order for id, plus
// the matched same-class pairs whose recursive diff the caller must defer
// until after its own Update is in patch.Updated (see diffSameClass).
type childPlan struct {
	order    []tree.Id
	deferred []deferredDiff
}

type deferredDiff struct {
	existingID tree.Id
	snapChild  *snapshot.Instance
}

// planChildren implements §4.4 rule 4's stable pairing: id-hints first,
// then (ClassName, Name) with positional tie-breaks among duplicates. A
// matched pair whose class still mismatches (only possible via an id-hint
// match, since name/class pairing can't produce one) is replaced
// immediately — Removed plus a freshly-minted addSubtree — since that's an
// Added entry, not an Update, and so carries no pre-order obligation. A
// matched pair that shares a class is deferred so its recursive diff runs
// only once the caller has appended its own Update. Unmatched snapshot
// children mint Added entries immediately; unmatched existing children are
// collected into Removed unless the parent's ignore_unknown_instances
// metadata says to keep them.
func planChildren(t *tree.Tree, id tree.Id, view tree.View, snap *snapshot.Instance, patch *PatchSet) childPlan {
	pools := make(map[pairKey][]tree.Id)
	unmatched := make(map[tree.Id]bool, len(view.Children))
	for _, childID := range view.Children {
		childView, ok := t.Get(childID)
		if !ok {
			continue
		}
		key := pairKey{childView.ClassName, childView.Name}
		pools[key] = append(pools[key], childID)
		unmatched[childID] = true
	}

	type plan struct {
		existingID tree.Id // zero value (tree.Nil) means "this slot is a new Added instance"
		snapChild  *snapshot.Instance
	}

	plans := make([]plan, 0, len(snap.Children))

	// First pass: id-hint pairing.
	for _, sc := range snap.Children {
		if sc.IdHint == nil {
			continue
		}
		hint := *sc.IdHint
		if unmatched[hint] {
			unmatched[hint] = false
			plans = append(plans, plan{existingID: hint, snapChild: sc})
		}
	}
	hinted := make(map[*snapshot.Instance]bool, len(plans))
	for _, p := range plans {
		hinted[p.snapChild] = true
	}

	// Second pass: (ClassName, Name) pairing, positional among duplicates.
	for _, sc := range snap.Children {
		if hinted[sc] {
			continue
		}
		key := pairKey{sc.ClassName, sc.Name}
		pool := pools[key]
		matchedID := tree.Nil
		for i, candidate := range pool {
			if unmatched[candidate] {
				matchedID = candidate
				unmatched[candidate] = false
				pool = append(pool[:i:i], pool[i+1:]...)
				break
			}
		}
		pools[key] = pool
		plans = append(plans, plan{existingID: matchedID, snapChild: sc})
	}

	// Reorder plans back into snapshot order (the two passes above appended
	// id-hinted matches first, out of snapshot order).
	planBySnap := make(map[*snapshot.Instance]plan, len(plans))
	for _, p := range plans {
		planBySnap[p.snapChild] = p
	}

	order := make([]tree.Id, 0, len(snap.Children))
	var deferred []deferredDiff
	for _, sc := range snap.Children {
		p := planBySnap[sc]
		if p.existingID == tree.Nil {
			order = append(order, addSubtree(patch, id, sc))
			continue
		}
		childView, ok := t.Get(p.existingID)
		if !ok {
			order = append(order, p.existingID)
			continue
		}
		if childView.ClassName != sc.ClassName {
			patch.Removed = append(patch.Removed, p.existingID)
			order = append(order, addSubtree(patch, id, sc))
			continue
		}
		order = append(order, p.existingID)
		deferred = append(deferred, deferredDiff{existingID: p.existingID, snapChild: sc})
	}

	for childID, stillUnmatched := range unmatched {
		if !stillUnmatched {
			continue
		}
		if view.Metadata.IgnoreUnknownInstances {
			order = append(order, childID)
			continue
		}
		patch.Removed = append(patch.Removed, childID)
	}

	// Stabilize retained-unknown ordering: append them in their original
	// relative order rather than map-iteration order.
	if hasRetainedUnknown(unmatched) {
		order = reorderRetainedUnknown(order, view.Children, unmatched)
	}

	return childPlan{order: order, deferred: deferred}
}

func hasRetainedUnknown(unmatched map[tree.Id]bool) bool {
	for _, still := range unmatched {
		if still {
			return true
		}
	}
	return false
}

// reorderRetainedUnknown rebuilds order so that ignored, unmatched existing
// children appear in their original relative order, appended after the
// snapshot-driven order (matching how planChildren built order above, just
// deterministically instead of via map iteration).
func reorderRetainedUnknown(order, originalChildren []tree.Id, unmatched map[tree.Id]bool) []tree.Id {
	retained := make([]tree.Id, 0, len(originalChildren))
	for _, id := range originalChildren {
		if unmatched[id] {
			retained = append(retained, id)
		}
	}
	out := make([]tree.Id, 0, len(order))
	for _, id := range order {
		if !isRetained(id, retained) {
			out = append(out, id)
		}
	}
	out = append(out, retained...)
	return out
}

func isRetained(id tree.Id, retained []tree.Id) bool {
	for _, r := range retained {
		if r == id {
			return true
		}
	}
	return false
}

// addSubtree mints a fresh id for snap (and, recursively, its descendants)
// and records them in patch.Added, parented under parentID. Returns the
// newly-minted id for snap itself, so callers can reference it (as a
// ChangedChildren entry, or as another Added entry's ParentId).
func addSubtree(patch *PatchSet, parentID tree.Id, snap *snapshot.Instance) tree.Id {
	id := tree.NewId()
	patch.Added = append(patch.Added, AddedInstance{
		Id:         id,
		ParentId:   parentID,
		Name:       snap.Name,
		ClassName:  snap.ClassName,
		Properties: snap.Properties,
		Metadata:   snap.Metadata,
	})
	for _, child := range snap.Children {
		addSubtree(patch, id, child)
	}
	return id
}

func idSliceEqual(a, b []tree.Id) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func metadataEqual(a, b tree.Metadata) bool {
	if a.IgnoreUnknownInstances != b.IgnoreUnknownInstances {
		return false
	}
	if len(a.RelevantPaths) != len(b.RelevantPaths) {
		return false
	}
	for i := range a.RelevantPaths {
		if a.RelevantPaths[i] != b.RelevantPaths[i] {
			return false
		}
	}
	return instigatingSourceEqual(a.InstigatingSource, b.InstigatingSource)
}

func instigatingSourceEqual(a, b tree.InstigatingSource) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case tree.SourcePath:
		return a.Path == b.Path
	case tree.SourceProjectNode:
		return a.ProjectFolder == b.ProjectFolder && a.NodeName == b.NodeName
	default:
		return true
	}
}
