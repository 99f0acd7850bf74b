package diff

import (
	"fmt"

	"github.com/jra3/instancesync/internal/tree"
)

func errUnknownInstance(id tree.Id) error {
	return fmt.Errorf("diff: unknown instance %s", id)
}

// Apply mutates t so it matches the snapshot patch was computed from. It is
// not transactional (§4.5): a failure partway through can leave some of the
// patch applied, but never leaves the tree with a dangling parent, since
// every step here only ever removes whole subtrees or inserts instances
// whose parent is already known to exist.
//
// Steps run in a fixed order — Added, then Removed, then Updated — so that
// a child-order reorder can always be validated as a permutation of id's
// *final* child set: by the time Updated runs, every id a ChangedChildren
// list names has either survived, just been added, or (if it was removed)
// is no longer referenced by any ChangedChildren list at all.
func Apply(t *tree.Tree, patch *PatchSet) error {
	if err := applyAdded(t, patch.Added); err != nil {
		return err
	}
	for _, id := range patch.Removed {
		t.Remove(id)
	}
	for _, upd := range patch.Updated {
		if err := applyUpdate(t, upd); err != nil {
			return err
		}
	}
	return nil
}

// applyAdded inserts every added instance, deferring any whose parent is
// itself a not-yet-inserted Added entry until a later pass, so parents
// always precede their children.
func applyAdded(t *tree.Tree, added []AddedInstance) error {
	pending := append([]AddedInstance(nil), added...)
	inserted := make(map[tree.Id]bool, len(added))

	for len(pending) > 0 {
		progressed := false
		var deferred []AddedInstance

		for _, a := range pending {
			if !parentReady(t, inserted, a.ParentId) {
				deferred = append(deferred, a)
				continue
			}
			if _, err := t.InsertWithId(a.Id, tree.InstanceProperties{
				Name:       a.Name,
				ClassName:  a.ClassName,
				Properties: a.Properties,
				Metadata:   a.Metadata,
			}, a.ParentId); err != nil {
				return err
			}
			inserted[a.Id] = true
			progressed = true
		}

		if !progressed {
			return fmt.Errorf("diff: %d added instance(s) have an unresolvable parent (cycle or unknown id)", len(deferred))
		}
		pending = deferred
	}
	return nil
}

func parentReady(t *tree.Tree, inserted map[tree.Id]bool, parentID tree.Id) bool {
	if inserted[parentID] {
		return true
	}
	_, ok := t.Get(parentID)
	return ok
}

func applyUpdate(t *tree.Tree, upd Update) error {
	if upd.ChangedClassName != nil {
		if err := t.ReplaceRootClass(upd.Id, *upd.ChangedClassName); err != nil {
			return err
		}
	}
	if upd.ChangedName != nil {
		if err := t.SetName(upd.Id, *upd.ChangedName); err != nil {
			return err
		}
	}
	for key, val := range upd.ChangedProperties {
		if val == nil {
			if err := t.DeleteProperty(upd.Id, key); err != nil {
				return err
			}
			continue
		}
		if err := t.SetProperty(upd.Id, key, *val); err != nil {
			return err
		}
	}
	if upd.ChangedMetadata != nil {
		if err := t.SetMetadata(upd.Id, *upd.ChangedMetadata); err != nil {
			return err
		}
	}
	if upd.ChangedChildren != nil {
		if err := t.SetChildOrder(upd.Id, upd.ChangedChildren); err != nil {
			return err
		}
	}
	return nil
}
