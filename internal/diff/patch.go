// Package diff implements the Diff Engine and Patch Applier: computing the
// minimal set of structural and property edits between a live tree.Tree
// subtree and a fresh snapshot.Instance, then mutating the tree to match.
package diff

import (
	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/tree"
)

// AddedInstance describes one brand-new instance a patch introduces. Id is
// minted by the diff engine (not the store) so that a patch's own internal
// references — a parent naming a sibling Added entry, ChangedChildren
// naming a newly-added id — are self-consistent before the applier ever
// touches the tree.
type AddedInstance struct {
	Id         tree.Id
	ParentId   tree.Id
	Name       string
	ClassName  string
	Properties map[string]rbxvalue.Value
	Metadata   tree.Metadata
}

// Update describes the per-instance delta for an instance that survives
// reconciliation in place (same class, same identity).
type Update struct {
	Id tree.Id

	ChangedName *string

	// ChangedClassName is part of the data model for completeness, but the
	// diff engine only ever sets it for the tree's root instance (see
	// ReplaceRootClass) — every other class mismatch is modeled as
	// Removed+Added, never an in-place Update.
	ChangedClassName *string

	// ChangedProperties maps a changed property name to its new value, or
	// to nil to mean "delete this key".
	ChangedProperties map[string]*rbxvalue.Value

	ChangedMetadata *tree.Metadata

	// ChangedChildren, if non-nil, is id's full new child order. Only set
	// when the order differs from what the tree already holds.
	ChangedChildren []tree.Id
}

// PatchSet is the diff engine's output: everything needed to bring a live
// tree into agreement with the snapshot it was diffed against.
type PatchSet struct {
	Added   []AddedInstance
	Removed []tree.Id
	Updated []Update
}

// IsEmpty reports whether applying p would be a no-op, i.e. a second sync
// against an unchanged tree produces nothing to do.
func (p *PatchSet) IsEmpty() bool {
	return len(p.Added) == 0 && len(p.Removed) == 0 && len(p.Updated) == 0
}
