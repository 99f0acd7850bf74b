// Package tree implements the live instance graph: a map from stable
// instance identifiers to records, mutated only through Insert/Remove and
// the narrow per-field setters used by the patch applier. The Tree is the
// sole owner of every record it holds; views returned by Get are read-only
// snapshots of a record's current state, never aliases into it.
package tree

import (
	"fmt"

	"github.com/jra3/instancesync/internal/rbxvalue"
)

// InstanceProperties is the content needed to create a new instance: no
// identity, parent, or children, since those are assigned by the store.
type InstanceProperties struct {
	Name       string
	ClassName  string
	Properties map[string]rbxvalue.Value
	Metadata   Metadata
}

type record struct {
	name       string
	className  string
	properties map[string]rbxvalue.Value
	parent     Id
	children   []Id
	metadata   Metadata
}

// View is a read-only description of an instance's current state.
type View struct {
	Name       string
	ClassName  string
	Properties map[string]rbxvalue.Value
	Parent     Id
	Children   []Id
	Metadata   Metadata
}

func (r *record) view() View {
	props := make(map[string]rbxvalue.Value, len(r.properties))
	for k, v := range r.properties {
		props[k] = v
	}
	return View{
		Name:       r.name,
		ClassName:  r.className,
		Properties: props,
		Parent:     r.parent,
		Children:   append([]Id(nil), r.children...),
		Metadata:   r.metadata.Clone(),
	}
}

// Tree is the live instance graph.
type Tree struct {
	records        map[Id]*record
	rootID         Id
	byRelevantPath map[string]map[Id]struct{}
}

// New creates a tree with a single root instance built from rootProps.
func New(rootProps InstanceProperties) *Tree {
	t := &Tree{
		records:        make(map[Id]*record),
		byRelevantPath: make(map[string]map[Id]struct{}),
	}
	id := NewId()
	t.records[id] = &record{
		name:       rootProps.Name,
		className:  rootProps.ClassName,
		properties: cloneProps(rootProps.Properties),
		parent:     Nil,
		metadata:   rootProps.Metadata.Clone(),
	}
	t.rootID = id
	t.indexRelevantPaths(id, rootProps.Metadata)
	return t
}

func cloneProps(props map[string]rbxvalue.Value) map[string]rbxvalue.Value {
	out := make(map[string]rbxvalue.Value, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// GetRootID returns the tree's single root instance id.
func (t *Tree) GetRootID() Id {
	return t.rootID
}

// Get returns a read-only view of id's current state.
func (t *Tree) Get(id Id) (View, bool) {
	r, ok := t.records[id]
	if !ok {
		return View{}, false
	}
	return r.view(), true
}

// Insert appends a new instance at the end of parentID's children. It fails
// if parentID does not refer to a live instance.
func (t *Tree) Insert(props InstanceProperties, parentID Id) (Id, error) {
	return t.InsertWithId(NewId(), props, parentID)
}

// InsertWithId is Insert but with the new instance's identifier chosen by
// the caller instead of minted fresh. The diff engine pre-mints ids for
// every instance a PatchSet adds (so that a patch's own internal
// parent/child and id-hint references are self-consistent before the
// applier ever touches the tree); this is the seam that lets the applier
// honor those ids exactly rather than translating between a
// patch-local id and a store-assigned one. It fails if parentID does not
// refer to a live instance, or if id is already in use.
func (t *Tree) InsertWithId(id Id, props InstanceProperties, parentID Id) (Id, error) {
	parent, ok := t.records[parentID]
	if !ok {
		return Id{}, fmt.Errorf("insert: unknown parent %s", parentID)
	}
	if _, exists := t.records[id]; exists {
		return Id{}, fmt.Errorf("insert: id %s already in use", id)
	}

	t.records[id] = &record{
		name:       props.Name,
		className:  props.ClassName,
		properties: cloneProps(props.Properties),
		parent:     parentID,
		metadata:   props.Metadata.Clone(),
	}
	parent.children = append(parent.children, id)
	t.indexRelevantPaths(id, props.Metadata)
	return id, nil
}

// Remove deletes id and, recursively, its descendants, unlinking it from
// its parent's children.
func (t *Tree) Remove(id Id) {
	r, ok := t.records[id]
	if !ok {
		return
	}

	for _, child := range append([]Id(nil), r.children...) {
		t.Remove(child)
	}

	if parent, ok := t.records[r.parent]; ok {
		parent.children = removeID(parent.children, id)
	}

	t.unindexRelevantPaths(id, r.metadata)
	delete(t.records, id)
}

func removeID(ids []Id, target Id) []Id {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// SetName changes id's name.
func (t *Tree) SetName(id Id, name string) error {
	r, ok := t.records[id]
	if !ok {
		return fmt.Errorf("set name: unknown instance %s", id)
	}
	r.name = name
	return nil
}

// ReplaceRootClass overwrites the root instance's class name in place. This
// is the one sanctioned exception to class-name immutability (see §9's
// "root class-name mismatch" design note): every other instance models a
// class change as delete-and-recreate, but the tree's root can never be
// deleted (New guarantees exactly one, for the tree's lifetime), so a
// root class change has nowhere else to go. It fails for any id other than
// the root.
func (t *Tree) ReplaceRootClass(id Id, className string) error {
	if id != t.rootID {
		return fmt.Errorf("replace root class: %s is not the tree root", id)
	}
	r, ok := t.records[id]
	if !ok {
		return fmt.Errorf("replace root class: unknown instance %s", id)
	}
	r.className = className
	return nil
}

// SetProperty sets id's key property to value.
func (t *Tree) SetProperty(id Id, key string, value rbxvalue.Value) error {
	r, ok := t.records[id]
	if !ok {
		return fmt.Errorf("set property: unknown instance %s", id)
	}
	r.properties[key] = value
	return nil
}

// DeleteProperty removes id's key property, if present.
func (t *Tree) DeleteProperty(id Id, key string) error {
	r, ok := t.records[id]
	if !ok {
		return fmt.Errorf("delete property: unknown instance %s", id)
	}
	delete(r.properties, key)
	return nil
}

// SetMetadata replaces id's metadata wholesale.
func (t *Tree) SetMetadata(id Id, md Metadata) error {
	r, ok := t.records[id]
	if !ok {
		return fmt.Errorf("set metadata: unknown instance %s", id)
	}
	t.unindexRelevantPaths(id, r.metadata)
	r.metadata = md.Clone()
	t.indexRelevantPaths(id, r.metadata)
	return nil
}

// SetChildOrder rearranges id's existing children into the given order.
// order must be a permutation of id's current children; reparenting across
// different parents is not supported here, by design — the diff/patch
// contract never needs it (see PatchSet.Updated.ChangedChildren).
func (t *Tree) SetChildOrder(id Id, order []Id) error {
	r, ok := t.records[id]
	if !ok {
		return fmt.Errorf("set child order: unknown instance %s", id)
	}
	if len(order) != len(r.children) {
		return fmt.Errorf("set child order: expected %d children, got %d", len(r.children), len(order))
	}
	existing := make(map[Id]bool, len(r.children))
	for _, c := range r.children {
		existing[c] = true
	}
	for _, c := range order {
		if !existing[c] {
			return fmt.Errorf("set child order: %s is not a child of %s", c, id)
		}
	}
	r.children = append([]Id(nil), order...)
	return nil
}

// FindByRelevantPath returns every instance whose metadata names path as a
// relevant path. This index exists so an incremental sync mode (see
// DESIGN.md open question 1) can be layered on without restructuring the
// store: the engine still recomputes whole subtrees on any change today, but
// the lookup an incremental mode would need is already here.
func (t *Tree) FindByRelevantPath(path string) []Id {
	set, ok := t.byRelevantPath[path]
	if !ok {
		return nil
	}
	out := make([]Id, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func (t *Tree) indexRelevantPaths(id Id, md Metadata) {
	for _, p := range md.RelevantPaths {
		set, ok := t.byRelevantPath[p]
		if !ok {
			set = make(map[Id]struct{})
			t.byRelevantPath[p] = set
		}
		set[id] = struct{}{}
	}
}

func (t *Tree) unindexRelevantPaths(id Id, md Metadata) {
	for _, p := range md.RelevantPaths {
		if set, ok := t.byRelevantPath[p]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(t.byRelevantPath, p)
			}
		}
	}
}
