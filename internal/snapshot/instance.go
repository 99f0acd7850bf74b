// Package snapshot turns a VFS tree into an Instance tree per a project
// manifest, through an ordered dispatch of middlewares — the "Snapshot
// Middleware Pipeline". Nothing in this package touches the live tree.Tree;
// it only produces immutable Instance values for the diff engine to
// reconcile against one.
package snapshot

import (
	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/tree"
)

// IdHint optionally names the existing instance a snapshot child should
// prefer pairing with during diff, when a snapshot source can supply one
// (the project middleware does not currently mint these; the field exists
// so the diff engine's id-hint preference rule has somewhere to read from
// if a future middleware wants to assert identity explicitly).
type IdHint = tree.Id

// Instance is an immutable description of what a subtree of the live tree
// should look like, as produced by a middleware.
type Instance struct {
	Name       string
	ClassName  string
	Properties map[string]rbxvalue.Value
	Children   []*Instance
	Metadata   tree.Metadata

	// IdHint, if non-nil, names the existing instance this snapshot prefers
	// to pair with during diff.
	IdHint *IdHint
}
