package tree

import "github.com/jra3/instancesync/internal/manifest"

// SourceKind distinguishes what caused an instance to exist.
type SourceKind int

const (
	// SourceNone means the instance has no instigating source (the tree
	// root, constructed directly by New).
	SourceNone SourceKind = iota
	// SourcePath means the instance was produced by snapshotting a single
	// filesystem path directly (e.g. a project file, a script file).
	SourcePath
	// SourceProjectNode means the instance was produced by a node inside a
	// project manifest's tree.
	SourceProjectNode
)

// InstigatingSource identifies what created an instance. It's used to
// decide which source to re-run when a relevant path changes.
type InstigatingSource struct {
	Kind SourceKind

	// Valid when Kind == SourcePath.
	Path string

	// Valid when Kind == SourceProjectNode.
	ProjectFolder string
	NodeName      string
	Node          *manifest.ProjectNode
}

// Metadata carries the reconciliation-relevant information attached to
// every instance.
type Metadata struct {
	// IgnoreUnknownInstances: if true, reconciliation leaves unrecognized
	// children of this instance in place instead of deleting them.
	IgnoreUnknownInstances bool

	InstigatingSource InstigatingSource

	// RelevantPaths is the set of filesystem paths whose change
	// invalidates this subtree.
	RelevantPaths []string
}

// Clone returns a deep-enough copy of md safe to store independently (the
// Node pointer inside InstigatingSource is treated as immutable and shared).
func (md Metadata) Clone() Metadata {
	clone := md
	clone.RelevantPaths = append([]string(nil), md.RelevantPaths...)
	return clone
}
