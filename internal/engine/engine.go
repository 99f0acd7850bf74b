// Package engine wires the manifest loader, snapshot pipeline, diff engine,
// and patch applier into the single operation the CLI drives: turning a
// project file on a filesystem into a reconciled tree.Tree.
package engine

import (
	"fmt"
	"log"

	"github.com/jra3/instancesync/internal/diff"
	"github.com/jra3/instancesync/internal/snapshot"
	"github.com/jra3/instancesync/internal/synccontext"
	"github.com/jra3/instancesync/internal/tree"
	"github.com/jra3/instancesync/internal/vfs"
)

// Options configures a Build run.
type Options struct {
	// ModuleFileName is the module-file naming convention ("init" by
	// default — see synccontext.Context.ModuleName).
	ModuleFileName string

	// ModelDecoder decodes compiled model files (*.rbxm/*.rbxmx). When nil,
	// the model-file middleware still claims those paths and fails with
	// snapshot.ErrUnsupportedModelFile.
	ModelDecoder snapshot.ModelDecoder

	// Verbose, when true, logs each top-level patch as it's applied.
	Verbose bool
}

// Build snapshots projectPath on fsys into a fresh tree.Tree, rooted at the
// project's own class and name. It is the non-incremental case: every sync
// recomputes the whole snapshot and diffs it against a tree holding only a
// root with the snapshot's class, name and metadata, so the patch is mostly
// Added entries, plus a root Update when the snapshot root has properties.
func Build(fsys vfs.FS, projectPath string, opts Options) (*tree.Tree, error) {
	pipeline := snapshot.NewPipeline(opts.ModelDecoder)

	ctx := synccontext.Default()
	if opts.ModuleFileName != "" {
		ctx = ctx.WithModuleName(opts.ModuleFileName)
	}

	inst, err := pipeline.FromVFS(ctx, fsys, projectPath)
	if err != nil {
		return nil, fmt.Errorf("engine: snapshot %s: %w", projectPath, err)
	}
	if inst == nil {
		return nil, fmt.Errorf("engine: %s resolved to no instance", projectPath)
	}

	t := tree.New(tree.InstanceProperties{
		Name:      inst.Name,
		ClassName: inst.ClassName,
		Metadata:  inst.Metadata,
	})

	patch, err := diff.ComputePatch(t, t.GetRootID(), inst)
	if err != nil {
		return nil, fmt.Errorf("engine: diff %s: %w", projectPath, err)
	}
	if opts.Verbose {
		log.Printf("build %s: +%d -%d ~%d", projectPath, len(patch.Added), len(patch.Removed), len(patch.Updated))
	}
	if err := diff.Apply(t, patch); err != nil {
		return nil, fmt.Errorf("engine: apply %s: %w", projectPath, err)
	}

	return t, nil
}

// Sync re-snapshots projectPath and reconciles an already-built tree against
// it in place, returning the patch that was applied. This is the path a
// future watch/incremental mode (DESIGN.md open question 1) would drive
// repeatedly against the same Tree instead of calling Build from scratch.
func Sync(fsys vfs.FS, projectPath string, t *tree.Tree, opts Options) (*diff.PatchSet, error) {
	pipeline := snapshot.NewPipeline(opts.ModelDecoder)

	ctx := synccontext.Default()
	if opts.ModuleFileName != "" {
		ctx = ctx.WithModuleName(opts.ModuleFileName)
	}

	inst, err := pipeline.FromVFS(ctx, fsys, projectPath)
	if err != nil {
		return nil, fmt.Errorf("engine: snapshot %s: %w", projectPath, err)
	}
	if inst == nil {
		return nil, fmt.Errorf("engine: %s resolved to no instance", projectPath)
	}

	patch, err := diff.ComputePatch(t, t.GetRootID(), inst)
	if err != nil {
		return nil, fmt.Errorf("engine: diff %s: %w", projectPath, err)
	}
	if opts.Verbose {
		log.Printf("sync %s: +%d -%d ~%d", projectPath, len(patch.Added), len(patch.Removed), len(patch.Updated))
	}
	if err := diff.Apply(t, patch); err != nil {
		return nil, fmt.Errorf("engine: apply %s: %w", projectPath, err)
	}

	return patch, nil
}
