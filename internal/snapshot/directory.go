package snapshot

import (
	"io/fs"
	"path"

	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/synccontext"
	"github.com/jra3/instancesync/internal/syncerr"
	"github.com/jra3/instancesync/internal/tree"
	"github.com/jra3/instancesync/internal/vfs"
)

// directoryScriptMiddleware promotes a directory containing a
// <module>.lua/.server.lua/.client.lua file to a script instance, absorbing
// the directory's other entries as its children. It must be dispatched
// before directoryMiddleware, and projectMiddleware must be dispatched
// before it, since a directory holding default.project.json is a project,
// never a script, even if it also happens to contain an init file.
type directoryScriptMiddleware struct {
	pipeline *Pipeline
}

func (m *directoryScriptMiddleware) Claims(ctx *synccontext.Context, fsys vfs.FS, path_ string, info fs.FileInfo) bool {
	if info == nil || !info.IsDir() {
		return false
	}
	_, ok := m.findModuleFile(ctx, fsys, path_)
	return ok
}

func (m *directoryScriptMiddleware) findModuleFile(ctx *synccontext.Context, fsys vfs.FS, dir string) (moduleFile string, ok bool) {
	entries, err := vfs.ReadDir(fsys, dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		if base, _, claimed := scriptClassFor(e.Name); claimed && base == ctx.ModuleName {
			return e.Name, true
		}
	}
	return "", false
}

func (m *directoryScriptMiddleware) Snapshot(ctx *synccontext.Context, fsys vfs.FS, path_ string) (*Instance, error) {
	moduleFile, ok := m.findModuleFile(ctx, fsys, path_)
	if !ok {
		return nil, nil
	}

	modulePath := path.Join(path_, moduleFile)
	text, err := vfs.ReadFile(fsys, modulePath)
	if err != nil {
		return nil, syncerr.New(syncerr.KindVfsError, modulePath, err)
	}
	_, className, _ := scriptClassFor(moduleFile)

	inst := &Instance{
		Name:       path.Base(path_),
		ClassName:  className,
		Properties: map[string]rbxvalue.Value{"Source": rbxvalue.String(string(text))},
		Metadata: tree.Metadata{
			// See snapshot/plaintext.go: a $path target's own snapshot
			// defaults to false, not the ProjectNode "default true" rule.
			RelevantPaths: []string{path_, modulePath},
		},
	}

	entries, err := vfs.ReadDir(fsys, path_)
	if err != nil {
		return nil, syncerr.New(syncerr.KindVfsError, path_, err)
	}
	for _, e := range entries {
		if e.Name == moduleFile {
			continue
		}
		childPath := path.Join(path_, e.Name)
		child, err := m.pipeline.FromVFS(ctx, fsys, childPath)
		if err != nil {
			return nil, err
		}
		if child != nil {
			inst.Children = append(inst.Children, child)
		}
	}
	warnOrphanedSidecars(path_, entries, inst.Children)
	return inst, nil
}

// directoryMiddleware creates a Folder instance per ordinary directory.
type directoryMiddleware struct {
	pipeline *Pipeline
}

func (m *directoryMiddleware) Claims(ctx *synccontext.Context, fsys vfs.FS, path_ string, info fs.FileInfo) bool {
	return info != nil && info.IsDir()
}

func (m *directoryMiddleware) Snapshot(ctx *synccontext.Context, fsys vfs.FS, path_ string) (*Instance, error) {
	entries, err := vfs.ReadDir(fsys, path_)
	if err != nil {
		return nil, syncerr.New(syncerr.KindVfsError, path_, err)
	}

	inst := &Instance{
		Name:      path.Base(path_),
		ClassName: "Folder",
		Metadata: tree.Metadata{
			// See snapshot/plaintext.go: a $path target's own snapshot
			// defaults to false, not the ProjectNode "default true" rule.
			RelevantPaths: []string{path_},
		},
	}
	for _, e := range entries {
		childPath := path.Join(path_, e.Name)
		child, err := m.pipeline.FromVFS(ctx, fsys, childPath)
		if err != nil {
			return nil, err
		}
		if child != nil {
			inst.Children = append(inst.Children, child)
		}
	}
	warnOrphanedSidecars(path_, entries, inst.Children)
	return inst, nil
}
