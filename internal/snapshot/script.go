package snapshot

import (
	"io/fs"
	"path"
	"strings"

	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/synccontext"
	"github.com/jra3/instancesync/internal/syncerr"
	"github.com/jra3/instancesync/internal/tree"
	"github.com/jra3/instancesync/internal/vfs"
)

// scriptClassFor maps a file name to the module-name base it would promote
// (the name with its script suffix stripped) and the instance class that
// suffix selects. ok is false for any name that isn't a recognized script
// file.
func scriptClassFor(name string) (base, className string, ok bool) {
	switch {
	case strings.HasSuffix(name, ".server.lua"):
		return strings.TrimSuffix(name, ".server.lua"), "Script", true
	case strings.HasSuffix(name, ".client.lua"):
		return strings.TrimSuffix(name, ".client.lua"), "LocalScript", true
	case strings.HasSuffix(name, ".lua"):
		return strings.TrimSuffix(name, ".lua"), "ModuleScript", true
	default:
		return "", "", false
	}
}

// scriptMiddleware handles a bare *.lua/*.server.lua/*.client.lua file that
// directoryScriptMiddleware didn't already absorb.
type scriptMiddleware struct{}

func (m *scriptMiddleware) Claims(ctx *synccontext.Context, fsys vfs.FS, path_ string, info fs.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	_, _, ok := scriptClassFor(path.Base(path_))
	return ok
}

func (m *scriptMiddleware) Snapshot(ctx *synccontext.Context, fsys vfs.FS, path_ string) (*Instance, error) {
	base, className, _ := scriptClassFor(path.Base(path_))
	text, err := vfs.ReadFile(fsys, path_)
	if err != nil {
		return nil, syncerr.New(syncerr.KindVfsError, path_, err)
	}
	return &Instance{
		Name:       base,
		ClassName:  className,
		Properties: map[string]rbxvalue.Value{"Source": rbxvalue.String(string(text))},
		Metadata: tree.Metadata{
			// See plaintext.go: a $path target's own snapshot defaults to
			// false, not the ProjectNode "default true" rule.
			RelevantPaths: []string{path_},
		},
	}, nil
}
