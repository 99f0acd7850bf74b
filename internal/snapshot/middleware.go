package snapshot

import (
	"io"
	"io/fs"

	"github.com/jra3/instancesync/internal/synccontext"
	"github.com/jra3/instancesync/internal/vfs"
)

// Middleware recognizes and snapshots one category of VFS entry. The
// pipeline is the only polymorphic site in the package: everything else
// operates on the concrete Instance value a middleware returns.
type Middleware interface {
	// Claims reports whether this middleware should handle path. info is
	// nil when path does not exist (a probed, optional file like
	// default.project.json). fsys is available because some claims (a
	// directory containing default.project.json, or a <module>.lua sibling)
	// require looking at the directory's contents, not just path's own
	// name. ctx is available so the directory-as-script claim can honor the
	// inherited module-file naming convention rather than a hardcoded
	// default.
	Claims(ctx *synccontext.Context, fsys vfs.FS, path string, info fs.FileInfo) bool

	// Snapshot produces path's Instance, or nil if it resolves to nothing
	// (e.g. an empty directory entry filtered by context).
	Snapshot(ctx *synccontext.Context, fsys vfs.FS, path string) (*Instance, error)
}

// ModelDecoder decodes a compiled model file (*.rbxm / *.rbxmx) into an
// Instance. It is defined here, not imported from internal/encode, so that
// encode can depend on snapshot.Instance without snapshot depending back on
// encode — the model-file middleware is handed a decoder, it never
// constructs one.
type ModelDecoder interface {
	Decode(r io.Reader) (*Instance, error)
}

// Pipeline is the ordered dispatch list of middlewares, built once and
// reused for every VFS entry visited during a sync.
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline builds the pipeline with the fixed specificity order from
// the dispatch table: project files first (most specific structural
// claim), then directory-as-script, then plain directories, then the
// single-file middlewares, with plain text last since it claims the widest
// set of extensions.
func NewPipeline(decoder ModelDecoder) *Pipeline {
	p := &Pipeline{}
	p.middlewares = []Middleware{
		&projectMiddleware{pipeline: p},
		&directoryScriptMiddleware{pipeline: p},
		&directoryMiddleware{pipeline: p},
		&scriptMiddleware{},
		&jsonModelMiddleware{},
		&modelFileMiddleware{decoder: decoder},
		&plainTextMiddleware{},
	}
	return p
}

// FromVFS is the pipeline's recursive entry point: resolve path to an
// Instance, or nil if no middleware claims it or the path is ignored.
func (p *Pipeline) FromVFS(ctx *synccontext.Context, fsys vfs.FS, path string) (*Instance, error) {
	if ctx.IsIgnored(path) {
		return nil, nil
	}

	info, _, err := vfs.Stat(fsys, path)
	if err != nil {
		return nil, err
	}

	for _, mw := range p.middlewares {
		if !mw.Claims(ctx, fsys, path, info) {
			continue
		}
		inst, err := mw.Snapshot(ctx, fsys, path)
		if err != nil {
			return nil, err
		}
		if inst == nil {
			return nil, nil
		}
		inst, err = applySidecar(ctx, fsys, path, inst)
		if err != nil {
			return nil, err
		}
		return inst, nil
	}
	return nil, nil
}
