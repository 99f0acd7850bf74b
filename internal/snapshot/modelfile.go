package snapshot

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/jra3/instancesync/internal/synccontext"
	"github.com/jra3/instancesync/internal/syncerr"
	"github.com/jra3/instancesync/internal/vfs"
)

// ErrUnsupportedModelFile is returned when a *.rbxm/*.rbxmx path is
// encountered but no ModelDecoder was supplied to NewPipeline. The
// middleware still claims the path — it just can't resolve it on its own
// — so the pipeline error is specific rather than "nothing claimed this".
var ErrUnsupportedModelFile = errors.New("model file decoding requires a Decoder")

// modelFileMiddleware delegates to an injected ModelDecoder for compiled
// model files, keeping compiled-binary parsing out of the core pipeline.
type modelFileMiddleware struct {
	decoder ModelDecoder
}

func (m *modelFileMiddleware) Claims(ctx *synccontext.Context, fsys vfs.FS, path_ string, info fs.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	return strings.HasSuffix(path_, ".rbxm") || strings.HasSuffix(path_, ".rbxmx")
}

func (m *modelFileMiddleware) Snapshot(ctx *synccontext.Context, fsys vfs.FS, path_ string) (*Instance, error) {
	if m.decoder == nil {
		return nil, syncerr.New(syncerr.KindUnknownOutputKind, path_, ErrUnsupportedModelFile)
	}
	f, err := fsys.Open(path_)
	if err != nil {
		return nil, syncerr.New(syncerr.KindVfsError, path_, err)
	}
	defer f.Close()

	inst, err := m.decoder.Decode(f)
	if err != nil {
		return nil, syncerr.New(syncerr.KindMalformedProject, path_, err)
	}
	return inst, nil
}
