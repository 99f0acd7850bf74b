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

// plainTextExtensions lists the suffixes this middleware claims, matched
// last in the dispatch list since it's the widest net in the table.
var plainTextExtensions = []string{".txt", ".csv"}

// plainTextMiddleware turns a flat text file into a StringValue instance
// holding the file's contents verbatim.
type plainTextMiddleware struct{}

func (m *plainTextMiddleware) Claims(ctx *synccontext.Context, fsys vfs.FS, path_ string, info fs.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	base := path.Base(path_)
	for _, ext := range plainTextExtensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

func (m *plainTextMiddleware) Snapshot(ctx *synccontext.Context, fsys vfs.FS, path_ string) (*Instance, error) {
	text, err := vfs.ReadFile(fsys, path_)
	if err != nil {
		return nil, syncerr.New(syncerr.KindVfsError, path_, err)
	}

	base := path.Base(path_)
	name := base
	for _, ext := range plainTextExtensions {
		if strings.HasSuffix(base, ext) {
			name = strings.TrimSuffix(base, ext)
			break
		}
	}

	return &Instance{
		Name:       name,
		ClassName:  "StringValue",
		Properties: map[string]rbxvalue.Value{"Value": rbxvalue.String(string(text))},
		Metadata: tree.Metadata{
			// IgnoreUnknownInstances defaults false here: the "default
			// true" rule in §4.3 belongs only to a $path-less ProjectNode,
			// not to the snapshot a $path target itself produces.
			RelevantPaths: []string{path_},
		},
	}, nil
}
