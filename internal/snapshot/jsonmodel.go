package snapshot

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/jra3/instancesync/internal/manifest"
	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/synccontext"
	"github.com/jra3/instancesync/internal/syncerr"
	"github.com/jra3/instancesync/internal/tree"
	"github.com/jra3/instancesync/internal/vfs"
)

// jsonModelDoc is the flat shape of a *.model.json file: a single instance
// plus nested children, properties resolved through the same Value
// Resolver the project middleware uses.
type jsonModelDoc struct {
	ClassName string                        `json:"ClassName"`
	Properties map[string]manifest.RawValue `json:"Properties"`
	Children  []jsonModelDoc                `json:"Children"`
	Name      string                        `json:"Name"`
}

type jsonModelMiddleware struct{}

func (m *jsonModelMiddleware) Claims(ctx *synccontext.Context, fsys vfs.FS, path_ string, info fs.FileInfo) bool {
	return info != nil && !info.IsDir() && strings.HasSuffix(path_, ".model.json")
}

func (m *jsonModelMiddleware) Snapshot(ctx *synccontext.Context, fsys vfs.FS, path_ string) (*Instance, error) {
	data, err := vfs.ReadFile(fsys, path_)
	if err != nil {
		return nil, syncerr.New(syncerr.KindVfsError, path_, err)
	}

	var doc jsonModelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, syncerr.New(syncerr.KindMalformedProject, path_, err)
	}

	name := doc.Name
	if name == "" {
		base := path.Base(path_)
		name = strings.TrimSuffix(base, ".model.json")
	}

	inst, err := jsonModelToInstance(name, &doc)
	if err != nil {
		return nil, syncerr.New(syncerr.KindUnresolvedValue, path_, err)
	}
	inst.Metadata = tree.Metadata{
		// See snapshot/plaintext.go: a $path target's own snapshot defaults
		// to false, not the ProjectNode "default true" rule.
		RelevantPaths: []string{path_},
	}
	return inst, nil
}

func jsonModelToInstance(name string, doc *jsonModelDoc) (*Instance, error) {
	if doc.ClassName == "" {
		return nil, syncerr.New(syncerr.KindMissingClass, name, fmt.Errorf("model json node has no ClassName"))
	}
	inst := &Instance{Name: name, ClassName: doc.ClassName}
	if len(doc.Properties) > 0 {
		inst.Properties = make(map[string]rbxvalue.Value, len(doc.Properties))
		for propName, raw := range doc.Properties {
			val, err := Schema.Resolve(doc.ClassName, propName, raw)
			if err != nil {
				return nil, err
			}
			inst.Properties[propName] = val
		}
	}
	for _, child := range doc.Children {
		childName := child.Name
		if childName == "" {
			childName = child.ClassName
		}
		childInst, err := jsonModelToInstance(childName, &child)
		if err != nil {
			return nil, err
		}
		inst.Children = append(inst.Children, childInst)
	}
	return inst, nil
}
