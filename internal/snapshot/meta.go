package snapshot

import (
	"encoding/json"
	"log"
	"path"
	"strings"

	"github.com/jra3/instancesync/internal/manifest"
	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/synccontext"
	"github.com/jra3/instancesync/internal/syncerr"
	"github.com/jra3/instancesync/internal/vfs"
)

// metaSidecarDoc is the wire shape of a <name>.meta.json file: {className?,
// properties?, ignoreUnknownInstances?}.
type metaSidecarDoc struct {
	ClassName              *string                       `json:"className"`
	Properties             map[string]manifest.RawValue  `json:"properties"`
	IgnoreUnknownInstances *bool                         `json:"ignoreUnknownInstances"`
}

// applySidecar looks for a <name>.meta.json sibling of path (where <name> is
// the base name the middleware that produced inst already resolved) and, if
// present, merges its class override, property overrides, and
// ignore-unknown-instances flag into inst. It is not dispatched as a
// standalone middleware — §4.3 is explicit that a sidecar only ever acts on
// its sibling's already-produced snapshot.
func applySidecar(ctx *synccontext.Context, fsys vfs.FS, path_ string, inst *Instance) (*Instance, error) {
	sidecarPath := path.Join(path.Dir(path_), inst.Name+".meta.json")
	if sidecarPath == path_ {
		// inst is itself a .meta.json-claiming result (shouldn't happen,
		// since no middleware claims .meta.json directly, but guards
		// against a self-referential merge regardless).
		return inst, nil
	}

	data, ok, err := readOptional(fsys, sidecarPath)
	if err != nil {
		return nil, syncerr.New(syncerr.KindVfsError, sidecarPath, err)
	}
	if !ok {
		return inst, nil
	}

	var doc metaSidecarDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, syncerr.New(syncerr.KindMalformedProject, sidecarPath, err)
	}

	className := inst.ClassName
	if doc.ClassName != nil {
		className = *doc.ClassName
	}

	if len(doc.Properties) > 0 {
		if inst.Properties == nil {
			inst.Properties = map[string]rbxvalue.Value{}
		}
		for propName, raw := range doc.Properties {
			val, err := Schema.Resolve(className, propName, raw)
			if err != nil {
				return nil, syncerr.New(syncerr.KindUnresolvedValue, sidecarPath+"."+propName, err)
			}
			inst.Properties[propName] = val
		}
	}

	inst.ClassName = className
	if doc.IgnoreUnknownInstances != nil {
		inst.Metadata.IgnoreUnknownInstances = *doc.IgnoreUnknownInstances
	}
	inst.Metadata.RelevantPaths = append(inst.Metadata.RelevantPaths, sidecarPath)
	return inst, nil
}

// warnOrphanedSidecars logs a non-fatal warning (§4.3, §7) for every
// <name>.meta.json entry in a directory whose sibling <name> did not
// resolve to one of children's instances — the sidecar has nothing to
// attach its overrides to.
func warnOrphanedSidecars(dir string, entries []vfs.Entry, children []*Instance) {
	resolved := make(map[string]bool, len(children))
	for _, c := range children {
		resolved[c.Name] = true
	}
	for _, e := range entries {
		if e.IsDir || !strings.HasSuffix(e.Name, ".meta.json") {
			continue
		}
		base := strings.TrimSuffix(e.Name, ".meta.json")
		if !resolved[base] {
			log.Printf("warning: %s has no sibling instance for %s", path.Join(dir, e.Name), base)
		}
	}
}

func readOptional(fsys vfs.FS, path_ string) ([]byte, bool, error) {
	_, exists, err := vfs.Stat(fsys, path_)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	data, err := vfs.ReadFile(fsys, path_)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
