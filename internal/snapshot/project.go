package snapshot

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/jra3/instancesync/internal/manifest"
	"github.com/jra3/instancesync/internal/rbxvalue"
	"github.com/jra3/instancesync/internal/resolve"
	"github.com/jra3/instancesync/internal/synccontext"
	"github.com/jra3/instancesync/internal/syncerr"
	"github.com/jra3/instancesync/internal/tree"
	"github.com/jra3/instancesync/internal/vfs"
)

const defaultProjectFileName = "default.project.json"

// Schema is injected into the pipeline so the project, jsonModel and meta
// middlewares never need to construct their own resolver. Assign a
// resolve.Schema directly for a small project, or a *resolve.CachedSchema to
// memoize property-type lookups across a large one. An empty schema only
// matters for untagged $properties values.
var Schema resolve.Resolver = resolve.Schema(nil)

// projectMiddleware handles *.project.json files and directories holding a
// default.project.json, the hardest middleware in the pipeline: it resolves
// $className/$path/$properties overrides, recurses into child nodes and
// $path targets (including nested project files), and stamps the
// project-file instigating source onto the traversal root.
type projectMiddleware struct {
	pipeline *Pipeline
}

func (m *projectMiddleware) Claims(ctx *synccontext.Context, fsys vfs.FS, path_ string, info fs.FileInfo) bool {
	if strings.HasSuffix(path_, ".project.json") {
		return true
	}
	if info != nil && info.IsDir() {
		return vfs.Exists(fsys, path.Join(path_, defaultProjectFileName))
	}
	return false
}

func (m *projectMiddleware) Snapshot(ctx *synccontext.Context, fsys vfs.FS, path_ string) (*Instance, error) {
	projectFilePath := path_
	if !strings.HasSuffix(path_, ".project.json") {
		projectFilePath = path.Join(path_, defaultProjectFileName)
	}

	absProjectPath, err := filepath.Abs(projectFilePath)
	if err != nil {
		absProjectPath = projectFilePath
	}
	if ctx.IsVisitingProject(absProjectPath) {
		return nil, syncerr.New(syncerr.KindProjectCycle, projectFilePath,
			fmt.Errorf("project file %q references itself via a $path cycle", absProjectPath))
	}

	data, err := vfs.ReadFile(fsys, projectFilePath)
	if err != nil {
		return nil, syncerr.New(syncerr.KindVfsError, projectFilePath, err)
	}

	proj, err := manifest.Parse(data, projectFilePath)
	if err != nil {
		return nil, syncerr.New(syncerr.KindMalformedProject, projectFilePath, err)
	}

	childCtx := ctx.AddVisitingProject(absProjectPath)
	if len(proj.GlobIgnorePaths) > 0 {
		rules := make([]synccontext.IgnoreRule, len(proj.GlobIgnorePaths))
		for i, g := range proj.GlobIgnorePaths {
			rules[i] = synccontext.IgnoreRule{Glob: g, BasePath: proj.Folder}
		}
		childCtx = childCtx.AddIgnoreRules(rules...)
	}

	inst, err := m.snapshotNode(childCtx, fsys, proj.Folder, proj.Name, proj.Tree)
	if err != nil {
		return nil, err
	}

	// The project-file root's instigating source supersedes the
	// ProjectNode source stamped by snapshotNode, and only the root gets
	// the project file itself as a relevant path.
	inst.Metadata.InstigatingSource = tree.InstigatingSource{
		Kind: tree.SourcePath,
		Path: projectFilePath,
	}
	inst.Metadata.RelevantPaths = append(inst.Metadata.RelevantPaths, projectFilePath)
	return inst, nil
}

// snapshotNode resolves one ProjectNode (and its subtree) against the
// project folder it was declared in.
func (m *projectMiddleware) snapshotNode(ctx *synccontext.Context, fsys vfs.FS, projectFolder, name string, node *manifest.ProjectNode) (*Instance, error) {
	var pathSnapshot *Instance
	var err error
	if node.Path != nil {
		resolvedPath := *node.Path
		if !filepath.IsAbs(resolvedPath) {
			resolvedPath = filepath.Join(projectFolder, resolvedPath)
		}
		pathSnapshot, err = m.pipeline.FromVFS(ctx, fsys, resolvedPath)
		if err != nil {
			return nil, err
		}
	}

	className, err := resolveClassName(name, node, pathSnapshot)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		Name:      name,
		ClassName: className,
		Properties: map[string]rbxvalue.Value{},
	}

	if pathSnapshot != nil {
		for k, v := range pathSnapshot.Properties {
			inst.Properties[k] = v
		}
		inst.Children = append(inst.Children, pathSnapshot.Children...)
		inst.Metadata = pathSnapshot.Metadata.Clone()
	}

	for propName, raw := range node.Properties {
		val, err := Schema.Resolve(className, propName, raw)
		if err != nil {
			return nil, syncerr.New(syncerr.KindUnresolvedValue, name+"."+propName, err)
		}
		inst.Properties[propName] = val
	}

	for _, child := range node.Children {
		childInst, err := m.snapshotNode(ctx, fsys, projectFolder, child.Name, child.Node)
		if err != nil {
			return nil, err
		}
		inst.Children = append(inst.Children, childInst)
	}

	switch {
	case node.IgnoreUnknownInstances != nil:
		inst.Metadata.IgnoreUnknownInstances = *node.IgnoreUnknownInstances
	case node.Path == nil:
		inst.Metadata.IgnoreUnknownInstances = true
	}

	inst.Metadata.InstigatingSource = tree.InstigatingSource{
		Kind:          tree.SourceProjectNode,
		ProjectFolder: projectFolder,
		NodeName:      name,
		Node:          node,
	}

	return inst, nil
}

func resolveClassName(nodeName string, node *manifest.ProjectNode, pathSnapshot *Instance) (string, error) {
	switch {
	case node.ClassName != nil && node.Path != nil:
		if pathSnapshot != nil && pathSnapshot.ClassName != "Folder" {
			return "", syncerr.New(syncerr.KindClassMixViolation, *node.Path,
				fmt.Errorf("$className set alongside $path yielding non-Folder class %q", pathSnapshot.ClassName))
		}
		return *node.ClassName, nil
	case node.ClassName != nil:
		return *node.ClassName, nil
	case node.Path != nil:
		if pathSnapshot == nil {
			return "", syncerr.New(syncerr.KindMissingClass, *node.Path,
				fmt.Errorf("$path %q produced no snapshot and no $className was given", *node.Path))
		}
		return pathSnapshot.ClassName, nil
	default:
		return "", syncerr.New(syncerr.KindMissingClass, nodeName,
			fmt.Errorf("node has neither $className nor $path"))
	}
}
