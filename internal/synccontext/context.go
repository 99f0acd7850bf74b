// Package synccontext carries the configuration that the snapshot middleware
// pipeline inherits as it recurses: the module-file naming convention and the
// active set of path-ignore globs. A Context is never mutated in place; each
// extension (a project file adding its own ignore rules, for instance)
// returns a clone so sibling subtrees don't observe each other's additions.
package synccontext

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreRule is a single glob pattern, matched against paths relative to
// BasePath (normally the folder containing the project file that declared
// the rule).
type IgnoreRule struct {
	Glob     string
	BasePath string
}

// Context is the inherited configuration threaded through a snapshot run.
type Context struct {
	ModuleName       string
	IgnoreRules      []IgnoreRule
	visitingProjects []string
}

// Default returns the context a top-level sync starts from.
func Default() *Context {
	return &Context{ModuleName: "init"}
}

func (c *Context) clone() *Context {
	clone := &Context{
		ModuleName:       c.ModuleName,
		IgnoreRules:      append([]IgnoreRule(nil), c.IgnoreRules...),
		visitingProjects: append([]string(nil), c.visitingProjects...),
	}
	return clone
}

// WithModuleName returns a clone of c using the given module-file
// convention name (the "init" in init.lua / init.server.lua / ...).
func (c *Context) WithModuleName(name string) *Context {
	clone := c.clone()
	clone.ModuleName = name
	return clone
}

// AddIgnoreRules returns a clone of c with additional ignore rules appended.
func (c *Context) AddIgnoreRules(rules ...IgnoreRule) *Context {
	clone := c.clone()
	clone.IgnoreRules = append(clone.IgnoreRules, rules...)
	return clone
}

// AddVisitingProject returns a clone of c recording that absPath (an
// absolute project file path) is currently being resolved, so that a cycle
// of $path references between project files can be detected.
func (c *Context) AddVisitingProject(absPath string) *Context {
	clone := c.clone()
	clone.visitingProjects = append(clone.visitingProjects, absPath)
	return clone
}

// IsVisitingProject reports whether absPath is already being resolved
// somewhere up the current recursion stack.
func (c *Context) IsVisitingProject(absPath string) bool {
	for _, p := range c.visitingProjects {
		if p == absPath {
			return true
		}
	}
	return false
}

// IsIgnored reports whether path matches any of the accumulated ignore
// rules.
func (c *Context) IsIgnored(path string) bool {
	cleanPath := filepath.ToSlash(filepath.Clean(path))
	for _, rule := range c.IgnoreRules {
		base := filepath.ToSlash(filepath.Clean(rule.BasePath))
		rel := cleanPath
		if strings.HasPrefix(cleanPath, base+"/") {
			rel = strings.TrimPrefix(cleanPath, base+"/")
		} else if cleanPath == base {
			rel = "."
		} else if !strings.HasPrefix(rule.Glob, "/") {
			// Glob isn't necessarily rooted under BasePath; also try
			// matching the full path directly.
			rel = cleanPath
		}

		if ok, _ := doublestar.Match(rule.Glob, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(rule.Glob, cleanPath); ok {
			return true
		}
	}
	return false
}
