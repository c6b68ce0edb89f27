// Package resolver turns the raw descriptor locations of a package into the
// directories its release archive is extracted into.
package resolver

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/obentoo/drupdate/internal/common/drupal"
)

// ErrNoRoot is returned when the resolver has no project root
var ErrNoRoot = errors.New("project root is not set")

// InstallPaths is a one-or-many set of absolute install directories.
// It is never empty and never holds an empty string.
type InstallPaths struct {
	paths []string
}

// Single returns InstallPaths holding one directory
func Single(path string) InstallPaths {
	return InstallPaths{paths: []string{path}}
}

// Multi returns InstallPaths holding several directories in order
func Multi(paths ...string) InstallPaths {
	return InstallPaths{paths: append([]string(nil), paths...)}
}

// All returns the directories in order
func (p InstallPaths) All() []string {
	return append([]string(nil), p.paths...)
}

// Len returns the number of directories
func (p InstallPaths) Len() int {
	return len(p.paths)
}

// IsMulti reports whether the package is installed in more than one location
func (p InstallPaths) IsMulti() bool {
	return len(p.paths) > 1
}

// String joins the directories with commas
func (p InstallPaths) String() string {
	return strings.Join(p.paths, ",")
}

// Resolver resolves install paths against an explicit project layout
type Resolver struct {
	// Root is the absolute project root; relative candidates are anchored here
	Root string
	// Docroot is the default target for non-module packages (<root>/docroot)
	Docroot string
	// ModulesDir is the default target for modules (<root>/docroot/sites/all/modules)
	ModulesDir string
}

// New creates a Resolver with the default Drupal 7 layout below root
func New(root string) Resolver {
	docroot := filepath.Join(root, "docroot")
	return Resolver{
		Root:       root,
		Docroot:    docroot,
		ModulesDir: filepath.Join(docroot, "sites", "all", "modules"),
	}
}

// Resolve returns the install directories of package name. Each raw value may
// hold several comma-separated descriptor paths; no raw value at all counts as
// one empty value. The "<name>/<name>.info" suffix is stripped from every path.
// An empty result falls back to ModulesDir for modules and Docroot otherwise.
// Resolve never modifies raw.
func (r Resolver) Resolve(name string, kind drupal.Kind, raw []string) (InstallPaths, error) {
	if r.Root == "" {
		return InstallPaths{}, ErrNoRoot
	}

	values := splitRaw(raw)
	suffix := name + "/" + name + ".info"

	paths := make([]string, 0, len(values))
	for _, value := range values {
		candidate := strings.TrimSpace(strings.TrimSuffix(filepath.ToSlash(value), suffix))
		paths = append(paths, r.target(candidate, kind))
	}

	if len(paths) == 1 {
		return Single(paths[0]), nil
	}
	return Multi(paths...), nil
}

func (r Resolver) target(candidate string, kind drupal.Kind) string {
	if candidate == "" {
		if kind == drupal.KindModule {
			return r.ModulesDir
		}
		return r.Docroot
	}
	return r.canonical(candidate)
}

// canonical anchors relative paths at Root, cleans them and resolves symlinks
// when the path exists
func (r Resolver) canonical(path string) string {
	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Root, path)
	}
	path = filepath.Clean(path)
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	return path
}

// splitRaw expands comma-separated raw values
func splitRaw(raw []string) []string {
	if len(raw) == 0 {
		return []string{""}
	}

	var values []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			values = append(values, strings.TrimSpace(part))
		}
	}
	return values
}
