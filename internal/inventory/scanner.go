// Package inventory discovers installed Drupal packages from their .info
// descriptor files and builds one PackageRecord per project.
package inventory

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DescriptorExt is the extension of package descriptor files
const DescriptorExt = ".info"

// StagingDirName is the core staging directory; descriptors below it are never inventoried.
const StagingDirName = "temp_drupal_core"

// skipDirs are never descended into while scanning
var skipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	StagingDirName: true,
}

// Inventory maps package names to the absolute paths of their descriptor files.
// Names keep the order in which they were first discovered.
type Inventory struct {
	names []string
	paths map[string][]string
}

// NewInventory creates an empty inventory
func NewInventory() *Inventory {
	return &Inventory{paths: make(map[string][]string)}
}

// Add registers a descriptor path under name
func (inv *Inventory) Add(name, path string) {
	if _, ok := inv.paths[name]; !ok {
		inv.names = append(inv.names, name)
	}
	inv.paths[name] = append(inv.paths[name], path)
}

// Names returns package names in discovery order
func (inv *Inventory) Names() []string {
	return append([]string(nil), inv.names...)
}

// Paths returns the descriptor paths of a package in discovery order
func (inv *Inventory) Paths(name string) []string {
	return append([]string(nil), inv.paths[name]...)
}

// Len returns the number of packages
func (inv *Inventory) Len() int {
	return len(inv.names)
}

// Scan walks root for descriptor files and groups them by package name, taken
// from the directory that contains the descriptor. Only the main descriptor of a
// package (views/views.info) registers a location. Sub-module descriptors such as
// views/views_ui.info ship inside the enclosing project archive.
func Scan(root string) (*Inventory, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(absRoot); err != nil {
		return nil, err
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", absRoot)
	}

	inv := NewInventory()
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != DescriptorExt || !isDescriptorFile(path, d) {
			return nil
		}

		name := filepath.Base(filepath.Dir(path))
		if strings.TrimSuffix(d.Name(), DescriptorExt) != name {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			realPath = path
		}
		inv.Add(name, realPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", absRoot, err)
	}

	return inv, nil
}

// isDescriptorFile reports whether d is a regular file or a symlink to one
func isDescriptorFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDrupal7Project reports whether root holds at least one descriptor file
// outside vendor/.
func IsDrupal7Project(root string) bool {
	if root == "" {
		return false
	}

	found := false
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found {
			return filepath.SkipDir
		}
		if d.IsDir() {
			if d.Name() == "vendor" || (path != root && skipDirs[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == DescriptorExt {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
