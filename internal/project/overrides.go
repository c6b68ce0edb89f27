// Package project loads per-project package overrides from .drupdate.toml.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/obentoo/drupdate/internal/common/drupal"
)

// OverridesFile is the overrides file name at the project root
const OverridesFile = ".drupdate.toml"

// Error variables for override errors
var (
	// ErrInvalidKind is returned when an override names an unknown package kind
	ErrInvalidKind = errors.New("invalid kind: must be core, module, theme or profile")
)

// PackageOverride adjusts how one package is planned.
type PackageOverride struct {
	// Ignore excludes the package from every plan
	Ignore bool `toml:"ignore,omitempty"`
	// Kind replaces the classification reported by the catalog
	Kind string `toml:"kind,omitempty"`
	// Reason is a free-text note shown when the package is skipped
	Reason string `toml:"reason,omitempty"`
}

// Overrides holds every package override of a project, keyed by package name
type Overrides struct {
	Packages map[string]PackageOverride
}

// overridesFile matches the TOML layout where each [package] section is a top-level key
type overridesFile map[string]PackageOverride

// LoadOverrides reads root/.drupdate.toml. A missing file yields empty overrides.
func LoadOverrides(root string) (*Overrides, error) {
	o := &Overrides{Packages: make(map[string]PackageOverride)}

	path := filepath.Join(root, OverridesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return o, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", OverridesFile, err)
	}

	var file overridesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", OverridesFile, err)
	}
	for name, override := range file {
		o.Packages[name] = override
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks every override, reporting the first invalid one in name order
func (o *Overrides) Validate() error {
	names := make([]string, 0, len(o.Packages))
	for name := range o.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if k := o.Packages[name].Kind; k != "" {
			if _, ok := drupal.ParseKind(k); !ok {
				return fmt.Errorf("package %s: %w: got %q", name, ErrInvalidKind, k)
			}
		}
	}
	return nil
}

// Ignored reports whether name is excluded, with the configured reason
func (o *Overrides) Ignored(name string) (bool, string) {
	if o == nil {
		return false, ""
	}
	override, ok := o.Packages[name]
	return ok && override.Ignore, override.Reason
}

// Kind returns the kind override of name, if any
func (o *Overrides) Kind(name string) (drupal.Kind, bool) {
	if o == nil {
		return "", false
	}
	override, ok := o.Packages[name]
	if !ok || override.Kind == "" {
		return "", false
	}
	return drupal.ParseKind(override.Kind)
}

// Save writes the overrides to root/.drupdate.toml
func (o *Overrides) Save(root string) error {
	f, err := os.Create(filepath.Join(root, OverridesFile))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", OverridesFile, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(overridesFile(o.Packages)); err != nil {
		return fmt.Errorf("failed to write %s: %w", OverridesFile, err)
	}
	return nil
}
