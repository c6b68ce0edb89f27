// Package drupal holds the vocabulary shared by the inventory, catalog and engine:
// package kinds and drupal.org release version ordering.
package drupal

import "strings"

// Kind classifies an installed package.
type Kind string

const (
	KindCore    Kind = "core"
	KindModule  Kind = "module"
	KindTheme   Kind = "theme"
	KindProfile Kind = "profile"
)

// CoreProject is the project name of the core distribution.
const CoreProject = "drupal"

// ValidKinds returns all known kinds
func ValidKinds() []Kind {
	return []Kind{KindCore, KindModule, KindTheme, KindProfile}
}

// IsValid checks if the kind is one of the known kinds
func (k Kind) IsValid() bool {
	for _, valid := range ValidKinds() {
		if k == valid {
			return true
		}
	}
	return false
}

// String returns the report label of the kind
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a user supplied kind ("module", "Theme") into a Kind.
// The second return value is false for unknown input.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.IsValid()
}

// KindFromProjectType maps the catalog <type> element (project_core, project_module, ...)
// onto a Kind. Unknown types are treated as modules.
func KindFromProjectType(t string) Kind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "project_core":
		return KindCore
	case "project_theme", "project_theme_engine":
		return KindTheme
	case "project_distribution", "project_profile":
		return KindProfile
	default:
		return KindModule
	}
}
