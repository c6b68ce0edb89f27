// Package catalog fetches drupal.org release history and normalizes it into
// per-package update metadata.
package catalog

import (
	"errors"

	"github.com/obentoo/drupdate/internal/common/drupal"
)

// Error variables for catalog errors
var (
	// ErrCatalogFetch is returned for network failures, non-200 answers and
	// documents that are not release history
	ErrCatalogFetch = errors.New("catalog fetch failed")
)

// AvailableVersion is the newer release offered for a package
type AvailableVersion struct {
	Version      string `json:"version"`
	DownloadLink string `json:"download_link"`
	// Terms is the raw terms.term payload: a single term record or a sequence of them
	Terms interface{} `json:"terms,omitempty"`
}

// UpdateType returns the release type label of the release
func (a *AvailableVersion) UpdateType() string {
	if a == nil {
		return ""
	}
	return UpdateType(a.Terms)
}

// Metadata is the normalized catalog answer for one package
type Metadata struct {
	Name           string      `json:"name"`
	PackageType    drupal.Kind `json:"package_type"`
	CurrentVersion string      `json:"current_version"`
	// Available is nil when no newer release exists
	Available *AvailableVersion `json:"available_versions,omitempty"`
}

// HasUpdate reports whether a newer release is available
func (m *Metadata) HasUpdate() bool {
	return m != nil && m.Available != nil
}

// Result is the outcome of fetching one package
type Result struct {
	Name     string
	Metadata *Metadata
	Err      error
}

// UpdateType extracts the release type from a terms payload. A sequence yields
// the value of its first element, a single record yields its own value, and
// anything else yields an empty string.
func UpdateType(terms interface{}) string {
	switch t := terms.(type) {
	case []interface{}:
		if len(t) == 0 {
			return ""
		}
		return termValue(t[0])
	case []map[string]interface{}:
		if len(t) == 0 {
			return ""
		}
		return termValue(t[0])
	default:
		return termValue(t)
	}
}

func termValue(term interface{}) string {
	var m map[string]interface{}
	switch t := term.(type) {
	case map[string]interface{}:
		m = t
	case map[string]string:
		return t["value"]
	default:
		return ""
	}
	if v, ok := m["value"].(string); ok {
		return v
	}
	return ""
}
