package catalog

import (
	"fmt"
	"strings"

	"github.com/clbanning/mxj/v2"

	"github.com/obentoo/drupdate/internal/common/drupal"
)

const statusPublished = "published"

// ParseReleaseHistory converts a release-history XML document into metadata
// for name. currentVersion is the installed version; the first published,
// non-dev release newer than it (in feed order) becomes the available version.
func ParseReleaseHistory(name, currentVersion string, body []byte) (*Metadata, error) {
	doc, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: malformed XML: %v", ErrCatalogFetch, name, err)
	}
	return Normalize(name, currentVersion, doc)
}

// Normalize turns the nested map of a release-history document into Metadata
func Normalize(name, currentVersion string, doc map[string]interface{}) (*Metadata, error) {
	if msg, ok := doc["error"]; ok {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogFetch, name, msg)
	}

	project, ok := doc["project"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s: not a release history document", ErrCatalogFetch, name)
	}

	meta := &Metadata{
		Name:           name,
		PackageType:    drupal.KindFromProjectType(stringValue(project["type"])),
		CurrentVersion: currentVersion,
	}

	releases, _ := project["releases"].(map[string]interface{})
	for _, item := range asSlice(releases["release"]) {
		release, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if status := stringValue(release["status"]); status != "" && status != statusPublished {
			continue
		}

		version := stringValue(release["version"])
		if version == "" || drupal.IsDevVersion(version) || stringValue(release["version_extra"]) == "dev" {
			continue
		}
		if currentVersion != "" && drupal.CompareVersions(version, currentVersion) <= 0 {
			continue
		}

		meta.Available = &AvailableVersion{
			Version:      version,
			DownloadLink: stringValue(release["download_link"]),
			Terms:        termsPayload(release["terms"]),
		}
		break
	}

	return meta, nil
}

// termsPayload returns the terms.term value of a release: a single record or a sequence
func termsPayload(terms interface{}) interface{} {
	m, ok := terms.(map[string]interface{})
	if !ok {
		return nil
	}
	return m["term"]
}

// asSlice wraps a single element so repeated and single XML elements read alike
func asSlice(v interface{}) []interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return t
	default:
		return []interface{}{t}
	}
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
