package inventory

import (
	"fmt"

	"github.com/obentoo/drupdate/internal/common/drupal"
	"github.com/obentoo/drupdate/internal/common/logger"
)

// PackageRecord describes one installed project
type PackageRecord struct {
	Name           string
	Kind           drupal.Kind // Empty until the catalog or an override classifies it
	CurrentVersion string
	APIVersion     string   // Descriptor "core" key, e.g. 7.x
	Paths          []string // Raw descriptor paths in discovery order; core has none
}

// BuildRecords parses the first descriptor of every inventoried package and
// returns one record per project in discovery order. A package whose "project"
// key names another project is folded into that project, which is how the core
// modules (project = "drupal") yield a single drupal record without paths.
func BuildRecords(inv *Inventory, parser DescriptorParser) ([]*PackageRecord, error) {
	if parser == nil {
		parser = DefaultParser
	}

	var records []*PackageRecord
	byName := make(map[string]*PackageRecord)

	record := func(name string) *PackageRecord {
		if r, ok := byName[name]; ok {
			return r
		}
		r := &PackageRecord{Name: name}
		byName[name] = r
		records = append(records, r)
		return r
	}

	for _, name := range inv.Names() {
		paths := inv.Paths(name)
		desc, err := parser.Parse(paths[0], RecordKeys)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", name, err)
		}

		project := desc.Get(KeyProject)
		if project != "" && project != name {
			// Member of another project: contributes version info only
			r := record(project)
			if r.CurrentVersion == "" {
				r.CurrentVersion = desc.Get(KeyVersion)
			}
			if r.APIVersion == "" {
				r.APIVersion = desc.Get(KeyCore)
			}
			logger.Debug("%s belongs to project %s", name, project)
			continue
		}

		r := record(name)
		r.Paths = append(r.Paths, paths...)
		if v := desc.Get(KeyVersion); v != "" {
			r.CurrentVersion = v
		}
		if api := desc.Get(KeyCore); api != "" {
			r.APIVersion = api
		}
	}

	for _, r := range records {
		if r.Name == drupal.CoreProject {
			r.Kind = drupal.KindCore
		}
	}

	return records, nil
}
