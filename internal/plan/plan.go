// Package plan cross-references the package inventory with catalog metadata
// and produces the ordered update plan.
package plan

import (
	"path/filepath"
	"strings"

	"github.com/obentoo/drupdate/internal/common/drupal"
	"github.com/obentoo/drupdate/internal/resolver"
)

// Header holds the report column labels, in order
var Header = []string{
	"Package Name",
	"Package Type",
	"Current Version",
	"Latest Version",
	"Update Type",
	"Download Link",
	"File Path",
}

// Row is one package to update. The first row of a Plan is the header row.
type Row struct {
	Name           string
	Kind           drupal.Kind
	CurrentVersion string
	LatestVersion  string
	UpdateType     string
	DownloadLink   string
	Paths          resolver.InstallPaths

	header bool
}

// IsHeader reports whether r is the header row
func (r Row) IsHeader() bool {
	return r.header
}

// IsCore reports whether r updates the core distribution
func (r Row) IsCore() bool {
	return r.Kind == drupal.KindCore
}

// Targets returns the directories an update of r rewrites: the package
// directory below each install path, or the install path itself for core.
func (r Row) Targets() []string {
	dirs := r.Paths.All()
	if r.IsCore() {
		return dirs
	}
	for i, dir := range dirs {
		dirs[i] = filepath.Join(dir, r.Name)
	}
	return dirs
}

// FilePath is the report rendering of Targets
func (r Row) FilePath() string {
	return strings.Join(r.Targets(), ",")
}

// Record returns the report cells of r
func (r Row) Record() []string {
	if r.header {
		return append([]string(nil), Header...)
	}
	return []string{
		r.Name,
		r.Kind.String(),
		r.CurrentVersion,
		r.LatestVersion,
		r.UpdateType,
		r.DownloadLink,
		r.FilePath(),
	}
}

// Plan is the ordered update plan. Rows[0] is always the header row.
type Plan struct {
	Rows []Row
}

// New returns a plan holding only the header row
func New() *Plan {
	return &Plan{Rows: []Row{{header: true}}}
}

// Add appends a package row
func (p *Plan) Add(row Row) {
	row.header = false
	p.Rows = append(p.Rows, row)
}

// UpToDate reports whether the plan holds no package row
func (p *Plan) UpToDate() bool {
	return p == nil || len(p.Rows) <= 1
}

// Len returns the number of rows, header included
func (p *Plan) Len() int {
	return len(p.Rows)
}

// Packages returns the package rows, without the header
func (p *Plan) Packages() []Row {
	if p.UpToDate() {
		return nil
	}
	return p.Rows[1:]
}

// Records returns every row as report cells, header first
func (p *Plan) Records() [][]string {
	records := make([][]string, 0, len(p.Rows))
	for _, row := range p.Rows {
		records = append(records, row.Record())
	}
	return records
}

// Targets returns the directories rewritten by the plan, in row order and
// without duplicates
func (p *Plan) Targets() []string {
	var targets []string
	seen := make(map[string]bool)
	for _, row := range p.Packages() {
		for _, dir := range row.Targets() {
			if !seen[dir] {
				seen[dir] = true
				targets = append(targets, dir)
			}
		}
	}
	return targets
}
