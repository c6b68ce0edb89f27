package plan

import (
	"context"
	"fmt"

	"github.com/obentoo/drupdate/internal/catalog"
	"github.com/obentoo/drupdate/internal/common/drupal"
	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/inventory"
	"github.com/obentoo/drupdate/internal/project"
	"github.com/obentoo/drupdate/internal/resolver"
)

// DefaultAPIVersion is used for packages whose descriptor has no core key
const DefaultAPIVersion = "7.x"

// Fetcher returns the catalog result for one package
type Fetcher interface {
	FetchResult(ctx context.Context, name, currentVersion, api string) catalog.Result
}

var _ Fetcher = (*catalog.Client)(nil)

// Warning reports a package left out of the plan because of an error
type Warning struct {
	Package string
	Err     error
}

func (w Warning) Error() string {
	if w.Package == "" {
		return w.Err.Error()
	}
	return fmt.Sprintf("%s: %v", w.Package, w.Err)
}

func (w Warning) Unwrap() error {
	return w.Err
}

// Planner builds update plans
type Planner struct {
	fetcher   Fetcher
	resolver  resolver.Resolver
	overrides *project.Overrides
	api       string
}

// Option is a functional option for configuring Planner
type Option func(*Planner)

// WithOverrides applies per-project ignore and kind overrides
func WithOverrides(o *project.Overrides) Option {
	return func(p *Planner) {
		p.overrides = o
	}
}

// WithAPIVersion sets the API version used when a descriptor has none
func WithAPIVersion(api string) Option {
	return func(p *Planner) {
		if api != "" {
			p.api = api
		}
	}
}

// NewPlanner creates a Planner
func NewPlanner(fetcher Fetcher, r resolver.Resolver, opts ...Option) *Planner {
	p := &Planner{
		fetcher:  fetcher,
		resolver: r,
		api:      DefaultAPIVersion,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan fetches metadata for every record, in order, and returns the plan of the
// packages that have a newer release. Packages whose metadata or install paths
// could not be determined are reported as warnings instead of aborting.
func (p *Planner) Plan(ctx context.Context, records []*inventory.PackageRecord) (*Plan, []Warning) {
	result := New()
	var warnings []Warning

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			warnings = append(warnings, Warning{Err: err})
			break
		}

		if ignored, reason := p.overrides.Ignored(record.Name); ignored {
			if reason != "" {
				logger.Info("Skipping %s: %s", record.Name, reason)
			} else {
				logger.Info("Skipping %s", record.Name)
			}
			continue
		}

		api := record.APIVersion
		if api == "" {
			api = p.api
		}

		logger.Debug("Checking %s %s (%s)", record.Name, record.CurrentVersion, api)
		res := p.fetcher.FetchResult(ctx, record.Name, record.CurrentVersion, api)
		if res.Err != nil {
			warnings = append(warnings, Warning{Package: res.Name, Err: res.Err})
			continue
		}
		meta := res.Metadata
		if !meta.HasUpdate() {
			continue
		}

		kind := p.kind(record, meta)
		paths, err := p.resolver.Resolve(record.Name, kind, record.Paths)
		if err != nil {
			warnings = append(warnings, Warning{Package: record.Name, Err: err})
			continue
		}
		if paths.IsMulti() {
			logger.Info("%s is installed in %d locations", record.Name, paths.Len())
		}

		result.Add(Row{
			Name:           record.Name,
			Kind:           kind,
			CurrentVersion: record.CurrentVersion,
			LatestVersion:  meta.Available.Version,
			UpdateType:     meta.Available.UpdateType(),
			DownloadLink:   meta.Available.DownloadLink,
			Paths:          paths,
		})
	}

	return result, warnings
}

// kind resolves the package classification: override, then inventory, then catalog
func (p *Planner) kind(record *inventory.PackageRecord, meta *catalog.Metadata) drupal.Kind {
	if k, ok := p.overrides.Kind(record.Name); ok {
		return k
	}
	if record.Kind != "" {
		return record.Kind
	}
	if meta.PackageType != "" {
		return meta.PackageType
	}
	return drupal.KindModule
}
