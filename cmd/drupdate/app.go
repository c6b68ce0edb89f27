package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/obentoo/drupdate/internal/catalog"
	"github.com/obentoo/drupdate/internal/common/config"
	"github.com/obentoo/drupdate/internal/common/httpclient"
	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/common/output"
	"github.com/obentoo/drupdate/internal/inventory"
	"github.com/obentoo/drupdate/internal/plan"
	"github.com/obentoo/drupdate/internal/project"
	"github.com/obentoo/drupdate/internal/resolver"
)

// errNotDrupal7 is returned when the project root holds no .info descriptor
var errNotDrupal7 = errors.New("not a Drupal 7 project: no .info files found")

// app holds the configuration shared by the commands of one invocation
type app struct {
	cfg  *config.Config
	root string
}

// loadApp reads the configuration and resolves the project root
func loadApp() (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFlag != "" {
		cfg, err = config.LoadFrom(configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := cfg.ResolveRoot(rootFlag, cwd)
	if err != nil {
		return nil, err
	}

	logger.Debug("Project root: %s", root)
	return &app{cfg: cfg, root: root}, nil
}

// httpClient returns a retrying client configured from the http section
func (a *app) httpClient() *httpclient.Client {
	return httpclient.NewWithConfig(httpclient.RetryConfig{
		MaxRetries: a.cfg.HTTP.MaxRetries,
		BaseDelay:  a.cfg.HTTP.BaseDelay,
		MaxDelay:   a.cfg.HTTP.MaxDelay,
		Timeout:    a.cfg.HTTP.Timeout,
	})
}

// resolver returns the path resolver for the configured layout
func (a *app) resolver() resolver.Resolver {
	return resolver.Resolver{
		Root:       a.root,
		Docroot:    a.cfg.DocrootDir(a.root),
		ModulesDir: a.cfg.ModulesDir(a.root),
	}
}

// catalogCache opens the release-history cache; nil disables caching
func (a *app) catalogCache() *catalog.Cache {
	dir, err := catalog.DefaultCacheDir()
	if err != nil {
		logger.Warn("catalog cache disabled: %v", err)
		return nil
	}
	cache, err := catalog.NewCache(dir, catalog.WithTTL(a.cfg.Catalog.CacheTTL))
	if err != nil {
		logger.Warn("catalog cache disabled: %v", err)
		return nil
	}
	return cache
}

// buildPlan scans the project and checks every package against the catalog
func (a *app) buildPlan(ctx context.Context, force bool) (*plan.Plan, []plan.Warning, error) {
	if !inventory.IsDrupal7Project(a.root) {
		return nil, nil, fmt.Errorf("%w: %s", errNotDrupal7, a.root)
	}

	inv, err := inventory.Scan(a.root)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", a.root, err)
	}
	records, err := inventory.BuildRecords(inv, inventory.DefaultParser)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Found %d installed package(s)", len(records))

	overrides, err := project.LoadOverrides(a.root)
	if err != nil {
		return nil, nil, err
	}

	opts := []catalog.ClientOption{
		catalog.WithBaseURL(a.cfg.Catalog.URL),
		catalog.WithHTTPClient(a.httpClient()),
		catalog.WithForce(force),
	}
	if cache := a.catalogCache(); cache != nil {
		opts = append(opts, catalog.WithCache(cache))
	}

	planner := plan.NewPlanner(catalog.NewClient(opts...), a.resolver(),
		plan.WithOverrides(overrides),
		plan.WithAPIVersion(a.cfg.Catalog.APIVersion),
	)
	p, warnings := planner.Plan(ctx, records)
	return p, warnings, nil
}

// printWarnings reports the packages left out of the plan on stderr
func printWarnings(warnings []plan.Warning) {
	for _, w := range warnings {
		logger.Warn("%v", w)
	}
	if len(warnings) > 0 {
		output.PrintWarning("%d package(s) could not be checked", len(warnings))
	}
}
