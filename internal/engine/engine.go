// Package engine applies an update plan: it downloads release archives,
// extracts them over the installed packages and merges the core distribution
// into the docroot.
package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/plan"
)

const (
	// DefaultArchiveExt is the release archive format published on drupal.org
	DefaultArchiveExt = "tar.gz"
	// StagingDirName is the core staging directory created below the docroot
	StagingDirName = "temp_drupal_core"
	// CoreDirName is the fixed name of the extracted core tree inside staging
	CoreDirName = "drupal"
)

// Downloader streams a URL into a local file
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// ResultFunc is called once per package row after it was applied or failed
type ResultFunc func(row plan.Row, err error)

// Engine applies update plans
type Engine struct {
	downloader Downloader
	archiveExt string
	onResult   ResultFunc
	remove     func(path string) error
}

// Option is a functional option for configuring Engine
type Option func(*Engine)

// WithArchiveExt sets the release archive extension (tar.gz, tgz or zip)
func WithArchiveExt(ext string) Option {
	return func(e *Engine) {
		if ext = strings.TrimPrefix(ext, "."); ext != "" {
			e.archiveExt = ext
		}
	}
}

// WithResultFunc registers a callback receiving the outcome of every package
func WithResultFunc(fn ResultFunc) Option {
	return func(e *Engine) {
		e.onResult = fn
	}
}

// New creates an Engine downloading through d
func New(d Downloader, opts ...Option) *Engine {
	e := &Engine{
		downloader: d,
		archiveExt: DefaultArchiveExt,
		remove:     os.Remove,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetRemoveFunc replaces the function used to delete archives during cleanup
func (e *Engine) SetRemoveFunc(fn func(path string) error) {
	e.remove = fn
}

// ArchiveName returns the archive file name of package name
func (e *Engine) ArchiveName(name string) string {
	return name + "." + e.archiveExt
}

// Update applies p and removes the leftover archives. It returns false
// without error when p holds only the header row.
func (e *Engine) Update(ctx context.Context, p *plan.Plan) (bool, error) {
	if p.UpToDate() {
		return false, nil
	}

	if err := e.Apply(ctx, p); err != nil {
		return false, err
	}

	e.Cleanup(p)
	return true, nil
}

// Apply updates every package row in plan order, and every install path in
// order. The first failure aborts the run; packages updated before it stay
// updated.
func (e *Engine) Apply(ctx context.Context, p *plan.Plan) error {
	for _, row := range p.Packages() {
		if row.DownloadLink == "" {
			logger.Warn("No download link for %s %s, skipping", row.Name, row.LatestVersion)
			continue
		}

		for _, dir := range row.Paths.All() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var err error
			if row.IsCore() {
				err = e.updateCore(ctx, row, dir)
			} else {
				err = e.updatePackage(ctx, row, dir)
			}
			if err != nil {
				err = &UpdateError{Package: row.Name, Path: dir, Err: err}
				e.report(row, err)
				return err
			}
		}

		logger.Info("Updated %s to %s", row.Name, row.LatestVersion)
		e.report(row, nil)
	}
	return nil
}

func (e *Engine) report(row plan.Row, err error) {
	if e.onResult != nil {
		e.onResult(row, err)
	}
}

// downloadTo fetches the release archive of row into dest
func (e *Engine) downloadTo(ctx context.Context, row plan.Row, dest string) error {
	logger.Info("Downloading %s %s", row.Name, row.LatestVersion)
	logger.Debug("GET %s -> %s", row.DownloadLink, dest)

	if err := e.downloader.Download(ctx, row.DownloadLink, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return nil
}
