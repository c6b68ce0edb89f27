package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrDownload indicates a release archive could not be fetched.
	ErrDownload = errors.New("archive download failed")

	// ErrExtract indicates a release archive could not be unpacked.
	ErrExtract = errors.New("archive extraction failed")

	// ErrMerge indicates the core tree could not be merged into the docroot.
	ErrMerge = errors.New("core merge failed")

	// ErrLocked indicates another update holds the project lock.
	ErrLocked = errors.New("another update is running")

	// ErrUnsupportedArchive indicates an archive extension with no extractor.
	ErrUnsupportedArchive = errors.New("unsupported archive format")
)

// UpdateError reports the package and install path whose update aborted the run
type UpdateError struct {
	Package string
	Path    string
	Err     error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("updating %s in %s: %v", e.Package, e.Path, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}
