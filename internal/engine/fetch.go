package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"

	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/plan"
)

// updatePackage replaces dir/<name> with the tree of the new release. The
// downloaded archive stays in dir until Cleanup.
func (e *Engine) updatePackage(ctx context.Context, row plan.Row, dir string) error {
	archive := filepath.Join(dir, e.ArchiveName(row.Name))
	if err := e.downloadTo(ctx, row, archive); err != nil {
		return err
	}

	target := filepath.Join(dir, row.Name)
	logger.Debug("Removing %s", target)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("%w: removing %s: %w", ErrExtract, target, err)
	}

	return e.extract(archive, dir)
}

// extract unpacks archive into dest, overwriting like-named entries
func (e *Engine) extract(archive, dest string) error {
	u, err := newUnarchiver(e.archiveExt)
	if err != nil {
		return err
	}

	logger.Debug("Extracting %s into %s", archive, dest)
	if err := u.Unarchive(archive, dest); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExtract, filepath.Base(archive), err)
	}
	return nil
}

func newUnarchiver(ext string) (archiver.Unarchiver, error) {
	switch ext {
	case "tar.gz", "tgz":
		tgz := archiver.NewTarGz()
		tgz.OverwriteExisting = true
		return tgz, nil
	case "zip":
		z := archiver.NewZip()
		z.OverwriteExisting = true
		return z, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchive, ext)
	}
}
