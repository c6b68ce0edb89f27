package engine

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/otiai10/copy"

	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/plan"
)

// mergeIgnore lists the top-level core entries that are never written into the docroot
var mergeIgnore = map[string]bool{
	".gitignore":    true,
	".htaccess":     true,
	"CHANGELOG.txt": true,
	"sites":         true,
}

// IgnoredByMerge reports whether the top-level core entry name is kept local
func IgnoredByMerge(name string) bool {
	return mergeIgnore[name]
}

// updateCore stages the core release below dir, merges it into dir and
// removes the staging directory together with its archive.
func (e *Engine) updateCore(ctx context.Context, row plan.Row, dir string) error {
	staging := filepath.Join(dir, StagingDirName)
	if err := ensureStaging(staging); err != nil {
		return fmt.Errorf("%w: %w", ErrExtract, err)
	}

	archive := filepath.Join(staging, e.ArchiveName(row.Name))
	if err := e.downloadTo(ctx, row, archive); err != nil {
		return err
	}

	if err := clearStaging(staging, filepath.Base(archive)); err != nil {
		return fmt.Errorf("%w: %w", ErrExtract, err)
	}
	if err := e.extract(archive, staging); err != nil {
		return err
	}

	top, err := extractedRoot(staging, row.DownloadLink, e.archiveExt)
	if err != nil {
		return err
	}
	coreDir := filepath.Join(staging, CoreDirName)
	if top != CoreDirName {
		if err := os.Rename(filepath.Join(staging, top), coreDir); err != nil {
			return fmt.Errorf("%w: %w", ErrExtract, err)
		}
	}

	if err := mergeCore(coreDir, dir); err != nil {
		return err
	}

	logger.Debug("Removing staging directory %s", staging)
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("%w: removing staging directory: %w", ErrMerge, err)
	}
	return nil
}

// ensureStaging creates the staging directory, reusing one left by a prior run
func ensureStaging(staging string) error {
	info, err := os.Stat(staging)
	if err == nil && info.IsDir() {
		logger.Info("Staging directory %s already exists, reusing it", staging)
		return nil
	}
	return os.MkdirAll(staging, 0755)
}

// clearStaging removes every staging entry but the archive, so trees left by
// an interrupted run never mix with the new release
func clearStaging(staging, archiveName string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name() == archiveName {
			continue
		}
		logger.Debug("Removing leftover %s", entry.Name())
		if err := os.RemoveAll(filepath.Join(staging, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// extractedRoot returns the top-level directory unpacked into staging: the
// archive base name (drupal-7.98 for drupal-7.98.tar.gz) when present,
// otherwise the only directory in staging.
func extractedRoot(staging, link, ext string) (string, error) {
	if u, err := url.Parse(link); err == nil {
		name := strings.TrimSuffix(path.Base(u.Path), "."+ext)
		if info, err := os.Stat(filepath.Join(staging, name)); err == nil && info.IsDir() && name != "" {
			return name, nil
		}
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	if len(dirs) != 1 {
		return "", fmt.Errorf("%w: expected one top-level directory in %s, found %d", ErrExtract, staging, len(dirs))
	}
	return dirs[0], nil
}

// mergeCore writes the depth-0 entries of src into dst in name order, skipping
// the ignore list. Directories are mirrored: files are added or overwritten,
// extra destination files are kept.
func mergeCore(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMerge, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if IgnoredByMerge(name) {
			logger.Debug("Keeping local %s", name)
			continue
		}

		from := filepath.Join(src, name)
		to := filepath.Join(dst, name)

		if entry.Type().IsRegular() {
			err = replaceFile(from, to)
		} else {
			err = mirror(from, to)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMerge, name, err)
		}
	}
	return nil
}

// mirror copies src over dst without deleting entries missing from src
func mirror(src, dst string) error {
	logger.Debug("Mirroring %s", dst)
	return copy.Copy(src, dst, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Shallow
		},
		OnDirExists: func(string, string) copy.DirExistsAction {
			return copy.Merge
		},
	})
}

// replaceFile swaps dst for the content of src in a single rename
func replaceFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := os.Stat(dst); os.IsNotExist(err) {
		created, err := os.Create(dst)
		if err != nil {
			return err
		}
		created.Close()
	}

	logger.Debug("Replacing %s", dst)
	return goupdate.Apply(f, goupdate.Options{
		TargetPath: dst,
		TargetMode: info.Mode().Perm(),
	})
}
