package engine

import (
	"os"
	"path/filepath"

	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/plan"
)

// Cleanup removes the archives left by non-core updates and returns the
// removed paths. The header row and core rows are skipped: core removes its
// archive with the staging directory. A missing archive is not an error.
func (e *Engine) Cleanup(p *plan.Plan) []string {
	var removed []string

	for i, row := range p.Rows {
		if i == 0 || row.IsHeader() || row.IsCore() {
			continue
		}

		for _, dir := range row.Paths.All() {
			archive := filepath.Join(dir, e.ArchiveName(row.Name))
			if err := e.remove(archive); err != nil {
				if os.IsNotExist(err) {
					logger.Info("No archive to remove at %s", archive)
				} else {
					logger.Warn("Failed to remove %s: %v", archive, err)
				}
				continue
			}
			logger.Debug("Removed %s", archive)
			removed = append(removed, archive)
		}
	}

	return removed
}
