package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/obentoo/drupdate/internal/common/git"
	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/common/output"
	"github.com/obentoo/drupdate/internal/engine"
	"github.com/obentoo/drupdate/internal/history"
	"github.com/obentoo/drupdate/internal/plan"
)

var (
	// updateForce ignores cached release history
	updateForce bool
	// updateCommit commits the updated tree
	updateCommit bool
)

// errNotRepository is returned by --commit outside a git work tree
var errNotRepository = errors.New("project root is not a git repository")

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download and apply available updates",
	Long: `Download every package with a newer release and merge it into the project.

Contributed packages are replaced in place. The core distribution is staged in
temp_drupal_core and merged into the docroot, keeping sites, .htaccess,
.gitignore and CHANGELOG.txt untouched.

Examples:
  drupdate update            Apply all available updates
  drupdate update --commit   Apply and commit the result`,
	Args: cobra.NoArgs,
	Run:  runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "Ignore cache when checking")
	updateCmd.Flags().BoolVar(&updateCommit, "commit", false, "Commit the updated packages")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	a, err := loadApp()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	p, updated, err := update(cmd.Context(), a, os.Stdout)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	if !updated || !updateCommit {
		return
	}

	if err := commitUpdates(git.NewGitRunner(a.root), a, p); err != nil {
		logger.Error("commit failed: %v", err)
		os.Exit(1)
	}
}

// update applies the plan while holding the project lock. The history entries
// of the planned packages follow the outcome of every package.
func update(ctx context.Context, a *app, w io.Writer) (*plan.Plan, bool, error) {
	lock, err := engine.AcquireLock(a.root)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release %s: %v", lock.Path(), err)
		}
	}()

	p, warnings, err := a.buildPlan(ctx, updateForce)
	if err != nil {
		return nil, false, err
	}
	printWarnings(warnings)

	hist := openHistory(a.root)
	recordPlanned(hist, p)

	e := engine.New(a.httpClient(),
		engine.WithArchiveExt(a.cfg.Archive.Extension),
		engine.WithResultFunc(func(row plan.Row, err error) {
			recordResult(hist, row, err)
		}),
	)

	updated, err := e.Update(ctx, p)
	if err != nil {
		return p, false, err
	}
	if !updated {
		output.Success.Fprintln(w, "✓ Branch already up to date")
		return p, false, nil
	}

	displayUpdated(w, p)
	return p, true, nil
}

// openHistory opens the history of root; nil disables recording
func openHistory(root string) *history.History {
	dir, err := history.DefaultDir()
	if err != nil {
		logger.Warn("update history disabled: %v", err)
		return nil
	}
	hist, err := history.Open(dir, root)
	if err != nil {
		logger.Warn("update history disabled: %v", err)
		return nil
	}
	return hist
}

func recordPlanned(hist *history.History, p *plan.Plan) {
	if hist == nil {
		return
	}
	for _, row := range p.Packages() {
		if err := hist.Plan(row.Name, row.CurrentVersion, row.LatestVersion, row.UpdateType); err != nil {
			logger.Warn("failed to record %s: %v", row.Name, err)
		}
	}
}

func recordResult(hist *history.History, row plan.Row, err error) {
	if hist == nil {
		return
	}
	status, msg := history.StatusApplied, ""
	if err != nil {
		status, msg = history.StatusFailed, err.Error()
	}
	if err := hist.SetStatus(row.Name, status, msg); err != nil {
		logger.Warn("failed to record %s: %v", row.Name, err)
	}
}

// displayUpdated prints the updated packages report
func displayUpdated(w io.Writer, p *plan.Plan) {
	fmt.Fprintln(w)
	output.Header.Fprintln(w, "Updated packages")
	fmt.Fprintln(w)
	if err := output.Table(w, p.Records()); err != nil {
		logger.Warn("failed to print report: %v", err)
	}
	fmt.Fprintln(w)
	output.PrintSuccess("Updated %d package(s)", len(p.Packages()))
}

// commitUpdates stages the directories rewritten by the plan and commits them
func commitUpdates(g git.GitExecutor, a *app, p *plan.Plan) error {
	if !g.IsRepository() {
		return fmt.Errorf("%w: %s", errNotRepository, g.WorkDir())
	}

	entries, err := g.Status()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		output.PrintInfo("Nothing to commit")
		return nil
	}

	user, email, err := a.cfg.GetGitUser()
	if err != nil {
		return err
	}

	if err := g.Add(p.Targets()...); err != nil {
		return err
	}

	message := p.CommitMessage()
	if err := g.Commit(message, user, email); err != nil {
		return err
	}

	output.PrintSuccess("Committed: %s", firstLine(message))
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
