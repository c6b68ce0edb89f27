package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/common/output"
	"github.com/obentoo/drupdate/internal/plan"
)

var (
	// checkForce ignores cached release history
	checkForce bool
	// checkCSV prints the report as CSV
	checkCSV bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "List packages with a newer release",
	Long: `Scan the project for installed packages and print the update plan.

Examples:
  drupdate check                   Show available updates
  drupdate check --force           Ignore the release history cache
  drupdate check --csv > plan.csv  Export the plan as CSV`,
	Args: cobra.NoArgs,
	Run:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkForce, "force", false, "Ignore cache when checking")
	checkCmd.Flags().BoolVar(&checkCSV, "csv", false, "Print the plan as CSV")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	a, err := loadApp()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	if err := check(cmd.Context(), a, os.Stdout); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func check(ctx context.Context, a *app, w io.Writer) error {
	p, warnings, err := a.buildPlan(ctx, checkForce)
	if err != nil {
		return err
	}
	printWarnings(warnings)

	if checkCSV {
		return output.CSV(w, p.Records())
	}
	return displayPlan(w, p)
}

// displayPlan prints the plan table or the up to date notice
func displayPlan(w io.Writer, p *plan.Plan) error {
	if p.UpToDate() {
		output.PrintSuccess("All packages are up to date")
		return nil
	}

	fmt.Fprintln(w)
	if err := output.Table(w, p.Records()); err != nil {
		return err
	}
	fmt.Fprintln(w)
	output.PrintInfo("Found %d update(s) available", len(p.Packages()))
	output.PrintInfo("Use 'drupdate update' to apply them")
	return nil
}
