package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/common/output"
	"github.com/obentoo/drupdate/internal/history"
)

var (
	// historyStatus filters entries by status
	historyStatus string
	// historyClear removes every entry
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the update history of the project",
	Long: `List the updates planned, applied or failed for the current project.

Examples:
  drupdate history                  List every recorded update
  drupdate history --status failed  List failed updates
  drupdate history --clear          Forget the recorded updates`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Only show entries with this status (planned, applied, failed)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Remove every entry")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	a, err := loadApp()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	dir, err := history.DefaultDir()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	hist, err := history.Open(dir, a.root)
	if err != nil {
		logger.Error("failed to load history: %v", err)
		os.Exit(1)
	}

	if historyClear {
		if err := hist.Clear(); err != nil {
			logger.Error("failed to clear history: %v", err)
			os.Exit(1)
		}
		output.PrintSuccess("History cleared")
		return
	}

	var entries []history.Entry
	if historyStatus != "" {
		status := history.Status(historyStatus)
		if !history.IsValidStatus(status) {
			logger.Error("%v: %q", history.ErrInvalidStatus, historyStatus)
			os.Exit(1)
		}
		entries = hist.ListByStatus(status)
	} else {
		entries = hist.List()
	}

	displayHistory(entries)
}

// displayHistory formats and displays history entries
func displayHistory(entries []history.Entry) {
	if len(entries) == 0 {
		logger.Info("No recorded updates")
		return
	}

	fmt.Println()
	output.Header.Println("Update History")
	fmt.Println()

	for _, e := range entries {
		statusStr := getStatusColor(e.Status).Sprintf("[%s]", e.Status)

		fmt.Printf("  %s\n", output.FormatPackage(e.Package))
		fmt.Printf("    Version: %s → %s\n", e.From, e.To)
		if e.UpdateType != "" {
			fmt.Printf("    Type:    %s\n", output.FormatUpdateType(e.UpdateType))
		}
		fmt.Printf("    Status:  %s\n", statusStr)
		if e.Error != "" {
			output.Error.Printf("    Error:   %s\n", e.Error)
		}
		fmt.Printf("    Updated: %s\n", e.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	output.Info.Printf("Total: %d update(s)\n", len(entries))
}

// getStatusColor returns the appropriate color for a history status
func getStatusColor(status history.Status) *color.Color {
	switch status {
	case history.StatusPlanned:
		return output.Warning
	case history.StatusApplied:
		return output.Success
	case history.StatusFailed:
		return output.Error
	default:
		return output.Dim
	}
}
