package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/common/output"
)

var (
	verbose    bool
	quiet      bool
	noColor    bool
	logToFile  bool
	rootFlag   string
	configFlag string
)

var rootCmd = &cobra.Command{
	Use:   "drupdate",
	Short: "Drupal 7 package updater",
	Long: `Check installed Drupal 7 core, modules, themes and profiles against the
drupal.org release history and apply the available updates in place.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging based on flags
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
		if logToFile {
			if err := logger.Default().EnableFileLogging(); err != nil {
				logger.Warn("file logging disabled: %v", err)
			}
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log-file", false, "Also write logs to the drupdate log directory")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Drupal project root (default: configured root or current directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: ~/.config/drupdate/config.yaml)")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	logger.Default().Close()
	if err != nil {
		output.PrintError("%v", err)
		os.Exit(1)
	}
}
