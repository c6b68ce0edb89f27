package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/obentoo/drupdate/internal/catalog"
	"github.com/obentoo/drupdate/internal/common/logger"
	"github.com/obentoo/drupdate/internal/common/output"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the release history cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached release history answer",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cache := openCache()
		if err := cache.Clear(); err != nil {
			logger.Error("failed to clear cache: %v", err)
			os.Exit(1)
		}
		output.PrintSuccess("Cache cleared")
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired release history answers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cache := openCache()
		before := cache.Len()
		if err := cache.Cleanup(); err != nil {
			logger.Error("failed to prune cache: %v", err)
			os.Exit(1)
		}
		output.PrintSuccess("Removed %d expired entries, %d left", before-cache.Len(), cache.Len())
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() *catalog.Cache {
	a, err := loadApp()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	dir, err := catalog.DefaultCacheDir()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	cache, err := catalog.NewCache(dir, catalog.WithTTL(a.cfg.Catalog.CacheTTL))
	if err != nil {
		logger.Error("failed to open cache: %v", err)
		os.Exit(1)
	}
	return cache
}
