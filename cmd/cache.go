package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastkit/internal/config"
	"github.com/jfmyers9/lastkit/pkg/respcache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and expired entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired responses (or all of them with --all)",
	Args:  cobra.NoArgs,
	RunE:  runCachePurge,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd)

	cachePurgeCmd.Flags().Bool("all", false, "Remove every cached response")
}

func openConfiguredCache() (*respcache.Cache, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	cache, err := openCache(cfg.Cache.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open cache: %w", err)
	}
	return cache, cfg.Cache.Path, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cache, path, err := openConfiguredCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	stats, err := cache.Stats(cmd.Context())
	if err != nil {
		return err
	}
	printCacheStats(cmd.OutOrStdout(), path, stats)
	return nil
}

func printCacheStats(out io.Writer, path string, stats respcache.Stats) {
	printFields(out,
		"Path", path,
		"Entries", humanize.Comma(int64(stats.Entries)),
		"Expired", humanize.Comma(int64(stats.Expired)),
		"Size", humanize.Bytes(uint64(stats.Bytes)),
	)
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	cache, _, err := openConfiguredCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	all, _ := cmd.Flags().GetBool("all")
	var n int64
	if all {
		n, err = cache.Clear(cmd.Context())
	} else {
		n, err = cache.Purge(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s cached responses\n", humanize.Comma(n))
	return nil
}
