package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sglint/internal/config"
	"sglint/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk result cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached lint result",
	Args:  cobra.NoArgs,
	RunE:  runCacheClean,
}

func init() {
	cacheCleanCmd.Flags().String("cache-dir", "", "result cache directory (default: $XDG_CACHE_HOME/sglint)")
	cacheCmd.AddCommand(cacheCleanCmd)
}

func runCacheClean(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if dir == "" {
		env, envErr := config.LoadEnv(nil)
		if envErr != nil {
			return envErr
		}
		dir = env.CacheDir
	}
	disk, err := driver.OpenDiskCache(dir, "sglint")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := disk.DropAll(); err != nil {
		return fmt.Errorf("failed to remove %q: %w", disk.Dir(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", disk.Dir())
	return nil
}
