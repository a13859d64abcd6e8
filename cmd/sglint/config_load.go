package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sglint/internal/config"
)

// loadConfig picks the configuration for target: --config, then
// SGLINT_CONFIG, then the nearest file above target.
func loadConfig(cmd *cobra.Command, env config.Env, target string) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		path = env.ConfigPath
	}
	if path != "" {
		return config.Load(path)
	}

	start := target
	if info, statErr := os.Stat(target); statErr == nil && !info.IsDir() {
		start = filepath.Dir(target)
	}
	return config.Discover(start)
}
