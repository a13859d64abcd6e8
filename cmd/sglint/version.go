package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sglint/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show sglint build information",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	format, err := flags.GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	full, err := flags.GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}
	showHash, err := flags.GetBool("hash")
	if err != nil {
		return fmt.Errorf("failed to get hash flag: %w", err)
	}
	showDate, err := flags.GetBool("date")
	if err != nil {
		return fmt.Errorf("failed to get date flag: %w", err)
	}

	info := version.Current()
	if !full {
		info.GoVersion = ""
		info.Modified = false
		if !showHash {
			info.GitCommit = ""
		}
		if !showDate {
			info.BuildDate = ""
		}
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case "pretty":
		colored, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		printVersion(cmd.OutOrStdout(), info, colored, full || showHash, full || showDate)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func printVersion(out io.Writer, info version.Info, colored, withHash, withDate bool) {
	v := info.Version
	if v == version.Version {
		v = version.Colored(colored)
	}
	fmt.Fprintf(out, "sglint %s\n", v)
	if withHash {
		commit := orUnknown(info.ShortCommit())
		if info.Modified {
			commit += " (modified)"
		}
		fmt.Fprintf(out, "commit: %s\n", commit)
	}
	if withDate {
		fmt.Fprintf(out, "built:  %s\n", orUnknown(info.BuildDate))
	}
	if info.GoVersion != "" {
		fmt.Fprintf(out, "go:     %s\n", info.GoVersion)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
