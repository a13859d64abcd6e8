package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sglint/internal/config"
	"sglint/internal/diagfmt"
	"sglint/internal/driver"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [flags] file.sg",
	Short: "Print the tokens and suppression commands of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

func init() {
	tokensCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokens(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	env, err := config.LoadEnv(nil)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, env, filePath)
	if err != nil {
		return err
	}

	result, err := driver.Tokenize(filePath, cfg.Prefix, maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	if result.Bag.Len() > 0 {
		colored, colorErr := useColor(cmd, os.Stderr)
		if colorErr != nil {
			return colorErr
		}
		diagfmt.Pretty(cmd.ErrOrStderr(), result.Bag, result.FileSet, diagfmt.PrettyOpts{Color: colored, Context: 1})
	}

	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), result.Tokens, result.Commands, result.FileSet)
	case "json":
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result.Tokens, result.Commands)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
