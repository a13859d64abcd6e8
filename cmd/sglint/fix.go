package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sglint/internal/config"
	"sglint/internal/driver"
	"sglint/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.sg|directory>",
	Short: "Apply the fix suggestions of reported diagnostics",
	Long: `Lint the target and apply every fix attached to a reported diagnostic,
such as replacing deprecated rule aliases in suppression comments or removing
trailing whitespace. Overlapping fixes are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("dry-run", false, "print the changes without writing files")
	fixCmd.Flags().StringSlice("only", nil, "apply fixes only for these rule or code ids")
}

func runFix(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	target := args[0]
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	only, err := cmd.Flags().GetStringSlice("only")
	if err != nil {
		return fmt.Errorf("failed to get only flag: %w", err)
	}
	env, err := config.LoadEnv(nil)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, env, target)
	if err != nil {
		return err
	}

	paths, err := driver.Targets(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	baseDir := target
	if len(paths) == 1 && paths[0] == target {
		baseDir = filepath.Dir(target)
	}

	linter, err := driver.New(driver.Options{Config: cfg, Jobs: env.Jobs})
	if err != nil {
		return err
	}
	fs, results, err := linter.LintPaths(cmd.Context(), baseDir, paths)
	if err != nil {
		return err
	}

	res, err := fix.Apply(fs, mergedBag(results).Items(), fix.ApplyOptions{Only: only, DryRun: dryRun})
	out := cmd.OutOrStdout()
	if errors.Is(err, fix.ErrNoFixes) {
		fmt.Fprintln(out, "no fixes to apply")
		return nil
	}
	if err != nil {
		return err
	}

	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	verb := color.New(color.FgGreen, color.Bold)
	skip := color.New(color.FgYellow)
	if !colored {
		verb.DisableColor()
		skip.DisableColor()
	}

	label := "fixed"
	if dryRun {
		label = "would fix"
	}
	for _, a := range res.Applied {
		fmt.Fprintf(out, "%s %s: %s (%s)\n", verb.Sprint(label), a.Path, a.Title, a.Label)
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "%s %s (%s): %s\n", skip.Sprint("skipped"), s.Title, s.Label, s.Reason)
	}
	for _, fc := range res.FileChanges {
		fmt.Fprintf(out, "%s: %d edit(s)\n", fc.Path, fc.EditCount)
	}
	return nil
}
