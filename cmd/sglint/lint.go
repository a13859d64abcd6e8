package main

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"sglint/internal/baseline"
	"sglint/internal/config"
	"sglint/internal/diag"
	"sglint/internal/diagfmt"
	"sglint/internal/driver"
	"sglint/internal/observ"
	"sglint/internal/rule"
	"sglint/internal/source"
	"sglint/internal/version"
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] <file.sg|directory>",
	Short: "Lint a surge source file or every *.sg file in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	lintCmd.Flags().Int("jobs", 0, "max parallel workers (0 = GOMAXPROCS, default from SGLINT_JOBS)")
	lintCmd.Flags().String("ui", "off", "progress UI for directories (auto|on|off)")
	lintCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	lintCmd.Flags().Bool("ignore-warnings", false, "drop warnings from the output")
	lintCmd.Flags().Bool("warnings-as-errors", false, "report warnings as errors")
	lintCmd.Flags().Bool("with-notes", false, "include diagnostic notes")
	lintCmd.Flags().Bool("suggest", false, "include fix suggestions")
	lintCmd.Flags().Bool("preview", false, "show fix suggestions applied to the source line")
	lintCmd.Flags().Bool("file-timings", false, "attach a timing diagnostic to every file")
	lintCmd.Flags().Bool("no-cache", false, "do not read or write cached results")
	lintCmd.Flags().String("cache-dir", "", "result cache directory (default: $XDG_CACHE_HOME/sglint)")
	lintCmd.Flags().String("baseline", "", "hide violations recorded in this baseline file")
	lintCmd.Flags().String("write-baseline", "", "record every current violation in this baseline file")
}

type lintFlags struct {
	format           string
	jobs             int
	ui               autoMode
	pathMode         diagfmt.PathMode
	ignoreWarnings   bool
	warningsAsErrors bool
	withNotes        bool
	suggest          bool
	preview          bool
	fileTimings      bool
	noCache          bool
	cacheDir         string
	baseline         string
	writeBaseline    string
	maxDiagnostics   int
	timings          bool
}

func readLintFlags(cmd *cobra.Command, env config.Env) (lintFlags, error) {
	var (
		f   lintFlags
		err error
	)
	flags := cmd.Flags()
	if f.format, err = flags.GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f.format {
	case "pretty", "short", "json", "sarif":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !flags.Changed("jobs") {
		f.jobs = env.Jobs
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = parseAutoMode("ui", uiStr); err != nil {
		return f, err
	}
	pathStr, err := flags.GetString("path-mode")
	if err != nil {
		return f, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if f.pathMode, ok = diagfmt.ParsePathMode(pathStr); !ok {
		return f, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|relative|basename)", pathStr)
	}
	if f.ignoreWarnings, err = flags.GetBool("ignore-warnings"); err != nil {
		return f, fmt.Errorf("failed to get ignore-warnings flag: %w", err)
	}
	if f.warningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
		return f, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if f.ignoreWarnings && f.warningsAsErrors {
		return f, fmt.Errorf("ignore-warnings and warnings-as-errors flags cannot be used together")
	}
	if f.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.suggest, err = flags.GetBool("suggest"); err != nil {
		return f, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if f.preview, err = flags.GetBool("preview"); err != nil {
		return f, fmt.Errorf("failed to get preview flag: %w", err)
	}
	if f.fileTimings, err = flags.GetBool("file-timings"); err != nil {
		return f, fmt.Errorf("failed to get file-timings flag: %w", err)
	}
	if f.noCache, err = flags.GetBool("no-cache"); err != nil {
		return f, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if f.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return f, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if f.cacheDir == "" {
		f.cacheDir = env.CacheDir
	}
	if f.baseline, err = flags.GetString("baseline"); err != nil {
		return f, fmt.Errorf("failed to get baseline flag: %w", err)
	}
	if f.writeBaseline, err = flags.GetString("write-baseline"); err != nil {
		return f, fmt.Errorf("failed to get write-baseline flag: %w", err)
	}
	if f.maxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return f, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return f, nil
}

// runLint lints the target and prints the diagnostics. It exits 1 when any
// violation or error is reported and 2 when a file could not be resolved.
func runLint(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	target := args[0]
	env, err := config.LoadEnv(nil)
	if err != nil {
		return err
	}
	f, err := readLintFlags(cmd, env)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, env, target)
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	var cache *driver.Cache
	if !f.noCache {
		disk, diskErr := driver.OpenDiskCache(f.cacheDir, "sglint")
		if diskErr != nil {
			// linting still works without persistence
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache disabled: %v\n", diskErr)
		}
		if cache, err = driver.NewCache(driver.DefaultCacheSize, disk); err != nil {
			return fmt.Errorf("failed to create cache: %w", err)
		}
	}
	var timings *observ.Aggregate
	if f.timings {
		timings = observ.NewAggregate()
	}
	var known *baseline.Baseline
	if f.baseline != "" {
		if known, err = baseline.Load(f.baseline); err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}
	}

	opts := driver.Options{
		Config:           cfg,
		Jobs:             f.jobs,
		MaxDiagnostics:   f.maxDiagnostics,
		Cache:            cache,
		Timings:          timings,
		FileTimings:      f.fileTimings,
		IgnoreWarnings:   f.ignoreWarnings,
		WarningsAsErrors: f.warningsAsErrors,
		Baseline:         known,
	}

	paths, err := driver.Targets(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	baseDir := target
	if len(paths) == 1 && paths[0] == target {
		baseDir = filepath.Dir(target)
	}

	var (
		fs      *source.FileSet
		results []driver.FileResult
		linter  *driver.Linter
	)
	// the progress view draws on stdout
	if len(paths) > 1 && f.ui.enabled(os.Stdout) {
		fs, results, linter, err = runLintWithUI(cmd.Context(), target, baseDir, paths, opts)
	} else {
		if linter, err = driver.New(opts); err != nil {
			return err
		}
		fs, results, err = linter.LintPaths(cmd.Context(), baseDir, paths)
	}
	if err != nil {
		return err
	}

	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	if err := renderResults(cmd.OutOrStdout(), f, colored, fs, results, linter); err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", r.Err)
		}
	}
	if f.writeBaseline != "" {
		n, err := writeBaseline(f.writeBaseline, fs, results)
		if err != nil {
			return fmt.Errorf("failed to write baseline: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "baseline: %d violation(s) written to %s\n", n, f.writeBaseline)
	}
	if f.timings {
		printTimings(cmd.ErrOrStderr(), timings, cache)
	}

	if driver.Unresolved(results) {
		return &exitError{code: exitUnresolved}
	}
	if failed(results) {
		return &exitError{code: exitViolations}
	}
	return nil
}

// writeBaseline records every violation still present, including those an
// existing baseline hid, and returns how many were written.
func writeBaseline(path string, fs *source.FileSet, results []driver.FileResult) (int, error) {
	b, err := baseline.ForFile(path)
	if err != nil {
		return 0, err
	}
	for _, r := range results {
		if !r.Loaded || r.Err != nil {
			continue
		}
		vs := append(slices.Clone(r.Reported), r.Baselined...)
		slices.SortStableFunc(vs, func(x, y rule.Violation) int { return cmp.Compare(x.Pos(), y.Pos()) })
		b.Add(fs.Get(r.FileID), vs)
	}
	if err := b.Write(path); err != nil {
		return 0, err
	}
	return b.Len(), nil
}

// failed reports whether any file has an error or a rule finding left in
// its bag.
func failed(results []driver.FileResult) bool {
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		if r.Bag.HasErrors() || slices.ContainsFunc(r.Bag.Items(), func(d diag.Diagnostic) bool { return d.Rule != "" }) {
			return true
		}
	}
	return false
}

func renderResults(out io.Writer, f lintFlags, colored bool, fs *source.FileSet, results []driver.FileResult, linter *driver.Linter) error {
	showFixes := f.suggest || f.preview
	switch f.format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:       colored,
			Context:     1,
			PathMode:    f.pathMode,
			ShowNotes:   f.withNotes,
			ShowFixes:   showFixes,
			ShowPreview: f.preview,
		}
		printed := 0
		for _, r := range results {
			if r.Bag == nil || r.Bag.Len() == 0 {
				continue
			}
			if len(results) > 1 {
				if printed > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "== %s ==\n", fs.Get(r.FileID).FormatPath(f.pathMode.String(), fs.BaseDir()))
			}
			diagfmt.Pretty(out, r.Bag, fs, prettyOpts)
			printed++
		}
		return nil
	case "short":
		for _, r := range results {
			if r.Bag != nil {
				diagfmt.Short(out, r.Bag, fs, f.pathMode)
			}
		}
		return nil
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         f.pathMode,
			IncludeNotes:     f.withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  f.preview,
		}
		if err := diagfmt.JSON(out, mergedBag(results), fs, jsonOpts, summarize(results)); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		return nil
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "sglint",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		}
		for _, r := range linter.Registry().Rules() {
			d := r.Descriptor()
			meta.Rules = append(meta.Rules, diagfmt.SarifRule{ID: string(d.ID), Name: d.Name, Description: d.Description})
		}
		if err := diagfmt.Sarif(out, mergedBag(results), fs, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

func mergedBag(results []driver.FileResult) *diag.Bag {
	bag := diag.NewBag(0)
	for _, r := range results {
		bag.Merge(r.Bag)
	}
	return bag
}

func summarize(results []driver.FileResult) *diagfmt.SummaryJSON {
	s := &diagfmt.SummaryJSON{Files: len(results)}
	for _, r := range results {
		s.Reported += len(r.Reported)
		s.Suppressed += len(r.Suppressed)
		s.Baselined += len(r.Baselined)
		s.Findings += len(r.Findings)
		if r.Err != nil || (r.Bag != nil && r.Bag.HasErrors()) {
			s.Errors++
		}
	}
	return s
}

// relTitle shortens target for the progress header.
func relTitle(target string) string {
	if wd, err := os.Getwd(); err == nil {
		if rel, relErr := source.RelativePath(target, wd); relErr == nil {
			target = rel
		}
	}
	return "sglint " + strings.TrimSuffix(target, "/")
}
