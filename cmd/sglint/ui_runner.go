package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sglint/internal/driver"
	"sglint/internal/source"
	"sglint/internal/ui"
)

type lintOutcome struct {
	fs      *source.FileSet
	results []driver.FileResult
	err     error
}

// runLintWithUI lints paths while a progress view renders the events.
func runLintWithUI(ctx context.Context, target, baseDir string, paths []string, opts driver.Options) (*source.FileSet, []driver.FileResult, *driver.Linter, error) {
	events := make(chan driver.Event, 256)
	opts.Progress = driver.ChannelSink{Ch: events}
	linter, err := driver.New(opts)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomeCh := make(chan lintOutcome, 1)
	go func() {
		fs, results, err := linter.LintPaths(ctx, baseDir, paths)
		outcomeCh <- lintOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(relTitle(target), paths, events, cancel)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// keep workers unblocked if the view quit early
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, linter, uiErr
	}
	return outcome.fs, outcome.results, linter, outcome.err
}
