package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"sglint/internal/diag"
	"sglint/internal/region"
	"sglint/internal/source"
	"sglint/internal/trace"
)

// SourceExt is the extension of lintable files.
const SourceExt = ".sg"

// listSGFiles returns every *.sg file under dir in sorted order. Hidden
// directories are skipped.
func listSGFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// Targets expands a path into the files to lint. A file is taken as is,
// whatever its extension.
func Targets(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	return listSGFiles(path)
}

// LintPaths lints every file in paths concurrently, at most jobs at a time.
// Results come back in input order. Load failures become IO4001
// diagnostics on that file; the run continues. The returned error is
// non-nil only when ctx was cancelled.
func (l *Linter) LintPaths(ctx context.Context, baseDir string, paths []string) (*source.FileSet, []FileResult, error) {
	fileSet := source.NewFileSetWithBase(baseDir)
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	ctx, span := trace.Start(ctx, trace.ScopeRun, "lint")
	defer func() { span.Set("files", len(paths)).End("") }()

	// the FileSet is not safe for concurrent writes, so load up front
	fileIDs := make([]source.FileID, len(paths))
	loadErrors := make([]error, len(paths))
	for i, path := range paths {
		l.report(path, StageLex, StatusQueued, nil)
		id, err := fileSet.Load(path)
		if err != nil {
			// an empty placeholder keeps diagnostics on this path renderable
			id = fileSet.Add(path, nil, source.FileVirtual)
			loadErrors[i] = err
		}
		fileIDs[i] = id
	}

	jobs := l.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// indices are unique per goroutine, no mutex needed
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return nil
			}

			if loadErr := loadErrors[i]; loadErr != nil {
				bag := diag.NewBag(l.maxDiagnostics)
				bag.Add(diag.NewError(diag.IOLoadFileError, source.At(fileIDs[i], 0), "failed to load file: "+loadErr.Error()))
				results[i] = FileResult{Path: path, FileID: fileIDs[i], Bag: bag}
				l.report(path, StageLex, StatusError, loadErr)
				return nil
			}

			results[i] = l.LintFile(gctx, fileSet.Get(fileIDs[i]))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	if err := ctx.Err(); err != nil {
		return fileSet, results, fmt.Errorf("lint interrupted: %w", err)
	}
	return fileSet, results, nil
}

// LintPath lints a file or a directory tree.
func (l *Linter) LintPath(ctx context.Context, path string) (*source.FileSet, []FileResult, error) {
	paths, err := Targets(path)
	if err != nil {
		return nil, nil, err
	}
	base := path
	if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
		base = filepath.Dir(path)
	}
	return l.LintPaths(ctx, base, paths)
}

// Unresolved reports whether any result failed region resolution.
func Unresolved(results []FileResult) bool {
	for _, r := range results {
		if r.Err != nil && errors.Is(r.Err, region.ErrUnresolvedRegion) {
			return true
		}
	}
	return false
}
