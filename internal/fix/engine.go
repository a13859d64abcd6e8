// Package fix applies the fix suggestions attached to diagnostics.
package fix

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"sglint/internal/diag"
	"sglint/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	// Only restricts fixes to diagnostics with these labels (rule ids or
	// code ids). Empty means every label.
	Only []string
	// DryRun computes the new contents without writing them.
	DryRun bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	Title     string
	Label     string
	Message   string
	Path      string
	EditCount int
}

// SkippedFix captures a skipped fix with a reason.
type SkippedFix struct {
	Title  string
	Label  string
	Reason string
}

// FileChange summarises modifications performed on a file. Content is the
// new file content as written (or as it would be, on a dry run).
type FileChange struct {
	Path      string
	EditCount int
	Content   []byte
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply collects fixes from diagnostics and applies every one that does not
// overlap a fix accepted before it. Fixes are taken in source order.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates := gatherCandidates(diagnostics, opts.Only)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}
	sortCandidates(candidates)

	accepted := make(map[source.FileID][]diag.FixEdit)
	for _, cand := range candidates {
		if reason := check(fs, cand.fix, accepted); reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{
				Title:  cand.fix.Title,
				Label:  cand.diag.Label(),
				Reason: reason,
			})
			continue
		}
		for _, e := range cand.fix.Edits {
			accepted[e.Span.File] = append(accepted[e.Span.File], e)
		}
		result.Applied = append(result.Applied, AppliedFix{
			Title:     cand.fix.Title,
			Label:     cand.diag.Label(),
			Message:   cand.diag.Message,
			Path:      fs.Get(cand.diag.Primary.File).FormatPath("auto", fs.BaseDir()),
			EditCount: len(cand.fix.Edits),
		})
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	files := make([]source.FileID, 0, len(accepted))
	for id := range accepted {
		files = append(files, id)
	}
	slices.Sort(files)

	for _, id := range files {
		file := fs.Get(id)
		content := restoreEncoding(file, applyEdits(file.Content, accepted[id]))
		if !opts.DryRun {
			if err := writePreservingMode(file.Path, content); err != nil {
				return result, fmt.Errorf("write %s: %w", file.Path, err)
			}
		}
		result.FileChanges = append(result.FileChanges, FileChange{
			Path:      file.FormatPath("relative", fs.BaseDir()),
			EditCount: len(accepted[id]),
			Content:   content,
		})
	}
	return result, nil
}

func gatherCandidates(diagnostics []diag.Diagnostic, only []string) []candidate {
	var cands []candidate
	for _, d := range diagnostics {
		if len(only) > 0 && !slices.Contains(only, d.Label()) {
			continue
		}
		for _, fx := range d.Fixes {
			if len(fx.Edits) == 0 {
				continue
			}
			cands = append(cands, candidate{diag: d, fix: fx, order: len(cands)})
		}
	}
	return cands
}

func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].diag.Primary, candidates[j].diag.Primary
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return candidates[i].order < candidates[j].order
	})
}

// check returns why fx cannot be applied, or "" when it can.
func check(fs *source.FileSet, fx diag.Fix, accepted map[source.FileID][]diag.FixEdit) string {
	for i, e := range fx.Edits {
		if int(e.Span.File) >= fs.Len() {
			return "edit targets an unknown file"
		}
		file := fs.Get(e.Span.File)
		if file.Flags&source.FileVirtual != 0 {
			return "target file is virtual"
		}
		if e.Span.Start > e.Span.End || e.Span.End > file.Size() {
			return "edit span out of range"
		}
		for _, prev := range accepted[e.Span.File] {
			if spansConflict(prev.Span, e.Span) {
				return "conflicts with a previously applied fix"
			}
		}
		for _, other := range fx.Edits[:i] {
			if other.Span.File == e.Span.File && spansConflict(other.Span, e.Span) {
				return "fix has overlapping edits"
			}
		}
	}
	return ""
}

// spansConflict reports whether two edit spans overlap. Spans are half-open;
// two insertions never conflict, and an insertion conflicts with a span
// that strictly contains its position.
func spansConflict(a, b source.Span) bool {
	switch {
	case a.Empty() && b.Empty():
		return false
	case a.Empty():
		return b.Start < a.Start && a.Start < b.End
	case b.Empty():
		return a.Start < b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// applyEdits applies non-overlapping edits back to front so earlier offsets
// stay valid. Insertions at one position keep their acceptance order.
func applyEdits(content []byte, edits []diag.FixEdit) []byte {
	ordered := slices.Clone(edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Span.Start > ordered[j].Span.Start
	})
	out := slices.Clone(content)
	for i := 0; i < len(ordered); {
		// a run of edits at one start is spliced as a block, in order
		j := i
		var text []byte
		end := ordered[i].Span.Start
		for ; j < len(ordered) && ordered[j].Span.Start == ordered[i].Span.Start; j++ {
			text = append(text, ordered[j].NewText...)
			end = max(end, ordered[j].Span.End)
		}
		out = slices.Concat(out[:ordered[i].Span.Start], text, out[end:])
		i = j
	}
	return out
}

// restoreEncoding undoes the normalization done when the file was loaded.
func restoreEncoding(file *source.File, content []byte) []byte {
	if file.Flags&source.FileNormalizedCRLF != 0 {
		content = bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	if file.Flags&source.FileHadBOM != 0 {
		content = append([]byte{0xEF, 0xBB, 0xBF}, content...)
	}
	return content
}

func writePreservingMode(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, content, mode)
}
