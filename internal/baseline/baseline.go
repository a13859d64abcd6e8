// Package baseline records the violations a project already has so later
// runs report only new ones.
//
// Entries are keyed by the path relative to the baseline file, the rule, the
// message and the text of the offending line. Positions are kept for exact
// matches, but an entry still matches after edits elsewhere move its line.
package baseline

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"sglint/internal/rule"
	"sglint/internal/source"
)

// ErrNoBaseline is returned by Load when the file does not exist.
var ErrNoBaseline = errors.New("baseline file does not exist")

// Entry is one known violation.
type Entry struct {
	Path    string  `json:"path"`
	Line    uint32  `json:"line"`
	Column  uint32  `json:"column"`
	Rule    rule.ID `json:"rule"`
	Message string  `json:"message"`
	// Text is the full source line the violation starts on.
	Text string `json:"text"`
}

// group matches entries whose position changed.
type group struct {
	rule    rule.ID
	message string
	text    string
}

func (e Entry) group() group { return group{e.Rule, e.Message, e.Text} }

func compareEntries(a, b Entry) int {
	return cmp.Or(
		cmp.Compare(a.Path, b.Path),
		cmp.Compare(a.Line, b.Line),
		cmp.Compare(a.Column, b.Column),
		cmp.Compare(a.Rule, b.Rule),
		cmp.Compare(a.Message, b.Message),
	)
}

// Baseline is a set of known violations. Filter is safe for concurrent use;
// Add is not.
type Baseline struct {
	root   string
	byFile map[string][]Entry
}

// New returns an empty baseline whose paths are relative to root.
func New(root string) (*Baseline, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("baseline root: %w", err)
	}
	return &Baseline{root: abs, byFile: make(map[string][]Entry)}, nil
}

// ForFile returns an empty baseline that will be written to path.
func ForFile(path string) (*Baseline, error) {
	return New(filepath.Dir(path))
}

// Load reads a baseline written by Write. Paths in it are resolved against
// the directory holding path.
func Load(path string) (*Baseline, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoBaseline)
	}
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%s: invalid baseline: %w", path, err)
	}
	b, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Path == "" || e.Rule == "" {
			return nil, fmt.Errorf("%s: baseline entry without path or rule", path)
		}
		b.byFile[e.Path] = append(b.byFile[e.Path], e)
	}
	return b, nil
}

// Len returns the number of entries.
func (b *Baseline) Len() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, es := range b.byFile {
		n += len(es)
	}
	return n
}

// Entries returns every entry sorted by path and position.
func (b *Baseline) Entries() []Entry {
	if b == nil {
		return nil
	}
	out := make([]Entry, 0, b.Len())
	for _, es := range b.byFile {
		out = append(out, es...)
	}
	slices.SortFunc(out, compareEntries)
	return out
}

// Add records the violations of one file.
func (b *Baseline) Add(file *source.File, vs []rule.Violation) {
	if len(vs) == 0 {
		return
	}
	entries := b.entries(file, vs)
	path := entries[0].Path
	b.byFile[path] = append(b.byFile[path], entries...)
}

// Write stores the baseline as indented JSON, replacing path atomically.
func (b *Baseline) Write(path string) error {
	entries := b.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".baseline-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Filter splits the violations of one file into those the baseline does
// not know and those it does. Both keep the input order.
//
// An entry at the same position matches first. The rest are compared by
// rule, message and line text: when a file now has more such violations
// than the baseline recorded, none of them can be told apart from the new
// one and all are kept.
func (b *Baseline) Filter(file *source.File, vs []rule.Violation) (kept, known []rule.Violation) {
	if b == nil || len(vs) == 0 {
		return vs, nil
	}
	current := b.entries(file, vs)
	recorded := b.byFile[current[0].Path]
	if len(recorded) == 0 {
		return vs, nil
	}

	exact := make(map[Entry]int, len(recorded))
	for _, e := range recorded {
		exact[e]++
	}
	matched := make([]bool, len(vs))
	for i, e := range current {
		if exact[e] > 0 {
			exact[e]--
			matched[i] = true
		}
	}

	remaining := make(map[group]int)
	for e, n := range exact {
		remaining[e.group()] += n
	}
	moved := make(map[group]int)
	for i, e := range current {
		if !matched[i] {
			moved[e.group()]++
		}
	}

	for i, v := range vs {
		g := current[i].group()
		if matched[i] || moved[g] <= remaining[g] {
			known = append(known, v)
		} else {
			kept = append(kept, v)
		}
	}
	return kept, known
}

func (b *Baseline) entries(file *source.File, vs []rule.Violation) []Entry {
	path, err := source.RelativePath(file.Path, b.root)
	if err != nil {
		path = filepath.ToSlash(file.Path)
	}
	out := make([]Entry, len(vs))
	for i, v := range vs {
		line := file.LineOf(v.Pos())
		out[i] = Entry{
			Path:    path,
			Line:    line,
			Column:  v.Pos() - file.LineStart(line) + 1,
			Rule:    v.Rule,
			Message: v.Message,
			Text:    file.GetLine(line),
		}
	}
	return out
}
