package diagfmt

import (
	"encoding/json"
	"io"

	"sglint/internal/diag"
	"sglint/internal/source"
)

// LocationJSON is a position inside a file.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON is one diagnostic. Rule is set for lint violations and
// audit findings.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Rule     string       `json:"rule,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Summary     *SummaryJSON     `json:"summary,omitempty"`
}

// SummaryJSON totals a lint run.
type SummaryJSON struct {
	Files      int `json:"files"`
	Reported   int `json:"reported"`
	Suppressed int `json:"suppressed"`
	Baselined  int `json:"baselined,omitempty"`
	Findings   int `json:"findings"`
	Errors     int `json:"errors"`
}

// jsonBuilder converts diagnostics of one FileSet.
type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (b jsonBuilder) location(span source.Span) LocationJSON {
	loc := LocationJSON{
		File:      displayPath(b.fs.Get(span.File), b.fs, b.opts.PathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if b.opts.IncludePositions {
		start, end := b.fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (b jsonBuilder) edit(e diag.FixEdit) FixEditJSON {
	out := FixEditJSON{
		Location: b.location(e.Span),
		NewText:  e.NewText,
		OldText:  oldText(b.fs, e.Span),
	}
	if b.opts.IncludePreviews {
		if preview, err := buildFixEditPreview(b.fs, e); err == nil {
			out.BeforeLines, out.AfterLines = preview.before, preview.after
		}
	}
	return out
}

func (b jsonBuilder) diagnostic(d diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Rule:     d.Rule,
		Message:  d.Message,
		Location: b.location(d.Primary),
	}
	// timing notes carry the payload itself
	if b.opts.IncludeNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: b.location(n.Span)})
		}
	}
	if b.opts.IncludeFixes {
		for _, fx := range d.Fixes {
			fj := FixJSON{Title: fx.Title}
			for _, e := range fx.Edits {
				fj.Edits = append(fj.Edits, b.edit(e))
			}
			out.Fixes = append(out.Fixes, fj)
		}
	}
	return out
}

// BuildDiagnosticsOutput builds the JSON document without serializing it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	b := jsonBuilder{fs: fs, opts: opts}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items))}
	for _, d := range items {
		out.Diagnostics = append(out.Diagnostics, b.diagnostic(d))
	}
	out.Count = len(out.Diagnostics)
	return out
}

func oldText(fs *source.FileSet, span source.Span) string {
	f := fs.Get(span.File)
	if span.End > f.Size() || span.Start > span.End {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// JSON writes the diagnostics as one indented JSON document. summary may
// be nil.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts, summary *SummaryJSON) error {
	output := BuildDiagnosticsOutput(bag, fs, opts)
	output.Summary = summary

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
