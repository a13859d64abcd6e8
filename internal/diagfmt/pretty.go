package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sglint/internal/diag"
	"sglint/internal/source"
)

type palette struct {
	err, warn, info, label, gutter, caret, note, fix *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		label:  mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		note:   mk(color.FgCyan),
		fix:    mk(color.FgGreen),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders diagnostics for people. It walks bag.Items() in order
// (call bag.Sort() first). Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <LABEL>: <message>
//
// followed by the source line with a caret underline, then notes and fixes
// when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.label.Sprint(location(fs, d.Primary, opts.PathMode)),
		p.severity(d.Severity).Sprint(severityLabel(d.Severity)),
		p.label.Sprint(d.Label()),
		d.Message)

	writeSnippet(w, fs, d.Primary, int(opts.Context), p)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), location(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
	if opts.ShowFixes {
		for i, fx := range d.Fixes {
			fmt.Fprintf(w, "  %s\n", p.fix.Sprintf("fix #%d: %s", i+1, fx.Title))
			for _, e := range fx.Edits {
				fmt.Fprintf(w, "    %s apply=%q\n", location(fs, e.Span, opts.PathMode), e.NewText)
				if !opts.ShowPreview {
					continue
				}
				preview, err := buildFixEditPreview(fs, e)
				if err != nil {
					continue
				}
				fmt.Fprintln(w, "    preview:")
				for _, line := range preview.before {
					fmt.Fprintf(w, "      - %s\n", line)
				}
				for _, line := range preview.after {
					fmt.Fprintf(w, "      + %s\n", line)
				}
			}
		}
	}
}

// writeSnippet prints the primary line with context lines around it and an
// underline aligned by display width.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, context int, p palette) {
	f := fs.Get(span.File)
	if len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	first := max(int(start.Line)-context, 1)
	last := min(int(start.Line)+context, int(f.LineCount()))
	gutterWidth := len(strconv.Itoa(last))

	for n := first; n <= last; n++ {
		line := strings.TrimRight(f.GetLine(uint32(n)), "\r")
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, n), line)
		if n != int(start.Line) {
			continue
		}
		col := int(start.Col) - 1
		col = min(col, len(line))
		width := 1
		if end.Line == start.Line && end.Col > start.Col {
			stop := min(int(end.Col)-1, len(line))
			width = max(runewidth.StringWidth(line[col:stop]), 1)
		}
		pad := padFor(line[:col])
		underline := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), pad, p.caret.Sprint(underline))
	}
}

// padFor returns blank space as wide as prefix. Tabs are kept so the caret
// lines up however the terminal renders them.
func padFor(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func itoa(n uint32) string {
	return strconv.FormatUint(uint64(n), 10)
}
