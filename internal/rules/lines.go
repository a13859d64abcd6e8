package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"sglint/internal/diag"
	"sglint/internal/rule"
	"sglint/internal/source"
)

const (
	LineLengthID         rule.ID = "line_length"
	TrailingWhitespaceID rule.ID = "trailing_whitespace"
	VerticalWhitespaceID rule.ID = "vertical_whitespace"
)

type lineLength struct {
	max int
	sev diag.Severity
}

func (r lineLength) Descriptor() rule.Descriptor {
	return rule.Descriptor{
		ID:          LineLengthID,
		Name:        "line length",
		Description: fmt.Sprintf("lines should not be wider than %d columns", r.max),
		Severity:    r.sev,
	}
}

func (r lineLength) Evaluate(ctx context.Context, f *rule.File) ([]rule.Violation, error) {
	var out []rule.Violation
	src := f.Source
	for line := uint32(1); line <= src.LineCount(); line++ {
		if line%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		text := src.GetLine(line)
		if len(text) <= r.max {
			continue
		}
		w := runewidth.StringWidth(text)
		if w <= r.max {
			continue
		}
		start := src.LineStart(line)
		out = append(out, rule.Violation{
			Rule:     LineLengthID,
			Span:     source.Span{File: src.ID, Start: start, End: start + uint32(len(text))},
			Severity: r.sev,
			Message:  fmt.Sprintf("line is %d columns wide, limit is %d", w, r.max),
		})
	}
	return out, nil
}

type trailingWhitespace struct{ sev diag.Severity }

func (r trailingWhitespace) Descriptor() rule.Descriptor {
	return rule.Descriptor{
		ID:          TrailingWhitespaceID,
		Name:        "trailing whitespace",
		Description: "lines should not end with spaces or tabs",
		Severity:    r.sev,
	}
}

func (r trailingWhitespace) Evaluate(_ context.Context, f *rule.File) ([]rule.Violation, error) {
	var out []rule.Violation
	src := f.Source
	for line := uint32(1); line <= src.LineCount(); line++ {
		text := src.GetLine(line)
		trimmed := strings.TrimRight(text, " \t")
		if len(trimmed) == len(text) {
			continue
		}
		start := src.LineStart(line) + uint32(len(trimmed))
		span := source.Span{File: src.ID, Start: start, End: src.LineStart(line) + uint32(len(text))}
		out = append(out, rule.Violation{
			Rule:     TrailingWhitespaceID,
			Span:     span,
			Severity: r.sev,
			Message:  "line has trailing whitespace",
			Fix:      &diag.Fix{Title: "remove trailing whitespace", Edits: []diag.FixEdit{{Span: span}}},
		})
	}
	return out, nil
}

type verticalWhitespace struct{ sev diag.Severity }

func (r verticalWhitespace) Descriptor() rule.Descriptor {
	return rule.Descriptor{
		ID:          VerticalWhitespaceID,
		Name:        "vertical whitespace",
		Description: "no more than one blank line in a row",
		Severity:    r.sev,
	}
}

// Evaluate reports the second and later blank lines of every run. The last
// line of a file ending in '\n' is empty by construction and never counts.
func (r verticalWhitespace) Evaluate(_ context.Context, f *rule.File) ([]rule.Violation, error) {
	var out []rule.Violation
	src := f.Source
	last := src.LineCount()
	if len(src.Content) > 0 && src.Content[len(src.Content)-1] == '\n' {
		last--
	}
	blank := 0
	for line := uint32(1); line <= last; line++ {
		if strings.TrimSpace(src.GetLine(line)) != "" {
			blank = 0
			continue
		}
		blank++
		if blank == 2 {
			start := src.LineStart(line)
			out = append(out, rule.Violation{
				Rule:     VerticalWhitespaceID,
				Span:     source.At(src.ID, start),
				Severity: r.sev,
				Message:  "limit vertical whitespace to a single empty line",
			})
		}
	}
	return out, nil
}
