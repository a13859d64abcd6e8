package rules

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"sglint/internal/diag"
	"sglint/internal/rule"
	"sglint/internal/source"
	"sglint/internal/token"
)

const (
	TodoID            rule.ID = "todo"
	IdentifierNameID  rule.ID = "identifier_name"
	NumberSeparatorID rule.ID = "number_separator"
)

type todo struct{ sev diag.Severity }

func (r todo) Descriptor() rule.Descriptor {
	return rule.Descriptor{
		ID:          TodoID,
		Name:        "todo",
		Description: "TODO and FIXME comments should be resolved",
		Severity:    r.sev,
	}
}

var todoMarkers = []string{"TODO", "FIXME"}

func (r todo) Evaluate(_ context.Context, f *rule.File) ([]rule.Violation, error) {
	var out []rule.Violation
	for _, tv := range f.Comments() {
		body := tv.Body()
		base := tv.Span.Start + tv.BodyOffset()
		for _, marker := range todoMarkers {
			for from := 0; ; {
				i := strings.Index(body[from:], marker)
				if i < 0 {
					break
				}
				i += from
				from = i + len(marker)
				if i > 0 && isIdentByte(body[i-1]) || from < len(body) && isIdentByte(body[from]) {
					continue
				}
				start := base + uint32(i)
				out = append(out, rule.Violation{
					Rule:     TodoID,
					Span:     source.Span{File: tv.Span.File, Start: start, End: start + uint32(len(marker))},
					Severity: r.sev,
					Message:  fmt.Sprintf("%s should be resolved", marker),
				})
			}
		}
	}
	sortByPos(out)
	return out, nil
}

type identifierName struct {
	min int
	sev diag.Severity
}

func (r identifierName) Descriptor() rule.Descriptor {
	return rule.Descriptor{
		ID:          IdentifierNameID,
		Name:        "identifier name",
		Description: fmt.Sprintf("let bindings should be at least %d characters long", r.min),
		Severity:    r.sev,
		Deprecated:  []rule.ID{"variable_name"},
	}
}

// Evaluate checks the name after every let, skipping mut and _.
func (r identifierName) Evaluate(ctx context.Context, f *rule.File) ([]rule.Violation, error) {
	var out []rule.Violation
	toks := f.Tokens
	for i := 0; i < len(toks); i++ {
		if toks[i].Kind != token.KwLet {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		j := i + 1
		if j < len(toks) && toks[j].Kind == token.KwMut {
			j++
		}
		if j >= len(toks) || toks[j].Kind != token.Ident {
			continue
		}
		name := toks[j]
		if name.Text == "_" || utf8.RuneCountInString(name.Text) >= r.min {
			continue
		}
		out = append(out, rule.Violation{
			Rule:     IdentifierNameID,
			Span:     name.Span,
			Severity: r.sev,
			Message:  fmt.Sprintf("identifier '%s' should be at least %d characters long", name.Text, r.min),
		})
	}
	return out, nil
}

type numberSeparator struct{ sev diag.Severity }

func (r numberSeparator) Descriptor() rule.Descriptor {
	return rule.Descriptor{
		ID:          NumberSeparatorID,
		Name:        "number separator",
		Description: "long decimal literals should group digits with underscores",
		Severity:    r.sev,
		OptIn:       true,
	}
}

func (r numberSeparator) Evaluate(_ context.Context, f *rule.File) ([]rule.Violation, error) {
	var out []rule.Violation
	for _, tok := range f.Tokens {
		if tok.Kind != token.IntLit {
			continue
		}
		digits := leadingDigits(tok.Text)
		if len(digits) < 5 || strings.ContainsRune(digits, '_') || strings.HasPrefix(tok.Text, "0") {
			continue
		}
		out = append(out, rule.Violation{
			Rule:     NumberSeparatorID,
			Span:     tok.Span,
			Severity: r.sev,
			Message:  fmt.Sprintf("use '_' to group the digits of %s", digits),
		})
	}
	return out, nil
}

// leadingDigits strips a type suffix such as u32.
func leadingDigits(s string) string {
	for i := 0; i < len(s); i++ {
		if !(s[i] >= '0' && s[i] <= '9' || s[i] == '_') {
			return s[:i]
		}
	}
	return s
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
