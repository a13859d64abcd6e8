// Package rule defines the contract every lint rule satisfies and the
// immutable registry a run is built around.
package rule

import (
	"context"

	"sglint/internal/diag"
	"sglint/internal/source"
	"sglint/internal/token"
)

// ID names a rule. Equality is exact.
type ID string

// Wildcard targets every rule known to the registry.
const Wildcard ID = "all"

// Descriptor is the static metadata of a rule.
type Descriptor struct {
	ID          ID
	Name        string
	Description string
	Severity    diag.Severity
	// OptIn rules stay inactive unless configuration enables them.
	OptIn bool
	// Meta rules never produce raw violations; their findings come from the command audit.
	Meta bool
	// Deprecated lists old identifiers that still resolve to ID.
	Deprecated []ID
}

// File is the parsed input handed to every rule.
type File struct {
	Source *source.File
	Tokens []token.Token
}

// Comments returns every comment trivia in source order.
func (f *File) Comments() []token.Trivia {
	var out []token.Trivia
	for _, tok := range f.Tokens {
		for _, tv := range tok.Leading {
			if tv.IsComment() {
				out = append(out, tv)
			}
		}
	}
	return out
}

// Violation is one raw finding of a rule at a position.
type Violation struct {
	Rule     ID
	Span     source.Span
	Severity diag.Severity
	Message  string
	// Fix optionally corrects the violation; edits stay inside this file.
	Fix *diag.Fix
}

// Pos is the canonical position of the violation.
func (v Violation) Pos() uint32 { return v.Span.Start }

// Diagnostic converts the violation for rendering.
func (v Violation) Diagnostic() diag.Diagnostic {
	d := diag.New(v.Severity, diag.LntViolation, v.Span, v.Message)
	d.Rule = string(v.Rule)
	if v.Fix != nil {
		d = d.WithFix(v.Fix.Title, v.Fix.Edits...)
	}
	return d
}

// Rule is implemented by every check. Evaluate must be deterministic for a
// given file and must not retain f after returning.
type Rule interface {
	Descriptor() Descriptor
	Evaluate(ctx context.Context, f *File) ([]Violation, error)
}
