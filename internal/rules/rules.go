// Package rules holds the built-in checks and the audit-only meta rules.
package rules

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"sglint/internal/audit"
	"sglint/internal/diag"
	"sglint/internal/rule"
)

// Options tune the built-in rules.
type Options struct {
	LineLength     int
	IdentMinLength int
	// Severity overrides the default severity per canonical identifier.
	Severity map[rule.ID]diag.Severity
}

const (
	DefaultLineLength     = 120
	DefaultIdentMinLength = 2
)

// Builtin returns every built-in rule, meta rules included.
func Builtin(opts Options) []rule.Rule {
	if opts.LineLength <= 0 {
		opts.LineLength = DefaultLineLength
	}
	if opts.IdentMinLength <= 0 {
		opts.IdentMinLength = DefaultIdentMinLength
	}
	sev := func(id rule.ID, def diag.Severity) diag.Severity {
		if s, ok := opts.Severity[id]; ok {
			return s
		}
		return def
	}
	return []rule.Rule{
		lineLength{max: opts.LineLength, sev: sev(LineLengthID, diag.SevWarning)},
		trailingWhitespace{sev: sev(TrailingWhitespaceID, diag.SevWarning)},
		todo{sev: sev(TodoID, diag.SevWarning)},
		verticalWhitespace{sev: sev(VerticalWhitespaceID, diag.SevWarning)},
		identifierName{min: opts.IdentMinLength, sev: sev(IdentifierNameID, diag.SevError)},
		numberSeparator{sev: sev(NumberSeparatorID, diag.SevWarning)},
		meta{rule.Descriptor{
			ID:          audit.SuperfluousDisableCommand,
			Name:        "superfluous disable command",
			Description: "disable commands must suppress at least one violation",
			Severity:    sev(audit.SuperfluousDisableCommand, diag.SevWarning),
			Meta:        true,
		}},
		meta{rule.Descriptor{
			ID:          audit.InvalidRuleReference,
			Name:        "invalid rule reference",
			Description: "commands must name rules that exist",
			Severity:    sev(audit.InvalidRuleReference, diag.SevWarning),
			Meta:        true,
		}},
		meta{rule.Descriptor{
			ID:          audit.BlanketDisableCommand,
			Name:        "blanket disable command",
			Description: "disable commands should be re-enabled before the end of the file",
			Severity:    sev(audit.BlanketDisableCommand, diag.SevWarning),
			Meta:        true,
			OptIn:       true,
		}},
	}
}

// NewRegistry builds the registry of built-in rules. Severity keys may use
// deprecated aliases; unknown keys and a rule named twice are errors.
func NewRegistry(opts Options) (*rule.Registry, error) {
	if len(opts.Severity) == 0 {
		return rule.NewRegistry(Builtin(opts)...)
	}
	base := opts
	base.Severity = nil
	reg, err := rule.NewRegistry(Builtin(base)...)
	if err != nil {
		return nil, err
	}
	canon := make(map[rule.ID]diag.Severity, len(opts.Severity))
	for _, id := range slices.Sorted(maps.Keys(opts.Severity)) {
		c, ok := reg.Canonical(id)
		if !ok {
			return nil, fmt.Errorf("rules.severity: unknown rule %q", id)
		}
		if _, dup := canon[c]; dup {
			return nil, fmt.Errorf("rules.severity: %s is set more than once", c)
		}
		canon[c] = opts.Severity[id]
	}
	opts.Severity = canon
	return rule.NewRegistry(Builtin(opts)...)
}

// meta rules are known to the registry so commands can name them; their
// findings come from the audit.
type meta struct{ d rule.Descriptor }

func (m meta) Descriptor() rule.Descriptor { return m.d }

func (meta) Evaluate(context.Context, *rule.File) ([]rule.Violation, error) { return nil, nil }
