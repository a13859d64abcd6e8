package audit_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sglint/internal/annotate"
	"sglint/internal/audit"
	"sglint/internal/diag"
	"sglint/internal/filter"
	"sglint/internal/region"
	"sglint/internal/rule"
	"sglint/internal/source"
)

type stub struct {
	id    rule.ID
	meta  bool
	optIn bool
}

func (s stub) Descriptor() rule.Descriptor {
	return rule.Descriptor{ID: s.id, Meta: s.meta, OptIn: s.optIn, Severity: diag.SevWarning}
}
func (stub) Evaluate(context.Context, *rule.File) ([]rule.Violation, error) { return nil, nil }

func registry() *rule.Registry {
	return rule.MustRegistry(
		stub{id: "A"}, stub{id: "B"}, stub{id: "opt", optIn: true},
		stub{id: audit.SuperfluousDisableCommand, meta: true},
		stub{id: audit.InvalidRuleReference, meta: true},
		stub{id: audit.BlanketDisableCommand, meta: true, optIn: true},
	)
}

func activeSet(t *testing.T, reg *rule.Registry, optIn ...rule.ID) rule.Set {
	t.Helper()
	active, err := rule.Activate(reg, rule.Selection{OptIn: optIn})
	require.NoError(t, err)
	return active
}

func cmd(pos uint32, action annotate.Action, ids ...rule.ID) annotate.Command {
	return annotate.Command{
		Pos: pos, Span: source.Span{Start: pos, End: pos + 10}, Line: 1,
		Action: action, Targets: ids,
	}
}

func at(id rule.ID, pos uint32) rule.Violation {
	return rule.Violation{Rule: id, Span: source.Span{Start: pos, End: pos + 1}, Severity: diag.SevWarning}
}

type pipeline struct {
	reg      *rule.Registry
	cmds     []annotate.Command
	regions  *region.Set
	filtered filter.Result
	input    audit.Input
}

func run(t *testing.T, cmds []annotate.Command, raw []rule.Violation, optIn ...rule.ID) pipeline {
	t.Helper()
	reg := registry()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.sg", []byte(strings.Repeat("x", 99)+"\n")))
	regions, err := region.Resolve(annotate.Expand(cmds, file), reg, region.Options{FileSize: file.Size()})
	require.NoError(t, err)
	p := pipeline{reg: reg, cmds: cmds, regions: regions, filtered: filter.Apply(raw, regions)}
	p.input = audit.Input{
		Commands: cmds, Regions: regions, Raw: raw,
		Registry: reg, Active: activeSet(t, reg, optIn...),
	}
	return p
}

func TestEndToEndRegionWithViolationIsNotSuperfluous(t *testing.T) {
	p := run(t,
		[]annotate.Command{cmd(40, annotate.Disable, "A"), cmd(60, annotate.Enable, "A")},
		[]rule.Violation{at("A", 10), at("A", 50), at("A", 90)},
	)
	assert.Len(t, p.filtered.Reported, 2)
	assert.Equal(t, uint32(50), p.filtered.Suppressed[0].Pos())
	assert.Empty(t, audit.Run(p.input))
}

func TestEndToEndEmptyRegionIsSuperfluous(t *testing.T) {
	p := run(t,
		[]annotate.Command{cmd(40, annotate.Disable, "A"), cmd(60, annotate.Enable, "A")},
		[]rule.Violation{at("A", 10), at("A", 90)},
	)
	assert.Len(t, p.filtered.Reported, 2)
	assert.Empty(t, p.filtered.Suppressed)
	assert.Equal(t, []audit.Finding{{Kind: audit.Superfluous, Pos: 40, Rule: "A", Command: 0, Target: 0}}, audit.Run(p.input))
}

func TestSuperfluousAroundEmptySpan(t *testing.T) {
	p := run(t, []annotate.Command{cmd(30, annotate.Disable, "B"), cmd(30, annotate.Enable, "B")}, nil)
	findings := audit.Run(p.input)
	require.Len(t, findings, 1)
	assert.Equal(t, audit.Superfluous, findings[0].Kind)
	assert.Equal(t, uint32(30), findings[0].Pos)
}

func TestViolationAtEnablePositionDoesNotJustifyRegion(t *testing.T) {
	p := run(t, []annotate.Command{cmd(40, annotate.Disable, "A"), cmd(60, annotate.Enable, "A")}, []rule.Violation{at("A", 60)})
	require.Len(t, audit.Run(p.input), 1)
}

func TestInvalidReferenceYieldsOneFindingAndNoRegion(t *testing.T) {
	p := run(t, []annotate.Command{cmd(5, annotate.Disable, "nonexistent_rule")}, nil)
	assert.Zero(t, p.regions.Len())
	assert.Equal(t, []audit.Finding{{Kind: audit.InvalidReference, Pos: 5, Rule: "nonexistent_rule"}}, audit.Run(p.input))
}

func TestInvalidReferenceWithModifierReportedOnce(t *testing.T) {
	c := cmd(5, annotate.Disable, "nope")
	c.Modifier = annotate.ModThis
	p := run(t, []annotate.Command{c}, nil)
	assert.Len(t, audit.Run(p.input), 1)
}

func TestInactiveWildcardAndMetaRegionsAreExempt(t *testing.T) {
	p := run(t, []annotate.Command{
		cmd(10, annotate.Disable, "opt"),
		cmd(20, annotate.Enable, "opt"),
		cmd(30, annotate.Disable, rule.Wildcard),
		cmd(40, annotate.Enable, rule.Wildcard),
		cmd(50, annotate.Disable, audit.SuperfluousDisableCommand),
		cmd(60, annotate.Enable, audit.SuperfluousDisableCommand),
	}, nil)
	assert.Empty(t, audit.Run(p.input))
}

func TestFindingsOrderedByCommandThenTarget(t *testing.T) {
	p := run(t, []annotate.Command{
		cmd(10, annotate.Disable, "zzz", "B", "A"),
		cmd(20, annotate.Enable, "A", "B"),
		cmd(20, annotate.Enable, "yyy"),
	}, nil)
	got := audit.Run(p.input)
	require.Len(t, got, 4)
	assert.Equal(t, audit.Finding{Kind: audit.InvalidReference, Pos: 10, Rule: "zzz", Command: 0, Target: 0}, got[0])
	assert.Equal(t, audit.Finding{Kind: audit.Superfluous, Pos: 10, Rule: "B", Command: 0, Target: 1}, got[1])
	assert.Equal(t, audit.Finding{Kind: audit.Superfluous, Pos: 10, Rule: "A", Command: 0, Target: 2}, got[2])
	assert.Equal(t, audit.Finding{Kind: audit.InvalidReference, Pos: 20, Rule: "yyy", Command: 2, Target: 0}, got[3])
}

func TestRunIsIdempotent(t *testing.T) {
	p := run(t, []annotate.Command{
		cmd(10, annotate.Disable, "A", "nope"),
		cmd(20, annotate.Enable, "A"),
		cmd(30, annotate.Disable, "B"),
	}, []rule.Violation{at("B", 70)}, audit.BlanketDisableCommand)
	first := audit.Run(p.input)
	second := audit.Run(p.input)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestBlanketFindings(t *testing.T) {
	p := run(t, []annotate.Command{
		cmd(10, annotate.Disable, "A"),
		cmd(20, annotate.Disable, "A"),
		cmd(30, annotate.Enable, "A"),
		cmd(40, annotate.Enable, "B"),
		cmd(50, annotate.Disable, "B"),
	}, []rule.Violation{at("A", 15), at("B", 55)}, audit.BlanketDisableCommand)

	var kinds []audit.Kind
	for _, f := range audit.Run(p.input) {
		kinds = append(kinds, f.Kind)
	}
	assert.Equal(t, []audit.Kind{audit.AlreadyDisabled, audit.NotDisabled, audit.NotReenabled}, kinds)
}

func TestBlanketAllowedAndWildcard(t *testing.T) {
	p := run(t, []annotate.Command{
		cmd(10, annotate.Disable, "B"),
		cmd(20, annotate.Disable, rule.Wildcard),
	}, []rule.Violation{at("B", 50)}, audit.BlanketDisableCommand)
	p.input.BlanketAllowed = []rule.ID{"B"}

	got := audit.Run(p.input)
	require.Len(t, got, 1, "one finding per wildcard command")
	assert.Equal(t, audit.Finding{Kind: audit.NotReenabled, Pos: 20, Rule: rule.Wildcard, Command: 1, Target: 0}, got[0])
}

func TestBlanketIsOptIn(t *testing.T) {
	p := run(t, []annotate.Command{cmd(10, annotate.Disable, "B")}, []rule.Violation{at("B", 50)})
	assert.Empty(t, audit.Run(p.input))
}

func TestViolationsCanBeSuppressed(t *testing.T) {
	cmds := []annotate.Command{
		cmd(5, annotate.Disable, audit.SuperfluousDisableCommand),
		cmd(10, annotate.Disable, "A"),
		cmd(20, annotate.Enable, "A"),
		cmd(25, annotate.Enable, audit.SuperfluousDisableCommand),
		cmd(30, annotate.Disable, "B"),
		cmd(40, annotate.Enable, "B"),
	}
	p := run(t, cmds, nil)
	findings := audit.Run(p.input)
	require.Len(t, findings, 2)

	vs := audit.Violations(findings, cmds, p.reg)
	require.Len(t, vs, 2)
	assert.Equal(t, audit.SuperfluousDisableCommand, vs[0].Rule)
	assert.Equal(t, cmds[1].Span, vs[0].Span)
	assert.Contains(t, vs[0].Message, "'A'")

	res := filter.Apply(vs, p.regions)
	require.Len(t, res.Reported, 1)
	assert.Equal(t, uint32(30), res.Reported[0].Pos())
	require.Len(t, res.Suppressed, 1)
	assert.Equal(t, uint32(10), res.Suppressed[0].Pos())
}
