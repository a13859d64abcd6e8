package audit

import (
	"slices"
	"sort"

	"sglint/internal/annotate"
	"sglint/internal/diag"
	"sglint/internal/region"
	"sglint/internal/rule"
)

type Input struct {
	Commands []annotate.Command
	Regions  *region.Set
	// Raw is the unfiltered output of every rule that ran.
	Raw      []rule.Violation
	Registry *rule.Registry
	// Active is the set of rules that ran; known but inactive rules are
	// never reported as superfluous.
	Active rule.Set
	// BlanketAllowed may stay disabled to end of file.
	BlanketAllowed []rule.ID
}

// Run audits the commands of one file. It is pure: the same input always
// yields the same findings, ordered by command position, then discovery
// order, then target order.
func Run(in Input) []Finding {
	var out []Finding
	if in.Active.Has(SuperfluousDisableCommand) {
		out = append(out, superfluous(in)...)
	}
	if in.Active.Has(InvalidRuleReference) {
		out = append(out, invalid(in)...)
	}
	if in.Active.Has(BlanketDisableCommand) {
		out = append(out, blanket(in)...)
	}
	slices.SortStableFunc(out, func(a, b Finding) int {
		switch {
		case a.Command != b.Command:
			return a.Command - b.Command
		case a.Target != b.Target:
			return a.Target - b.Target
		}
		return int(a.Kind) - int(b.Kind)
	})
	return out
}

func superfluous(in Input) []Finding {
	raw := indexRaw(in.Raw)
	var out []Finding
	for _, r := range in.Regions.All() {
		if r.Wildcard || !in.Active.Has(r.Rule) || r.Origin >= len(in.Commands) {
			continue
		}
		cmd := in.Commands[r.Origin]
		if cmd.Action != annotate.Disable {
			continue
		}
		if d, ok := in.Registry.Descriptor(r.Rule); !ok || d.Meta {
			continue
		}
		if raw.any(r) {
			continue
		}
		out = append(out, Finding{
			Kind: Superfluous, Pos: cmd.Pos, Rule: r.Rule,
			Command: r.Origin, Target: targetIndex(cmd, r.Rule, in.Registry),
		})
	}
	return out
}

func invalid(in Input) []Finding {
	var out []Finding
	for ci, cmd := range in.Commands {
		for ti, id := range cmd.Targets {
			if id == rule.Wildcard || in.Registry.Known(id) {
				continue
			}
			out = append(out, Finding{Kind: InvalidReference, Pos: cmd.Pos, Rule: id, Command: ci, Target: ti})
		}
	}
	return out
}

func blanket(in Input) []Finding {
	var out []Finding
	for _, ie := range in.Regions.Ineffective() {
		if ie.Origin >= len(in.Commands) {
			continue
		}
		cmd := in.Commands[ie.Origin]
		kind := AlreadyDisabled
		if ie.Action == region.Enabled {
			kind = NotDisabled
		}
		// the inverse half of a modifier command is not what the user wrote
		if (cmd.Action == annotate.Disable) != (ie.Action == region.Disabled) {
			continue
		}
		out = append(out, Finding{
			Kind: kind, Pos: cmd.Pos, Rule: ie.Rule,
			Command: ie.Origin, Target: targetIndex(cmd, ie.Rule, in.Registry),
		})
	}

	allowed := rule.NewSet(in.BlanketAllowed...)
	wildcardSeen := make(map[int]bool)
	for _, r := range in.Regions.All() {
		if !r.ToEOF || r.Origin >= len(in.Commands) {
			continue
		}
		cmd := in.Commands[r.Origin]
		if cmd.Modifier != annotate.ModNone || cmd.Action != annotate.Disable {
			continue
		}
		id := r.Rule
		if r.Wildcard {
			if wildcardSeen[r.Origin] {
				continue
			}
			wildcardSeen[r.Origin] = true
			id = rule.Wildcard
		}
		if allowed.Has(id) {
			continue
		}
		ti := cmd.TargetIndex(rule.Wildcard)
		if id != rule.Wildcard {
			ti = targetIndex(cmd, id, in.Registry)
		}
		out = append(out, Finding{Kind: NotReenabled, Pos: cmd.Pos, Rule: id, Command: r.Origin, Target: ti})
	}
	return out
}

// targetIndex finds the target of cmd that resolves to the canonical id.
func targetIndex(cmd annotate.Command, id rule.ID, reg *rule.Registry) int {
	for i, t := range cmd.Targets {
		if c, ok := reg.Canonical(t); ok && c == id {
			return i
		}
	}
	return cmd.TargetIndex(rule.Wildcard)
}

type rawIndex map[rule.ID][]uint32

func indexRaw(vs []rule.Violation) rawIndex {
	idx := make(rawIndex)
	for _, v := range vs {
		idx[v.Rule] = append(idx[v.Rule], v.Pos())
	}
	for _, ps := range idx {
		slices.Sort(ps)
	}
	return idx
}

// any reports whether a raw violation of r.Rule lies inside r.
func (idx rawIndex) any(r region.Region) bool {
	ps := idx[r.Rule]
	i := sort.Search(len(ps), func(i int) bool { return ps[i] >= r.Start })
	return i < len(ps) && r.Contains(ps[i])
}

// Violations turns findings into violations of the meta rules so they can be
// filtered like any other violation. They are never audited again.
func Violations(findings []Finding, cmds []annotate.Command, reg *rule.Registry) []rule.Violation {
	out := make([]rule.Violation, 0, len(findings))
	for _, f := range findings {
		meta := f.Kind.MetaRule()
		sev := diag.SevWarning
		if d, ok := reg.Descriptor(meta); ok {
			sev = d.Severity
		}
		v := rule.Violation{Rule: meta, Severity: sev, Message: f.message()}
		if f.Command >= 0 && f.Command < len(cmds) {
			v.Span = cmds[f.Command].Span
		}
		out = append(out, v)
	}
	return out
}
