package annotate

import (
	"slices"

	"sglint/internal/source"
)

// Expand turns commands into directives ordered by position.
// A command without modifier yields one directive at its own position.
// A modifier applies the action from the start of the target line and the
// inverse action from the start of the following line:
//
//	disable:previous  line-1
//	disable:this      the command's line
//	disable:next      line+1
//
// Ties keep command order, so discovery order decides equal positions.
func Expand(cmds []Command, file *source.File) []Directive {
	out := make([]Directive, 0, len(cmds))
	for i, c := range cmds {
		if c.Modifier == ModNone {
			out = append(out, Directive{Pos: c.Pos, Action: c.Action, Targets: c.Targets, Origin: i})
			continue
		}
		line := c.Line
		switch c.Modifier {
		case ModPrevious:
			if line > 0 {
				line--
			}
		case ModNext:
			line++
		}
		from := file.LineStart(line)
		// line 0 (previous on the first line) and lines past EOF collapse to empty ranges
		to := file.LineStart(line + 1)
		out = append(out,
			Directive{Pos: from, Action: c.Action, Targets: c.Targets, Origin: i},
			Directive{Pos: to, Action: c.Action.Inverse(), Targets: c.Targets, Origin: i},
		)
	}
	slices.SortStableFunc(out, func(a, b Directive) int {
		switch {
		case a.Pos < b.Pos:
			return -1
		case a.Pos > b.Pos:
			return 1
		}
		return 0
	})
	return out
}
