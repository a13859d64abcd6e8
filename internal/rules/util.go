package rules

import (
	"slices"

	"sglint/internal/rule"
)

func sortByPos(vs []rule.Violation) {
	slices.SortStableFunc(vs, func(a, b rule.Violation) int {
		return int(a.Pos()) - int(b.Pos())
	})
}
