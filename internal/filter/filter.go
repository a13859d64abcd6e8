// Package filter partitions raw violations by the suppression regions of a file.
package filter

import (
	"sglint/internal/region"
	"sglint/internal/rule"
)

// Result keeps the input order inside each partition.
type Result struct {
	Reported   []rule.Violation
	Suppressed []rule.Violation
}

// Apply splits raw into reported and suppressed violations. A violation is
// suppressed iff its position lies inside a region of its own rule.
// A nil set suppresses nothing.
func Apply(raw []rule.Violation, regions *region.Set) Result {
	res := Result{Reported: make([]rule.Violation, 0, len(raw))}
	for _, v := range raw {
		if regions.Contains(v.Rule, v.Pos()) {
			res.Suppressed = append(res.Suppressed, v)
			continue
		}
		res.Reported = append(res.Reported, v)
	}
	return res
}
