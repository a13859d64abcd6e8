// Package testkit holds invariant checks shared by package tests and fuzz
// harnesses.
package testkit

import (
	"fmt"

	"sglint/internal/filter"
	"sglint/internal/region"
	"sglint/internal/rule"
)

// CheckRegions verifies a resolved set:
// 1) every region lies inside the file and does not end before it starts
// 2) regions of one rule are ordered by Start and never overlap
// 3) only the last region of a rule may run to end of file
func CheckRegions(set *region.Set) error {
	size := set.FileSize()
	for _, id := range set.Rules() {
		rs := set.For(id)
		for i, r := range rs {
			if r.Rule != id {
				return fmt.Errorf("region %v filed under %q", r, id)
			}
			if r.End < r.Start {
				return fmt.Errorf("region %v ends before it starts", r)
			}
			if r.End > size {
				return fmt.Errorf("region %v beyond end of file %d", r, size)
			}
			if r.ToEOF && i != len(rs)-1 {
				return fmt.Errorf("region %v runs to EOF but is followed by %v", r, rs[i+1])
			}
			if i == 0 {
				continue
			}
			prev := rs[i-1]
			if r.Start < prev.Start {
				return fmt.Errorf("regions %v and %v out of order", prev, r)
			}
			if prev.End > r.Start {
				return fmt.Errorf("regions %v and %v overlap", prev, r)
			}
		}
	}
	return nil
}

// CheckPartition verifies that res splits raw exactly: nothing lost,
// nothing duplicated, and a violation is suppressed iff a region of its own
// rule contains it.
func CheckPartition(raw []rule.Violation, res filter.Result, set *region.Set) error {
	if got := len(res.Reported) + len(res.Suppressed); got != len(raw) {
		return fmt.Errorf("partition has %d violations, raw has %d", got, len(raw))
	}
	for _, v := range res.Suppressed {
		if _, ok := set.Find(v.Rule, v.Pos()); !ok {
			return fmt.Errorf("suppressed %s at %d lies in no region", v.Rule, v.Pos())
		}
	}
	for _, v := range res.Reported {
		if set.Contains(v.Rule, v.Pos()) {
			return fmt.Errorf("reported %s at %d lies in a region", v.Rule, v.Pos())
		}
	}
	return nil
}
