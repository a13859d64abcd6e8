// Package region resolves positional directives into per-rule suppression
// intervals.
package region

import (
	"fmt"

	"sglint/internal/rule"
)

// Region is a half-open interval [Start, End) in which Rule is suppressed.
// ToEOF regions were never closed and also cover End itself.
type Region struct {
	Rule     rule.ID
	Start    uint32
	End      uint32
	ToEOF    bool
	Origin   int  // index of the command whose directive opened the region
	Wildcard bool // opened through the wildcard
}

// Contains reports whether pos is suppressed by r. An enable takes effect at
// its own position, so End is excluded for closed regions.
func (r Region) Contains(pos uint32) bool {
	if pos < r.Start {
		return false
	}
	return r.ToEOF || pos < r.End
}

func (r Region) Empty() bool {
	return !r.ToEOF && r.Start == r.End
}

func (r Region) String() string {
	if r.ToEOF {
		return fmt.Sprintf("%s[%d,EOF]", r.Rule, r.Start)
	}
	return fmt.Sprintf("%s[%d,%d)", r.Rule, r.Start, r.End)
}

// Ineffective records a specific-identifier directive that changed nothing:
// a disable of an already disabled rule or an enable of an enabled one.
type Ineffective struct {
	Rule   rule.ID // canonical identifier
	Pos    uint32
	Action Action
	Origin int
}

// Action mirrors the directive action without importing the scanner types
// into every consumer of Set.
type Action uint8

const (
	Disabled Action = iota
	Enabled
)
