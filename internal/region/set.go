package region

import (
	"slices"
	"sort"

	"sglint/internal/rule"
)

// Set holds the regions of one file. Regions of a rule are sorted by Start
// and never overlap.
type Set struct {
	byRule      map[rule.ID][]Region
	all         []Region
	ineffective []Ineffective
	size        uint32
}

func (s *Set) note(wildcard bool, in Ineffective) {
	if wildcard {
		return
	}
	s.ineffective = append(s.ineffective, in)
}

func (s *Set) finish() {
	for _, rs := range s.byRule {
		s.all = append(s.all, rs...)
	}
	slices.SortStableFunc(s.all, func(a, b Region) int {
		switch {
		case a.Start != b.Start:
			if a.Start < b.Start {
				return -1
			}
			return 1
		case a.Rule < b.Rule:
			return -1
		case a.Rule > b.Rule:
			return 1
		}
		return 0
	})
}

// For returns the regions of id in order. The slice must not be modified.
func (s *Set) For(id rule.ID) []Region {
	if s == nil {
		return nil
	}
	return s.byRule[id]
}

// Contains reports whether pos is suppressed for id.
func (s *Set) Contains(id rule.ID, pos uint32) bool {
	_, ok := s.Find(id, pos)
	return ok
}

// Find returns the region of id covering pos.
func (s *Set) Find(id rule.ID, pos uint32) (Region, bool) {
	rs := s.For(id)
	// first region starting after pos; the candidate is the one before it
	i := sort.Search(len(rs), func(i int) bool { return rs[i].Start > pos })
	if i == 0 {
		return Region{}, false
	}
	if r := rs[i-1]; r.Contains(pos) {
		return r, true
	}
	return Region{}, false
}

// All returns every region sorted by Start, then rule.
func (s *Set) All() []Region {
	if s == nil {
		return nil
	}
	return s.all
}

// Rules returns the identifiers that have at least one region.
func (s *Set) Rules() []rule.ID {
	if s == nil {
		return nil
	}
	out := make([]rule.ID, 0, len(s.byRule))
	for id := range s.byRule {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Ineffective lists specific-identifier directives that changed nothing.
func (s *Set) Ineffective() []Ineffective {
	if s == nil {
		return nil
	}
	return s.ineffective
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.all)
}

// FileSize is the end position used for regions left open.
func (s *Set) FileSize() uint32 {
	if s == nil {
		return 0
	}
	return s.size
}
