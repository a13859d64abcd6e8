package region

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"sglint/internal/annotate"
	"sglint/internal/rule"
)

// ErrUnresolvedRegion marks a directive stream that cannot describe valid
// intervals: directives out of order or a region ending before it starts.
var ErrUnresolvedRegion = errors.New("unresolved suppression region")

// TieBreak decides which directive wins when several target the same rule
// at the same position.
type TieBreak uint8

const (
	// TieLastWins applies directives in scan order.
	TieLastWins TieBreak = iota
	// TieSpecificWins applies wildcard directives first so a named
	// identifier at the same position overrides them.
	TieSpecificWins
)

// ParseTieBreak accepts "last" or "specific".
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "", "last":
		return TieLastWins, nil
	case "specific":
		return TieSpecificWins, nil
	}
	return TieLastWins, fmt.Errorf("invalid tie_break %q (expected last|specific)", s)
}

func (t TieBreak) String() string {
	if t == TieSpecificWins {
		return "specific"
	}
	return "last"
}

type Options struct {
	TieBreak TieBreak
	// FileSize closes regions left open at end of input.
	FileSize uint32
}

type pending struct {
	start    uint32
	origin   int
	wildcard bool
}

// Resolve walks directives in order and produces the suppression regions.
// Unknown identifiers are skipped; the wildcard expands to every identifier
// in reg. The result is immutable.
func Resolve(dirs []annotate.Directive, reg *rule.Registry, opts Options) (*Set, error) {
	for i := 1; i < len(dirs); i++ {
		if dirs[i].Pos < dirs[i-1].Pos {
			return nil, fmt.Errorf("%w: directive %d at %d precedes %d", ErrUnresolvedRegion, i, dirs[i].Pos, dirs[i-1].Pos)
		}
	}
	if n := len(dirs); n > 0 && dirs[n-1].Pos > opts.FileSize {
		return nil, fmt.Errorf("%w: directive at %d past end of file %d", ErrUnresolvedRegion, dirs[n-1].Pos, opts.FileSize)
	}

	order := applyOrder(dirs, opts.TieBreak)
	open := make(map[rule.ID]pending)
	set := &Set{byRule: make(map[rule.ID][]Region), size: opts.FileSize}

	closeRegion := func(id rule.ID, p pending, end uint32, toEOF bool) error {
		if end < p.start {
			return fmt.Errorf("%w: %s ends at %d before it starts at %d", ErrUnresolvedRegion, id, end, p.start)
		}
		set.byRule[id] = append(set.byRule[id], Region{
			Rule: id, Start: p.start, End: end, ToEOF: toEOF,
			Origin: p.origin, Wildcard: p.wildcard,
		})
		return nil
	}

	for _, i := range order {
		d := dirs[i]
		for _, target := range d.Targets {
			wildcard := target == rule.Wildcard
			var ids []rule.ID
			if wildcard {
				ids = reg.IDs()
			} else if c, ok := reg.Canonical(target); ok {
				ids = []rule.ID{c}
			}
			for _, id := range ids {
				p, isOpen := open[id]
				switch d.Action {
				case annotate.Disable:
					if isOpen {
						set.note(wildcard, Ineffective{Rule: id, Pos: d.Pos, Action: Disabled, Origin: d.Origin})
						continue
					}
					open[id] = pending{start: d.Pos, origin: d.Origin, wildcard: wildcard}
				case annotate.Enable:
					if !isOpen {
						set.note(wildcard, Ineffective{Rule: id, Pos: d.Pos, Action: Enabled, Origin: d.Origin})
						continue
					}
					delete(open, id)
					if err := closeRegion(id, p, d.Pos, false); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	remaining := make([]rule.ID, 0, len(open))
	for id := range open {
		remaining = append(remaining, id)
	}
	slices.Sort(remaining)
	for _, id := range remaining {
		if err := closeRegion(id, open[id], opts.FileSize, true); err != nil {
			return nil, err
		}
	}

	set.finish()
	return set, nil
}

// applyOrder returns directive indices in application order.
func applyOrder(dirs []annotate.Directive, tb TieBreak) []int {
	order := make([]int, len(dirs))
	for i := range order {
		order[i] = i
	}
	if tb != TieSpecificWins {
		return order
	}
	sort.SliceStable(order, func(a, b int) bool {
		da, db := dirs[order[a]], dirs[order[b]]
		if da.Pos != db.Pos {
			return da.Pos < db.Pos
		}
		return isWildcardOnly(da) && !isWildcardOnly(db)
	})
	return order
}

func isWildcardOnly(d annotate.Directive) bool {
	for _, t := range d.Targets {
		if t != rule.Wildcard {
			return false
		}
	}
	return len(d.Targets) > 0
}
