package rule

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var ErrDuplicateRule = errors.New("duplicate rule identifier")

// Registry is the immutable set of rules known to a run.
// It is safe to share between goroutines.
type Registry struct {
	rules   []Rule
	descs   []Descriptor
	byID    map[ID]int
	aliases map[ID]ID
}

// NewRegistry builds a registry. Identifiers and deprecated aliases must be
// unique and must not collide with Wildcard.
func NewRegistry(rules ...Rule) (*Registry, error) {
	reg := &Registry{
		byID:    make(map[ID]int, len(rules)),
		aliases: make(map[ID]ID),
	}
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int {
		return cmp.Compare(a.Descriptor().ID, b.Descriptor().ID)
	})
	for _, r := range sorted {
		d := r.Descriptor()
		if d.ID == "" || d.ID == Wildcard {
			return nil, fmt.Errorf("rule %q: reserved identifier", d.ID)
		}
		if reg.taken(d.ID) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, d.ID)
		}
		reg.byID[d.ID] = len(reg.rules)
		reg.rules = append(reg.rules, r)
		reg.descs = append(reg.descs, d)
	}
	for _, d := range reg.descs {
		for _, alias := range d.Deprecated {
			if alias == Wildcard || reg.taken(alias) {
				return nil, fmt.Errorf("%w: alias %s of %s", ErrDuplicateRule, alias, d.ID)
			}
			reg.aliases[alias] = d.ID
		}
	}
	return reg, nil
}

// MustRegistry is NewRegistry for static rule sets.
func MustRegistry(rules ...Rule) *Registry {
	reg, err := NewRegistry(rules...)
	if err != nil {
		panic(err)
	}
	return reg
}

func (r *Registry) taken(id ID) bool {
	_, ok := r.byID[id]
	_, alias := r.aliases[id]
	return ok || alias
}

// Canonical resolves id, following deprecated aliases.
func (r *Registry) Canonical(id ID) (ID, bool) {
	if r == nil {
		return "", false
	}
	if _, ok := r.byID[id]; ok {
		return id, true
	}
	if c, ok := r.aliases[id]; ok {
		return c, true
	}
	return "", false
}

// Known reports whether id or one of its aliases is registered.
func (r *Registry) Known(id ID) bool {
	_, ok := r.Canonical(id)
	return ok
}

// IsAlias reports whether id is a deprecated spelling.
func (r *Registry) IsAlias(id ID) bool {
	if r == nil {
		return false
	}
	_, ok := r.aliases[id]
	return ok
}

func (r *Registry) Lookup(id ID) (Rule, bool) {
	c, ok := r.Canonical(id)
	if !ok {
		return nil, false
	}
	return r.rules[r.byID[c]], true
}

func (r *Registry) Descriptor(id ID) (Descriptor, bool) {
	c, ok := r.Canonical(id)
	if !ok {
		return Descriptor{}, false
	}
	return r.descs[r.byID[c]], true
}

// IDs returns canonical identifiers in sorted order.
func (r *Registry) IDs() []ID {
	if r == nil {
		return nil
	}
	out := make([]ID, len(r.descs))
	for i, d := range r.descs {
		out[i] = d.ID
	}
	return out
}

// Rules returns rules sorted by identifier.
func (r *Registry) Rules() []Rule {
	if r == nil {
		return nil
	}
	return slices.Clone(r.rules)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}
