package rule

import (
	"fmt"
	"slices"
)

// Set is a set of canonical rule identifiers.
type Set map[ID]struct{}

func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id ID) { s[id] = struct{}{} }

func (s Set) Sorted() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Selection narrows the registry to the rules that run.
// Only, when non-empty, replaces the default set; OptIn adds opt-in rules;
// Disabled removes rules last.
type Selection struct {
	Only     []ID
	OptIn    []ID
	Disabled []ID
}

// Activate resolves a selection against reg. Unknown identifiers are
// returned as an error so configuration typos surface early.
func Activate(reg *Registry, sel Selection) (Set, error) {
	active := make(Set, reg.Len())
	var unknown []ID
	resolve := func(ids []ID, fn func(ID)) {
		for _, id := range ids {
			c, ok := reg.Canonical(id)
			if !ok {
				unknown = append(unknown, id)
				continue
			}
			fn(c)
		}
	}

	if len(sel.Only) > 0 {
		resolve(sel.Only, active.Add)
	} else {
		for _, d := range reg.descs {
			if !d.OptIn {
				active.Add(d.ID)
			}
		}
	}
	resolve(sel.OptIn, active.Add)
	resolve(sel.Disabled, func(id ID) { delete(active, id) })

	if len(unknown) > 0 {
		return active, fmt.Errorf("unknown rule identifiers: %v", unknown)
	}
	return active, nil
}
