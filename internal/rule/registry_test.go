package rule_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sglint/internal/diag"
	"sglint/internal/rule"
)

type stub struct{ d rule.Descriptor }

func (s stub) Descriptor() rule.Descriptor { return s.d }
func (s stub) Evaluate(context.Context, *rule.File) ([]rule.Violation, error) {
	return nil, nil
}

func newStub(id rule.ID, optIn bool, aliases ...rule.ID) rule.Rule {
	return stub{rule.Descriptor{ID: id, Severity: diag.SevWarning, OptIn: optIn, Deprecated: aliases}}
}

func TestRegistryLookupAndAliases(t *testing.T) {
	reg, err := rule.NewRegistry(newStub("b", false), newStub("a", false, "old_a"))
	require.NoError(t, err)

	assert.Equal(t, []rule.ID{"a", "b"}, reg.IDs())
	assert.True(t, reg.Known("old_a"))
	assert.True(t, reg.IsAlias("old_a"))
	c, ok := reg.Canonical("old_a")
	require.True(t, ok)
	assert.Equal(t, rule.ID("a"), c)

	r, ok := reg.Lookup("old_a")
	require.True(t, ok)
	assert.Equal(t, rule.ID("a"), r.Descriptor().ID)

	assert.False(t, reg.Known("c"))
	assert.False(t, reg.Known(rule.Wildcard))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := rule.NewRegistry(newStub("a", false), newStub("a", false))
	require.ErrorIs(t, err, rule.ErrDuplicateRule)

	_, err = rule.NewRegistry(newStub("a", false), newStub("b", false, "a"))
	require.ErrorIs(t, err, rule.ErrDuplicateRule)

	_, err = rule.NewRegistry(newStub(rule.Wildcard, false))
	require.Error(t, err)
}

func TestActivate(t *testing.T) {
	reg := rule.MustRegistry(newStub("a", false), newStub("b", false), newStub("opt", true, "old_opt"))

	active, err := rule.Activate(reg, rule.Selection{})
	require.NoError(t, err)
	assert.Equal(t, []rule.ID{"a", "b"}, active.Sorted())

	active, err = rule.Activate(reg, rule.Selection{OptIn: []rule.ID{"old_opt"}, Disabled: []rule.ID{"a"}})
	require.NoError(t, err)
	assert.Equal(t, []rule.ID{"b", "opt"}, active.Sorted())

	active, err = rule.Activate(reg, rule.Selection{Only: []rule.ID{"b"}})
	require.NoError(t, err)
	assert.Equal(t, []rule.ID{"b"}, active.Sorted())

	_, err = rule.Activate(reg, rule.Selection{Disabled: []rule.ID{"typo"}})
	require.Error(t, err)
}
