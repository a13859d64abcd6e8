// Package annotate extracts enable/disable commands from comment trivia and
// expands line modifiers into plain positional directives.
package annotate

import (
	"sglint/internal/rule"
	"sglint/internal/source"
)

// DefaultPrefix opens every command: "sglint:disable ...".
const DefaultPrefix = "sglint"

// trailingDelimiter separates identifiers from a free-form explanation.
const trailingDelimiter = " - "

type Action uint8

const (
	Disable Action = iota
	Enable
)

func (a Action) String() string {
	if a == Enable {
		return "enable"
	}
	return "disable"
}

// Inverse is the action that undoes a.
func (a Action) Inverse() Action {
	if a == Enable {
		return Disable
	}
	return Enable
}

type Modifier uint8

const (
	ModNone Modifier = iota
	ModPrevious
	ModThis
	ModNext
)

func (m Modifier) String() string {
	switch m {
	case ModPrevious:
		return "previous"
	case ModThis:
		return "this"
	case ModNext:
		return "next"
	}
	return ""
}

// Command is one recognized annotation.
// Targets are deduplicated in order of first appearance and never empty.
type Command struct {
	Pos      uint32      // offset of the prefix
	Span     source.Span // prefix through the last identifier
	Line     uint32
	Action   Action
	Modifier Modifier
	Targets  []rule.ID
	Trailing string
}

// HasWildcard reports whether the command targets every rule.
func (c Command) HasWildcard() bool {
	for _, id := range c.Targets {
		if id == rule.Wildcard {
			return true
		}
	}
	return false
}

// TargetIndex returns the position of id in Targets, or -1.
func (c Command) TargetIndex(id rule.ID) int {
	for i, t := range c.Targets {
		if t == id {
			return i
		}
	}
	return -1
}

// Directive is a command with its modifier applied: a single action at a position.
type Directive struct {
	Pos     uint32
	Action  Action
	Targets []rule.ID
	Origin  int // index into the command slice
}
