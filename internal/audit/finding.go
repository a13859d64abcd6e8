// Package audit checks suppression commands against the raw violations of a
// file: disables that suppressed nothing, references to unknown rules and,
// optionally, blanket disables left open.
package audit

import (
	"fmt"

	"sglint/internal/rule"
)

// Identifiers of the audit-only rules.
const (
	SuperfluousDisableCommand rule.ID = "superfluous_disable_command"
	InvalidRuleReference      rule.ID = "invalid_rule_reference"
	BlanketDisableCommand     rule.ID = "blanket_disable_command"
)

type Kind uint8

const (
	Superfluous Kind = iota
	InvalidReference
	AlreadyDisabled
	NotDisabled
	NotReenabled
)

func (k Kind) String() string {
	switch k {
	case Superfluous:
		return "superfluous"
	case InvalidReference:
		return "invalid-reference"
	case AlreadyDisabled:
		return "already-disabled"
	case NotDisabled:
		return "not-disabled"
	case NotReenabled:
		return "not-reenabled"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MetaRule is the rule a finding of kind k is reported under.
func (k Kind) MetaRule() rule.ID {
	switch k {
	case Superfluous:
		return SuperfluousDisableCommand
	case InvalidReference:
		return InvalidRuleReference
	default:
		return BlanketDisableCommand
	}
}

// Finding is one audit result tied to a command.
type Finding struct {
	Kind    Kind
	Pos     uint32  // position of the command
	Rule    rule.ID // canonical id, or the identifier as written when unknown
	Command int     // index into the command slice
	Target  int     // index into the command's targets
}

func (f Finding) message() string {
	switch f.Kind {
	case Superfluous:
		return fmt.Sprintf("'%s' did not trigger a violation in the disabled region; remove the disable command", f.Rule)
	case InvalidReference:
		return fmt.Sprintf("'%s' is not a valid rule; remove it from the command", f.Rule)
	case AlreadyDisabled:
		return fmt.Sprintf("the disabled '%s' rule was already disabled", f.Rule)
	case NotDisabled:
		return fmt.Sprintf("the enabled '%s' rule was not disabled", f.Rule)
	case NotReenabled:
		return fmt.Sprintf("the disabled '%s' rule should be re-enabled before the end of the file", f.Rule)
	}
	return f.Kind.String()
}
