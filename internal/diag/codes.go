package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// Annotations
	AnnInfo              Code = 2000
	AnnMissingAction     Code = 2001
	AnnUnknownAction     Code = 2002
	AnnUnknownModifier   Code = 2003
	AnnNoIdentifiers     Code = 2004
	AnnDeprecatedAlias   Code = 2101
	AnnWildcardWithNames Code = 2102

	// Lint
	LntInfo       Code = 3000
	LntRuleFailed Code = 3001
	LntViolation  Code = 3002
	LntAudit      Code = 3003

	// I/O
	IOLoadFileError Code = 4001

	// Configuration
	CfgInvalid Code = 5001

	// Observability
	ObsTimings Code = 6001

	// Internal invariants
	IntUnresolvedRegion Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Bad number",
	AnnInfo:                     "Annotation information",
	AnnMissingAction:            "Command without enable/disable action",
	AnnUnknownAction:            "Unknown command action",
	AnnUnknownModifier:          "Unknown command modifier",
	AnnNoIdentifiers:            "Command without rule identifiers",
	AnnDeprecatedAlias:          "Deprecated rule identifier",
	AnnWildcardWithNames:        "Wildcard mixed with rule identifiers",
	LntInfo:                     "Lint information",
	LntRuleFailed:               "Rule evaluation failed",
	LntViolation:                "Rule violation",
	LntAudit:                    "Command audit",
	IOLoadFileError:             "Failed to load file",
	CfgInvalid:                  "Invalid configuration",
	ObsTimings:                  "Timings",
	IntUnresolvedRegion:         "Unresolved suppression region",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ANN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("INT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
