package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff   Level = iota // no tracing
	LevelError              // only emit on crashes
	LevelRun                // run boundaries
	LevelFile               // per-file stages
	LevelRule               // per-rule evaluations
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelRun:
		return "run"
	case LevelFile:
		return "file"
	case LevelRule:
		return "rule"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "run":
		return LevelRun, nil
	case "file":
		return LevelFile, nil
	case "rule":
		return LevelRule, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|run|file|rule)", s)
	}
}

// ShouldEmit reports whether events of scope are recorded at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelRun:
		return scope <= ScopeRun
	case LevelFile:
		return scope <= ScopeFile
	case LevelRule:
		return true
	case LevelError:
		// kept in the ring only, for crash dumps
		return scope <= ScopeFile
	}
	return false
}
