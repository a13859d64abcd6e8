package version

import "github.com/fatih/color"

// Build metadata for the sglint CLI. Override with -ldflags -X.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric part highlighted. Anything after
// the patch number (a pre-release or build suffix) is left plain.
func Colored(enabled bool) string {
	core, suffix := splitSuffix(Version)
	parts := splitDots(core)
	if !enabled || len(parts) != 3 {
		return Version
	}
	paint := func(c *color.Color, s string) string {
		c.EnableColor()
		return c.Sprint(s)
	}
	return paint(majorColor, parts[0]) + "." + paint(minorColor, parts[1]) + "." + paint(patchColor, parts[2]) + suffix
}

func splitSuffix(v string) (core, suffix string) {
	for i, r := range v {
		if r == '-' || r == '+' {
			return v[:i], v[i:]
		}
	}
	return v, ""
}

func splitDots(s string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
