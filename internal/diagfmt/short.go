package diagfmt

import (
	"fmt"
	"io"

	"sglint/internal/diag"
	"sglint/internal/source"
)

// Short prints one line per diagnostic, in the form editors and grep expect:
//
//	path:line:col: severity: message (label)
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s: %s (%s)\n",
			location(fs, d.Primary, mode), lowerSeverity(d.Severity), d.Message, d.Label())
	}
}

func lowerSeverity(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	}
	return "info"
}
