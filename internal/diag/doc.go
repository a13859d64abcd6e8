// Package diag defines the diagnostic model shared by every phase of a lint run.
//
// Diagnostic is the central record: severity, a numeric Code with a stable
// string form (LEX/ANN/LNT/IO/CFG/INT prefixes), an optional rule identifier,
// a message, the primary span, optional notes and optional fix suggestions.
//
// Lint violations and command audit findings carry the rule identifier in
// Rule; lexer errors, malformed annotations, rule failures and internal
// invariant failures carry only a Code. Rendering lives in internal/diagfmt.
//
// Phases emit through a Reporter (BagReporter, SliceReporter, ReporterFunc).
// Bag supports limits, sorting, deduplication
// and filtering; the driver keeps one Bag per file so parallel workers never
// share one.
package diag
