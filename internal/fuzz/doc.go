// Package fuzztests houses Go fuzz harnesses for the front of the lint
// pipeline: lexing, command scanning, region resolution and filtering.
// Every harness checks that arbitrary input never panics and that the
// resolved regions keep their structural invariants.
package fuzztests
