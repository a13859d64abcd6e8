package lexer

import (
	"sglint/internal/diag"
	"sglint/internal/source"
)

type Options struct {
	Reporter diag.Reporter // nil drops lexical errors; lexing continues either way
}

func (lx *Lexer) errLex(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(diag.NewError(code, sp, msg))
	}
}
