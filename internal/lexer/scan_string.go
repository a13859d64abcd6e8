package lexer

import (
	"sglint/internal/diag"
	"sglint/internal/token"
)

func (lx *Lexer) isFStringStart() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == 'f' && b1 == '"'
}

// scanString reads "..." or f"...". Escapes are skipped, not validated.
// A newline or EOF before the closing quote yields an Invalid token.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	kind := token.StringLit
	if lx.cursor.Eat('f') {
		kind = token.FStringLit
	}
	lx.cursor.Bump() // opening quote
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '"' {
			lx.cursor.Bump()
			return lx.emit(kind, start)
		}
		if b == '\\' {
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				break
			}
			lx.cursor.Bump()
			continue
		}
		if b == '\n' {
			lx.errLex(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "newline in string literal")
			return lx.emit(token.Invalid, start)
		}
		lx.cursor.Bump()
	}
	lx.errLex(diag.LexUnterminatedString, lx.cursor.SpanFrom(start), "unterminated string literal")
	return lx.emit(token.Invalid, start)
}

func (lx *Lexer) emit(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
