package lexer

import (
	"sglint/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword reads an identifier and classifies keywords (case-sensitive).
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.cursor.PeekRune()
	if sz == 0 {
		return lx.emit(token.Invalid, start)
	}
	if r >= utf8RuneSelf && !identRune(r, true) {
		return lx.scanPunct()
	}
	lx.cursor.BumpRune()
	for {
		if b := lx.cursor.Peek(); b < utf8RuneSelf {
			if !isIdentContinue(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r2, sz2 := lx.cursor.PeekRune()
		if sz2 == 0 || !identRune(r2, false) {
			break
		}
		lx.cursor.BumpRune()
	}

	tok := lx.emit(token.Ident, start)
	if k, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = k
	}
	return tok
}
