package lexer

import (
	"sglint/internal/diag"
	"sglint/internal/token"
)

// Longest operators first so "..=" never lexes as ".." + "=".
var (
	punct3 = []string{"..=", "...", "<<=", ">>="}
	punct2 = []string{
		"..", "::", ":=", "->", "=>", "&&", "||", "==", "!=", "<=", ">=", "<<", ">>", "??",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	}
)

const punct1 = "+-*/%=!<>&|^?:;,.()[]{}@#~$"

// scanPunct reads one operator or punctuation token greedily.
func (lx *Lexer) scanPunct() token.Token {
	start := lx.cursor.Mark()

	if b0, b1, b2, ok := lx.cursor.Peek3(); ok {
		for _, p := range punct3 {
			if p[0] == b0 && p[1] == b1 && p[2] == b2 {
				lx.cursor.Off += 3
				return lx.emit(token.Punct, start)
			}
		}
	}
	if b0, b1, ok := lx.cursor.Peek2(); ok {
		for _, p := range punct2 {
			if p[0] == b0 && p[1] == b1 {
				lx.cursor.Off += 2
				return lx.emit(token.Punct, start)
			}
		}
	}

	ch := lx.cursor.Peek()
	for i := 0; i < len(punct1); i++ {
		if punct1[i] == ch {
			lx.cursor.Bump()
			return lx.emit(token.Punct, start)
		}
	}

	// unknown byte or rune
	if _, sz := lx.cursor.PeekRune(); sz > 1 {
		lx.cursor.BumpRune()
	} else {
		lx.cursor.Bump()
	}
	tok := lx.emit(token.Invalid, start)
	lx.errLex(diag.LexUnknownChar, tok.Span, "unknown character")
	return tok
}
