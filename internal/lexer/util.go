package lexer

import (
	"unicode"
	"unicode/utf8"
)

type byteClass uint8

const (
	classIdentStart byteClass = 1 << iota
	classDigit
	classHex
)

// classes covers ASCII; anything from utf8.RuneSelf up goes through identRune.
var classes = func() (t [utf8.RuneSelf]byteClass) {
	for b := 'a'; b <= 'z'; b++ {
		t[b] |= classIdentStart
		t[b-'a'+'A'] |= classIdentStart
	}
	t['_'] |= classIdentStart
	for b := '0'; b <= '9'; b++ {
		t[b] |= classDigit | classHex
	}
	for b := 'a'; b <= 'f'; b++ {
		t[b] |= classHex
		t[b-'a'+'A'] |= classHex
	}
	return t
}()

func is(b byte, c byteClass) bool { return b < utf8.RuneSelf && classes[b]&c != 0 }

func isIdentStart(b byte) bool    { return is(b, classIdentStart) }
func isIdentContinue(b byte) bool { return is(b, classIdentStart|classDigit) }
func isDec(b byte) bool           { return is(b, classDigit) }
func isHex(b byte) bool           { return is(b, classHex) }

// identRune is the Unicode counterpart of isIdentStart and isIdentContinue.
func identRune(r rune, first bool) bool {
	return r == '_' || unicode.IsLetter(r) || !first && unicode.IsDigit(r)
}

// isNumberAfterDot reports the ".5" case.
func (lx *Lexer) isNumberAfterDot() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == '.' && isDec(b1)
}
