package lexer

import (
	"sglint/internal/diag"
	"sglint/internal/token"
)

// scanNumber reads 0, 123, 1_000, 0b.., 0o.., 0x.., 1.0, .5, 1e-3, 1.0e+10.
// Type suffixes (u8, f32) stay in Text; the kind is IntLit or FloatLit by shape.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		kind = token.FloatLit
		lx.eatDigits(isDec)
		return lx.finishNumber(kind, start)
	}

	if lx.cursor.Peek() == '0' {
		if _, b1, ok := lx.cursor.Peek2(); ok {
			var digit func(byte) bool
			switch b1 {
			case 'b', 'B':
				digit = func(b byte) bool { return b == '0' || b == '1' }
			case 'o', 'O':
				digit = func(b byte) bool { return b >= '0' && b <= '7' }
			case 'x', 'X':
				digit = isHex
			}
			if digit != nil {
				lx.cursor.Bump()
				lx.cursor.Bump()
				if !digit(lx.cursor.Peek()) {
					lx.errLex(diag.LexBadNumber, lx.cursor.SpanFrom(start), "expected digits after base prefix")
					return lx.emit(token.Invalid, start)
				}
				lx.eatDigits(digit)
				lx.eatSuffix()
				return lx.emit(token.IntLit, start)
			}
		}
	}

	lx.eatDigits(isDec)

	if lx.cursor.Peek() == '.' {
		b0, b1, ok := lx.cursor.Peek2()
		// "1..2" and "x.0.foo" keep the dot out of the literal
		if ok && b0 == '.' && isDec(b1) {
			lx.cursor.Bump()
			kind = token.FloatLit
			lx.eatDigits(isDec)
		}
	}
	return lx.finishNumber(kind, start)
}

func (lx *Lexer) finishNumber(kind token.Kind, start Mark) token.Token {
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		lx.cursor.Bump()
		kind = token.FloatLit
		if b := lx.cursor.Peek(); b == '+' || b == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			lx.errLex(diag.LexBadNumber, lx.cursor.SpanFrom(start), "expected digit after exponent")
			return lx.emit(token.Invalid, start)
		}
		lx.eatDigits(isDec)
	}
	lx.eatSuffix()
	return lx.emit(kind, start)
}

func (lx *Lexer) eatDigits(digit func(byte) bool) {
	for b := lx.cursor.Peek(); digit(b) || b == '_'; b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}
}

// eatSuffix consumes a trailing type suffix such as u8 or f64.
func (lx *Lexer) eatSuffix() {
	if !isIdentStart(lx.cursor.Peek()) {
		return
	}
	for isIdentContinue(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}
