package lexer

import (
	"testing"
	"unicode/utf8"

	"sglint/internal/source"
)

func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sg", []byte(content))
	return fs.Get(id)
}

func TestCursorSequentialReading(t *testing.T) {
	cursor := NewCursor(createFile("a\nb"))
	for _, want := range []byte{'a', '\n', 'b'} {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %q", want)
		}
		if got := cursor.Bump(); got != want {
			t.Fatalf("Bump() = %q, want %q", got, want)
		}
	}
	if !cursor.EOF() || cursor.Peek() != 0 || cursor.Bump() != 0 {
		t.Fatalf("cursor must stay at EOF")
	}
}

func TestCursorPeek2AndPeek3(t *testing.T) {
	cursor := NewCursor(createFile("ab"))
	if b0, b1, ok := cursor.Peek2(); !ok || b0 != 'a' || b1 != 'b' {
		t.Fatalf("Peek2 = %q %q %v", b0, b1, ok)
	}
	if _, _, _, ok := cursor.Peek3(); ok {
		t.Fatalf("Peek3 must fail with two bytes left")
	}
	cursor.Bump()
	if _, _, ok := cursor.Peek2(); ok {
		t.Fatalf("Peek2 must fail with one byte left")
	}
}

func TestCursorMarkResetEat(t *testing.T) {
	cursor := NewCursor(createFile("abc"))
	m := cursor.Mark()
	if !cursor.Eat('a') || cursor.Eat('x') {
		t.Fatalf("Eat must consume only matching bytes")
	}
	cursor.Bump()
	if sp := cursor.SpanFrom(m); sp.Start != 0 || sp.End != 2 {
		t.Fatalf("SpanFrom = %v", sp)
	}
	cursor.Reset(m)
	if cursor.Peek() != 'a' {
		t.Fatalf("Reset did not rewind")
	}
}

func TestCursorRunes(t *testing.T) {
	cursor := NewCursor(createFile("aé\xff"))
	want := []struct {
		r    rune
		size int
	}{{'a', 1}, {'é', 2}, {utf8.RuneError, 1}, {utf8.RuneError, 0}}
	for _, w := range want {
		r, size := cursor.PeekRune()
		if r != w.r || size != w.size {
			t.Fatalf("PeekRune at %d = %q/%d, want %q/%d", cursor.Off, r, size, w.r, w.size)
		}
		cursor.BumpRune()
	}
	if cursor.Off != 4 {
		t.Errorf("Off = %d, want 4", cursor.Off)
	}
}

func TestByteClasses(t *testing.T) {
	for _, b := range []byte("_azAZ") {
		if !isIdentStart(b) || !isIdentContinue(b) {
			t.Errorf("%q must start an identifier", b)
		}
	}
	if isIdentStart('7') || !isIdentContinue('7') || !isDec('7') {
		t.Errorf("digit classes wrong")
	}
	if !isHex('F') || isHex('g') || isDec(0xC3) || isIdentStart(0xC3) {
		t.Errorf("hex or high-byte classes wrong")
	}
	if !identRune('é', true) || identRune('٣', true) || !identRune('٣', false) {
		t.Errorf("identRune misclassifies")
	}
}
