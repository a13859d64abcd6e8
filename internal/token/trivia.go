package token

import "sglint/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaLineComment
	TriviaBlockComment
	TriviaDocLine
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// IsComment reports whether the trivia is a line, doc or block comment.
func (t Trivia) IsComment() bool {
	switch t.Kind {
	case TriviaLineComment, TriviaBlockComment, TriviaDocLine:
		return true
	default:
		return false
	}
}

// Body returns the comment text without its delimiters.
// Unterminated block comments have no closing "*/" to strip.
func (t Trivia) Body() string {
	s := t.Text
	switch t.Kind {
	case TriviaDocLine:
		return s[min(3, len(s)):]
	case TriviaLineComment:
		return s[min(2, len(s)):]
	case TriviaBlockComment:
		s = s[min(2, len(s)):]
		if len(s) >= 2 && s[len(s)-2:] == "*/" {
			s = s[:len(s)-2]
		}
		return s
	default:
		return ""
	}
}

// BodyOffset is the byte offset of Body() inside Text.
func (t Trivia) BodyOffset() uint32 {
	switch t.Kind {
	case TriviaDocLine:
		return uint32(min(3, len(t.Text)))
	case TriviaLineComment, TriviaBlockComment:
		return uint32(min(2, len(t.Text)))
	default:
		return 0
	}
}

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "space"
	case TriviaNewline:
		return "newline"
	case TriviaLineComment:
		return "line_comment"
	case TriviaBlockComment:
		return "block_comment"
	case TriviaDocLine:
		return "doc_line"
	}
	return "trivia(?)"
}
