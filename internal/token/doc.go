// Package token defines lexical token kinds and trivia for Surge sources.
// Invariants:
//   - Token.Text is exactly the source bytes covered by Token.Span.
//   - Comments and whitespace never appear in the token stream; they are
//     attached as leading Trivia to the next token, EOF included, so a
//     comment at the end of a file is still visible to annotation scanning.
//   - Operators and punctuation share the single kind Punct; lint rules
//     inspect Text when they care which one it is.
//   - Built-in type names (int, uint32, float64, ...) are identifiers.
package token
