package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sglint/internal/annotate"
	"sglint/internal/source"
	"sglint/internal/token"
)

type TokenOutput struct {
	Kind    string      `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Span    source.Span `json:"span"`
	Leading []string    `json:"leading,omitempty"`
}

type CommandOutput struct {
	Line     uint32   `json:"line"`
	Action   string   `json:"action"`
	Modifier string   `json:"modifier,omitempty"`
	Targets  []string `json:"targets"`
	Trailing string   `json:"trailing,omitempty"`
}

type tokensDocument struct {
	Tokens   []TokenOutput   `json:"tokens"`
	Commands []CommandOutput `json:"commands"`
}

// FormatTokensPretty prints tokens one per line, then the suppression
// commands found in their comments.
func FormatTokensPretty(w io.Writer, tokens []token.Token, cmds []annotate.Command, fs *source.FileSet) error {
	for i, tok := range tokens {
		startPos, endPos := fs.Resolve(tok.Span)

		var leading []string
		for _, trivia := range tok.Leading {
			leading = append(leading, trivia.Kind.String())
		}

		fmt.Fprintf(w, "%3d: %-15s", i+1, tok.Kind.String())
		if tok.Text != "" {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintf(w, " at %d:%d-%d:%d",
			startPos.Line, startPos.Col,
			endPos.Line, endPos.Col)
		if len(leading) > 0 {
			fmt.Fprintf(w, " (leading: %s)", strings.Join(leading, ", "))
		}
		fmt.Fprintln(w)

		if tok.Kind == token.EOF {
			break
		}
	}

	if len(cmds) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range cmds {
		out := commandOutput(c)
		head := out.Action
		if out.Modifier != "" {
			head += ":" + out.Modifier
		}
		fmt.Fprintf(w, "  line %d: %s %s", out.Line, head, strings.Join(out.Targets, " "))
		if out.Trailing != "" {
			fmt.Fprintf(w, " (%s)", out.Trailing)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// FormatTokensJSON writes tokens and commands as one JSON document.
func FormatTokensJSON(w io.Writer, tokens []token.Token, cmds []annotate.Command) error {
	doc := tokensDocument{
		Tokens:   make([]TokenOutput, 0, len(tokens)),
		Commands: make([]CommandOutput, 0, len(cmds)),
	}
	for _, tok := range tokens {
		var leading []string
		for _, trivia := range tok.Leading {
			leading = append(leading, trivia.Kind.String())
		}
		doc.Tokens = append(doc.Tokens, TokenOutput{
			Kind:    tok.Kind.String(),
			Text:    tok.Text,
			Span:    tok.Span,
			Leading: leading,
		})
		if tok.Kind == token.EOF {
			break
		}
	}
	for _, c := range cmds {
		doc.Commands = append(doc.Commands, commandOutput(c))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func commandOutput(c annotate.Command) CommandOutput {
	out := CommandOutput{
		Line:     c.Line,
		Action:   c.Action.String(),
		Trailing: c.Trailing,
		Targets:  make([]string, len(c.Targets)),
	}
	if c.Modifier != annotate.ModNone {
		out.Modifier = c.Modifier.String()
	}
	for i, t := range c.Targets {
		out.Targets[i] = string(t)
	}
	return out
}
