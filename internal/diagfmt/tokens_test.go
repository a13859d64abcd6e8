package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"sglint/internal/annotate"
	"sglint/internal/lexer"
	"sglint/internal/source"
)

func lexForTest(t *testing.T, src string) (*source.FileSet, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	return fs, fs.Get(fs.AddVirtual("tokens.sg", []byte(src)))
}

func TestFormatTokensPretty(t *testing.T) {
	fs, f := lexForTest(t, "// sglint:disable:next todo - later\nlet x = 1;\n")
	toks := lexer.Tokenize(f, lexer.Options{})
	cmds, _ := annotate.Scan(toks, f, annotate.Options{})

	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, toks, cmds, fs); err != nil {
		t.Fatalf("FormatTokensPretty: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"let"`) || !strings.Contains(out, "(leading: line_comment") {
		t.Errorf("token listing incomplete:\n%s", out)
	}
	if !strings.Contains(out, "commands:\n  line 1: disable:next todo (later)\n") {
		t.Errorf("command listing missing:\n%s", out)
	}
}

func TestFormatTokensJSON(t *testing.T) {
	_, f := lexForTest(t, "let y = 2; /* sglint:enable all */\n")
	toks := lexer.Tokenize(f, lexer.Options{})
	cmds, _ := annotate.Scan(toks, f, annotate.Options{})

	var buf bytes.Buffer
	if err := FormatTokensJSON(&buf, toks, cmds); err != nil {
		t.Fatalf("FormatTokensJSON: %v", err)
	}
	var doc tokensDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(doc.Tokens) == 0 || doc.Tokens[len(doc.Tokens)-1].Kind != "EOF" {
		t.Errorf("tokens = %+v", doc.Tokens)
	}
	if len(doc.Commands) != 1 {
		t.Fatalf("commands = %+v", doc.Commands)
	}
	c := doc.Commands[0]
	if c.Action != "enable" || c.Modifier != "" || len(c.Targets) != 1 || c.Targets[0] != "all" {
		t.Errorf("command = %+v", c)
	}
}
