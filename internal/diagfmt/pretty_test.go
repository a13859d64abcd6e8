package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"sglint/internal/diag"
	"sglint/internal/source"
)

func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	content := []byte("let x = \"unterminated string\n")
	fileID := fs.AddVirtual("/home/user/project/src/test.sg", content)

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.LexUnterminatedString,
		source.Span{File: fileID, Start: 8, End: 28}, "Unterminated string literal"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.sg:1:9"},
		{"Relative path", PathModeRelative, "src/test.sg:1:9"},
		{"Basename only", PathModeBasename, "test.sg:1:9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR LEX1002: Unterminated string literal") {
				t.Errorf("Expected header, got:\n%s", output)
			}
		})
	}
}

func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Short path - as is", "test.sg", "test.sg"},
		{"Long absolute path - basename", "/very/long/absolute/path/to/some/nested/directory/file.sg", "file.sg:1:9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tt.path, []byte("let x = 42\n"))
			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.LexUnknownChar,
				source.Span{File: fileID, Start: 8, End: 10}, "Test warning"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			output := buf.String()

			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.expected, output)
			}
			if strings.Contains(output, "/very/long") {
				t.Errorf("long path was not shortened:\n%s", output)
			}
		})
	}
}

func TestPrettyViolationUsesRuleLabel(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.sg", []byte("// TODO later\nlet x = 1;\n"))

	d := diag.New(diag.SevWarning, diag.LntViolation, source.Span{File: fileID, Start: 3, End: 7}, "TODO should be resolved")
	d.Rule = "todo"
	bag := diag.NewBag(0)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	want := "a.sg:1:4: WARNING todo: TODO should be resolved\n" +
		" 1 | // TODO later\n" +
		"   |    ^~~~\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyCaretUsesDisplayWidth(t *testing.T) {
	fs := source.NewFileSet()
	src := "// 日本 TODO\n"
	fileID := fs.AddVirtual("w.sg", []byte(src))
	start := uint32(strings.Index(src, "TODO"))

	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevInfo, diag.LntInfo, source.Span{File: fileID, Start: start, End: start + 4}, "wide"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("output:\n%s", buf.String())
	}
	// "// " is 3 columns, each kanji 2, then one space
	if want := "   | " + strings.Repeat(" ", 8) + "^~~~"; lines[2] != want {
		t.Errorf("caret line = %q, want %q", lines[2], want)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("// sglint:disable variable_name\n")
	fileID := fs.AddVirtual("test.sg", content)

	alias := source.Span{File: fileID, Start: 18, End: 31}
	d := diag.New(diag.SevInfo, diag.AnnDeprecatedAlias, alias, `"variable_name" is deprecated`).
		WithNote(source.Span{File: fileID, Start: 3, End: 10}, "command starts here").
		WithFix("use identifier_name", diag.FixEdit{Span: alias, NewText: "identifier_name"})
	bag := diag.NewBag(4)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{
		PathMode:    PathModeBasename,
		ShowNotes:   true,
		ShowFixes:   true,
		ShowPreview: true,
	})
	output := buf.String()

	for _, want := range []string{
		"note: test.sg:1:4: command starts here",
		"fix #1: use identifier_name",
		`apply="identifier_name"`,
		"preview:",
		"- // sglint:disable variable_name",
		"+ // sglint:disable identifier_name",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.sg", []byte("x\n"))
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.LexUnknownChar, source.Span{File: fileID, Start: 0, End: 1}, "bad"))

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output has escapes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escapes: %q", colored.String())
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.sg", []byte("let a = 1;\n"))
	d := diag.New(diag.SevError, diag.LntViolation, source.Span{File: fileID, Start: 4, End: 5}, "name too short")
	d.Rule = "identifier_name"
	bag := diag.NewBag(0)
	bag.Add(d)

	var buf bytes.Buffer
	Short(&buf, bag, fs, PathModeBasename)
	if want := "a.sg:1:5: error: name too short (identifier_name)\n"; buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
