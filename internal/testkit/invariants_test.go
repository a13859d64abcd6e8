package testkit

import (
	"testing"

	"sglint/internal/annotate"
	"sglint/internal/filter"
	"sglint/internal/lexer"
	"sglint/internal/region"
	"sglint/internal/rule"
	"sglint/internal/rules"
	"sglint/internal/source"
)

func resolve(t *testing.T, src string) (*region.Set, source.FileID) {
	t.Helper()
	reg, err := rules.NewRegistry(rules.Options{})
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("k.sg", []byte(src)))
	cmds, _ := annotate.Scan(lexer.Tokenize(f, lexer.Options{}), f, annotate.Options{Registry: reg})
	set, err := region.Resolve(annotate.Expand(cmds, f), reg, region.Options{FileSize: f.Size()})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return set, f.ID
}

func TestCheckRegionsAcceptsResolvedSet(t *testing.T) {
	set, _ := resolve(t, "// sglint:disable todo\nlet a = 1;\n// sglint:enable todo\n// sglint:disable all\n")
	if err := CheckRegions(set); err != nil {
		t.Fatal(err)
	}
}

func TestCheckPartition(t *testing.T) {
	src := "// sglint:disable todo\n// TODO a\n// sglint:enable todo\n// TODO b\n"
	set, file := resolve(t, src)
	raw := []rule.Violation{
		{Rule: rules.TodoID, Span: source.Span{File: file, Start: 26, End: 30}},
		{Rule: rules.TodoID, Span: source.Span{File: file, Start: 58, End: 62}},
	}
	res := filter.Apply(raw, set)
	if err := CheckPartition(raw, res, set); err != nil {
		t.Fatal(err)
	}

	// swapping the partitions must be caught
	bad := filter.Result{Reported: res.Suppressed, Suppressed: res.Reported}
	if err := CheckPartition(raw, bad, set); err == nil {
		t.Fatal("expected a partition error")
	}
	if err := CheckPartition(raw[:1], res, set); err == nil {
		t.Fatal("expected a count mismatch")
	}
}
