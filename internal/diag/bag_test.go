package diag

import (
	"testing"

	"sglint/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(3)
	b.Add(New(SevWarning, LntViolation, source.Span{Start: 10, End: 12}, "b"))
	b.Add(New(SevError, IOLoadFileError, source.Span{Start: 0, End: 0}, "a"))
	b.Add(New(SevInfo, AnnDeprecatedAlias, source.Span{Start: 10, End: 12}, "c"))
	if b.Add(New(SevInfo, LexInfo, source.Span{}, "dropped")) {
		t.Fatalf("expected limit to drop the fourth diagnostic")
	}

	b.Sort()
	got := []string{}
	for _, d := range b.Items() {
		got = append(got, d.Message)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted messages = %v, want %v", got, want)
		}
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Errorf("expected both errors and warnings")
	}
}

func TestBagDedupUsesRuleLabel(t *testing.T) {
	b := NewBag(0)
	sp := source.Span{Start: 1, End: 2}
	d := New(SevWarning, LntViolation, sp, "same")
	d.Rule = "todo"
	b.Add(d)
	b.Add(d)
	other := d
	other.Rule = "line_length"
	b.Add(other)

	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("Dedup left %d diagnostics, want 2", b.Len())
	}
}

func TestBagFilterAndMerge(t *testing.T) {
	a := NewBag(1)
	a.Add(New(SevWarning, LntViolation, source.Span{}, "keep"))
	other := NewBag(0)
	other.Add(New(SevInfo, AnnInfo, source.Span{}, "drop"))
	other.Add(New(SevError, LntRuleFailed, source.Span{}, "keep too"))

	a.Merge(other)
	if a.Len() != 3 {
		t.Fatalf("Merge must grow the limit, got %d items", a.Len())
	}
	a.Filter(func(d Diagnostic) bool { return d.Severity >= SevWarning })
	if a.Len() != 2 {
		t.Fatalf("Filter left %d items, want 2", a.Len())
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		LexUnterminatedString: "LEX1002",
		AnnNoIdentifiers:      "ANN2004",
		LntRuleFailed:         "LNT3001",
		IOLoadFileError:       "IO4001",
		IntUnresolvedRegion:   "INT9001",
		Code(12345):           "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("Code(%d).ID() = %q, want %q", code, got, want)
		}
	}
	if Code(42).Title() != "Unknown error" {
		t.Errorf("unknown code should fall back to the generic title")
	}
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{"info": SevInfo, "WARN": SevWarning, " error ": SevError} {
		got, err := ParseSeverity(in)
		if err != nil || got != want {
			t.Errorf("ParseSeverity(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Errorf("expected error for unknown severity")
	}
}

func TestReporters(t *testing.T) {
	d := NewError(LexUnknownChar, source.Span{Start: 3, End: 4}, "unknown character")

	bag := NewBag(0)
	BagReporter{Bag: bag}.Report(d)
	BagReporter{}.Report(d)
	if bag.Len() != 1 {
		t.Errorf("bag holds %d diagnostics, want 1", bag.Len())
	}

	var slice SliceReporter
	slice.Report(d)
	var seen []Code
	ReporterFunc(func(d Diagnostic) { seen = append(seen, d.Code) }).Report(d)
	if len(slice.Items) != 1 || len(seen) != 1 || seen[0] != LexUnknownChar {
		t.Errorf("slice = %v, func saw %v", slice.Items, seen)
	}
}
