package diag

// Reporter is the sink a phase emits diagnostics into.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a Bag; a nil Bag drops everything.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// SliceReporter collects diagnostics in emission order.
type SliceReporter struct{ Items []Diagnostic }

func (r *SliceReporter) Report(d Diagnostic) {
	r.Items = append(r.Items, d)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }
