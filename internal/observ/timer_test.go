package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestAggregateSumsByName(t *testing.T) {
	agg := NewAggregate()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm := NewTimer()
			idx := tm.Begin(PhaseLex)
			tm.End(idx, "")
			idx = tm.Begin(PhaseRules)
			tm.phases[idx].Start = tm.phases[idx].Start.Add(-time.Millisecond)
			tm.End(idx, "")
			agg.Add(tm)
		}()
	}
	wg.Wait()

	rep := agg.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %+v", rep.Phases)
	}
	for _, p := range rep.Phases {
		if p.Count != 4 {
			t.Errorf("%s count = %d, want 4", p.Name, p.Count)
		}
	}
	if rep.TotalMS < 4 {
		t.Errorf("total = %.2f ms, want >= 4", rep.TotalMS)
	}
	if !strings.Contains(agg.Summary(), "total") {
		t.Errorf("summary misses total line")
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if tm.Phases() != nil {
		t.Fatalf("nil timer recorded phases")
	}
}
