// Package observ measures how long each lint phase takes.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase names used by the driver.
const (
	PhaseLoad    = "load"
	PhaseLex     = "lex"
	PhaseScan    = "scan"
	PhaseResolve = "resolve"
	PhaseRules   = "rules"
	PhaseFilter  = "filter"
	PhaseAudit   = "audit"
)

// Phase records the duration of one named step.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Count int
	Note  string
}

// Timer tracks phases of one file. It is not safe for concurrent use;
// Aggregate combines the timers of parallel workers.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now(), Count: 1})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

func (t *Timer) Phases() []Phase {
	if t == nil {
		return nil
	}
	return t.phases
}

// Report returns the phases of t in the order they began.
func (t *Timer) Report() Report {
	report := Report{Phases: make([]PhaseReport, 0, len(t.Phases()))}
	var total time.Duration
	for _, p := range t.Phases() {
		total += p.Dur
		report.Phases = append(report.Phases, PhaseReport{
			Name:       p.Name,
			DurationMS: durationToMillis(p.Dur),
			Count:      p.Count,
		})
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Aggregate sums per-file timers by phase name, keeping first-seen order.
type Aggregate struct {
	mu     sync.Mutex
	order  []string
	phases map[string]*Phase
}

func NewAggregate() *Aggregate {
	return &Aggregate{phases: make(map[string]*Phase)}
}

// Add merges t into the aggregate. Safe for concurrent use.
func (a *Aggregate) Add(t *Timer) {
	if a == nil || t == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range t.phases {
		acc, ok := a.phases[p.Name]
		if !ok {
			acc = &Phase{Name: p.Name}
			a.phases[p.Name] = acc
			a.order = append(a.order, p.Name)
		}
		acc.Dur += p.Dur
		acc.Count += p.Count
	}
}

// Report returns the summed phases.
func (a *Aggregate) Report() Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	report := Report{Phases: make([]PhaseReport, 0, len(a.order))}
	var total time.Duration
	for _, name := range a.order {
		p := a.phases[name]
		total += p.Dur
		report.Phases = append(report.Phases, PhaseReport{
			Name:       name,
			DurationMS: durationToMillis(p.Dur),
			Count:      p.Count,
		})
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Summary returns a human-readable table of all phases.
func (a *Aggregate) Summary() string {
	report := a.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-20s %9.2f ms  x%d\n", p.Name, p.DurationMS, p.Count)
	}
	fmt.Fprintf(&b, "  %-20s %9.2f ms\n", "total", report.TotalMS)
	return b.String()
}

// PhaseReport is the serializable form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count"`
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
