package trace

import (
	"sync/atomic"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindHeartbeat: "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeRun  Scope = iota + 1 // whole invocation
	ScopeFile                  // one source file
	ScopeRule                  // one rule on one file
)

var scopeNames = [...]string{ScopeRun: "run", ScopeFile: "file", ScopeRule: "rule"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Elapsed is set on span ends only.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	Name     string // "lint", "file:src/a.sg", "rule:todo"
	Detail   string
	Elapsed  time.Duration
	Fields   map[string]string
}

var seq, spanIDs atomic.Uint64

func nextSeq() uint64 { return seq.Add(1) }

func nextSpanID() uint64 { return spanIDs.Add(1) }

// wants reports whether t records events of scope.
func wants(t Tracer, scope Scope) bool {
	return t != nil && t.Level() > LevelOff && t.Level().ShouldEmit(scope)
}
