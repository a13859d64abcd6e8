package trace

import (
	"context"
	"fmt"
	"time"
)

// Span is one timed section of a run. The zero span of a disabled scope is
// inert: every method is a no-op.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	fields  map[string]string
}

// Start opens a span below the one carried by ctx and returns a context
// carrying the new span. When the tracer drops scope, ctx is returned as is.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	c := carrierOf(ctx)
	if !wants(c.tracer, scope) {
		return ctx, &Span{}
	}
	s := &Span{
		tracer:  c.tracer,
		id:      nextSpanID(),
		parent:  c.span,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	c.tracer.Emit(&Event{
		Time:     s.started,
		Seq:      nextSeq(),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     name,
	})
	return context.WithValue(ctx, carrierKey{}, carrier{tracer: c.tracer, span: s.id}), s
}

// Set records a field reported with the end event.
func (s *Span) Set(key string, value any) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.fields == nil {
		s.fields = make(map[string]string)
	}
	s.fields[key] = fmt.Sprint(value)
	return s
}

// Event emits an instant event inside the span.
func (s *Span) Event(name, detail string) {
	if s == nil || s.tracer == nil {
		return
	}
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      nextSeq(),
		Kind:     KindPoint,
		Scope:    s.scope,
		ParentID: s.id,
		Name:     name,
		Detail:   detail,
	})
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      nextSeq(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  dur,
		Fields:   s.fields,
	})
	return dur
}

// ID returns the span ID, 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Note emits an instant event under the span carried by ctx.
func Note(ctx context.Context, scope Scope, name, detail string) {
	c := carrierOf(ctx)
	if !wants(c.tracer, scope) {
		return
	}
	c.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      nextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: c.span,
		Name:     name,
		Detail:   detail,
	})
}
