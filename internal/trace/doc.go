// Package trace records what a lint run is doing: run, file and rule spans
// emitted to a stream, a ring buffer, or both.
//
//	sglint lint --trace=- --trace-level=file ./src
//
// Levels, coarsest first: off, error (nothing streamed, the ring is dumped
// on a crash), run, file, rule.
//
// Spans nest through the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+path)
//	defer span.End("")
package trace
