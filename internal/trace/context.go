package trace

import "context"

// carrier is what a context holds: the tracer and the innermost open span.
type carrier struct {
	tracer Tracer
	span   uint64
}

type carrierKey struct{}

func carrierOf(ctx context.Context) carrier {
	if ctx != nil {
		if c, ok := ctx.Value(carrierKey{}).(carrier); ok {
			return c
		}
	}
	return carrier{tracer: Nop}
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return carrierOf(ctx).tracer
}

// WithTracer attaches t to ctx. Spans started from the result are roots.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, carrierKey{}, carrier{tracer: t})
}
