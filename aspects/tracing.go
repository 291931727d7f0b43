package aspects

import (
	"github.com/sghaida/iocaop/aop"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a span named "Class.Method" around every matched call.
// The span context replaces the invocation context, so advice further in and
// context-aware methods see it as their parent.
func Tracing(tracer trace.Tracer, pointcut string) aop.Advice {
	return aop.Around(pointcut, func(inv *aop.Invocation, chain *aop.Chain) (any, error) {
		ctx, span := tracer.Start(inv.Context(), inv.Class+"."+inv.Method,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("iocaop.module", inv.Module),
				attribute.String("iocaop.class", inv.Class),
				attribute.String("iocaop.method", inv.Method),
				attribute.String("iocaop.invocation", inv.ID),
				attribute.Int("iocaop.args", len(inv.Args)),
			))
		defer span.End()

		inv.SetContext(ctx)
		result, err := chain.Proceed(inv)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}
		span.SetStatus(codes.Ok, "")
		return result, nil
	})
}
