// Package aspects provides ready-made advice for woven components:
// structured call logging, Prometheus call metrics, OpenTelemetry spans and
// per-call deadlines.
//
// Every constructor returns an aop.Advice bound to a pointcut, so they can be
// mixed freely into aspects:
//
//	aspects.RegisterAspect(aop.Aspect{
//		Name:  "observability",
//		Order: -1000,
//		Advice: []aop.Advice{
//			aspects.Logging(log, "*"),
//			aspects.Tracing(otel.Tracer("users"), "api.*.*"),
//		},
//	})
package aspects
