// Package aop weaves advice around the methods of registered components.
//
// Advice is grouped into aspects. Each advice pairs a kind (before, after,
// around, afterReturning, afterThrowing) with a pointcut expression over
// (module, class, method):
//
//	aspects := aop.NewAspectRegistry()
//	aspects.RegisterAspect(aop.Aspect{
//		Name:  "audit",
//		Order: 1,
//		Advice: []aop.Advice{
//			aop.Before("api.UserApi.Get*", func(inv *aop.Invocation) error { ... }),
//		},
//	})
//
// Lower orders wrap outermost: their before advice runs first and their after
// advice runs last.
//
// Weaver.Weave builds one chain per exported method of every instance in a
// di.Registry. Calls reach a chain through the weaver:
//
//	w := aop.NewWeaver(reg, aspects)
//	_ = w.Weave()
//	users, err := aop.Call[[]string](ctx, w, api, "GetUsers")
//
// A method whose first parameter is a context.Context receives the
// invocation context. A trailing error result is what advice sees as a
// failure.
package aop
