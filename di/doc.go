// Package di is a module-namespaced instance registry with a resolver on top.
//
// Components are registered once at startup; each registration builds one
// instance and stores it under a module, an alias and a binding type:
//
//	reg := di.NewRegistry()
//	reg.Register(di.Component{Module: "api", New: func() any { return &UserApi{} }})
//
// The resolver locates a record by expression ("api.userApi"), by alias or
// constructor name within a module, or by type inference, and materializes it
// under a Scope (singleton, transient, prototype, shallow or deep clone):
//
//	res := di.NewResolver(reg)
//	api, ok, err := res.Resolve(reflect.TypeFor[*UserApi](), di.Expr("api.userApi"))
//
// A failed lookup is not an error: ok is false and callers are expected to
// handle it. Requests can carry an ordered list of backups that are tried
// first. Errors are reserved for programming mistakes found at startup:
// duplicate registrations, ambiguous type inference and invalid scopes.
//
// Registry and Resolver are plain values; there is no package-level state.
// Registry.Clear exists for test isolation and refuses to run unless the
// registry was created WithClearAllowed(true).
package di
