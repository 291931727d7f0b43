package di_test

import (
	"reflect"
	"testing"

	"github.com/sghaida/iocaop/di"
)

/*
   Shared helpers (NOT counted in benchmarks)
*/

func newBenchResolver(b *testing.B) *di.Resolver {
	b.Helper()
	reg := di.NewRegistry()
	if _, err := reg.Register(di.Component{New: newUserApi}); err != nil {
		b.Fatal(err)
	}
	if _, err := reg.Register(di.Component{Alias: "dog", New: func() any { return &Dog{Name: "rex"} }}); err != nil {
		b.Fatal(err)
	}
	return di.NewResolver(reg)
}

/*
   Benchmarks
*/

func BenchmarkResolve_Expression(b *testing.B) {
	r := newBenchResolver(b)
	req := di.Expr("default.userApi")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = r.Resolve(userApiType, req)
	}
}

func BenchmarkResolve_Inferred(b *testing.B) {
	r := newBenchResolver(b)
	animal := reflect.TypeFor[Animal]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = r.Resolve(animal, nil)
	}
}

func BenchmarkResolve_Scopes(b *testing.B) {
	r := newBenchResolver(b)

	for _, scope := range []di.Scope{di.Singleton, di.Transient, di.Prototype, di.ShallowClone, di.DeepClone} {
		req := &di.Request{AliasOrCtorName: "userApi", Scope: scope}
		b.Run(string(scope), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _, _ = r.Resolve(userApiType, req)
			}
		})
	}
}

func BenchmarkResolve_Backups(b *testing.B) {
	r := newBenchResolver(b)
	req := &di.Request{Expression: "missing", Backups: []any{failingConstructibleA, newClassB}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = r.Resolve(nil, req)
	}
}
