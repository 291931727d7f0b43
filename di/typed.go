package di

import "reflect"

// Register registers ctor bound to T. When T is an interface the record
// becomes the exact match for type inference on T.
//
// Example:
//
//	di.Register[Animal](reg, "", "", func() Animal { return &Generic{} })
func Register[T any](reg *Registry, module, alias string, ctor func() T) (*Record, error) {
	if ctor == nil {
		return nil, ErrNilConstructor
	}
	return reg.Register(Component{
		Module: module,
		Alias:  alias,
		Type:   reflect.TypeFor[T](),
		New:    func() any { return ctor() },
	})
}

// ResolveAs resolves req with T as the declared type and returns the value typed as T.
//
// It returns:
//   - ok=false, err=nil if nothing was resolved
//   - WrongTypeDependencyError if the resolved value is not a T
//   - any error Resolve itself returns
func ResolveAs[T any](r *Resolver, req *Request) (T, bool, error) {
	var zero T
	want := reflect.TypeFor[T]()
	v, ok, err := r.Resolve(want, req)
	if err != nil || !ok {
		return zero, false, err
	}
	t, isT := v.(T)
	if !isT {
		return zero, false, WrongTypeDependencyError{
			Name:     requestName(req),
			WantType: want.String(),
			GotType:  reflect.TypeOf(v).String(),
		}
	}
	return t, true, nil
}

// MustResolveAs returns the dependency typed as T or panics.
//
// Useful in composition roots and tests where a missing dependency should fail fast.
func MustResolveAs[T any](r *Resolver, req *Request) T {
	v, ok, err := ResolveAs[T](r, req)
	if err != nil {
		panic(err)
	}
	if !ok {
		panic("di: unresolved dependency " + reflect.TypeFor[T]().String())
	}
	return v
}

func requestName(req *Request) string {
	if req == nil {
		return ""
	}
	if req.Expression != "" {
		return req.Expression
	}
	return req.AliasOrCtorName
}
