package di

import (
	"reflect"
	"unsafe"
)

// Scope selects how a resolved record is materialized.
type Scope string

const (
	// Singleton returns the stored instance.
	Singleton Scope = "singleton"

	// Transient constructs a fresh instance with the record's constructor.
	Transient Scope = "transient"

	// Prototype returns a copy linked to the stored instance; see Resolver.PrototypeOf.
	Prototype Scope = "prototype"

	// ShallowClone copies the top-level value; nested references stay shared.
	ShallowClone Scope = "shallowclone"

	// DeepClone copies the value recursively, independent of the original.
	DeepClone Scope = "deepclone"
)

// Valid reports whether s is a known scope. The empty scope is valid and means Singleton.
func (s Scope) Valid() bool {
	switch s {
	case "", Singleton, Transient, Prototype, ShallowClone, DeepClone:
		return true
	}
	return false
}

// ParseScope converts a string into a Scope.
func ParseScope(s string) (Scope, error) {
	sc := Scope(s)
	if !sc.Valid() {
		return "", InvalidScopeError{Scope: sc}
	}
	if sc == "" {
		return Singleton, nil
	}
	return sc, nil
}

// shallowCopy returns a new top-level copy of v. Pointers yield a new
// pointee, maps and slices a new container with the same elements; other
// values are already copied by assignment.
func shallowCopy(v any) any {
	src := reflect.ValueOf(v)
	switch src.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return v
		}
		dst := reflect.New(src.Type().Elem())
		dst.Elem().Set(src.Elem())
		return dst.Interface()
	case reflect.Map:
		if src.IsNil() {
			return v
		}
		dst := reflect.MakeMapWithSize(src.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(iter.Key(), iter.Value())
		}
		return dst.Interface()
	case reflect.Slice:
		if src.IsNil() {
			return v
		}
		dst := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		reflect.Copy(dst, src)
		return dst.Interface()
	}
	return v
}

// deepCopy returns a recursive copy of v, unexported fields included.
// Shared and cyclic pointers are copied once and stay shared in the result.
// Channels, functions and unsafe pointers are copied by reference.
func deepCopy(v any) any {
	if v == nil {
		return nil
	}
	src := reflect.ValueOf(v)
	dst := reflect.New(src.Type()).Elem()
	c := cloner{seen: make(map[seenKey]reflect.Value)}
	c.copy(dst, src)
	return dst.Interface()
}

type seenKey struct {
	ptr uintptr
	typ reflect.Type
}

type cloner struct {
	seen map[seenKey]reflect.Value
}

func (c *cloner) copy(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return
		}
		key := seenKey{ptr: src.Pointer(), typ: src.Type()}
		if p, ok := c.seen[key]; ok {
			dst.Set(p)
			return
		}
		p := reflect.New(src.Type().Elem())
		c.seen[key] = p
		c.copy(p.Elem(), src.Elem())
		dst.Set(p)

	case reflect.Interface:
		if src.IsNil() {
			return
		}
		inner := src.Elem()
		n := reflect.New(inner.Type()).Elem()
		c.copy(n, inner)
		dst.Set(n)

	case reflect.Struct:
		src = addressable(src)
		dst.Set(src)
		for i := 0; i < src.NumField(); i++ {
			c.copy(exposed(dst.Field(i)), exposed(src.Field(i)))
		}

	case reflect.Slice:
		if src.IsNil() {
			return
		}
		n := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			c.copy(n.Index(i), src.Index(i))
		}
		dst.Set(n)

	case reflect.Array:
		src = addressable(src)
		for i := 0; i < src.Len(); i++ {
			c.copy(dst.Index(i), src.Index(i))
		}

	case reflect.Map:
		if src.IsNil() {
			return
		}
		n := reflect.MakeMapWithSize(src.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			k := reflect.New(iter.Key().Type()).Elem()
			c.copy(k, iter.Key())
			e := reflect.New(iter.Value().Type()).Elem()
			c.copy(e, iter.Value())
			n.SetMapIndex(k, e)
		}
		dst.Set(n)

	default:
		dst.Set(src)
	}
}

// addressable returns v itself when addressable, otherwise an addressable copy.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	return cp
}

// exposed lifts the read-only flag reflect puts on unexported struct fields
// so their contents can be copied.
func exposed(v reflect.Value) reflect.Value {
	if v.CanSet() || !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}
