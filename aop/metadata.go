package aop

import (
	"fmt"
	"reflect"
)

// MetadataSource supplies a per-method payload attached to each invocation
// under AttachmentMetadata, typically derived request configuration.
//
// It is intentionally:
// - read-only
// - side effect free
//
// Expected usage:
//
//	val, ok, err := src.Lookup(receiver, "GetUsers")
type MetadataSource interface {
	Lookup(receiver any, method string) (val any, ok bool, err error)
}

type metadataKey struct {
	typ    reflect.Type
	method string
}

// MapMetadata is a simple in-memory MetadataSource keyed by receiver type and method name.
type MapMetadata struct {
	items map[metadataKey]any
}

func NewMapMetadata() *MapMetadata {
	return &MapMetadata{items: map[metadataKey]any{}}
}

// Provide stores val for method on the receiver's type and returns the source
// for chaining. receiver may be an instance or a reflect.Type.
func (m *MapMetadata) Provide(receiver any, method string, val any) *MapMetadata {
	m.items[metadataKey{typ: receiverType(receiver), method: method}] = val
	return m
}

// Lookup implements MetadataSource and defensively converts panics into errors.
func (m *MapMetadata) Lookup(receiver any, method string) (val any, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			val = nil
			ok = false
			err = fmt.Errorf("%w: %v", ErrMetadataPanic, rec)
		}
	}()

	v, ok := m.items[metadataKey{typ: receiverType(receiver), method: method}]
	return v, ok, nil
}

// Get returns the value if present (no panic).
func (m *MapMetadata) Get(receiver any, method string) (any, bool) {
	v, ok := m.items[metadataKey{typ: receiverType(receiver), method: method}]
	return v, ok
}

// Len returns the number of entries.
func (m *MapMetadata) Len() int { return len(m.items) }

func receiverType(receiver any) reflect.Type {
	if t, ok := receiver.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(receiver)
}
