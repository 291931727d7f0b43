package aop

import (
	"context"
	"reflect"
	"strconv"
	"sync"

	"github.com/sghaida/iocaop/di"
	"go.uber.org/zap"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// BoundMethod is the call-site wrapper for one woven method on one receiver.
type BoundMethod func(ctx context.Context, args ...any) (any, error)

type methodKey struct {
	typ    reflect.Type
	method string
}

type wovenMethod struct {
	module string
	class  string
	items  []AdviceItem
	chain  *Chain
}

// Weaver builds one chain per registered method and dispatches calls through it.
//
// Go cannot patch methods in place, so weaving produces a dispatch table keyed
// by (receiver type, method name); call sites go through Invoke, Method or Call.
type Weaver struct {
	reg     *di.Registry
	aspects *AspectRegistry
	meta    MetadataSource
	log     *zap.Logger

	mu        sync.RWMutex
	woven     bool
	table     map[methodKey]*wovenMethod
	originals map[methodKey]reflect.Method
}

// WeaverOption configures a Weaver.
type WeaverOption func(*Weaver)

// WithMetadata sets the source consulted for every call.
func WithMetadata(src MetadataSource) WeaverOption {
	return func(w *Weaver) { w.meta = src }
}

// WithWeaverLogger sets the weaver logger.
func WithWeaverLogger(log *zap.Logger) WeaverOption {
	return func(w *Weaver) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWeaver returns a weaver over the records of reg and the advice of aspects.
func NewWeaver(reg *di.Registry, aspects *AspectRegistry, opts ...WeaverOption) *Weaver {
	w := &Weaver{
		reg:       reg,
		aspects:   aspects,
		log:       zap.NewNop(),
		table:     make(map[methodKey]*wovenMethod),
		originals: make(map[methodKey]reflect.Method),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Weave builds a chain for every exported method of every registered
// instance and seals the registry. It runs once; later calls return
// ErrAlreadyWoven.
//
// When one dynamic type is registered in several modules the first record
// decides the module and class its methods are matched with.
func (w *Weaver) Weave() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.woven {
		return ErrAlreadyWoven
	}

	merged := w.aspects.Merge()
	methods, advised := 0, 0
	for _, rec := range w.reg.Records() {
		t := reflect.TypeOf(rec.Instance)
		for i := 0; i < t.NumMethod(); i++ {
			m := t.Method(i)
			key := methodKey{typ: t, method: m.Name}
			if _, exists := w.table[key]; exists {
				continue
			}

			items := merged.Match(rec.Module, rec.CtorName, m.Name)
			w.table[key] = &wovenMethod{
				module: rec.Module,
				class:  rec.CtorName,
				items:  items,
				chain:  NewChain(methodInvoker(m), Interceptors(items)...),
			}
			w.originals[key] = m

			methods++
			if len(items) > 0 {
				advised++
				w.log.Debug("method woven",
					zap.String("module", rec.Module),
					zap.String("class", rec.CtorName),
					zap.String("method", m.Name),
					zap.Int("advice", len(items)))
			}
		}
	}

	w.reg.Seal()
	w.woven = true
	w.log.Info("weaving complete",
		zap.Int("records", w.reg.Len()),
		zap.Int("methods", methods),
		zap.Int("advised", advised))
	return nil
}

// Woven reports whether Weave has run.
func (w *Weaver) Woven() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.woven
}

// Chains returns the number of methods in the dispatch table.
func (w *Weaver) Chains() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.table)
}

// Plan returns the advice woven into method on the receiver's type, in chain order.
func (w *Weaver) Plan(receiver any, method string) ([]AdviceItem, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	wm, ok := w.table[methodKey{typ: receiverType(receiver), method: method}]
	if !ok {
		return nil, false
	}
	out := make([]AdviceItem, len(wm.items))
	copy(out, wm.items)
	return out, true
}

// Invoke calls method on receiver through its chain. Methods that were never
// woven, or were revoked, are called directly.
func (w *Weaver) Invoke(ctx context.Context, receiver any, method string, args ...any) (any, error) {
	if receiver == nil {
		return nil, ErrNilReceiver
	}
	t := reflect.TypeOf(receiver)
	key := methodKey{typ: t, method: method}

	w.mu.RLock()
	wm := w.table[key]
	original, revoked := w.originals[key]
	w.mu.RUnlock()

	if wm == nil {
		if !revoked {
			m, ok := t.MethodByName(method)
			if !ok {
				return nil, MethodNotFoundError{Type: t.String(), Method: method}
			}
			original = m
		}
		inv := NewInvocation(ctx, "", di.TypeName(t), method, receiver, args)
		return methodInvoker(original)(inv)
	}

	inv := NewInvocation(ctx, wm.module, wm.class, method, receiver, args)
	w.attachMetadata(inv)
	return wm.chain.Fork().Proceed(inv)
}

// Method returns a wrapper that invokes method on receiver.
func (w *Weaver) Method(receiver any, method string) BoundMethod {
	return func(ctx context.Context, args ...any) (any, error) {
		return w.Invoke(ctx, receiver, method, args...)
	}
}

// Revoke removes the chain of method on the receiver's type; later calls go
// straight to the original method. It reports whether a chain was removed.
func (w *Weaver) Revoke(receiver any, method string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := methodKey{typ: receiverType(receiver), method: method}
	if _, ok := w.table[key]; !ok {
		return false
	}
	delete(w.table, key)
	return true
}

// Reset forgets every chain so Weave can run again. Intended for tests.
func (w *Weaver) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.table = make(map[methodKey]*wovenMethod)
	w.originals = make(map[methodKey]reflect.Method)
	w.woven = false
}

func (w *Weaver) attachMetadata(inv *Invocation) {
	if w.meta == nil {
		return
	}
	v, ok, err := w.meta.Lookup(inv.Receiver, inv.Method)
	if err != nil {
		w.log.Warn("metadata lookup failed",
			zap.String("method", inv.Signature()),
			zap.Error(err))
		return
	}
	if ok {
		inv.Attach(AttachmentMetadata, v)
	}
}

// Call invokes method through w and asserts the result to R.
// A nil result yields the zero R.
func Call[R any](ctx context.Context, w *Weaver, receiver any, method string, args ...any) (R, error) {
	var zero R
	v, err := w.Invoke(ctx, receiver, method, args...)
	if v == nil {
		return zero, err
	}
	r, ok := v.(R)
	if !ok {
		if err != nil {
			return zero, err
		}
		return zero, ResultTypeError{
			Method:   method,
			WantType: reflect.TypeFor[R]().String(),
			GotType:  reflect.TypeOf(v).String(),
		}
	}
	return r, err
}

// methodInvoker calls m with the receiver and arguments of an invocation.
// A leading context.Context parameter is fed from inv.Context().
func methodInvoker(m reflect.Method) Invoker {
	mt := m.Type
	first := 1
	if mt.NumIn() > 1 && mt.In(1) == contextType {
		first = 2
	}

	return func(inv *Invocation) (any, error) {
		in, err := callArgs(m.Name, mt, first, inv)
		if err != nil {
			return nil, err
		}
		return splitResults(m.Func.Call(in))
	}
}

func callArgs(name string, mt reflect.Type, first int, inv *Invocation) ([]reflect.Value, error) {
	want := mt.NumIn() - first
	got := len(inv.Args)
	if (!mt.IsVariadic() && got != want) || (mt.IsVariadic() && got < want-1) {
		return nil, ArgumentError{
			Method: name,
			Index:  -1,
			Reason: "want " + strconv.Itoa(want) + " arguments, got " + strconv.Itoa(got),
		}
	}

	in := make([]reflect.Value, 0, first+got)
	in = append(in, reflect.ValueOf(inv.Receiver))
	if first == 2 {
		in = append(in, reflect.ValueOf(inv.Context()))
	}

	last := mt.NumIn() - 1
	for i, a := range inv.Args {
		idx := first + i
		var pt reflect.Type
		if mt.IsVariadic() && idx >= last {
			pt = mt.In(last).Elem()
		} else {
			pt = mt.In(idx)
		}

		if a == nil {
			if !nillable(pt) {
				return nil, ArgumentError{Method: name, Index: i, Reason: "nil for " + pt.String()}
			}
			in = append(in, reflect.Zero(pt))
			continue
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(pt) {
			return nil, ArgumentError{Method: name, Index: i, Reason: av.Type().String() + " is not " + pt.String()}
		}
		in = append(in, av)
	}
	return in, nil
}

// splitResults maps method results to (value, error): a trailing error
// result becomes the error; the rest collapse to nil, a single value, or []any.
func splitResults(out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			err = out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, err
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
