package di

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Request describes how a dependency should be located and materialized.
//
// Exactly one lookup path is taken, in priority order:
//   - Expression ("module.alias", or "alias" within Module)
//   - AliasOrCtorName within Module
//   - type inference within Module
type Request struct {
	Module          string
	AliasOrCtorName string
	Expression      string
	Scope           Scope

	// Backups are consulted in order when lookup fails. A func() T or
	// func() (T, error) is called; any other value is used as is.
	Backups []any
}

// Expr builds a Request from an expression such as "api.userApi".
func Expr(expression string) *Request {
	return &Request{Expression: expression}
}

// Resolver turns dependency requests into materialized values.
type Resolver struct {
	reg *Registry
	log *zap.Logger

	mu         sync.Mutex
	gen        uint64
	prototypes map[uintptr]prototypeLink
}

type prototypeLink struct {
	parent any
	gen    uint64
}

// NewResolver returns a resolver reading from reg.
func NewResolver(reg *Registry, opts ...Option) *Resolver {
	o := buildOptions(opts)
	return &Resolver{
		reg:        reg,
		log:        o.log,
		prototypes: make(map[uintptr]prototypeLink),
	}
}

// Resolve locates the dependency described by req and materializes it.
//
// declared is the type the caller will use the value as; it drives type
// inference and the post-resolution type check and may be nil for
// expression lookups. A nil req infers by declared in DefaultModule.
//
// ok is false when nothing was found and no backup succeeded; that outcome
// is expected and never an error. err is reserved for programming errors:
// an invalid scope or an ambiguous type without backups.
func (r *Resolver) Resolve(declared reflect.Type, req *Request) (val any, ok bool, err error) {
	scope := Singleton
	if req != nil && req.Scope != "" {
		if !req.Scope.Valid() {
			return nil, false, InvalidScopeError{Scope: req.Scope}
		}
		scope = req.Scope
	}

	rec, lookupErr := r.lookup(declared, req)
	if rec != nil {
		val, lookupErr = r.materialize(rec, scope)
		if lookupErr == nil {
			r.checkType(declared, val, rec.Alias)
			return val, true, nil
		}
	}

	if req != nil && len(req.Backups) > 0 {
		if lookupErr != nil {
			r.log.Debug("resolution failed, trying backups", zap.Error(lookupErr))
		}
		if v, found := r.fromBackups(req.Backups); found {
			r.checkType(declared, v, "")
			return v, true, nil
		}
		r.log.Warn("dependency unresolved: backups exhausted",
			zap.Stringer("request", req),
			zap.Int("backups", len(req.Backups)))
		return nil, false, nil
	}

	var ambiguous AmbiguousDependencyError
	if errors.As(lookupErr, &ambiguous) {
		return nil, false, lookupErr
	}
	if lookupErr != nil {
		r.log.Warn("dependency unresolved", zap.Error(lookupErr))
		return nil, false, nil
	}

	r.log.Debug("dependency not found", zap.Stringer("request", req), zap.Stringer("type", typeStringer{declared}))
	return nil, false, nil
}

// ResolveInto resolves by the element type of ptr and stores the result
// there. A value that is not assignable is reported and left unset.
func (r *Resolver) ResolveInto(ptr any, req *Request) (bool, error) {
	target := reflect.ValueOf(ptr)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return false, errors.New("di: ResolveInto needs a non-nil pointer")
	}
	elem := target.Elem()
	v, ok, err := r.Resolve(elem.Type(), req)
	if err != nil || !ok {
		return false, err
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(elem.Type()) {
		return false, nil
	}
	elem.Set(rv)
	return true, nil
}

// PrototypeOf returns the instance a prototype-scoped value was derived from.
func (r *Resolver) PrototypeOf(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.prototypes[rv.Pointer()]
	return link.parent, ok
}

func (r *Resolver) lookup(declared reflect.Type, req *Request) (*Record, error) {
	switch {
	case req == nil:
		return r.infer(DefaultModule, declared)
	case req.Expression != "":
		module, name := splitExpression(req.Expression, req.Module)
		rec, _ := r.reg.Lookup(module, name)
		return rec, nil
	case req.AliasOrCtorName != "":
		rec, _ := r.reg.Lookup(req.Module, req.AliasOrCtorName)
		return rec, nil
	default:
		return r.infer(req.Module, declared)
	}
}

func (r *Resolver) infer(module string, declared reflect.Type) (*Record, error) {
	if declared == nil {
		return nil, nil
	}
	if module == "" {
		module = DefaultModule
	}
	candidates := r.reg.Candidates(module, declared)
	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return candidates[0], nil
	}

	var best *Record
	exact := 0
	for _, rec := range candidates {
		if rec.Type == declared {
			best = rec
			exact++
		}
	}
	if exact == 1 {
		return best, nil
	}

	names := make([]string, len(candidates))
	for i, rec := range candidates {
		names[i] = rec.Alias
	}
	return nil, AmbiguousDependencyError{Module: module, Type: declared.String(), Candidates: names}
}

func (r *Resolver) materialize(rec *Record, scope Scope) (any, error) {
	switch scope {
	case Transient:
		v, err := construct(rec.New)
		if err != nil {
			return nil, ConstructionError{CtorName: rec.CtorName, Err: err}
		}
		return v, nil
	case Prototype:
		v := shallowCopy(rec.Instance)
		r.link(v, rec.Instance)
		return v, nil
	case ShallowClone:
		return shallowCopy(rec.Instance), nil
	case DeepClone:
		return deepCopy(rec.Instance), nil
	default:
		return rec.Instance, nil
	}
}

// link records parent for derived and drops the entry once derived is
// collected. Zero-sized values share an address and are not linked.
func (r *Resolver) link(derived, parent any) {
	rv := reflect.ValueOf(derived)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Type().Elem().Size() == 0 {
		return
	}
	addr := rv.Pointer()

	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.prototypes[addr] = prototypeLink{parent: parent, gen: gen}
	r.mu.Unlock()

	runtime.AddCleanup((*byte)(rv.UnsafePointer()), func(g uint64) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if link, ok := r.prototypes[addr]; ok && link.gen == g {
			delete(r.prototypes, addr)
		}
	}, gen)
}

func (r *Resolver) fromBackups(backups []any) (any, bool) {
	for i, b := range backups {
		v, err := construct(b)
		if err != nil {
			r.log.Debug("backup skipped", zap.Int("index", i), zap.Error(err))
			continue
		}
		if v == nil {
			continue
		}
		return v, true
	}
	return nil, false
}

func (r *Resolver) checkType(declared reflect.Type, v any, name string) {
	if declared == nil || v == nil {
		return
	}
	if got := reflect.TypeOf(v); !got.AssignableTo(declared) {
		r.log.Warn("resolved dependency does not satisfy declared type",
			zap.String("name", name),
			zap.String("declared", declared.String()),
			zap.String("actual", got.String()))
	}
}

// construct calls b when it is a constructor-like function (no parameters,
// returning T or (T, error)) and returns any other value unchanged.
// A nil result is ErrNilInstance. Panics raised by the constructor are
// returned as errors.
func construct(b any) (v any, err error) {
	if b == nil {
		return nil, errors.New("nil backup")
	}
	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = fmt.Errorf("constructor panicked: %v", rec)
		}
	}()

	switch f := b.(type) {
	case func() any:
		return nonNil(f(), nil)
	case func() (any, error):
		return nonNil(f())
	}

	fv := reflect.ValueOf(b)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.NumIn() != 0 || ft.NumOut() == 0 || ft.NumOut() > 2 {
		return b, nil
	}
	if fv.IsNil() {
		return nil, errors.New("nil constructor")
	}
	if ft.NumOut() == 2 && ft.Out(1) != errorType {
		return b, nil
	}

	out := fv.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	if isNil(out[0]) {
		return nil, ErrNilInstance
	}
	return out[0].Interface(), nil
}

func nonNil(v any, err error) (any, error) {
	if err == nil && v == nil {
		return nil, ErrNilInstance
	}
	return v, err
}

var errorType = reflect.TypeFor[error]()

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// splitExpression splits "module.name". A bare name belongs to fallback,
// or to DefaultModule when fallback is empty.
func splitExpression(expr, fallback string) (module, name string) {
	if m, n, ok := strings.Cut(expr, "."); ok {
		return m, n
	}
	if fallback == "" {
		fallback = DefaultModule
	}
	return fallback, expr
}

// String renders the request for logs.
func (req *Request) String() string {
	if req == nil {
		return "<type inference>"
	}
	var b strings.Builder
	switch {
	case req.Expression != "":
		b.WriteString("expr=" + req.Expression)
	case req.AliasOrCtorName != "":
		b.WriteString("module=" + req.Module + " name=" + req.AliasOrCtorName)
	default:
		b.WriteString("module=" + req.Module + " by type")
	}
	if req.Scope != "" {
		b.WriteString(" scope=" + string(req.Scope))
	}
	return b.String()
}

type typeStringer struct{ t reflect.Type }

func (s typeStringer) String() string {
	if s.t == nil {
		return "<nil>"
	}
	return s.t.String()
}
