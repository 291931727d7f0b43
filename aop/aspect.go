package aop

import (
	"sort"

	"go.uber.org/zap"
)

// AdviceItem is an advice bound to a compiled pointcut.
type AdviceItem struct {
	Aspect      string
	Order       int
	Kind        Kind
	Expression  string
	Pointcut    *Pointcut
	Interceptor Interceptor
}

// AdviceSet groups advice by kind.
//
// In a merged set every slot is in execution order: the first Before item
// runs first and the first After item completes first.
type AdviceSet struct {
	Around         []AdviceItem
	Before         []AdviceItem
	After          []AdviceItem
	AfterReturning []AdviceItem
	AfterThrowing  []AdviceItem
}

// Add appends item to the slot of its kind.
func (s *AdviceSet) Add(item AdviceItem) {
	switch item.Kind {
	case KindAround:
		s.Around = append(s.Around, item)
	case KindBefore:
		s.Before = append(s.Before, item)
	case KindAfter:
		s.After = append(s.After, item)
	case KindAfterReturning:
		s.AfterReturning = append(s.AfterReturning, item)
	case KindAfterThrowing:
		s.AfterThrowing = append(s.AfterThrowing, item)
	}
}

// Len returns the total number of items.
func (s AdviceSet) Len() int {
	return len(s.Around) + len(s.Before) + len(s.After) + len(s.AfterReturning) + len(s.AfterThrowing)
}

// Match returns the items whose pointcut selects (module, class, method), in
// chain order: around, before, afterReturning, afterThrowing, after.
//
// After-family items run once the nested call returns, so the innermost runs
// first. Each after-family slot is reversed to keep its first item innermost.
func (s AdviceSet) Match(module, class, method string) []AdviceItem {
	var out []AdviceItem
	forward := func(items []AdviceItem) {
		for _, it := range items {
			if it.Pointcut.Test(module, class, method) {
				out = append(out, it)
			}
		}
	}
	backward := func(items []AdviceItem) {
		for i := len(items) - 1; i >= 0; i-- {
			if items[i].Pointcut.Test(module, class, method) {
				out = append(out, items[i])
			}
		}
	}

	forward(s.Around)
	forward(s.Before)
	backward(s.AfterReturning)
	backward(s.AfterThrowing)
	backward(s.After)
	return out
}

// Interceptors extracts the interceptors of items.
func Interceptors(items []AdviceItem) []Interceptor {
	out := make([]Interceptor, len(items))
	for i, it := range items {
		out[i] = it.Interceptor
	}
	return out
}

// Aspect is a named, prioritized bundle of advice. Lower Order wraps outermost.
type Aspect struct {
	Name   string
	Order  int
	Advice []Advice
}

// AspectRegistration is an aspect as stored by the registry. It is never
// mutated after registration.
type AspectRegistration struct {
	Name   string
	Order  int
	Advice AdviceSet
}

// AspectRegistry collects aspects sorted by order.
type AspectRegistry struct {
	regs    []AspectRegistration
	compile []CompileOption
	log     *zap.Logger
}

// AspectOption configures an AspectRegistry.
type AspectOption func(*AspectRegistry)

// WithCompileOptions sets the options pointcut expressions are compiled with.
func WithCompileOptions(opts ...CompileOption) AspectOption {
	return func(r *AspectRegistry) { r.compile = append(r.compile, opts...) }
}

// WithAspectLogger sets the registry logger.
func WithAspectLogger(log *zap.Logger) AspectOption {
	return func(r *AspectRegistry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewAspectRegistry returns an empty registry.
func NewAspectRegistry(opts ...AspectOption) *AspectRegistry {
	r := &AspectRegistry{log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores set under order. Registrations stay sorted by ascending
// order; equal orders keep registration order.
//
// Every item needs a pointcut, an interceptor and the kind of its slot.
func (r *AspectRegistry) Register(name string, order int, set AdviceSet) error {
	if err := set.validate(); err != nil {
		return err
	}
	r.regs = append(r.regs, AspectRegistration{Name: name, Order: order, Advice: set})
	sort.SliceStable(r.regs, func(i, j int) bool { return r.regs[i].Order < r.regs[j].Order })
	return nil
}

func (s AdviceSet) validate() error {
	slots := []struct {
		kind  Kind
		items []AdviceItem
	}{
		{KindAround, s.Around},
		{KindBefore, s.Before},
		{KindAfter, s.After},
		{KindAfterReturning, s.AfterReturning},
		{KindAfterThrowing, s.AfterThrowing},
	}
	for _, slot := range slots {
		for _, it := range slot.items {
			switch {
			case it.Kind != slot.kind:
				return InvalidKindError{Name: it.Kind.String()}
			case it.Pointcut == nil:
				return ErrNilPointcut
			case it.Interceptor == nil:
				return ErrNilAdvice
			}
		}
	}
	return nil
}

// RegisterAspect compiles the pointcuts of a and registers the result.
func (r *AspectRegistry) RegisterAspect(a Aspect) error {
	var set AdviceSet
	for _, adv := range a.Advice {
		if !adv.Kind.Valid() {
			return InvalidKindError{Name: adv.Kind.String()}
		}
		if adv.Interceptor == nil {
			return ErrNilAdvice
		}
		set.Add(AdviceItem{
			Aspect:      a.Name,
			Order:       a.Order,
			Kind:        adv.Kind,
			Expression:  adv.Pointcut,
			Pointcut:    Compile(adv.Pointcut, r.compile...),
			Interceptor: adv.Interceptor,
		})
	}
	if err := r.Register(a.Name, a.Order, set); err != nil {
		return err
	}
	r.log.Debug("aspect registered",
		zap.String("aspect", a.Name),
		zap.Int("order", a.Order),
		zap.Int("advice", set.Len()))
	return nil
}

// Registrations returns the registrations in ascending order.
func (r *AspectRegistry) Registrations() []AspectRegistration {
	out := make([]AspectRegistration, len(r.regs))
	copy(out, r.regs)
	return out
}

// Len returns the number of registered aspects.
func (r *AspectRegistry) Len() int { return len(r.regs) }

// Merge combines all registrations into one set.
//
// Around and Before items are appended in ascending order, so the lowest
// order enters first. After, AfterReturning and AfterThrowing items are
// prepended, so the lowest order completes last.
func (r *AspectRegistry) Merge() AdviceSet {
	var m AdviceSet
	for _, reg := range r.regs {
		m.Around = append(m.Around, reg.Advice.Around...)
		m.Before = append(m.Before, reg.Advice.Before...)
		m.After = prepend(m.After, reg.Advice.After)
		m.AfterReturning = prepend(m.AfterReturning, reg.Advice.AfterReturning)
		m.AfterThrowing = prepend(m.AfterThrowing, reg.Advice.AfterThrowing)
	}
	return m
}

func prepend(acc, items []AdviceItem) []AdviceItem {
	if len(items) == 0 {
		return acc
	}
	out := make([]AdviceItem, 0, len(acc)+len(items))
	out = append(out, items...)
	return append(out, acc...)
}
