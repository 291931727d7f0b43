package aop

import "strconv"

// Kind is the advice kind. The numeric order is the order kinds are laid
// out in a chain.
type Kind int

const (
	KindAround Kind = iota
	KindBefore
	KindAfterReturning
	KindAfterThrowing
	KindAfter
)

var kindNames = [...]string{
	KindAround:         "around",
	KindBefore:         "before",
	KindAfterReturning: "afterReturning",
	KindAfterThrowing:  "afterThrowing",
	KindAfter:          "after",
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k is one of the five kinds.
func (k Kind) Valid() bool { return k >= KindAround && k <= KindAfter }

// ParseKind converts a kind name ("before", "afterThrowing", ...) into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, InvalidKindError{Name: s}
}

// Advice is a single registration: a kind, a pointcut expression and the
// interceptor implementing it. Build values with Before, After, Around,
// AfterReturning and AfterThrowing.
type Advice struct {
	Kind        Kind
	Pointcut    string
	Interceptor Interceptor
}

// Before runs fn and then the rest of the chain. An error from fn stops the call.
func Before(pointcut string, fn func(inv *Invocation) error) Advice {
	if fn == nil {
		return Advice{Kind: KindBefore, Pointcut: pointcut}
	}
	return Advice{Kind: KindBefore, Pointcut: pointcut, Interceptor: InterceptorFunc(
		func(inv *Invocation, chain *Chain) (any, error) {
			if err := fn(inv); err != nil {
				return nil, err
			}
			return chain.Proceed(inv)
		})}
}

// After runs fn once the rest of the chain has returned without error.
// It does not run when the call fails.
func After(pointcut string, fn func(inv *Invocation) error) Advice {
	if fn == nil {
		return Advice{Kind: KindAfter, Pointcut: pointcut}
	}
	return Advice{Kind: KindAfter, Pointcut: pointcut, Interceptor: InterceptorFunc(
		func(inv *Invocation, chain *Chain) (any, error) {
			result, err := chain.Proceed(inv)
			if err != nil {
				return result, err
			}
			if err := fn(inv); err != nil {
				return nil, err
			}
			return result, nil
		})}
}

// Around hands control to fn, which decides if, when and how often to call
// chain.Proceed.
func Around(pointcut string, fn func(inv *Invocation, chain *Chain) (any, error)) Advice {
	if fn == nil {
		return Advice{Kind: KindAround, Pointcut: pointcut}
	}
	return Advice{Kind: KindAround, Pointcut: pointcut, Interceptor: InterceptorFunc(fn)}
}

// AfterReturning runs fn with the result of a successful call.
func AfterReturning(pointcut string, fn func(inv *Invocation, result any) error) Advice {
	if fn == nil {
		return Advice{Kind: KindAfterReturning, Pointcut: pointcut}
	}
	return Advice{Kind: KindAfterReturning, Pointcut: pointcut, Interceptor: InterceptorFunc(
		func(inv *Invocation, chain *Chain) (any, error) {
			result, err := chain.Proceed(inv)
			if err != nil {
				return result, err
			}
			if err := fn(inv, result); err != nil {
				return nil, err
			}
			return result, nil
		})}
}

// AfterThrowing runs fn with the error of a failed call. The error is
// returned unchanged.
func AfterThrowing(pointcut string, fn func(inv *Invocation, err error)) Advice {
	if fn == nil {
		return Advice{Kind: KindAfterThrowing, Pointcut: pointcut}
	}
	return Advice{Kind: KindAfterThrowing, Pointcut: pointcut, Interceptor: InterceptorFunc(
		func(inv *Invocation, chain *Chain) (any, error) {
			result, err := chain.Proceed(inv)
			if err != nil {
				fn(inv, err)
			}
			return result, err
		})}
}
