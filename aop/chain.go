package aop

// Invoker is the terminal call of a chain, normally the original method.
type Invoker func(inv *Invocation) (any, error)

// Interceptor is the single contract every kind of advice is adapted to.
// Returning a non-nil error is how an interceptor (or the original method) fails.
type Interceptor interface {
	Invoke(inv *Invocation, chain *Chain) (any, error)
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(inv *Invocation, chain *Chain) (any, error)

// Invoke implements Interceptor.
func (f InterceptorFunc) Invoke(inv *Invocation, chain *Chain) (any, error) { return f(inv, chain) }

// Chain is an ordered interceptor sequence ending in a target.
//
// The cursor only moves forward. A chain built by the weaver is a template:
// each call drives its own Fork so concurrent calls never share a cursor.
type Chain struct {
	interceptors []Interceptor
	cursor       int
	target       Invoker
}

// NewChain returns a chain that runs interceptors in order, then target.
func NewChain(target Invoker, interceptors ...Interceptor) *Chain {
	return &Chain{interceptors: interceptors, target: target}
}

// Proceed invokes the next interceptor, or the target once all have been entered.
func (c *Chain) Proceed(inv *Invocation) (any, error) {
	if c.cursor < len(c.interceptors) {
		next := c.interceptors[c.cursor]
		c.cursor++
		return next.Invoke(inv, c)
	}
	return c.target(inv)
}

// Fork returns a copy positioned at the start. The interceptor slice is shared.
func (c *Chain) Fork() *Chain {
	return &Chain{interceptors: c.interceptors, target: c.target}
}

// Len returns the number of interceptors.
func (c *Chain) Len() int { return len(c.interceptors) }

// Position returns how many interceptors have been entered.
func (c *Chain) Position() int { return c.cursor }
