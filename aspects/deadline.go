package aspects

import (
	"context"
	"time"

	"github.com/sghaida/iocaop/aop"
)

// Deadline bounds every matched call to d. The invocation context is
// replaced with one that expires after d. A call that returns after the
// deadline without an error of its own fails with context.DeadlineExceeded.
func Deadline(d time.Duration, pointcut string) aop.Advice {
	return aop.Around(pointcut, func(inv *aop.Invocation, chain *aop.Chain) (any, error) {
		ctx, cancel := context.WithTimeout(inv.Context(), d)
		defer cancel()

		inv.SetContext(ctx)
		result, err := chain.Proceed(inv)
		if err == nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return result, err
	})
}
