package aspects

import (
	"time"

	"github.com/sghaida/iocaop/aop"
	"go.uber.org/zap"
)

// Logging logs every matched call: start at debug, success at info and
// failure at warn with the error.
func Logging(log *zap.Logger, pointcut string) aop.Advice {
	if log == nil {
		log = zap.NewNop()
	}
	return aop.Around(pointcut, func(inv *aop.Invocation, chain *aop.Chain) (any, error) {
		fields := []zap.Field{
			zap.String("invocation", inv.ID),
			zap.String("module", inv.Module),
			zap.String("class", inv.Class),
			zap.String("method", inv.Method),
		}
		log.Debug("invocation started", fields...)

		start := time.Now()
		result, err := chain.Proceed(inv)
		fields = append(fields, zap.Duration("elapsed", time.Since(start)))

		if err != nil {
			log.Warn("invocation failed", append(fields, zap.Error(err))...)
			return result, err
		}
		log.Info("invocation completed", fields...)
		return result, nil
	})
}
