package aspects

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sghaida/iocaop/aop"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var labels = []string{"module", "class", "method", "outcome"}

// Metrics counts woven calls and observes their duration.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the call collectors under namespace with reg.
// Collectors already registered by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	calls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "Total number of woven method invocations",
		},
		labels,
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Woven method invocation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		labels,
	)

	if err := reg.Register(calls); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		calls = existing
	}
	if err := reg.Register(duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, err
		}
		duration = existing
	}

	return &Metrics{calls: calls, duration: duration}, nil
}

// Advice returns an around advice recording every call matched by pointcut.
func (m *Metrics) Advice(pointcut string) aop.Advice {
	return aop.Around(pointcut, func(inv *aop.Invocation, chain *aop.Chain) (any, error) {
		start := time.Now()
		result, err := chain.Proceed(inv)

		outcome := OutcomeOK
		if err != nil {
			outcome = OutcomeError
		}
		m.calls.WithLabelValues(inv.Module, inv.Class, inv.Method, outcome).Inc()
		m.duration.WithLabelValues(inv.Module, inv.Class, inv.Method, outcome).Observe(time.Since(start).Seconds())
		return result, err
	})
}
