package aspects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sghaida/iocaop/aop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errDown = errors.New("backend down")

func call(adv aop.Advice, target aop.Invoker) (any, error) {
	inv := aop.NewInvocation(context.Background(), "api", "UserApi", "GetUsers", nil, []any{1})
	return aop.NewChain(target, adv.Interceptor).Proceed(inv)
}

func returns(v any, err error) aop.Invoker {
	return func(*aop.Invocation) (any, error) { return v, err }
}

//
// -----------------------------------------------------------------------------
// Logging
// -----------------------------------------------------------------------------

func TestLogging(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	adv := Logging(zap.New(core), "*")
	assert.Equal(t, aop.KindAround, adv.Kind)

	v, err := call(adv, returns("ok", nil))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	_, err = call(adv, returns(nil, errDown))
	require.ErrorIs(t, err, errDown)

	assert.Equal(t, 2, logs.FilterMessage("invocation started").Len())
	completed := logs.FilterMessage("invocation completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, zapcore.InfoLevel, completed[0].Level)
	assert.Equal(t, "UserApi", completed[0].ContextMap()["class"])

	failed := logs.FilterMessage("invocation failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, errDown.Error(), failed[0].ContextMap()["error"])
}

func TestLogging_NilLogger(t *testing.T) {
	t.Parallel()

	_, err := call(Logging(nil, "*"), returns(1, nil))
	require.NoError(t, err)
}

//
// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "test")
	require.NoError(t, err)

	adv := m.Advice("*")
	for i := 0; i < 3; i++ {
		_, err := call(adv, returns(i, nil))
		require.NoError(t, err)
	}
	_, err = call(adv, returns(nil, errDown))
	require.ErrorIs(t, err, errDown)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.calls.WithLabelValues("api", "UserApi", "GetUsers", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calls.WithLabelValues("api", "UserApi", "GetUsers", OutcomeError)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration, "test_invocation_duration_seconds"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var gathered []string
	for _, f := range families {
		gathered = append(gathered, f.GetName())
	}
	assert.ElementsMatch(t, []string{"test_invocations_total", "test_invocation_duration_seconds"}, gathered)
}

func TestMetrics_ReusesRegisteredCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg, "twice")
	require.NoError(t, err)
	second, err := NewMetrics(reg, "twice")
	require.NoError(t, err)

	assert.Same(t, first.calls, second.calls)
	assert.Same(t, first.duration, second.duration)
}

//
// -----------------------------------------------------------------------------
// Tracing
// -----------------------------------------------------------------------------

func newTracer(t *testing.T) (trace.Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp.Tracer("aspects-test"), sr
}

func TestTracing(t *testing.T) {
	t.Parallel()

	tracer, sr := newTracer(t)
	adv := Tracing(tracer, "*")

	var inner trace.SpanContext
	_, err := call(adv, func(inv *aop.Invocation) (any, error) {
		inner = trace.SpanContextFromContext(inv.Context())
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = call(adv, returns(nil, errDown))
	require.ErrorIs(t, err, errDown)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	ok, failed := spans[0], spans[1]
	assert.Equal(t, "UserApi.GetUsers", ok.Name())
	assert.Equal(t, codes.Ok, ok.Status().Code)
	assert.Equal(t, ok.SpanContext().SpanID(), inner.SpanID())

	assert.Equal(t, codes.Error, failed.Status().Code)
	assert.Equal(t, errDown.Error(), failed.Status().Description)
	require.Len(t, failed.Events(), 1)
	assert.Equal(t, "exception", failed.Events()[0].Name)

	attrs := map[string]string{}
	for _, kv := range ok.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "api", attrs["iocaop.module"])
	assert.Equal(t, "GetUsers", attrs["iocaop.method"])
	assert.Equal(t, "1", attrs["iocaop.args"])
}

//
// -----------------------------------------------------------------------------
// Deadline
// -----------------------------------------------------------------------------

func TestDeadline(t *testing.T) {
	t.Parallel()

	adv := Deadline(20*time.Millisecond, "*")

	v, err := call(adv, func(inv *aop.Invocation) (any, error) {
		_, ok := inv.Context().Deadline()
		return ok, nil
	})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = call(adv, func(inv *aop.Invocation) (any, error) {
		<-inv.Context().Done()
		return nil, inv.Context().Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	v, err = call(adv, func(*aop.Invocation) (any, error) {
		time.Sleep(50 * time.Millisecond)
		return "late", nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, v)
}
