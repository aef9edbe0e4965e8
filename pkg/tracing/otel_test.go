package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitializeDisabled(t *testing.T) {
	tp, err := Initialize(context.Background(), DefaultConfig("handy-test"))
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestInjectTraceContext(t *testing.T) {
	_, err := Initialize(context.Background(), DefaultConfig("handy-test"))
	require.NoError(t, err)

	provider := sdktrace.NewTracerProvider()
	ctx, span := provider.Tracer("test").Start(context.Background(), "call")
	defer span.End()

	header := http.Header{}
	InjectTraceContext(ctx, propagation.HeaderCarrier(header))

	assert.Contains(t, header.Get("traceparent"), span.SpanContext().TraceID().String())
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestRecordResult(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, ok := tracer.Start(context.Background(), "ok")
	RecordResult(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	RecordResult(failed, errors.New("backend unavailable"))
	failed.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "backend unavailable", spans[1].Status().Description)
	assert.Len(t, spans[1].Events(), 1)
}
