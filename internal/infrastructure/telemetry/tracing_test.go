package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartServiceSpan(t *testing.T) {
	recorder := installRecorder(t)
	accountID := uuid.New()

	ctx, span := StartServiceSpan(context.Background(), "transfer", "execute",
		WithSpanKind(trace.SpanKindServer),
		WithAttribute("retries", 2),
	)
	SetAttributes(span,
		SpanAttrAccountID, accountID,
		SpanAttrAmount, "500.00",
		42, "skipped",
	)
	assert.NotEmpty(t, GetTraceID(ctx))
	assert.NotEmpty(t, GetSpanID(ctx))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "transfer.execute", got.Name())
	assert.Equal(t, trace.SpanKindServer, got.SpanKind())

	v, ok := attrValue(got.Attributes(), SpanAttrAccountID)
	require.True(t, ok)
	assert.Equal(t, accountID.String(), v.AsString())

	v, ok = attrValue(got.Attributes(), "retries")
	require.True(t, ok)
	assert.Equal(t, int64(2), v.AsInt64())
	assert.Len(t, got.Attributes(), 3)
}

func TestRecordError(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "budget.recompute")
	RecordError(span, nil)
	RecordError(span, errors.New("lock timeout"))
	AddEvent(span, "retrying", "attempt", 1)
	span.End()

	got := recorder.Ended()[0]
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "lock timeout", got.Status().Description)

	var names []string
	for _, e := range got.Events() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"exception", "retrying"}, names)
}

func TestIDsWithoutSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}
