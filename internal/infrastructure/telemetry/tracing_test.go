package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "reservation.reserve",
		telemetry.WithAttribute("order_id", "order-1"),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "reservation.reserve", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	require.Len(t, spans[0].Attributes(), 1)
	assert.Equal(t, "order-1", spans[0].Attributes()[0].Value.AsString())
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "sweeper", "cleanup_expired")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "sweeper.cleanup_expired", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	skuID := uuid.New()
	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.SetAttributes(span,
		"order_id", "order-1",
		"lines", 3,
		"attempts", int64(2),
		"ratio", 0.5,
		"success", true,
		"sku_ids", []string{"a", "b"},
		"sku_id", skuID,
		42, "non-string key is skipped",
		"orphan",
	)
	telemetry.SetAttribute(span, "status", "ACTIVE")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	got := make(map[string]any)
	for _, kv := range spans[0].Attributes() {
		got[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Len(t, got, 8)
	assert.Equal(t, "order-1", got["order_id"])
	assert.Equal(t, int64(3), got["lines"])
	assert.Equal(t, int64(2), got["attempts"])
	assert.Equal(t, 0.5, got["ratio"])
	assert.Equal(t, true, got["success"])
	assert.Equal(t, []string{"a", "b"}, got["sku_ids"])
	assert.Equal(t, skuID.String(), got["sku_id"])
	assert.Equal(t, "ACTIVE", got["status"])
}

func TestRecordError(t *testing.T) {
	t.Run("marks span failed", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "test.operation")
		telemetry.RecordError(span, errors.New("serialization failure"))
		span.End()

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "serialization failure", spans[0].Status().Description)
		require.NotEmpty(t, spans[0].Events())
		assert.Equal(t, "exception", spans[0].Events()[0].Name)
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		sr := setupTestTracer(t)

		_, span := telemetry.StartSpan(context.Background(), "test.operation")
		telemetry.RecordError(span, nil)
		span.End()

		assert.NotEqual(t, codes.Error, sr.Ended()[0].Status().Code)
	})
}

func TestSetOKAndAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test.operation")
	telemetry.AddEvent(span, "shortfall", "sku_id", "sku-1", "available", 0)
	telemetry.SetOK(span)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "shortfall", spans[0].Events()[0].Name)
	assert.Len(t, spans[0].Events()[0].Attributes, 2)
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "key", "value")
		telemetry.SetAttribute(nil, "key", "value")
		telemetry.RecordError(nil, errors.New("boom"))
		telemetry.SetOK(nil)
		telemetry.AddEvent(nil, "event", "key", "value")
	})
}

func TestTraceAndSpanIDs(t *testing.T) {
	setupTestTracer(t)

	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	assert.Empty(t, telemetry.GetSpanID(context.Background()))

	ctx, span := telemetry.StartSpan(context.Background(), "test.operation")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), telemetry.GetTraceID(ctx))
	assert.Equal(t, span.SpanContext().SpanID().String(), telemetry.GetSpanID(ctx))

	childCtx, child := telemetry.StartSpan(ctx, "test.child")
	defer child.End()
	assert.Equal(t, telemetry.GetTraceID(ctx), telemetry.GetTraceID(childCtx))
	assert.NotEqual(t, telemetry.GetSpanID(ctx), telemetry.GetSpanID(childCtx))
}
