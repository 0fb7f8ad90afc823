package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns no-op logger when absent", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("returns stored logger", func(t *testing.T) {
		l := zap.NewExample()
		ctx := WithContext(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})
}

func TestWithJobID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, l := WithJobID(context.Background(), base, "job-42")
	ctx, _ = WithMissionID(ctx, l, "mission-7")

	assert.Equal(t, "job-42", GetJobID(ctx))
	assert.Equal(t, "mission-7", GetMissionID(ctx))
	assert.Empty(t, GetRequestID(ctx))

	L(ctx).Info("rendering")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "job-42", fields["job_id"])
	assert.Equal(t, "mission-7", fields["mission_id"])
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, l := WithRequestID(context.Background(), zap.New(core), "req-1")
	l.Info("accepted")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "req-1", recorded.All()[0].ContextMap()["request_id"])
}

func TestWithTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	t.Run("no span leaves logger unchanged", func(t *testing.T) {
		assert.Same(t, base, WithTraceContext(context.Background(), base))
		assert.Empty(t, GetTraceID(context.Background()))
	})

	t.Run("valid span adds ids", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		WithTraceContext(ctx, base).Info("traced")

		assert.Equal(t, traceID.String(), GetTraceID(ctx))
		entries := recorded.All()
		require.NotEmpty(t, entries)
		fields := entries[len(entries)-1].ContextMap()
		assert.Equal(t, traceID.String(), fields["trace_id"])
		assert.Equal(t, spanID.String(), fields["span_id"])
	})
}
