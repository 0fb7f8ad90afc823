package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/missionpuck/logprinter/internal/infrastructure/telemetry"
)

// newTestJobMetrics returns job metrics backed by a manual reader
func newTestJobMetrics(t *testing.T) (*telemetry.JobMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewJobMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

// findMetric collects reader and returns the named metric
func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: "logprinter"}, nil)
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewJobMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewJobMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestJobMetrics_RecordOutcome(t *testing.T) {
	m, reader := newTestJobMetrics(t)
	ctx := context.Background()

	m.RecordOutcome(ctx, "COMPLETED", "", "directory", 2*time.Second)
	m.RecordOutcome(ctx, "FAILED", "DEVICE", "ops-laser", time.Second)
	m.RecordOutcome(ctx, "FAILED", "DEVICE", "ops-laser", time.Second)

	metric, ok := findMetric(t, reader, "logprinter_jobs_total")
	require.True(t, ok)
	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	counts := map[string]int64{}
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value(telemetry.AttrJobStatus)
		kind, _ := dp.Attributes.Value(telemetry.AttrFailureKind)
		counts[status.AsString()+"/"+kind.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"COMPLETED/": 1, "FAILED/DEVICE": 2}, counts)

	durations, ok := findMetric(t, reader, "logprinter_job_duration_seconds")
	require.True(t, ok)
	hist := durations.Data.(metricdata.Histogram[float64])
	assert.Len(t, hist.DataPoints, 2)
}

func TestJobMetrics_PagesAndRaster(t *testing.T) {
	m, reader := newTestJobMetrics(t)
	ctx := context.Background()

	m.RecordPages(ctx, 3)
	m.RecordRaster(ctx, 1500*time.Millisecond)

	pages, ok := findMetric(t, reader, "logprinter_job_pages")
	require.True(t, ok)
	ph := pages.Data.(metricdata.Histogram[float64])
	require.Len(t, ph.DataPoints, 1)
	assert.Equal(t, uint64(1), ph.DataPoints[0].Count)
	assert.InDelta(t, 3.0, ph.DataPoints[0].Sum, 1e-9)

	raster, ok := findMetric(t, reader, "logprinter_raster_duration_seconds")
	require.True(t, ok)
	rh := raster.Data.(metricdata.Histogram[float64])
	require.Len(t, rh.DataPoints, 1)
	assert.InDelta(t, 1.5, rh.DataPoints[0].Sum, 1e-9)
}

func TestJobMetrics_NilIsNoop(t *testing.T) {
	var m *telemetry.JobMetrics
	assert.NotPanics(t, func() {
		m.RecordOutcome(context.Background(), "COMPLETED", "", "directory", time.Second)
		m.RecordPages(context.Background(), 1)
		m.RecordRaster(context.Background(), time.Second)
	})
}

