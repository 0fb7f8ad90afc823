package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrJobStatus   = attribute.Key("job.status")
	AttrFailureKind = attribute.Key("job.failure_kind")
	AttrPrinter     = attribute.Key("printer")
)

// JobMetrics records print job outcomes. A nil *JobMetrics records nothing.
type JobMetrics struct {
	jobsTotal      *Counter
	jobDuration    *Histogram
	pages          *Histogram
	rasterDuration *Histogram
}

// NewJobMetrics creates the print job instruments on meter
func NewJobMetrics(meter metric.Meter) (*JobMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   JobMetrics
		err error
	)
	m.jobsTotal, err = NewCounter(meter,
		"logprinter_jobs_total",
		"Print jobs that reached a terminal state",
		"{jobs}")
	if err != nil {
		return nil, err
	}
	m.jobDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "logprinter_job_duration_seconds",
		Description: "Wall time from job start to terminal state",
		Unit:        "s",
		Boundaries:  StageDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	m.pages, err = NewHistogram(meter, HistogramOpts{
		Name:        "logprinter_job_pages",
		Description: "Form pages rendered per job",
		Unit:        "{pages}",
		Boundaries:  PageCountBuckets,
	})
	if err != nil {
		return nil, err
	}
	m.rasterDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "logprinter_raster_duration_seconds",
		Description: "Time spent in the external rasterizer",
		Unit:        "s",
		Boundaries:  StageDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordOutcome counts a finished job. failureKind is empty on success.
func (m *JobMetrics) RecordOutcome(ctx context.Context, status, failureKind, printer string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrJobStatus.String(status),
		AttrFailureKind.String(failureKind),
		AttrPrinter.String(printer),
	}
	m.jobsTotal.Inc(ctx, attrs...)
	m.jobDuration.RecordDuration(ctx, d, AttrJobStatus.String(status))
}

// RecordPages records how many pages a job rendered
func (m *JobMetrics) RecordPages(ctx context.Context, pages int) {
	if m == nil {
		return
	}
	m.pages.Record(ctx, float64(pages))
}

// RecordRaster records the rasterizer's run time
func (m *JobMetrics) RecordRaster(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.rasterDuration.RecordDuration(ctx, d)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewJobMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
