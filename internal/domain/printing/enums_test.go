package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_IsValid(t *testing.T) {
	for _, s := range []JobStatus{JobStatusPending, JobStatusRendering, JobStatusRasterizing,
		JobStatusPrinting, JobStatusCompleted, JobStatusFailed} {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, JobStatus("QUEUED").IsValid())
}

func TestJobStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusPending, JobStatusRendering, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusRendering, JobStatusRasterizing, true},
		{JobStatusRasterizing, JobStatusPrinting, true},
		{JobStatusPrinting, JobStatusCompleted, true},
		{JobStatusPrinting, JobStatusFailed, true},
		{JobStatusRendering, JobStatusCompleted, false},
		{JobStatusCompleted, JobStatusFailed, false},
		{JobStatusFailed, JobStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestFailureKind_IsValid(t *testing.T) {
	assert.True(t, FailureKindData.IsValid())
	assert.True(t, FailureKindNone.IsValid())
	assert.False(t, FailureKind("NETWORK").IsValid())
}
