package printing

// JobStatus represents the status of a print job
type JobStatus string

const (
	JobStatusPending     JobStatus = "PENDING"
	JobStatusRendering   JobStatus = "RENDERING"
	JobStatusRasterizing JobStatus = "RASTERIZING"
	JobStatusPrinting    JobStatus = "PRINTING"
	JobStatusCompleted   JobStatus = "COMPLETED"
	JobStatusFailed      JobStatus = "FAILED"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRendering, JobStatusRasterizing,
		JobStatusPrinting, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this is a terminal status (no further transitions)
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status.
// The pipeline only moves forward; any live state may fail.
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	if target == JobStatusFailed {
		return !s.IsTerminal()
	}
	switch s {
	case JobStatusPending:
		return target == JobStatusRendering
	case JobStatusRendering:
		return target == JobStatusRasterizing
	case JobStatusRasterizing:
		return target == JobStatusPrinting
	case JobStatusPrinting:
		return target == JobStatusCompleted
	}
	return false
}

// FailureKind classifies why a job stopped
type FailureKind string

const (
	FailureKindNone     FailureKind = ""
	FailureKindData     FailureKind = "DATA"     // malformed or missing upstream records
	FailureKindTemplate FailureKind = "TEMPLATE" // deployment/template defect
	FailureKindProcess  FailureKind = "PROCESS"  // external conversion process failed
	FailureKindDevice   FailureKind = "DEVICE"   // printer unavailable or draw failure
	FailureKindInternal FailureKind = "INTERNAL"
)

// IsValid checks if the FailureKind is a valid value
func (k FailureKind) IsValid() bool {
	switch k {
	case FailureKindNone, FailureKindData, FailureKindTemplate,
		FailureKindProcess, FailureKindDevice, FailureKindInternal:
		return true
	}
	return false
}

// String returns the string representation of FailureKind
func (k FailureKind) String() string {
	return string(k)
}
