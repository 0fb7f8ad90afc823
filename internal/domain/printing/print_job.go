package printing

import (
	"time"

	"github.com/google/uuid"

	"github.com/missionpuck/logprinter/internal/domain/shared"
)

// PrintJob represents one run of the log printing pipeline for a mission.
type PrintJob struct {
	shared.BaseEntity
	MissionID     uuid.UUID
	MissionTitle  string
	MissionNumber string
	PrinterName   string
	Status        JobStatus
	RecordCount   int
	RowCount      int
	Capacity      int // rows per page discovered from the template
	PageCount     int
	Progress      int // 0-100, never decreases while the job is live
	FailureKind   FailureKind
	ErrorMessage  string
	StartedAt     *time.Time
	FinishedAt    *time.Time
}

// NewPrintJob creates a new pending print job
func NewPrintJob(missionID uuid.UUID, missionTitle, missionNumber, printerName string) (*PrintJob, error) {
	if missionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MISSION", "Mission ID cannot be empty")
	}
	if printerName == "" {
		return nil, shared.NewDomainError("INVALID_PRINTER", "Printer name cannot be empty")
	}

	return &PrintJob{
		BaseEntity:    shared.NewBaseEntity(),
		MissionID:     missionID,
		MissionTitle:  missionTitle,
		MissionNumber: missionNumber,
		PrinterName:   printerName,
		Status:        JobStatusPending,
	}, nil
}

// Advance moves the job to the next pipeline stage
func (j *PrintJob) Advance(target JobStatus) error {
	if !j.Status.CanTransitionTo(target) || target == JobStatusFailed {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot move from "+j.Status.String()+" to "+target.String())
	}

	now := time.Now()
	if j.Status == JobStatusPending {
		j.StartedAt = &now
	}
	j.Status = target
	j.UpdatedAt = now
	if target == JobStatusCompleted {
		j.Progress = 100
		j.FinishedAt = &now
	}
	return nil
}

// SetProgress records a progress value; values lower than the current one
// are ignored so the reported stream never goes backwards.
func (j *PrintJob) SetProgress(percent int) {
	if j.Status.IsTerminal() {
		return
	}
	percent = max(0, min(percent, 100))
	if percent > j.Progress {
		j.Progress = percent
		j.UpdatedAt = time.Now()
	}
}

// RecordLayout stores the pagination outcome
func (j *PrintJob) RecordLayout(records, rows, capacity, pages int) {
	j.RecordCount = records
	j.RowCount = rows
	j.Capacity = capacity
	j.PageCount = pages
	j.UpdatedAt = time.Now()
}

// Fail marks the job as failed; progress resets to 0.
func (j *PrintJob) Fail(kind FailureKind, errorMessage string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot fail a job that is already in terminal status: "+j.Status.String())
	}
	if kind == FailureKindNone || !kind.IsValid() {
		kind = FailureKindInternal
	}

	now := time.Now()
	j.Status = JobStatusFailed
	j.FailureKind = kind
	j.ErrorMessage = errorMessage
	j.Progress = 0
	j.FinishedAt = &now
	j.UpdatedAt = now
	return nil
}

// IsTerminal returns true if the job is in a terminal state
func (j *PrintJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Duration returns how long the job ran, or zero while it has not finished
func (j *PrintJob) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}
