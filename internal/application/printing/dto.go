package printing

import (
	"time"

	"github.com/google/uuid"

	"github.com/missionpuck/logprinter/internal/domain/logbook"
	"github.com/missionpuck/logprinter/internal/domain/printing"
)

// =============================================================================
// Print Job DTOs
// =============================================================================

// SubmitPrintJobRequest asks for one mission log to be printed
type SubmitPrintJobRequest struct {
	Mission logbook.Mission     `json:"mission" binding:"required"`
	Records []logbook.LogRecord `json:"records" binding:"dive"`
	// Printer names a registered printer; empty selects the default
	Printer string `json:"printer" binding:"omitempty,max=100"`
}

// ListPrintJobsRequest filters the job history
type ListPrintJobsRequest struct {
	MissionID string `form:"mission_id" binding:"omitempty,uuid"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// PrintJobResponse represents a print job response
type PrintJobResponse struct {
	ID            string     `json:"id"`
	MissionID     string     `json:"mission_id"`
	MissionTitle  string     `json:"mission_title"`
	MissionNumber string     `json:"mission_number"`
	Printer       string     `json:"printer"`
	Status        string     `json:"status"`
	Progress      int        `json:"progress"`
	RecordCount   int        `json:"record_count"`
	RowCount      int        `json:"row_count"`
	Capacity      int        `json:"capacity"`
	PageCount     int        `json:"page_count"`
	FailureKind   string     `json:"failure_kind,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ListPrintJobsResponse is a page of job history, newest first
type ListPrintJobsResponse struct {
	Jobs  []PrintJobResponse `json:"jobs"`
	Total int                `json:"total"`
}

// ProgressUpdate is one event of the progress stream. A failed job emits a
// single update with Status FAILED and Percent 0.
type ProgressUpdate struct {
	JobID   uuid.UUID
	Percent int
	Status  printing.JobStatus
	Err     error
}

// ProgressFunc receives progress updates from the worker goroutine
type ProgressFunc func(ProgressUpdate)

// =============================================================================
// Conversion helpers
// =============================================================================

func toPrintJobResponse(job *printing.PrintJob) *PrintJobResponse {
	return &PrintJobResponse{
		ID:            job.ID.String(),
		MissionID:     job.MissionID.String(),
		MissionTitle:  job.MissionTitle,
		MissionNumber: job.MissionNumber,
		Printer:       job.PrinterName,
		Status:        job.Status.String(),
		Progress:      job.Progress,
		RecordCount:   job.RecordCount,
		RowCount:      job.RowCount,
		Capacity:      job.Capacity,
		PageCount:     job.PageCount,
		FailureKind:   job.FailureKind.String(),
		ErrorMessage:  job.ErrorMessage,
		StartedAt:     job.StartedAt,
		FinishedAt:    job.FinishedAt,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	}
}

func toPrintJobResponses(jobs []printing.PrintJob) []PrintJobResponse {
	out := make([]PrintJobResponse, len(jobs))
	for i := range jobs {
		out[i] = *toPrintJobResponse(&jobs[i])
	}
	return out
}
