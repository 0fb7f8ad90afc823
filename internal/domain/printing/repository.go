package printing

import (
	"context"

	"github.com/google/uuid"
)

// PrintJobRepository defines the interface for print job persistence
type PrintJobRepository interface {
	// FindByID finds a job by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PrintJob, error)

	// FindRecent returns the most recently created jobs, newest first
	FindRecent(ctx context.Context, limit int) ([]PrintJob, error)

	// FindByMission returns all jobs printed for a mission, newest first
	FindByMission(ctx context.Context, missionID uuid.UUID) ([]PrintJob, error)

	// Save saves a job (insert or update)
	Save(ctx context.Context, job *PrintJob) error
}
