package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/missionpuck/logprinter/internal/domain/printing"
	"github.com/missionpuck/logprinter/internal/domain/shared"
	"github.com/missionpuck/logprinter/internal/infrastructure/persistence/models"
)

// GormPrintJobRepository implements PrintJobRepository using GORM
type GormPrintJobRepository struct {
	db *gorm.DB
}

// NewGormPrintJobRepository creates a new GormPrintJobRepository
func NewGormPrintJobRepository(db *gorm.DB) *GormPrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

// FindByID finds a job by ID
func (r *GormPrintJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.PrintJob, error) {
	var model models.PrintJobModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecent returns the most recently created jobs, newest first
func (r *GormPrintJobRepository) FindRecent(ctx context.Context, limit int) ([]printing.PrintJob, error) {
	var jobModels []models.PrintJobModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobModels).Error; err != nil {
		return nil, err
	}
	return toDomainJobs(jobModels), nil
}

// FindByMission returns all jobs printed for a mission, newest first
func (r *GormPrintJobRepository) FindByMission(ctx context.Context, missionID uuid.UUID) ([]printing.PrintJob, error) {
	var jobModels []models.PrintJobModel
	if err := r.db.WithContext(ctx).
		Where("mission_id = ?", missionID).
		Order("created_at DESC").
		Find(&jobModels).Error; err != nil {
		return nil, err
	}
	return toDomainJobs(jobModels), nil
}

// Save inserts the job or overwrites every column of an existing row
func (r *GormPrintJobRepository) Save(ctx context.Context, job *printing.PrintJob) error {
	model := models.PrintJobModelFromDomain(job)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// AutoMigrate creates or updates the print_jobs table
func (r *GormPrintJobRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&models.PrintJobModel{})
}

func toDomainJobs(jobModels []models.PrintJobModel) []printing.PrintJob {
	jobs := make([]printing.PrintJob, len(jobModels))
	for i := range jobModels {
		jobs[i] = *jobModels[i].ToDomain()
	}
	return jobs
}

// Ensure GormPrintJobRepository implements PrintJobRepository
var _ printing.PrintJobRepository = (*GormPrintJobRepository)(nil)
