package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/missionpuck/logprinter/internal/domain/printing"
)

// PrintJobModel is the GORM model for print_jobs table
type PrintJobModel struct {
	BaseModel
	MissionID     uuid.UUID  `gorm:"column:mission_id;type:uuid;not null;index"`
	MissionTitle  string     `gorm:"column:mission_title;type:varchar(200)"`
	MissionNumber string     `gorm:"column:mission_number;type:varchar(50)"`
	PrinterName   string     `gorm:"column:printer_name;type:varchar(100);not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	RecordCount   int        `gorm:"column:record_count;not null;default:0"`
	RowCount      int        `gorm:"column:row_count;not null;default:0"`
	Capacity      int        `gorm:"not null;default:0"`
	PageCount     int        `gorm:"column:page_count;not null;default:0"`
	Progress      int        `gorm:"not null;default:0"`
	FailureKind   string     `gorm:"column:failure_kind;type:varchar(20)"`
	ErrorMessage  string     `gorm:"column:error_message;type:text"`
	StartedAt     *time.Time `gorm:"column:started_at"`
	FinishedAt    *time.Time `gorm:"column:finished_at"`
}

// TableName returns the table name for PrintJobModel
func (PrintJobModel) TableName() string {
	return "print_jobs"
}

// ToDomain converts PrintJobModel to domain PrintJob
func (m *PrintJobModel) ToDomain() *printing.PrintJob {
	return &printing.PrintJob{
		BaseEntity:    m.BaseModel.ToDomain(),
		MissionID:     m.MissionID,
		MissionTitle:  m.MissionTitle,
		MissionNumber: m.MissionNumber,
		PrinterName:   m.PrinterName,
		Status:        printing.JobStatus(m.Status),
		RecordCount:   m.RecordCount,
		RowCount:      m.RowCount,
		Capacity:      m.Capacity,
		PageCount:     m.PageCount,
		Progress:      m.Progress,
		FailureKind:   printing.FailureKind(m.FailureKind),
		ErrorMessage:  m.ErrorMessage,
		StartedAt:     m.StartedAt,
		FinishedAt:    m.FinishedAt,
	}
}

// PrintJobModelFromDomain creates a PrintJobModel from domain PrintJob
func PrintJobModelFromDomain(j *printing.PrintJob) *PrintJobModel {
	m := &PrintJobModel{
		MissionID:     j.MissionID,
		MissionTitle:  j.MissionTitle,
		MissionNumber: j.MissionNumber,
		PrinterName:   j.PrinterName,
		Status:        string(j.Status),
		RecordCount:   j.RecordCount,
		RowCount:      j.RowCount,
		Capacity:      j.Capacity,
		PageCount:     j.PageCount,
		Progress:      j.Progress,
		FailureKind:   string(j.FailureKind),
		ErrorMessage:  j.ErrorMessage,
		StartedAt:     j.StartedAt,
		FinishedAt:    j.FinishedAt,
	}
	m.FromDomainBaseEntity(j.BaseEntity)
	return m
}
