package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ReportPending    = "pending"
	ReportProcessing = "processing"
	ReportCompleted  = "completed"
	ReportFailed     = "failed"
)

// Report is a queued sales report. The report worker claims pending rows,
// writes the file and flips Status to completed or failed.
type Report struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedBy             *uuid.UUID     `gorm:"type:uuid"`
	Params                datatypes.JSON `gorm:"type:jsonb;not null"`
	Format                string         `gorm:"type:varchar(10);not null;default:'json'"`
	Status                string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	ResultPath            *string
	Error                 *string
	ProcessingStartedAt   *time.Time
	ProcessingCompletedAt *time.Time
	CreatedAt             time.Time `gorm:"index"`
	UpdatedAt             time.Time
}
