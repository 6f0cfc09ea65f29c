package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnalysisRun is the history record written after every pipeline run.
type AnalysisRun struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind           string    `gorm:"type:varchar(10);not null"`
	Mode           string    `gorm:"type:varchar(32)"`
	Status         string    `gorm:"type:varchar(20);not null"`
	ErrorKind      string    `gorm:"type:varchar(30)"`
	ExitCode       *int
	TotalFrames    int
	ViolationCount int
	DurationMs     int64
	CreatedAt      time.Time `gorm:"index"`
}

func (AnalysisRun) TableName() string {
	return "analysis_runs"
}

func (r *AnalysisRun) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
