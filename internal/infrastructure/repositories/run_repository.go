package repositories

import (
	"context"

	"posture-analyzer/internal/domain/entities"
	"posture-analyzer/internal/domain/repositories"

	"gorm.io/gorm"
)

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) repositories.RunRepository {
	return &runRepository{
		db: db,
	}
}

func (r *runRepository) Create(ctx context.Context, run *entities.AnalysisRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]entities.AnalysisRun, error) {
	var runs []entities.AnalysisRun
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
