package repositories

import (
	"context"

	"posture-analyzer/internal/domain/entities"
)

type RunRepository interface {
	Create(ctx context.Context, run *entities.AnalysisRun) error
	ListRecent(ctx context.Context, limit int) ([]entities.AnalysisRun, error)
}
