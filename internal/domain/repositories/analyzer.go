package repositories

import (
	"context"

	"posture-analyzer/internal/domain/entities"
)

// Analyzer runs pose estimation on a stored media file. Errors are
// *errors.AnalysisError values of the launch, process or decode kind.
type Analyzer interface {
	Analyze(ctx context.Context, path, mode string) (*entities.AnalysisResult, error)
}
