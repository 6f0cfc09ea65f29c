package repositories

import (
	"context"
	"sync"

	"posture-analyzer/internal/domain/entities"

	"github.com/google/uuid"
)

const defaultRunCapacity = 1000

// InMemoryRunRepository is a bounded ring of recent runs used when no
// database is configured.
type InMemoryRunRepository struct {
	mu       sync.RWMutex
	runs     []entities.AnalysisRun
	capacity int
}

func NewInMemoryRunRepository(capacity int) *InMemoryRunRepository {
	if capacity <= 0 {
		capacity = defaultRunCapacity
	}
	return &InMemoryRunRepository{
		runs:     make([]entities.AnalysisRun, 0, capacity),
		capacity: capacity,
	}
}

func (r *InMemoryRunRepository) Create(_ context.Context, run *entities.AnalysisRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.runs) == r.capacity {
		copy(r.runs, r.runs[1:])
		r.runs = r.runs[:len(r.runs)-1]
	}
	r.runs = append(r.runs, *run)
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *InMemoryRunRepository) ListRecent(_ context.Context, limit int) ([]entities.AnalysisRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.runs) {
		limit = len(r.runs)
	}
	result := make([]entities.AnalysisRun, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, r.runs[i])
	}
	return result, nil
}
