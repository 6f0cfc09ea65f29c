package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"posture-analyzer/internal/domain/entities"
)

// InMemoryPendingRepository keeps pending deletions for the life of the
// process only.
type InMemoryPendingRepository struct {
	mu   sync.RWMutex
	data map[string]time.Time
}

func NewInMemoryPendingRepository() *InMemoryPendingRepository {
	return &InMemoryPendingRepository{
		data: make(map[string]time.Time),
	}
}

func (r *InMemoryPendingRepository) Add(_ context.Context, path string, dueAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[path] = dueAt
	return nil
}

func (r *InMemoryPendingRepository) Remove(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, path)
	return nil
}

func (r *InMemoryPendingRepository) Due(_ context.Context, now time.Time) ([]entities.PendingDeletion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]entities.PendingDeletion, 0)
	for path, dueAt := range r.data {
		if !dueAt.After(now) {
			result = append(result, entities.PendingDeletion{Path: path, DueAt: dueAt})
		}
	}
	sortByDue(result)
	return result, nil
}

func (r *InMemoryPendingRepository) List(_ context.Context) ([]entities.PendingDeletion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]entities.PendingDeletion, 0, len(r.data))
	for path, dueAt := range r.data {
		result = append(result, entities.PendingDeletion{Path: path, DueAt: dueAt})
	}
	sortByDue(result)
	return result, nil
}

func (r *InMemoryPendingRepository) Durable() bool {
	return false
}

func sortByDue(entries []entities.PendingDeletion) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DueAt.Equal(entries[j].DueAt) {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].DueAt.Before(entries[j].DueAt)
	})
}
