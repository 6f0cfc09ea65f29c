package repositories

import (
	"context"
	"time"

	"posture-analyzer/internal/domain/entities"
)

// PendingDeletionStore records scheduled deletions so they can outlive the
// process when backed by durable storage.
type PendingDeletionStore interface {
	Add(ctx context.Context, path string, dueAt time.Time) error
	Remove(ctx context.Context, path string) error
	Due(ctx context.Context, now time.Time) ([]entities.PendingDeletion, error)
	List(ctx context.Context) ([]entities.PendingDeletion, error)
	// Durable reports whether entries survive a restart.
	Durable() bool
}
