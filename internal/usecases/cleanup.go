package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"posture-analyzer/internal/domain/repositories"
	"posture-analyzer/internal/infrastructure/queue"
	"posture-analyzer/internal/pkg/metrics"
)

// DeletionScheduler delays file deletions; *queue.Scheduler implements it.
type DeletionScheduler interface {
	Schedule(ctx context.Context, path string, delay time.Duration) error
	IsPending(path string) bool
}

type CleanupService interface {
	// Hold marks path as in use so the sweep leaves it alone. The mark is
	// dropped when DeleteNow or ScheduleDeletion takes the path over.
	Hold(path string)
	// DeleteNow removes path synchronously. Failures are logged only.
	DeleteNow(path string)
	// ScheduleDeletion removes path once the image grace window has passed.
	ScheduleDeletion(path string)
	// CleanupOldTempFiles deletes files in the temp area older than maxAge
	// that are neither held nor waiting for a scheduled deletion.
	CleanupOldTempFiles(maxAge time.Duration) (int, error)
}

type cleanupService struct {
	storage   repositories.TempStorage
	scheduler DeletionScheduler
	grace     time.Duration
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu   sync.Mutex
	held map[string]struct{}
}

func NewCleanupService(storage repositories.TempStorage, scheduler DeletionScheduler, grace time.Duration, m *metrics.Metrics, logger *slog.Logger) CleanupService {
	return &cleanupService{
		storage:   storage,
		scheduler: scheduler,
		grace:     grace,
		metrics:   m,
		logger:    logger,
		held:      make(map[string]struct{}),
	}
}

func (s *cleanupService) Hold(path string) {
	s.mu.Lock()
	s.held[path] = struct{}{}
	s.mu.Unlock()
}

func (s *cleanupService) release(path string) {
	s.mu.Lock()
	delete(s.held, path)
	s.mu.Unlock()
}

func (s *cleanupService) isHeld(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.held[path]
	return ok
}

func (s *cleanupService) DeleteNow(path string) {
	defer s.release(path)
	s.delete(path, queue.TriggerImmediate)
}

func (s *cleanupService) ScheduleDeletion(path string) {
	// released only once the timer is armed
	defer s.release(path)
	if s.grace <= 0 {
		s.delete(path, queue.TriggerImmediate)
		return
	}
	if err := s.scheduler.Schedule(context.Background(), path, s.grace); err != nil {
		s.logger.Warn("deletion could not be scheduled, deleting now", "path", path, "err", err)
		s.delete(path, queue.TriggerImmediate)
		return
	}
	s.logger.Debug("deletion scheduled", "path", path, "in", s.grace)
}

func (s *cleanupService) delete(path, trigger string) {
	result := "ok"
	if err := s.storage.Delete(path); err != nil {
		result = "error"
		s.logger.Error("temp file could not be deleted", "path", path, "err", err)
	}
	if s.metrics != nil {
		s.metrics.CleanupDeletions.WithLabelValues(trigger, result).Inc()
	}
}

func (s *cleanupService) CleanupOldTempFiles(maxAge time.Duration) (int, error) {
	tempDir := s.storage.Dir()
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return 0, fmt.Errorf("temp dir okunamadı: %w", err)
	}

	now := time.Now()
	removed := 0
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(tempDir, entry.Name())
		if s.isHeld(path) {
			continue
		}
		if s.scheduler != nil && s.scheduler.IsPending(path) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}

		if err := s.storage.Delete(path); err != nil {
			errs = append(errs, err)
			if s.metrics != nil {
				s.metrics.CleanupDeletions.WithLabelValues(queue.TriggerSweep, "error").Inc()
			}
			continue
		}
		removed++
		if s.metrics != nil {
			s.metrics.CleanupDeletions.WithLabelValues(queue.TriggerSweep, "ok").Inc()
		}
		s.logger.Info("removed stale temp file", "path", path, "age", now.Sub(info.ModTime()).Round(time.Second))
	}

	return removed, errors.Join(errs...)
}
