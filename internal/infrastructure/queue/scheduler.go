package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"posture-analyzer/internal/domain/repositories"
)

var ErrSchedulerClosed = errors.New("deletion scheduler is shut down")

// Scheduler turns delayed deletions into jobs on the worker pool. Entries
// are mirrored to a PendingDeletionStore so a durable store can hand them
// back after a restart.
type Scheduler struct {
	pool   *WorkerPool
	store  repositories.PendingDeletionStore
	logger *slog.Logger

	mu     sync.Mutex
	timers map[string]*armedTimer
	gen    uint64
	closed bool
}

// armedTimer pairs a timer with the generation it was armed in, so a timer
// that fires after being replaced cannot claim its successor's entry.
type armedTimer struct {
	timer *time.Timer
	gen   uint64
}

func NewScheduler(pool *WorkerPool, store repositories.PendingDeletionStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pool:   pool,
		store:  store,
		logger: logger,
		timers: make(map[string]*armedTimer),
	}
}

// Schedule deletes path once delay has passed. Scheduling a path again
// replaces the earlier deadline.
func (s *Scheduler) Schedule(ctx context.Context, path string, delay time.Duration) error {
	if delay < 0 {
		delay = 0
	}
	dueAt := time.Now().Add(delay)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSchedulerClosed
	}
	s.arm(path, delay)
	s.mu.Unlock()

	if err := s.store.Add(ctx, path, dueAt); err != nil {
		// the in-process timer still fires
		s.logger.Warn("pending deletion could not be persisted", "path", path, "err", err)
	}
	return nil
}

// arm must be called with s.mu held.
func (s *Scheduler) arm(path string, delay time.Duration) {
	if t, ok := s.timers[path]; ok {
		t.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timers[path] = &armedTimer{
		timer: time.AfterFunc(delay, func() { s.fire(path, gen) }),
		gen:   gen,
	}
}

func (s *Scheduler) fire(path string, gen uint64) {
	s.mu.Lock()
	t, ok := s.timers[path]
	if s.closed || !ok || t.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, path)
	s.mu.Unlock()

	if err := s.pool.AddJob(NewDeleteJob(path, TriggerScheduled)); err != nil && !errors.Is(err, ErrJobQueued) {
		s.logger.Error("scheduled deletion dropped", "path", path, "err", err)
	}
}

// IsPending reports whether path has a deletion timer armed.
func (s *Scheduler) IsPending(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[path]
	return ok
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Restore re-arms timers for every entry in the store, firing overdue ones
// right away.
func (s *Scheduler) Restore(ctx context.Context) (int, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSchedulerClosed
	}
	for _, e := range entries {
		delay := time.Until(e.DueAt)
		if delay < 0 {
			delay = 0
		}
		s.arm(e.Path, delay)
	}
	return len(entries), nil
}

// Shutdown stops every timer. With flush the pending files are handed to
// the pool for deletion now; otherwise they are left in the store.
// Call it before shutting the pool down.
func (s *Scheduler) Shutdown(flush bool) {
	s.mu.Lock()
	s.closed = true
	paths := make([]string, 0, len(s.timers))
	for path, t := range s.timers {
		t.timer.Stop()
		paths = append(paths, path)
	}
	s.timers = make(map[string]*armedTimer)
	s.mu.Unlock()

	if !flush {
		s.logger.Info("pending deletions left for next start", "count", len(paths))
		return
	}
	for _, path := range paths {
		if err := s.pool.AddJob(NewDeleteJob(path, TriggerShutdown)); err != nil && !errors.Is(err, ErrJobQueued) {
			s.logger.Error("deletion on shutdown dropped", "path", path, "err", err)
		}
	}
	s.logger.Info("pending deletions flushed", "count", len(paths))
}
