package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"posture-analyzer/internal/domain/repositories"
	"posture-analyzer/internal/pkg/metrics"
)

var (
	ErrPoolClosed = errors.New("worker pool is shut down")
	// ErrJobQueued is returned for a deletion whose path is already waiting
	// in the queue or being processed.
	ErrJobQueued = errors.New("deletion already queued")
)

const jobBuffer = 100

type WorkerPool struct {
	JobChan chan Job
	wg      sync.WaitGroup
	ctx     context.Context    //graceful shutdown için
	cancel  context.CancelFunc //graceful shutdown için

	mu     sync.RWMutex
	closed bool

	qmu    sync.Mutex
	queued map[string]struct{}
}

func NewWorkerPool(workerCount int, storage Deleter, store repositories.PendingDeletionStore, m *metrics.Metrics, logger *slog.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		JobChan: make(chan Job, jobBuffer),
		ctx:     ctx,
		cancel:  cancel,
		queued:  make(map[string]struct{}),
	}
	for i := 0; i < workerCount; i++ {
		worker := &Worker{
			ID:      i,
			JobChan: pool.JobChan,
			Wg:      &pool.wg,
			Storage: storage,
			Store:   store,
			Metrics: m,
			Logger:  logger,
			Done:    pool.release,
		}
		pool.wg.Add(1)
		worker.Start(pool.ctx)
	}
	return pool
}

// AddJob enqueues job, blocking while the buffer is full. A deletion for a
// path that is still queued is dropped with ErrJobQueued.
func (p *WorkerPool) AddJob(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	if !p.claim(job) {
		return ErrJobQueued
	}
	p.JobChan <- job
	return nil
}

func (p *WorkerPool) claim(job Job) bool {
	if job.Type != JobDeleteFile {
		return true
	}
	p.qmu.Lock()
	defer p.qmu.Unlock()
	if _, ok := p.queued[job.Path]; ok {
		return false
	}
	p.queued[job.Path] = struct{}{}
	return true
}

func (p *WorkerPool) release(job Job) {
	if job.Type != JobDeleteFile {
		return
	}
	p.qmu.Lock()
	delete(p.queued, job.Path)
	p.qmu.Unlock()
}

// Shutdown stops accepting jobs and lets the workers drain the queue. If
// ctx ends first the workers are cancelled and ctx's error is returned.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.JobChan)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}
