package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"posture-analyzer/internal/domain/repositories"
	"posture-analyzer/internal/pkg/metrics"
)

// Deleter removes a temp file; deleting a missing file must succeed.
type Deleter interface {
	Delete(path string) error
}

type Worker struct {
	ID      int        // worker id
	JobChan <-chan Job // iş kuyruğu
	Wg      *sync.WaitGroup
	Storage Deleter
	Store   repositories.PendingDeletionStore
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Done    func(Job) // called after each job, may be nil
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case job, ok := <-w.JobChan:
				if !ok {
					w.Logger.Debug("job channel closed", "worker", w.ID)
					return
				}
				w.processJob(ctx, job)
				if w.Done != nil {
					w.Done(job)
				}
			case <-ctx.Done():
				w.Logger.Debug("worker stopping", "worker", w.ID, "reason", ctx.Err())
				return
			}
		}
	}()
}

func (w *Worker) processJob(ctx context.Context, job Job) {
	var err error

	switch job.Type {
	case JobDeleteFile:
		err = w.processDelete(ctx, job)
	default:
		err = fmt.Errorf("unknown job type: %s", job.Type)
	}

	result := "ok"
	if err != nil {
		result = "error"
		w.Logger.Error("job failed", "worker", w.ID, "type", job.Type, "path", job.Path, "err", err)
	} else {
		w.Logger.Debug("job succeeded", "worker", w.ID, "type", job.Type, "path", job.Path)
	}
	if w.Metrics != nil && job.Type == JobDeleteFile {
		w.Metrics.CleanupDeletions.WithLabelValues(job.Trigger, result).Inc()
	}
}

func (w *Worker) processDelete(ctx context.Context, job Job) error {
	if job.Path == "" {
		return fmt.Errorf("file path is empty")
	}
	if err := w.Storage.Delete(job.Path); err != nil {
		return fmt.Errorf("dosya silinemedi: %w", err)
	}
	if w.Store != nil {
		if err := w.Store.Remove(ctx, job.Path); err != nil {
			return fmt.Errorf("pending deletion kaydı silinemedi: %w", err)
		}
	}
	return nil
}
