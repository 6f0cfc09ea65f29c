package main //worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"posture-analyzer/internal/infrastructure/queue"
	infra_repo "posture-analyzer/internal/infrastructure/repositories"
	"posture-analyzer/internal/infrastructure/storage"
	"posture-analyzer/internal/pkg/config"
	"posture-analyzer/internal/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

// The worker deletes due temp files recorded in Redis. It lets a deployment
// clean up after API instances that stopped before their timers fired.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config yüklenemedi", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, os.Stderr)

	if cfg.Redis.Addr == "" {
		log.Error("REDIS_ADDR is required for the cleanup worker")
		os.Exit(1)
	}
	if err := config.EnsureDirs(cfg); err != nil {
		log.Error("temp dir hazırlanamadı", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store := infra_repo.NewRedisPendingRepository(rdb)
	localStorage := storage.NewLocalStorage(cfg.Upload.TempDir, cfg.Upload.MaxFileSize)
	pool := queue.NewWorkerPool(cfg.Cleanup.Workers, localStorage, store, nil, log)

	log.Info("cleanup worker started", "redis", cfg.Redis.Addr, "interval", cfg.Cleanup.WorkerInterval)

	ticker := time.NewTicker(cfg.Cleanup.WorkerInterval)
	defer ticker.Stop()

	for {
		due, err := store.Due(ctx, time.Now())
		if err != nil {
			log.Error("due deletions could not be read", "err", err)
		}
		enqueued := 0
		for _, d := range due {
			err := pool.AddJob(queue.NewDeleteJob(d.Path, queue.TriggerScheduled))
			switch {
			case errors.Is(err, queue.ErrJobQueued):
				// still waiting from an earlier tick
			case err != nil:
				log.Error("job enqueue failed", "path", d.Path, "err", err)
			default:
				enqueued++
			}
		}
		if enqueued > 0 {
			log.Info("due deletions enqueued", "count", enqueued)
		}

		select {
		case <-ctx.Done():
			log.Info("cleanup worker stopping")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := pool.Shutdown(shutCtx); err != nil {
				log.Warn("cleanup workers did not drain", "err", err)
			}
			return
		case <-ticker.C:
		}
	}
}
