package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "posture-analyzer/docs"
	_ "posture-analyzer/migrations"

	"posture-analyzer/internal/delivery/http/routers"
	"posture-analyzer/internal/domain/repositories"
	"posture-analyzer/internal/infrastructure/db"
	"posture-analyzer/internal/infrastructure/processor"
	"posture-analyzer/internal/infrastructure/queue"
	infra_repo "posture-analyzer/internal/infrastructure/repositories"
	"posture-analyzer/internal/infrastructure/storage"
	"posture-analyzer/internal/pkg/config"
	"posture-analyzer/internal/pkg/logger"
	"posture-analyzer/internal/pkg/metrics"
	"posture-analyzer/internal/usecases"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title        Posture Analyzer API
// @version      1.0
// @description  Pose analysis for images and videos.
// @BasePath     /
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
	slog.SetDefault(log)

	if err := config.EnsureDirs(cfg); err != nil {
		log.Error("temp dir hazırlanamadı", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Pending deletions: Redis when configured, memory otherwise
	var pendingStore repositories.PendingDeletionStore = infra_repo.NewInMemoryPendingRepository()
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Error("redis bağlantısı başarısız", "addr", cfg.Redis.Addr, "err", err)
			os.Exit(1)
		}
		pendingStore = infra_repo.NewRedisPendingRepository(rdb)
		log.Info("pending deletions stored in redis", "addr", cfg.Redis.Addr)
	}

	// Run history: postgres when configured, memory otherwise
	var runRepo repositories.RunRepository = infra_repo.NewInMemoryRunRepository(0)
	if cfg.Database.URL != "" {
		database, err := db.NewPostgresDB(cfg.Database.URL)
		if err != nil {
			log.Error("DB bağlantısı başarısız", "err", err)
			os.Exit(1)
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(database); err != nil {
				log.Error("failed to apply migrations", "err", err)
				os.Exit(1)
			}
		}
		runRepo = infra_repo.NewRunRepository(database)
		log.Info("analysis history stored in postgres")
	}

	// Repositories & Services
	localStorage := storage.NewLocalStorage(cfg.Upload.TempDir, cfg.Upload.MaxFileSize)
	pool := queue.NewWorkerPool(cfg.Cleanup.Workers, localStorage, pendingStore, m, log)
	scheduler := queue.NewScheduler(pool, pendingStore, log)
	if n, err := scheduler.Restore(context.Background()); err != nil {
		log.Warn("pending deletions could not be restored", "err", err)
	} else if n > 0 {
		log.Info("pending deletions restored", "count", n)
	}

	analyzer := processor.NewScriptAnalyzer(processor.ScriptConfig{
		Interpreter:    cfg.Analyzer.Interpreter,
		Script:         cfg.Analyzer.Script,
		Timeout:        cfg.Analyzer.Timeout,
		MaxOutputBytes: cfg.Analyzer.MaxOutputBytes,
		RawLimit:       cfg.Response.RawLimit,
		DetailLimit:    cfg.Response.DetailLimit,
	}, log)

	cleanupUC := usecases.NewCleanupService(localStorage, scheduler, cfg.Cleanup.ImageGrace, m, log)
	analysisService := usecases.NewAnalysisService(localStorage, analyzer, cleanupUC, runRepo, m, usecases.AnalysisOptions{
		DefaultMode:       cfg.Analyzer.DefaultMode,
		MaxConcurrent:     cfg.Analyzer.MaxConcurrent,
		MaxImageDimension: cfg.Upload.MaxImageDimension,
	}, log)

	cleanupCron, err := routers.StartCleanupCron(cleanupUC, cfg.Cleanup.SweepSchedule, cfg.Cleanup.SweepMaxAge, log)
	if err != nil {
		log.Error("cleanup cron başlatılamadı", "schedule", cfg.Cleanup.SweepSchedule, "err", err)
		os.Exit(1)
	}

	// Routes
	app := routers.NewApp(cfg)
	routers.SetupSwaggerRoutes(app)
	routers.SetupMetricsRoutes(app, reg)
	routers.SetupAnalysisRoutes(app, analysisService, cfg.Upload.MaxJSONSize)

	addr := cfg.Addr()
	log.Info("server starting", "addr", addr, "temp_dir", cfg.Upload.TempDir, "analyzer", cfg.Analyzer.Script)

	// Graceful shutdown
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Error("server başlatılamadı", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown sinyali alındı, server kapatılıyor...")

	ctxShut, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		log.Error("server düzgün kapatılamadı", "err", err)
	}
	<-cleanupCron.Stop().Done()

	// in-memory entries would be lost, so delete those files now
	scheduler.Shutdown(!pendingStore.Durable())
	if err := pool.Shutdown(ctxShut); err != nil {
		log.Warn("cleanup workers did not drain", "err", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info("server düzgün bir şekilde kapatıldı")
}
