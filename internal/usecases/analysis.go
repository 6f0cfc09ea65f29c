package usecases

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"posture-analyzer/internal/domain/dto"
	"posture-analyzer/internal/domain/entities"
	"posture-analyzer/internal/domain/repositories"
	"posture-analyzer/internal/infrastructure/processor"
	"posture-analyzer/internal/pkg/metrics"
	consts "posture-analyzer/pkg/constants"
	pe "posture-analyzer/pkg/errors"
	"posture-analyzer/pkg/helper"

	"golang.org/x/sync/semaphore"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

var modePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,31}$`)

type AnalysisService interface {
	AnalyzeImage(ctx context.Context, req *dto.AnalyzeImageRequest) (*entities.AnalysisResult, error)
	AnalyzeVideo(ctx context.Context, fileHeader *multipart.FileHeader, mode string) (*entities.AnalysisResult, error)
	ListRuns(ctx context.Context, limit int) ([]entities.AnalysisRun, error)
}

type AnalysisOptions struct {
	DefaultMode       string
	MaxConcurrent     int // 0 means unlimited
	MaxImageDimension int // 0 disables downscaling
}

type analysisService struct {
	storage  repositories.TempStorage
	analyzer repositories.Analyzer
	cleanup  CleanupService
	runs     repositories.RunRepository
	metrics  *metrics.Metrics
	sem      *semaphore.Weighted
	opts     AnalysisOptions
	logger   *slog.Logger
}

func NewAnalysisService(
	storage repositories.TempStorage,
	analyzer repositories.Analyzer,
	cleanup CleanupService,
	runs repositories.RunRepository,
	m *metrics.Metrics,
	opts AnalysisOptions,
	logger *slog.Logger,
) AnalysisService {
	if opts.DefaultMode == "" {
		opts.DefaultMode = consts.DefaultMode
	}
	s := &analysisService{
		storage:  storage,
		analyzer: analyzer,
		cleanup:  cleanup,
		runs:     runs,
		metrics:  m,
		opts:     opts,
		logger:   logger,
	}
	if opts.MaxConcurrent > 0 {
		s.sem = semaphore.NewWeighted(int64(opts.MaxConcurrent))
	}
	return s
}

func (s *analysisService) AnalyzeImage(ctx context.Context, req *dto.AnalyzeImageRequest) (result *entities.AnalysisResult, err error) {
	start := time.Now()
	mode := s.opts.DefaultMode
	defer func() { s.finish(ctx, entities.MediaImage, mode, start, result, err) }()

	if req == nil {
		return nil, pe.ErrNoImage()
	}
	payload, mime := helper.StripDataURI(req.Image)
	if payload == "" {
		return nil, pe.ErrNoImage()
	}
	resolved, err := s.resolveMode(req.Mode)
	if err != nil {
		return nil, err
	}
	mode = resolved

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, pe.ErrInvalidImage(err)
	}

	file, err := s.storage.SaveImage(data, helper.ExtensionFromMime(mime))
	if err != nil {
		return nil, err
	}
	s.cleanup.Hold(file.Path)
	// kept for debugging for the grace window, whatever the outcome
	defer s.cleanup.ScheduleDeletion(file.Path)

	if s.opts.MaxImageDimension > 0 {
		if resized, derr := processor.DownscaleImage(file.Path, s.opts.MaxImageDimension); derr != nil {
			s.logger.Warn("image could not be downscaled, analyzing original", "path", file.Path, "err", derr)
		} else if resized {
			s.logger.Debug("image downscaled", "path", file.Path, "max_dimension", s.opts.MaxImageDimension)
		}
	}

	return s.analyze(ctx, file.Path, mode)
}

func (s *analysisService) AnalyzeVideo(ctx context.Context, fileHeader *multipart.FileHeader, mode string) (result *entities.AnalysisResult, err error) {
	start := time.Now()
	recorded := s.opts.DefaultMode
	defer func() { s.finish(ctx, entities.MediaVideo, recorded, start, result, err) }()

	if fileHeader == nil {
		return nil, pe.ErrNoVideo(nil)
	}
	resolved, err := s.resolveMode(mode)
	if err != nil {
		return nil, err
	}
	recorded = resolved

	file, err := s.storage.SaveUpload(fileHeader)
	if err != nil {
		return nil, err
	}
	s.cleanup.Hold(file.Path)
	defer s.cleanup.DeleteNow(file.Path)

	return s.analyze(ctx, file.Path, resolved)
}

func (s *analysisService) ListRuns(ctx context.Context, limit int) ([]entities.AnalysisRun, error) {
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}
	return s.runs.ListRecent(ctx, limit)
}

func (s *analysisService) analyze(ctx context.Context, path, mode string) (*entities.AnalysisResult, error) {
	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("analyzer slot beklenirken iptal edildi: %w", err)
		}
		defer s.sem.Release(1)
	}

	if s.metrics != nil {
		s.metrics.InFlight.Inc()
		defer s.metrics.InFlight.Dec()
	}

	return s.analyzer.Analyze(ctx, path, mode)
}

func (s *analysisService) resolveMode(mode string) (string, error) {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return s.opts.DefaultMode, nil
	}
	if !modePattern.MatchString(mode) {
		return "", pe.ErrInvalidMode(mode)
	}
	return mode, nil
}

// finish records metrics and the run history entry. Recording failures
// never change the response.
func (s *analysisService) finish(ctx context.Context, kind entities.MediaKind, mode string, start time.Time, result *entities.AnalysisResult, err error) {
	elapsed := time.Since(start)

	run := &entities.AnalysisRun{
		Kind:       string(kind),
		Mode:       mode,
		Status:     consts.StatusSucceeded,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  start,
	}
	outcome := "success"
	if err != nil {
		run.Status = consts.StatusFailed
		outcome = "internal"
		if ae, ok := pe.As(err); ok {
			outcome = string(ae.Kind)
			run.ErrorKind = string(ae.Kind)
			run.ExitCode = ae.Code
		}
		s.logger.Warn("analysis failed", "kind", kind, "mode", mode, "outcome", outcome, "err", err)
	} else if result != nil {
		run.TotalFrames = result.TotalFrames
		run.ViolationCount = len(result.Violations)
	}

	if s.metrics != nil {
		s.metrics.Analyses.WithLabelValues(string(kind), outcome).Inc()
		s.metrics.Duration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	}

	if s.runs == nil {
		return
	}
	// the request context may already be done
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rerr := s.runs.Create(recordCtx, run); rerr != nil {
		s.logger.Error("analysis run could not be recorded", "err", rerr)
	}
}

// decodeBase64 accepts padded and unpadded standard base64, ignoring line
// breaks inside the payload.
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		var rerr error
		data, rerr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rerr != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return nil, errors.New("decoded image is empty")
	}
	return data, nil
}
