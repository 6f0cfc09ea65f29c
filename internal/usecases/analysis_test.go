package usecases

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"posture-analyzer/internal/domain/dto"
	"posture-analyzer/internal/domain/entities"
	infra_repo "posture-analyzer/internal/infrastructure/repositories"
	"posture-analyzer/internal/infrastructure/storage"
	"posture-analyzer/internal/pkg/metrics"
	consts "posture-analyzer/pkg/constants"
	pe "posture-analyzer/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   []string
	modes   []string
	existed []bool
	result  *entities.AnalysisResult
	err     error
	delay   time.Duration
	before  func(path string)

	running    int32
	maxRunning int32
}

func (f *fakeAnalyzer) Analyze(_ context.Context, path, mode string) (*entities.AnalysisResult, error) {
	n := atomic.AddInt32(&f.running, 1)
	for {
		cur := atomic.LoadInt32(&f.maxRunning)
		if n <= cur || atomic.CompareAndSwapInt32(&f.maxRunning, cur, n) {
			break
		}
	}
	defer atomic.AddInt32(&f.running, -1)

	if f.before != nil {
		f.before(path)
	}
	_, statErr := os.Stat(path)
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.modes = append(f.modes, mode)
	f.existed = append(f.existed, statErr == nil)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &entities.AnalysisResult{TotalFrames: 1, Violations: []entities.Violation{}}, nil
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[string]time.Duration
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[string]time.Duration)}
}

func (f *fakeScheduler) Schedule(_ context.Context, path string, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled[path] = delay
	return nil
}

func (f *fakeScheduler) IsPending(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.scheduled[path]
	return ok
}

type fixture struct {
	dir       string
	analyzer  *fakeAnalyzer
	scheduler *fakeScheduler
	cleanup   CleanupService
	runs      *infra_repo.InMemoryRunRepository
	service   AnalysisService
}

func newFixture(t *testing.T, opts AnalysisOptions) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())

	f := &fixture{
		dir:       t.TempDir(),
		analyzer:  &fakeAnalyzer{},
		scheduler: newFakeScheduler(),
		runs:      infra_repo.NewInMemoryRunRepository(100),
	}
	st := storage.NewLocalStorage(f.dir, 1024*1024)
	f.cleanup = NewCleanupService(st, f.scheduler, 5*time.Minute, m, logger)
	f.service = NewAnalysisService(st, f.analyzer, f.cleanup, f.runs, m, opts, logger)
	return f
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func videoHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("video", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["video"][0]
}

func TestAnalyzeImage_Success(t *testing.T) {
	f := newFixture(t, AnalysisOptions{})
	want := &entities.AnalysisResult{
		TotalFrames: 1,
		Violations:  []entities.Violation{{Frame: 0, Issue: "slouch", Value: 12.5}},
	}
	f.analyzer.result = want

	raw := []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}
	got, err := f.service.AnalyzeImage(context.Background(), &dto.AnalyzeImageRequest{
		Image: base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		t.Fatalf("AnalyzeImage() error = %v", err)
	}
	if got != want {
		t.Errorf("result = %+v, want %+v", got, want)
	}

	if len(f.analyzer.calls) != 1 {
		t.Fatalf("analyzer called %d times, want 1", len(f.analyzer.calls))
	}
	path := f.analyzer.calls[0]
	if f.analyzer.modes[0] != consts.DefaultMode {
		t.Errorf("mode = %q, want default %q", f.analyzer.modes[0], consts.DefaultMode)
	}
	if !strings.HasPrefix(filepath.Base(path), "image_") || filepath.Ext(path) != ".jpg" {
		t.Errorf("path = %q, want image_*.jpg", path)
	}

	stored, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("image should still exist during the grace window: %v", err)
	}
	if !bytes.Equal(stored, raw) {
		t.Error("stored bytes differ from decoded payload")
	}
	if delay, ok := f.scheduler.scheduled[path]; !ok || delay != 5*time.Minute {
		t.Errorf("scheduled = %v, want 5m deletion of %s", f.scheduler.scheduled, path)
	}

	runs, _ := f.runs.ListRecent(context.Background(), 10)
	if len(runs) != 1 || runs[0].Status != consts.StatusSucceeded || runs[0].ViolationCount != 1 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestAnalyzeImage_DataURIAndMode(t *testing.T) {
	f := newFixture(t, AnalysisOptions{})

	payload := "data:image/png;base64," + base64.RawStdEncoding.EncodeToString([]byte("png-bytes"))
	if _, err := f.service.AnalyzeImage(context.Background(), &dto.AnalyzeImageRequest{Image: payload, Mode: "squat"}); err != nil {
		t.Fatalf("AnalyzeImage() error = %v", err)
	}
	if ext := filepath.Ext(f.analyzer.calls[0]); ext != ".png" {
		t.Errorf("extension = %q, want .png", ext)
	}
	if f.analyzer.modes[0] != "squat" {
		t.Errorf("mode = %q, want squat", f.analyzer.modes[0])
	}
}

func TestAnalyzeImage_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     *dto.AnalyzeImageRequest
		message string
	}{
		{"nil request", nil, "No image provided"},
		{"empty image", &dto.AnalyzeImageRequest{}, "No image provided"},
		{"empty data uri", &dto.AnalyzeImageRequest{Image: "data:image/png;base64,"}, "No image provided"},
		{"bad base64", &dto.AnalyzeImageRequest{Image: "!!!not-base64!!!"}, "Invalid image encoding"},
		{"bad mode", &dto.AnalyzeImageRequest{Image: "aGVsbG8=", Mode: "../etc"}, "Invalid mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, AnalysisOptions{})

			_, err := f.service.AnalyzeImage(context.Background(), tt.req)
			ae, ok := pe.As(err)
			if !ok || ae.Kind != pe.KindValidation {
				t.Fatalf("error = %v, want validation error", err)
			}
			if ae.Message != tt.message {
				t.Errorf("message = %q, want %q", ae.Message, tt.message)
			}
			if len(f.analyzer.calls) != 0 {
				t.Error("analyzer must not run on validation failure")
			}
			if names := f.files(t); len(names) != 0 {
				t.Errorf("temp area = %v, want empty", names)
			}

			runs, _ := f.runs.ListRecent(context.Background(), 10)
			if len(runs) != 1 || runs[0].ErrorKind != string(pe.KindValidation) {
				t.Errorf("runs = %+v, want one validation failure", runs)
			}
		})
	}
}

func TestAnalyzeImage_FailureStillSchedulesDeletion(t *testing.T) {
	f := newFixture(t, AnalysisOptions{})
	f.analyzer.err = pe.ErrProcess(2, "boom")

	_, err := f.service.AnalyzeImage(context.Background(), &dto.AnalyzeImageRequest{Image: "aGVsbG8="})
	if !pe.IsKind(err, pe.KindProcess) {
		t.Fatalf("error = %v, want process failure", err)
	}
	if _, ok := f.scheduler.scheduled[f.analyzer.calls[0]]; !ok {
		t.Error("failed image run should still schedule deletion")
	}

	runs, _ := f.runs.ListRecent(context.Background(), 10)
	if len(runs) != 1 || runs[0].ExitCode == nil || *runs[0].ExitCode != 2 {
		t.Errorf("runs = %+v, want exit code 2 recorded", runs)
	}
}

func TestAnalyzeVideo_DeletedOnEveryPath(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"process failure", pe.ErrProcess(1, "")},
		{"decode failure", pe.ErrDecode(nil, "junk", "")},
		{"launch failure", pe.ErrLaunch(os.ErrNotExist)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, AnalysisOptions{})
			f.analyzer.err = tt.err

			_, err := f.service.AnalyzeVideo(context.Background(), videoHeader(t, "clip.mov", []byte("video-bytes")), "squat")
			if (err != nil) != (tt.err != nil) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
			if !f.analyzer.existed[0] {
				t.Error("video must exist while the analyzer runs")
			}
			if ext := filepath.Ext(f.analyzer.calls[0]); ext != ".mov" {
				t.Errorf("extension = %q, want .mov", ext)
			}
			if names := f.files(t); len(names) != 0 {
				t.Errorf("temp area = %v, want video deleted", names)
			}
			if len(f.scheduler.scheduled) != 0 {
				t.Error("videos are deleted immediately, not scheduled")
			}
		})
	}
}

func TestSweepSkipsFilesUnderAnalysis(t *testing.T) {
	f := newFixture(t, AnalysisOptions{DefaultMode: "desk"})

	var removed int
	f.analyzer.before = func(path string) {
		old := time.Now().Add(-2 * time.Hour)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Errorf("chtimes: %v", err)
		}
		n, err := f.cleanup.CleanupOldTempFiles(time.Hour)
		if err != nil {
			t.Errorf("CleanupOldTempFiles() error = %v", err)
		}
		removed += n
	}

	if _, err := f.service.AnalyzeVideo(context.Background(), videoHeader(t, "clip.mp4", []byte("video")), ""); err != nil {
		t.Fatalf("AnalyzeVideo() error = %v", err)
	}
	payload := base64.StdEncoding.EncodeToString([]byte("jpeg"))
	if _, err := f.service.AnalyzeImage(context.Background(), &dto.AnalyzeImageRequest{Image: payload}); err != nil {
		t.Fatalf("AnalyzeImage() error = %v", err)
	}

	if removed != 0 {
		t.Errorf("sweep removed %d files while they were being analyzed", removed)
	}
	for i, ok := range f.analyzer.existed {
		if !ok {
			t.Errorf("call %d: file missing during analysis", i)
		}
	}

	// once handed to the scheduler the image is protected by its timer,
	// and the video is gone
	if files := f.files(t); len(files) != 1 || !strings.HasPrefix(files[0], "image_") {
		t.Errorf("files = %v, want only the scheduled image", files)
	}
}

func TestAnalyzeVideo_NoFile(t *testing.T) {
	f := newFixture(t, AnalysisOptions{})

	_, err := f.service.AnalyzeVideo(context.Background(), nil, "")
	ae, ok := pe.As(err)
	if !ok || ae.Message != "No video file uploaded" {
		t.Fatalf("error = %v, want No video file uploaded", err)
	}
}

func TestAnalyze_ConcurrencyBound(t *testing.T) {
	f := newFixture(t, AnalysisOptions{MaxConcurrent: 2})
	f.analyzer.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.service.AnalyzeImage(context.Background(), &dto.AnalyzeImageRequest{Image: "aGVsbG8="})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&f.analyzer.maxRunning); got > 2 {
		t.Errorf("max concurrent analyzers = %d, want <= 2", got)
	}

	// every request got its own file
	seen := make(map[string]bool)
	for _, p := range f.analyzer.calls {
		if seen[p] {
			t.Errorf("path %s used twice", p)
		}
		seen[p] = true
	}
}

func TestListRuns_Limit(t *testing.T) {
	f := newFixture(t, AnalysisOptions{})
	for i := 0; i < 3; i++ {
		_, _ = f.service.AnalyzeImage(context.Background(), &dto.AnalyzeImageRequest{Image: "aGVsbG8="})
	}

	runs, err := f.service.ListRuns(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("len = %d, want 2", len(runs))
	}

	runs, _ = f.service.ListRuns(context.Background(), 0)
	if len(runs) != 3 {
		t.Errorf("default limit len = %d, want 3", len(runs))
	}
}

func TestDecodeBase64(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"padded", "aGVsbG8=", "hello", false},
		{"unpadded", "aGVsbG8", "hello", false},
		{"line breaks", "aGVs\nbG8=", "hello", false},
		{"invalid", "a$b", "", true},
		{"decodes to nothing", "====", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBase64(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
