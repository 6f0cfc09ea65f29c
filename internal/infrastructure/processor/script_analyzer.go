package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"posture-analyzer/internal/domain/entities"
	pe "posture-analyzer/pkg/errors"
	"posture-analyzer/pkg/helper"
)

const waitDelay = 5 * time.Second

type ScriptConfig struct {
	// Interpreter runs Script; when empty Script is executed directly.
	Interpreter    string
	Script         string
	Timeout        time.Duration
	MaxOutputBytes int
	RawLimit       int
	DetailLimit    int
}

// ScriptAnalyzer shells out to the pose-estimation program as
// "<interpreter> <script> <mediaPath> <mode>".
type ScriptAnalyzer struct {
	cfg    ScriptConfig
	logger *slog.Logger
}

func NewScriptAnalyzer(cfg ScriptConfig, logger *slog.Logger) *ScriptAnalyzer {
	return &ScriptAnalyzer{
		cfg:    cfg,
		logger: logger,
	}
}

// Analyze invokes the process and decodes its stdout.
func (a *ScriptAnalyzer) Analyze(ctx context.Context, path, mode string) (*entities.AnalysisResult, error) {
	res, err := a.Invoke(ctx, path, mode)
	if err != nil {
		return nil, err
	}

	if len(res.Stderr) > 0 {
		a.logger.Warn("analyzer stderr",
			"path", path,
			"stderr", helper.TruncateTail(string(res.Stderr), a.cfg.DetailLimit),
		)
	}

	result, err := DecodeResult(res.Stdout, res.Stderr, a.cfg.RawLimit, a.cfg.DetailLimit)
	if err != nil {
		a.logger.Error("analyzer output is not a valid result",
			"path", path,
			"raw", helper.TruncateHead(string(res.Stdout), a.cfg.RawLimit),
			"err", err,
		)
		return nil, err
	}

	a.logger.Info("analysis finished",
		"path", path,
		"mode", mode,
		"total_frames", result.TotalFrames,
		"violations", len(result.Violations),
		"duration", res.Duration,
	)
	return result, nil
}

// Invoke runs the analyzer once and captures both output streams. A
// non-zero exit, a timeout or a failed start are returned as pipeline
// errors; the ProcessResult is still returned when the process ran.
func (a *ScriptAnalyzer) Invoke(ctx context.Context, path, mode string) (*entities.ProcessResult, error) {
	if a.cfg.Interpreter != "" {
		if _, err := os.Stat(a.cfg.Script); err != nil {
			return nil, pe.ErrLaunch(fmt.Errorf("analyzer script: %w", err))
		}
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	cmd := a.command(ctx, path, mode)
	stdout := newLimitedBuffer(a.cfg.MaxOutputBytes)
	stderr := newLimitedBuffer(a.cfg.MaxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, pe.ErrLaunch(err)
	}
	a.logger.Debug("analyzer started", "pid", cmd.Process.Pid, "path", path, "mode", mode)

	waitErr := cmd.Wait()
	result := &entities.ProcessResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if stdout.Truncated() || stderr.Truncated() {
		a.logger.Warn("analyzer output truncated",
			"path", path,
			"limit", a.cfg.MaxOutputBytes,
			"stdout_truncated", stdout.Truncated(),
			"stderr_truncated", stderr.Truncated(),
		)
	}

	detail := helper.TruncateTail(string(result.Stderr), a.cfg.DetailLimit)

	if waitErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result, pe.ErrTimeout(a.cfg.Timeout, detail)
		}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return result, pe.ErrProcess(exitErr.ExitCode(), detail)
		}
		if !(errors.Is(waitErr, exec.ErrWaitDelay) && result.ExitCode == 0) {
			return result, pe.ErrProcess(result.ExitCode, detail)
		}
		a.logger.Warn("analyzer left output pipes open", "path", path)
	}

	return result, nil
}

func (a *ScriptAnalyzer) command(ctx context.Context, path, mode string) *exec.Cmd {
	if a.cfg.Interpreter == "" {
		return exec.CommandContext(ctx, a.cfg.Script, path, mode)
	}
	return exec.CommandContext(ctx, a.cfg.Interpreter, a.cfg.Script, path, mode)
}

// limitedBuffer keeps at most limit bytes and silently drops the rest so a
// misbehaving process cannot grow memory without bound.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newLimitedBuffer(limit int) *limitedBuffer {
	return &limitedBuffer{limit: limit}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		return b.buf.Write(p)
	}
	remain := b.limit - b.buf.Len()
	if remain <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remain {
		b.buf.Write(p[:remain])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *limitedBuffer) Truncated() bool {
	return b.truncated
}
