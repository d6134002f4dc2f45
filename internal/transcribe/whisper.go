// Package transcribe runs a local speech-to-text engine against media files.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds the whisper CLI invocation settings.
type Config struct {
	Command  string        // whisper binary
	Model    string        // e.g. small.en
	Language string        // e.g. en
	Timeout  time.Duration // hard deadline for one run; 0 = no extra deadline
}

// WhisperRunner invokes the whisper CLI as a subprocess and reads the text
// artifact it writes next to the input file.
type WhisperRunner struct {
	cfg    Config
	logger *zap.Logger
}

// NewWhisperRunner creates a whisper-backed transcriber.
func NewWhisperRunner(cfg Config, logger *zap.Logger) *WhisperRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhisperRunner{cfg: cfg, logger: logger}
}

// Transcribe runs whisper on mediaPath and returns the transcript text.
// The run is bounded by the configured timeout; the output artifact is
// removed after reading.
func (r *WhisperRunner) Transcribe(ctx context.Context, mediaPath string) (string, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	outDir := filepath.Dir(mediaPath)
	cmd := exec.CommandContext(ctx, r.cfg.Command,
		mediaPath,
		"--model", r.cfg.Model,
		"--language", r.cfg.Language,
		"--output_format", "txt",
		"--output_dir", outDir,
	)
	r.logger.Debug("starting transcription",
		zap.String("media", mediaPath),
		zap.String("model", r.cfg.Model))

	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("whisper failed: %w: %s", err, truncate(string(out), 512))
	}

	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	transcriptPath := filepath.Join(outDir, base+".txt")
	text, err := os.ReadFile(transcriptPath)
	if err != nil {
		return "", fmt.Errorf("read transcript artifact: %w", err)
	}
	if err := os.Remove(transcriptPath); err != nil {
		r.logger.Warn("transcript artifact not removed", zap.String("path", transcriptPath), zap.Error(err))
	}
	return string(text), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
