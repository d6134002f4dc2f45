// Package media extracts container metadata from local files via ffprobe.
package media

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const defaultProbeTimeout = 30 * time.Second

// Prober reads the duration of a local media file by invoking ffprobe.
type Prober struct {
	binary  string
	timeout time.Duration
}

// NewProber creates a prober using the ffprobe binary on PATH.
func NewProber() *Prober {
	return &Prober{binary: "ffprobe", timeout: defaultProbeTimeout}
}

// NewProberWithBinary creates a prober with an explicit binary path (tests).
func NewProberWithBinary(binary string) *Prober {
	return &Prober{binary: binary, timeout: defaultProbeTimeout}
}

// Duration returns the media duration in seconds (> 0).
// Fails if the file is missing, the probe exits non-zero, or the metadata
// carries no usable duration.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, &ProbeError{Path: path, Reason: "file not found", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, &ProbeError{Path: path, Reason: "ffprobe failed", Err: err}
	}

	raw := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ProbeError{Path: path, Reason: "no duration in metadata", Err: err}
	}
	if duration <= 0 {
		return 0, &ProbeError{Path: path, Reason: "non-positive duration"}
	}
	return duration, nil
}

// ProbeError reports a failed duration probe.
type ProbeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Err != nil {
		return "probe " + e.Path + ": " + e.Reason + ": " + e.Err.Error()
	}
	return "probe " + e.Path + ": " + e.Reason
}

func (e *ProbeError) Unwrap() error { return e.Err }
