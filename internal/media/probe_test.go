package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeStubProbe creates an executable that prints output and exits with code.
func writeStubProbe(t *testing.T, output string, code int) string {
	t.Helper()
	script := fmt.Sprintf("#!/bin/sh\nprintf '%s'\nexit %d\n", output, code)
	path := filepath.Join(t.TempDir(), "ffprobe-stub")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeMediaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("not really a video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProberDuration(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		code    int
		want    float64
		wantErr bool
	}{
		{name: "plain seconds", output: "93.500000\\n", code: 0, want: 93.5},
		{name: "integer seconds", output: "180\\n", code: 0, want: 180},
		{name: "probe exits non-zero", output: "", code: 1, wantErr: true},
		{name: "no duration in output", output: "N/A\\n", code: 0, wantErr: true},
		{name: "zero duration", output: "0.000000\\n", code: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProberWithBinary(writeStubProbe(t, tt.output, tt.code))
			got, err := p.Duration(context.Background(), writeMediaFile(t))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Duration() = %v, want error", got)
				}
				var pe *ProbeError
				if !errors.As(err, &pe) {
					t.Fatalf("error type = %T, want *ProbeError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Duration() error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProberDurationMissingFile(t *testing.T) {
	p := NewProberWithBinary(writeStubProbe(t, "90\\n", 0))
	_, err := p.Duration(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if err == nil {
		t.Fatal("want error for missing file")
	}
	var pe *ProbeError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ProbeError", err)
	}
	if pe.Reason != "file not found" {
		t.Fatalf("Reason = %q, want %q", pe.Reason, "file not found")
	}
}
