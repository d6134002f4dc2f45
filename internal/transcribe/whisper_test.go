package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeStubWhisper creates an executable standing in for the whisper CLI.
// It writes transcript next to the input file, mimicking --output_format txt.
func writeStubWhisper(t *testing.T, transcript string, code int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	if transcript != "" {
		b.WriteString("in=\"$1\"\n")
		b.WriteString("printf '%s' '" + transcript + "' > \"${in%.*}.txt\"\n")
	}
	if code != 0 {
		b.WriteString("echo 'model load failed' >&2\n")
		b.WriteString("exit 1\n")
	}
	path := filepath.Join(t.TempDir(), "whisper-stub")
	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(command string) *WhisperRunner {
	return NewWhisperRunner(Config{
		Command:  command,
		Model:    "small.en",
		Language: "en",
		Timeout:  10 * time.Second,
	}, nil)
}

func TestWhisperTranscribe(t *testing.T) {
	mediaPath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(mediaPath, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(writeStubWhisper(t, "hello from the stub", 0))
	got, err := r.Transcribe(context.Background(), mediaPath)
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if got != "hello from the stub" {
		t.Fatalf("Transcribe() = %q, want %q", got, "hello from the stub")
	}

	// The .txt artifact is removed after reading.
	artifact := strings.TrimSuffix(mediaPath, ".mp4") + ".txt"
	if _, err := os.Stat(artifact); !os.IsNotExist(err) {
		t.Fatalf("artifact %s still present", artifact)
	}
}

func TestWhisperTranscribeSubprocessFailure(t *testing.T) {
	mediaPath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(mediaPath, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(writeStubWhisper(t, "", 1))
	_, err := r.Transcribe(context.Background(), mediaPath)
	if err == nil {
		t.Fatal("want error when subprocess exits non-zero")
	}
	if !strings.Contains(err.Error(), "whisper failed") {
		t.Fatalf("error = %v, want whisper failure", err)
	}
	if !strings.Contains(err.Error(), "model load failed") {
		t.Fatalf("error = %v, want captured stderr", err)
	}
}

func TestWhisperTranscribeMissingArtifact(t *testing.T) {
	mediaPath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(mediaPath, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Exits zero but writes no transcript.
	r := newTestRunner(writeStubWhisper(t, "", 0))
	_, err := r.Transcribe(context.Background(), mediaPath)
	if err == nil {
		t.Fatal("want error when transcript artifact is missing")
	}
	if !strings.Contains(err.Error(), "read transcript artifact") {
		t.Fatalf("error = %v, want artifact read failure", err)
	}
}

func TestWhisperTranscribeTimeout(t *testing.T) {
	mediaPath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(mediaPath, []byte("media"), 0o644); err != nil {
		t.Fatal(err)
	}

	script := "#!/bin/sh\nsleep 5\n"
	stub := filepath.Join(t.TempDir(), "whisper-slow")
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewWhisperRunner(Config{Command: stub, Model: "small.en", Language: "en", Timeout: 100 * time.Millisecond}, nil)
	start := time.Now()
	_, err := r.Transcribe(context.Background(), mediaPath)
	if err == nil {
		t.Fatal("want error on timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}
