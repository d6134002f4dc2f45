package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSummarizeSuccess(t *testing.T) {
	var gotAuth string
	var gotBody summarizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode([]summarizeResponse{{SummaryText: "a short summary"}})
	}))
	defer srv.Close()

	s := NewSummarizer(SummarizerConfig{URL: srv.URL, Token: "test-token", Timeout: 5 * time.Second}, nil)
	got, err := s.Summarize(context.Background(), "the full transcript")
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if got != "a short summary" {
		t.Fatalf("Summarize() = %q, want %q", got, "a short summary")
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotBody.Inputs != "the full transcript" {
		t.Fatalf("request inputs = %q", gotBody.Inputs)
	}
}

// Every failure mode degrades to the fallback text instead of an error.
func TestSummarizeDegradesToFallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":"model loading"}`))
			},
		},
		{
			name: "empty result list",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			},
		},
		{
			name: "blank summary text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode([]summarizeResponse{{SummaryText: ""}})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			s := NewSummarizer(SummarizerConfig{URL: srv.URL, Timeout: 5 * time.Second}, nil)
			got, err := s.Summarize(context.Background(), "transcript")
			if err != nil {
				t.Fatalf("Summarize() error: %v, want degraded success", err)
			}
			if got != SummaryFallback {
				t.Fatalf("Summarize() = %q, want fallback %q", got, SummaryFallback)
			}
		})
	}
}

func TestSummarizeUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	s := NewSummarizer(SummarizerConfig{URL: srv.URL, Timeout: time.Second}, nil)
	got, err := s.Summarize(context.Background(), "transcript")
	if err != nil {
		t.Fatalf("Summarize() error: %v, want degraded success", err)
	}
	if got != SummaryFallback {
		t.Fatalf("Summarize() = %q, want fallback", got)
	}
}
