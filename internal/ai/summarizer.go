// Package ai holds the clients for the remote summarization and
// question-generation endpoints.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// SummaryFallback is returned whenever summarization fails. The enrichment
// pipeline continues with it instead of aborting.
const SummaryFallback = "Summary generation failed."

// SummarizerConfig holds the summarization endpoint settings.
type SummarizerConfig struct {
	URL     string
	Token   string // bearer token
	Timeout time.Duration
}

// Summarizer calls a hosted-inference summarization model. Unlike every other
// enrichment stage it never returns an error: any failure degrades to
// SummaryFallback.
type Summarizer struct {
	cfg    SummarizerConfig
	client *http.Client
	logger *zap.Logger
}

// NewSummarizer creates a summarization client.
func NewSummarizer(cfg SummarizerConfig, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Summarizer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type summarizeRequest struct {
	Inputs string `json:"inputs"`
}

type summarizeResponse struct {
	SummaryText string `json:"summary_text"`
}

// Summarize returns a summary of transcript, or SummaryFallback on any
// failure (transport error, timeout, non-200, malformed body).
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	summary, err := s.call(ctx, transcript)
	if err != nil {
		s.logger.Warn("summarization degraded to fallback", zap.Error(err))
		return SummaryFallback, nil
	}
	return summary, nil
}

func (s *Summarizer) call(ctx context.Context, transcript string) (string, error) {
	body, err := json.Marshal(summarizeRequest{Inputs: transcript})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarize request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarize status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var out []summarizeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(out) == 0 || out[0].SummaryText == "" {
		return "", fmt.Errorf("empty summary in response")
	}
	return out[0].SummaryText, nil
}
