package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// QuestionGenConfig holds the question-generation endpoint settings.
type QuestionGenConfig struct {
	URL     string
	Timeout time.Duration
}

// QuestionGenerator calls the question-generation service. It has no
// degraded mode: a failed or empty response is an error and aborts the
// enrichment run.
type QuestionGenerator struct {
	cfg    QuestionGenConfig
	client *http.Client
	logger *zap.Logger
}

// NewQuestionGenerator creates a question-generation client.
func NewQuestionGenerator(cfg QuestionGenConfig, logger *zap.Logger) *QuestionGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &QuestionGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type questionGenRequest struct {
	Summary string `json:"summary"`
}

type questionGenResponse struct {
	Questions []string `json:"questions"`
}

// Generate returns quiz questions derived from summary.
func (g *QuestionGenerator) Generate(ctx context.Context, summary string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(questionGenRequest{Summary: summary})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("question-gen request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question-gen status: %d", resp.StatusCode)
	}

	var out questionGenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(out.Questions) == 0 {
		return nil, fmt.Errorf("question-gen service returned no questions")
	}
	return out.Questions, nil
}
