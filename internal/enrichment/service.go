// Package enrichment runs the AI pipeline for a published video:
// download, transcribe, summarize, generate quiz questions, persist.
package enrichment

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cliplearn/backend/internal/ai"
	"github.com/cliplearn/backend/internal/models"
	"github.com/cliplearn/backend/pkg/apperr"
)

// AssetFetcher downloads a stored asset to a local path.
type AssetFetcher interface {
	Download(ctx context.Context, key, destPath string) error
}

// Transcriber converts a local media file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (string, error)
}

// Summarizer condenses a transcript. Implementations degrade to a
// placeholder instead of failing; an error is tolerated the same way.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// QuestionGenerator derives quiz questions from a summary. No fallback:
// its failure aborts the run.
type QuestionGenerator interface {
	Generate(ctx context.Context, summary string) ([]string, error)
}

// Repository is the video persistence the pipeline needs, including the
// atomic status transition that serializes runs per video.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	TryMarkEnriching(ctx context.Context, id uuid.UUID) (bool, error)
	SaveEnrichment(ctx context.Context, id uuid.UUID, transcript, summary string, questions []models.Question) error
	MarkEnrichmentFailed(ctx context.Context, id uuid.UUID) error
}

// Result is the outcome of one enrichment run.
type Result struct {
	Transcript string            `json:"transcript"`
	Summary    string            `json:"summary"`
	Questions  []models.Question `json:"questions"`
}

// Service orchestrates one enrichment run per video at a time.
type Service struct {
	repo        Repository
	fetcher     AssetFetcher
	transcriber Transcriber
	summarizer  Summarizer
	questions   QuestionGenerator
	tempDir     string
	logger      *zap.Logger
}

// NewService creates an enrichment orchestrator.
func NewService(repo Repository, fetcher AssetFetcher, transcriber Transcriber, summarizer Summarizer, questions QuestionGenerator, tempDir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Service{
		repo:        repo,
		fetcher:     fetcher,
		transcriber: transcriber,
		summarizer:  summarizer,
		questions:   questions,
		tempDir:     tempDir,
		logger:      logger,
	}
}

// Enrich runs the pipeline for videoID. Stages are strictly sequential. A
// hard stage failure persists the failed state and leaves the previous
// transcript/summary/questions untouched; only a fully successful run
// overwrites them.
func (s *Service) Enrich(ctx context.Context, videoID uuid.UUID) (*Result, error) {
	const op = "enrichment.Enrich"

	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, apperr.Internal(op, err, "failed to load video")
	}
	if video == nil {
		return nil, apperr.NotFound(op, "video not found")
	}

	acquired, err := s.repo.TryMarkEnriching(ctx, videoID)
	if err != nil {
		return nil, apperr.Internal(op, err, "failed to acquire enrichment lock")
	}
	if !acquired {
		return nil, apperr.Conflict(op, "enrichment already in progress for this video")
	}

	result, err := s.run(ctx, video)
	if err != nil {
		if markErr := s.repo.MarkEnrichmentFailed(ctx, videoID); markErr != nil {
			s.logger.Error("mark enrichment failed errored",
				zap.String("video_id", videoID.String()), zap.Error(markErr))
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) run(ctx context.Context, video *models.Video) (*Result, error) {
	const op = "enrichment.Enrich"

	mediaPath := filepath.Join(s.tempDir, video.ID.String()+filepath.Ext(video.VideoKey))
	if err := s.fetcher.Download(ctx, video.VideoKey, mediaPath); err != nil {
		return nil, apperr.Download(op, err, "failed to download video asset")
	}
	defer s.cleanup(mediaPath)

	transcript, err := s.transcriber.Transcribe(ctx, mediaPath)
	if err != nil {
		return nil, apperr.Transcription(op, err, "transcription failed")
	}

	summary, err := s.summarizer.Summarize(ctx, transcript)
	if err != nil {
		// The summarizer contract is to degrade rather than fail; tolerate
		// an implementation that errors anyway.
		s.logger.Warn("summarizer returned error, using fallback",
			zap.String("video_id", video.ID.String()), zap.Error(err))
		summary = ai.SummaryFallback
	}

	rawQuestions, err := s.questions.Generate(ctx, summary)
	if err != nil {
		return nil, apperr.QuestionGen(op, err, "question generation failed")
	}

	questions := make([]models.Question, 0, len(rawQuestions))
	for _, q := range rawQuestions {
		questions = append(questions, models.Question{Question: q})
	}

	if err := s.repo.SaveEnrichment(ctx, video.ID, transcript, summary, questions); err != nil {
		return nil, apperr.Internal(op, err, "failed to persist enrichment")
	}

	s.logger.Info("video enriched",
		zap.String("video_id", video.ID.String()),
		zap.Int("questions", len(questions)))
	return &Result{Transcript: transcript, Summary: summary, Questions: questions}, nil
}

func (s *Service) cleanup(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("temp media not removed", zap.String("path", path), zap.Error(err))
	}
}
