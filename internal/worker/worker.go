// Package worker consumes enrichment jobs from the Redis queue and runs the
// enrichment pipeline out-of-band.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cliplearn/backend/internal/enrichment"
	"github.com/cliplearn/backend/pkg/apperr"
	"github.com/cliplearn/backend/pkg/queue"
)

// EnrichmentProcessor processes queued enrichment jobs.
type EnrichmentProcessor struct {
	svc    *enrichment.Service
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEnrichmentProcessor creates an enrichment job processor.
func NewEnrichmentProcessor(svc *enrichment.Service, q *queue.Queue, logger *zap.Logger) *EnrichmentProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrichmentProcessor{svc: svc, queue: q, logger: logger}
}

// Process executes one enrichment job.
func (p *EnrichmentProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEnrichment {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EnrichmentPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	_, err := p.svc.Enrich(ctx, payload.VideoID)
	if err != nil {
		return err
	}
	p.logger.Info("enrichment job completed",
		zap.String("job_id", job.ID), zap.String("video_id", payload.VideoID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. Jobs that
// lose the per-video enrichment lock or reference a deleted video are
// dropped, not retried.
func (p *EnrichmentProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("enrichment worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			switch apperr.KindOf(err) {
			case apperr.KindConflict, apperr.KindNotFound:
				p.logger.Warn("job dropped", zap.String("job_id", job.ID), zap.Error(err))
				continue
			}
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
