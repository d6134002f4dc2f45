package videos

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cliplearn/backend/internal/models"
	"github.com/cliplearn/backend/pkg/apperr"
	"github.com/cliplearn/backend/pkg/storage"
)

// Prober extracts the duration of a local media file.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// AssetStore uploads and removes media assets in remote object storage.
// Remove is treated as best-effort at every call site here.
type AssetStore interface {
	Store(ctx context.Context, localPath, folder string) (url, key string, err error)
	Remove(ctx context.Context, key string) error
}

// VideoCreator persists a published video.
type VideoCreator interface {
	Create(ctx context.Context, v *models.Video) error
}

// Limits holds the per-tier upload duration caps in seconds. FreeMaxSeconds
// is also the threshold above which stored videos are premium-gated.
type Limits struct {
	FreeMaxSeconds    float64
	PremiumMaxSeconds float64
}

// PublishInput describes one upload.
type PublishInput struct {
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
}

// Publisher validates an upload, probes its duration, uploads both assets
// with a compensating rollback, and persists the video record. No database
// write happens before both uploads succeed.
type Publisher struct {
	prober Prober
	store  AssetStore
	repo   VideoCreator
	limits Limits
	now    func() time.Time
	logger *zap.Logger
}

// NewPublisher creates a publish orchestrator.
func NewPublisher(prober Prober, store AssetStore, repo VideoCreator, limits Limits, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		prober: prober,
		store:  store,
		repo:   repo,
		limits: limits,
		now:    time.Now,
		logger: logger,
	}
}

// Publish runs the full publish flow for owner and returns the created video.
func (p *Publisher) Publish(ctx context.Context, owner *models.User, in PublishInput) (*models.Video, error) {
	const op = "videos.Publish"

	if in.Title == "" {
		return nil, apperr.Validation(op, "video title is required")
	}
	if _, err := os.Stat(in.VideoPath); err != nil {
		return nil, apperr.Validation(op, "video file is required")
	}
	if _, err := os.Stat(in.ThumbnailPath); err != nil {
		return nil, apperr.Validation(op, "thumbnail file is required")
	}

	duration, err := p.prober.Duration(ctx, in.VideoPath)
	if err != nil {
		return nil, apperr.MediaProbe(op, err, "unable to read video duration")
	}

	// Tier limit is checked before any network upload.
	maxAllowed := p.limits.FreeMaxSeconds
	if owner.PremiumActive(p.now()) {
		maxAllowed = p.limits.PremiumMaxSeconds
	}
	if duration > maxAllowed {
		return nil, apperr.DurationExceeded(op, duration, maxAllowed)
	}

	videoURL, videoKey, err := p.store.Store(ctx, in.VideoPath, storage.FolderVideos)
	if err != nil {
		return nil, apperr.Storage(op, err, "video upload failed")
	}

	thumbURL, thumbKey, err := p.store.Store(ctx, in.ThumbnailPath, storage.FolderThumbnails)
	if err != nil {
		// Compensating delete of the already-uploaded video asset. A failure
		// here leaves an orphaned asset; logged, not recovered.
		if rmErr := p.store.Remove(ctx, videoKey); rmErr != nil {
			p.logger.Warn("compensating video delete failed, asset orphaned",
				zap.String("key", videoKey), zap.Error(rmErr))
		}
		return nil, apperr.Storage(op, err, "thumbnail upload failed")
	}

	p.cleanupLocal(in.VideoPath, in.ThumbnailPath)

	v := &models.Video{
		OwnerID:         owner.ID,
		Title:           in.Title,
		Description:     in.Description,
		DurationSeconds: duration,
		VideoURL:        videoURL,
		VideoKey:        videoKey,
		ThumbnailURL:    thumbURL,
		ThumbnailKey:    thumbKey,
		IsPublished:     true,
		// Long videos are premium-gated regardless of the uploader's tier.
		IsPremium: duration > p.limits.FreeMaxSeconds,
	}
	if err := p.repo.Create(ctx, v); err != nil {
		for _, key := range []string{videoKey, thumbKey} {
			if rmErr := p.store.Remove(ctx, key); rmErr != nil {
				p.logger.Warn("asset cleanup after persist failure failed, asset orphaned",
					zap.String("key", key), zap.Error(rmErr))
			}
		}
		return nil, apperr.Internal(op, err, "failed to persist video")
	}
	return v, nil
}

func (p *Publisher) cleanupLocal(paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			p.logger.Debug("temp file not removed", zap.String("path", path), zap.Error(err))
		}
	}
}
