// Package credits implements watch authorization: the paywall check and the
// atomic per-viewer credit debit.
package credits

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cliplearn/backend/internal/models"
	"github.com/cliplearn/backend/pkg/apperr"
)

// VideoGetter loads videos for the access check.
type VideoGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
}

// AccountStore loads viewer state and performs the atomic debit.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	DebitCreditForWatch(ctx context.Context, viewerID, videoID uuid.UUID) (remaining int, err error)
}

// WatchGrant is the result of a successful watch authorization.
type WatchGrant struct {
	VideoURL         string `json:"video_url"`
	RemainingCredits int    `json:"remaining_credits"`
	Charged          bool   `json:"charged"`
}

// Ledger authorizes watch requests. Premium status is re-evaluated against
// the current clock on every call, never cached.
type Ledger struct {
	videos   VideoGetter
	accounts AccountStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewLedger creates a watch-authorization ledger.
func NewLedger(videos VideoGetter, accounts AccountStore, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{videos: videos, accounts: accounts, now: time.Now, logger: logger}
}

// Authorize decides whether viewer may watch the video, charging a credit
// when required, and returns the playable URL with the resulting balance.
func (l *Ledger) Authorize(ctx context.Context, viewerID, videoID uuid.UUID) (*WatchGrant, error) {
	const op = "credits.Authorize"

	video, err := l.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, apperr.Internal(op, err, "failed to load video")
	}
	if video == nil {
		return nil, apperr.NotFound(op, "video not found")
	}

	viewer, err := l.accounts.GetByID(ctx, viewerID)
	if err != nil {
		return nil, apperr.NotFound(op, "account not found")
	}

	premiumActive := viewer.PremiumActive(l.now())

	if video.IsPremium && !premiumActive {
		return nil, apperr.PermissionDenied(op, "subscription required to watch this video")
	}

	// Premium-active viewers are unmetered: no charge, no history entry.
	if premiumActive {
		return &WatchGrant{VideoURL: video.VideoURL, RemainingCredits: viewer.Credits, Charged: false}, nil
	}

	remaining, err := l.accounts.DebitCreditForWatch(ctx, viewerID, videoID)
	if err != nil {
		if errors.Is(err, ErrInsufficientCredits) {
			return nil, apperr.InsufficientCredits(op, "not enough credits to watch this video")
		}
		return nil, apperr.Internal(op, err, "failed to charge credit")
	}

	l.logger.Debug("credit charged",
		zap.String("viewer_id", viewerID.String()),
		zap.String("video_id", videoID.String()),
		zap.Int("remaining", remaining))
	return &WatchGrant{VideoURL: video.VideoURL, RemainingCredits: remaining, Charged: true}, nil
}
