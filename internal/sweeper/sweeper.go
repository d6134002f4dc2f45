// Package sweeper reconciles the premium flag against its expiry timestamp
// on a fixed schedule.
package sweeper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cliplearn/backend/internal/models"
)

// AccountRepository lists and clears expired premium accounts.
type AccountRepository interface {
	ListExpiredPremium(ctx context.Context, now time.Time) ([]models.User, error)
	ClearPremium(ctx context.Context, id uuid.UUID) error
}

// Sweeper periodically clears expired premium flags. Records are updated one
// by one and each sweep is idempotent, so a partial failure mid-scan is
// repaired by the next run.
type Sweeper struct {
	repo     AccountRepository
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// New creates a premium-expiry sweeper.
func New(repo AccountRepository, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{repo: repo, interval: interval, now: time.Now, logger: logger}
}

// Run sweeps on the configured interval until ctx is done. Sweeps run
// sequentially in this goroutine, so two sweeps can never overlap.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("premium sweeper stopping")
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				s.logger.Error("premium sweep failed", zap.Error(err))
			} else if n > 0 {
				s.logger.Info("premium sweep completed", zap.Int("expired", n))
			}
		}
	}
}

// Sweep clears every account whose premium expiry has lapsed and returns the
// number of accounts cleared. A per-record failure is logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpiredPremium(ctx, s.now())
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, u := range expired {
		if err := s.repo.ClearPremium(ctx, u.ID); err != nil {
			s.logger.Warn("clear premium failed", zap.String("user_id", u.ID.String()), zap.Error(err))
			continue
		}
		cleared++
	}
	return cleared, nil
}
