package credits

import (
	"errors"

	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientCredits is returned when the conditional debit matches no row.
var ErrInsufficientCredits = errors.New("insufficient credits")

// Repository performs the atomic credit debit and watch-history append.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a credits repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// DebitCreditForWatch decrements one credit iff the viewer has at least one,
// and appends the watch-history entry in the same transaction. The decrement
// is a single conditional UPDATE, never a read-then-write, so concurrent
// watch calls can never drive the balance negative.
func (r *Repository) DebitCreditForWatch(ctx context.Context, viewerID, videoID uuid.UUID) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const debit = `UPDATE users SET credits = credits - 1, updated_at = NOW()
		WHERE id = $1 AND credits >= 1 RETURNING credits`
	var remaining int
	if err := tx.QueryRow(ctx, debit, viewerID).Scan(&remaining); err != nil {
		if err == pgx.ErrNoRows {
			return 0, ErrInsufficientCredits
		}
		return 0, err
	}

	const log = `INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, log, viewerID, videoID); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}
