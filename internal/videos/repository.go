package videos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliplearn/backend/internal/models"
)

// Repository handles video persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a videos repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const videoColumns = `id, owner_id, title, description, duration_seconds,
	video_url, video_key, thumbnail_url, thumbnail_key,
	is_published, is_premium, transcript, summary, questions, enrichment_status,
	created_at, updated_at`

func scanVideo(row pgx.Row) (*models.Video, error) {
	var v models.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.DurationSeconds,
		&v.VideoURL, &v.VideoKey, &v.ThumbnailURL, &v.ThumbnailKey,
		&v.IsPublished, &v.IsPremium, &v.Transcript, &v.Summary, &v.Questions, &v.EnrichmentStatus,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new video (both assets must already exist in storage).
func (r *Repository) Create(ctx context.Context, v *models.Video) error {
	const q = `INSERT INTO videos (owner_id, title, description, duration_seconds,
		video_url, video_key, thumbnail_url, thumbnail_key, is_published, is_premium)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, enrichment_status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, v.OwnerID, v.Title, v.Description, v.DurationSeconds,
		v.VideoURL, v.VideoKey, v.ThumbnailURL, v.ThumbnailKey, v.IsPublished, v.IsPremium).
		Scan(&v.ID, &v.EnrichmentStatus, &v.CreatedAt, &v.UpdatedAt)
}

// GetByID returns a video by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	const q = `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	v, err := scanVideo(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// ListParams filters and pages the video listing.
type ListParams struct {
	Query   string
	OwnerID *uuid.UUID
	SortBy  string
	SortAsc bool
	Page    int
	Limit   int
}

var sortableColumns = map[string]string{
	"created_at":       "created_at",
	"title":            "title",
	"duration_seconds": "duration_seconds",
}

// List returns published videos matching params, newest first by default.
func (r *Repository) List(ctx context.Context, p ListParams) ([]models.Video, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 10
	}
	sortCol, ok := sortableColumns[p.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "DESC"
	if p.SortAsc {
		dir = "ASC"
	}

	q := `SELECT ` + videoColumns + ` FROM videos WHERE is_published = TRUE`
	args := []interface{}{}
	if p.Query != "" {
		args = append(args, "%"+p.Query+"%")
		q += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	if p.OwnerID != nil {
		args = append(args, *p.OwnerID)
		q += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	args = append(args, p.Limit, (p.Page-1)*p.Limit)
	q += fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortCol, dir, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Video
	for rows.Next() {
		var v models.Video
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.DurationSeconds,
			&v.VideoURL, &v.VideoKey, &v.ThumbnailURL, &v.ThumbnailKey,
			&v.IsPublished, &v.IsPremium, &v.Transcript, &v.Summary, &v.Questions, &v.EnrichmentStatus,
			&v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// UpdateMeta sets title and description.
func (r *Repository) UpdateMeta(ctx context.Context, id uuid.UUID, title, description string) error {
	const q = `UPDATE videos SET title = $1, description = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, title, description, id)
	return err
}

// TogglePublish flips is_published and returns the new value.
func (r *Repository) TogglePublish(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE videos SET is_published = NOT is_published, updated_at = NOW() WHERE id = $1 RETURNING is_published`
	var published bool
	err := r.pool.QueryRow(ctx, q, id).Scan(&published)
	return published, err
}

// Delete removes a video row. Backing assets are removed by the caller.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	return err
}

// TryMarkEnriching atomically transitions the video into the enriching state.
// Returns false when another enrichment run already holds the state; this is
// the per-video single-owner lock.
func (r *Repository) TryMarkEnriching(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `UPDATE videos SET enrichment_status = $1, updated_at = NOW()
		WHERE id = $2 AND enrichment_status <> $1`
	tag, err := r.pool.Exec(ctx, q, models.EnrichmentRunning, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SaveEnrichment overwrites transcript, summary and questions in one update
// and releases the lock by setting the enriched state.
func (r *Repository) SaveEnrichment(ctx context.Context, id uuid.UUID, transcript, summary string, questions []models.Question) error {
	const q = `UPDATE videos SET transcript = $1, summary = $2, questions = $3,
		enrichment_status = $4, updated_at = NOW() WHERE id = $5`
	_, err := r.pool.Exec(ctx, q, transcript, summary, questions, models.EnrichmentCompleted, id)
	return err
}

// MarkEnrichmentFailed records a failed run, releasing the lock. Only the
// run that holds the enriching state may do this.
func (r *Repository) MarkEnrichmentFailed(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE videos SET enrichment_status = $1, updated_at = NOW()
		WHERE id = $2 AND enrichment_status = $3`
	_, err := r.pool.Exec(ctx, q, models.EnrichmentFailed, id, models.EnrichmentRunning)
	return err
}
