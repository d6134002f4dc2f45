package models

import (
	"time"

	"github.com/google/uuid"
)

// EnrichmentStatus represents the AI enrichment lifecycle of a video.
// The not_enriched → enriching transition is taken atomically in the
// repository and acts as the per-video enrichment lock.
const (
	EnrichmentNotStarted = "not_enriched"
	EnrichmentRunning    = "enriching"
	EnrichmentCompleted  = "enriched"
	EnrichmentFailed     = "failed"
)

// Question is one auto-generated quiz question for a video.
type Question struct {
	Question string `json:"question"`
}

// Video is an uploaded clip with its storage assets and AI enrichment.
type Video struct {
	ID               uuid.UUID  `json:"id"`
	OwnerID          uuid.UUID  `json:"owner_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	DurationSeconds  float64    `json:"duration_seconds"`
	VideoURL         string     `json:"video_url"`
	VideoKey         string     `json:"-"`
	ThumbnailURL     string     `json:"thumbnail_url"`
	ThumbnailKey     string     `json:"-"`
	IsPublished      bool       `json:"is_published"`
	IsPremium        bool       `json:"is_premium"`
	Transcript       string     `json:"transcript,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	Questions        []Question `json:"questions,omitempty"`
	EnrichmentStatus string     `json:"enrichment_status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
