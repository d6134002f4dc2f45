package videos

import (
	"mime/multipart"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cliplearn/backend/internal/auth"
	"github.com/cliplearn/backend/internal/credits"
	"github.com/cliplearn/backend/internal/enrichment"
	"github.com/cliplearn/backend/internal/middleware"
	"github.com/cliplearn/backend/internal/models"
	"github.com/cliplearn/backend/pkg/queue"
	"github.com/cliplearn/backend/pkg/response"
)

// Handler handles video HTTP endpoints.
type Handler struct {
	repo      *Repository
	accounts  *auth.Repository
	publisher *Publisher
	ledger    *credits.Ledger
	enricher  *enrichment.Service
	jobQueue  *queue.Queue
	store     AssetStore
	tempDir   string
	logger    *zap.Logger
}

// NewHandler creates a videos handler.
func NewHandler(repo *Repository, accounts *auth.Repository, publisher *Publisher, ledger *credits.Ledger, enricher *enrichment.Service, jobQueue *queue.Queue, store AssetStore, tempDir string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:      repo,
		accounts:  accounts,
		publisher: publisher,
		ledger:    ledger,
		enricher:  enricher,
		jobQueue:  jobQueue,
		store:     store,
		tempDir:   tempDir,
		logger:    logger,
	}
}

// Publish handles POST /videos (multipart: title, description, videoFile, thumbnail).
func (h *Handler) Publish(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	owner, err := h.accounts.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Unauthorized(c, "account not found")
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")

	videoFile, err := c.FormFile("videoFile")
	if err != nil {
		response.BadRequest(c, "videoFile is required")
		return
	}
	thumbFile, err := c.FormFile("thumbnail")
	if err != nil {
		response.BadRequest(c, "thumbnail is required")
		return
	}

	videoPath, err := h.saveUpload(c, videoFile)
	if err != nil {
		h.logger.Error("save uploaded video failed", zap.Error(err))
		response.Internal(c, "failed to store upload")
		return
	}
	thumbPath, err := h.saveUpload(c, thumbFile)
	if err != nil {
		h.logger.Error("save uploaded thumbnail failed", zap.Error(err))
		response.Internal(c, "failed to store upload")
		return
	}

	video, err := h.publisher.Publish(c.Request.Context(), owner, PublishInput{
		Title:         title,
		Description:   description,
		VideoPath:     videoPath,
		ThumbnailPath: thumbPath,
	})
	if err != nil {
		h.logger.Warn("publish rejected", zap.String("owner_id", userID.String()), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Created(c, video)
}

func (h *Handler) saveUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	dest := filepath.Join(h.tempDir, uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// List handles GET /videos.
func (h *Handler) List(c *gin.Context) {
	params := ListParams{
		Query:   c.Query("query"),
		SortBy:  c.Query("sortBy"),
		SortAsc: c.Query("sortType") == "asc",
	}
	if v := c.Query("ownerId"); v != "" {
		ownerID, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "invalid owner id filter")
			return
		}
		params.OwnerID = &ownerID
	}
	params.Page = intQuery(c, "page", 1)
	params.Limit = intQuery(c, "limit", 10)

	list, err := h.repo.List(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("list videos failed", zap.Error(err))
		response.Internal(c, "failed to list videos")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /videos/:id.
func (h *Handler) GetByID(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}
	video, err := h.repo.GetByID(c.Request.Context(), videoID)
	if err != nil {
		h.logger.Error("get video failed", zap.Error(err), zap.String("video_id", videoID.String()))
		response.Internal(c, "failed to load video")
		return
	}
	if video == nil {
		response.NotFound(c, "video not found")
		return
	}
	response.OK(c, video)
}

// UpdateRequest is the body for PATCH /videos/:id.
type UpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Update handles PATCH /videos/:id (owner only).
func (h *Handler) Update(c *gin.Context) {
	video, ok := h.ownedVideo(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	title := video.Title
	if req.Title != "" {
		title = req.Title
	}
	description := video.Description
	if req.Description != "" {
		description = req.Description
	}
	if err := h.repo.UpdateMeta(c.Request.Context(), video.ID, title, description); err != nil {
		h.logger.Error("update video failed", zap.Error(err), zap.String("video_id", video.ID.String()))
		response.Internal(c, "failed to update video")
		return
	}
	video.Title = title
	video.Description = description
	response.OK(c, video)
}

// TogglePublish handles PATCH /videos/:id/toggle-publish (owner only).
func (h *Handler) TogglePublish(c *gin.Context) {
	video, ok := h.ownedVideo(c)
	if !ok {
		return
	}
	published, err := h.repo.TogglePublish(c.Request.Context(), video.ID)
	if err != nil {
		h.logger.Error("toggle publish failed", zap.Error(err), zap.String("video_id", video.ID.String()))
		response.Internal(c, "failed to toggle publish status")
		return
	}
	response.OK(c, gin.H{"id": video.ID, "is_published": published})
}

// Delete handles DELETE /videos/:id (owner only). The database row goes
// first; asset removal is best-effort and a failure only orphans storage.
func (h *Handler) Delete(c *gin.Context) {
	video, ok := h.ownedVideo(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), video.ID); err != nil {
		h.logger.Error("delete video failed", zap.Error(err), zap.String("video_id", video.ID.String()))
		response.Internal(c, "failed to delete video")
		return
	}
	for _, key := range []string{video.VideoKey, video.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := h.store.Remove(c.Request.Context(), key); err != nil {
			h.logger.Warn("asset delete failed, asset orphaned", zap.String("key", key), zap.Error(err))
		}
	}
	response.OK(c, gin.H{"id": video.ID, "deleted": true})
}

// Watch handles POST /videos/:id/watch: the credit-gated access check.
func (h *Handler) Watch(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	grant, err := h.ledger.Authorize(c.Request.Context(), userID, videoID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grant)
}

// Enrich handles POST /videos/:id/enrich. With ?async=1 the run is enqueued
// for the background worker; otherwise it runs within this request.
func (h *Handler) Enrich(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}

	if c.Query("async") != "" {
		if h.jobQueue == nil {
			response.Internal(c, "job queue not configured")
			return
		}
		if err := h.jobQueue.EnqueueEnrichment(c.Request.Context(), queue.EnrichmentPayload{VideoID: videoID}); err != nil {
			h.logger.Error("enqueue enrichment failed", zap.Error(err), zap.String("video_id", videoID.String()))
			response.Internal(c, "failed to enqueue enrichment")
			return
		}
		response.Accepted(c, gin.H{"video_id": videoID, "status": "queued"})
		return
	}

	result, err := h.enricher.Enrich(c.Request.Context(), videoID)
	if err != nil {
		h.logger.Warn("enrichment failed", zap.String("video_id", videoID.String()), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// GetAI handles GET /videos/:id/ai: the stored enrichment artifacts.
func (h *Handler) GetAI(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}
	video, err := h.repo.GetByID(c.Request.Context(), videoID)
	if err != nil {
		h.logger.Error("get video failed", zap.Error(err), zap.String("video_id", videoID.String()))
		response.Internal(c, "failed to load video")
		return
	}
	if video == nil {
		response.NotFound(c, "video not found")
		return
	}
	response.OK(c, gin.H{
		"transcript":        video.Transcript,
		"summary":           video.Summary,
		"questions":         video.Questions,
		"enrichment_status": video.EnrichmentStatus,
	})
}

// ownedVideo loads the :id video and verifies the caller owns it.
func (h *Handler) ownedVideo(c *gin.Context) (*models.Video, bool) {
	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return nil, false
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	video, err := h.repo.GetByID(c.Request.Context(), videoID)
	if err != nil {
		h.logger.Error("get video failed", zap.Error(err), zap.String("video_id", videoID.String()))
		response.Internal(c, "failed to load video")
		return nil, false
	}
	if video == nil {
		response.NotFound(c, "video not found")
		return nil, false
	}
	if video.OwnerID != userID {
		response.Forbidden(c, "not allowed")
		return nil, false
	}
	return video, true
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}
