package reactions

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulso-social/backend/internal/models"
	"github.com/pulso-social/backend/pkg/response"
)

// Store is the persistence surface the handler depends on.
type Store interface {
	Increment(ctx context.Context, postID int64, emoji string) (*models.Reaction, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Reaction, error)
}

// IncrementRequest is the body for POST /reactions.
type IncrementRequest struct {
	PostID int64  `json:"post_id" binding:"required"`
	Emoji  string `json:"emoji" binding:"required"`
}

// Handler handles reaction HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a reactions handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Increment handles POST /reactions.
func (h *Handler) Increment(c *gin.Context) {
	var req IncrementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "post_id and emoji are required")
		return
	}

	reaction, err := h.store.Increment(c.Request.Context(), req.PostID, req.Emoji)
	if err != nil {
		h.logger.Error("increment reaction failed", zap.Error(err),
			zap.Int64("post_id", req.PostID), zap.String("emoji", req.Emoji))
		response.Internal(c, "failed to record reaction")
		return
	}
	response.OK(c, reaction)
}

// ListByPost handles GET /reactions/:postId.
func (h *Handler) ListByPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}

	reactions, err := h.store.ListByPost(c.Request.Context(), postID)
	if err != nil {
		h.logger.Error("list reactions failed", zap.Error(err), zap.Int64("post_id", postID))
		response.Internal(c, "failed to load reactions")
		return
	}
	response.OK(c, reactions)
}
