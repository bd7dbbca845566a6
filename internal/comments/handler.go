package comments

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
	Create(ctx context.Context, postID int64, content string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
}

// CreateRequest is the body for POST /comments.
type CreateRequest struct {
	PostID  int64  `json:"post_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Handler handles comment HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a comments handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Create handles POST /comments.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "post_id and content are required")
		return
	}

	comment, err := h.store.Create(c.Request.Context(), req.PostID, req.Content)
	if err != nil {
		h.logger.Error("create comment failed", zap.Error(err), zap.Int64("post_id", req.PostID))
		response.Internal(c, "failed to create comment")
		return
	}
	response.Created(c, comment)
}

// ListByPost handles GET /comments/:postId.
func (h *Handler) ListByPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}

	comments, err := h.store.ListByPost(c.Request.Context(), postID)
	if err != nil {
		h.logger.Error("list comments failed", zap.Error(err), zap.Int64("post_id", postID))
		response.Internal(c, "failed to load comments")
		return
	}
	response.OK(c, comments)
}
