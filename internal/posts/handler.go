package posts

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulso-social/backend/internal/models"
	"github.com/pulso-social/backend/pkg/response"
)

// Store is the persistence surface the handler depends on.
type Store interface {
	Create(ctx context.Context, content *string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Latest(ctx context.Context) (*models.Post, error)
}

// CreateRequest is the body for POST /posts. Content may be null; image-only
// posts get their content attached via /upload-image afterwards.
type CreateRequest struct {
	Content *string `json:"content"`
}

// Handler handles post HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a posts handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Create handles POST /posts.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	post, err := h.store.Create(c.Request.Context(), req.Content)
	if err != nil {
		h.logger.Error("create post failed", zap.Error(err))
		response.Internal(c, "failed to create post")
		return
	}
	response.Created(c, post)
}

// List handles GET /posts.
func (h *Handler) List(c *gin.Context) {
	posts, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list posts failed", zap.Error(err))
		response.Internal(c, "failed to load posts")
		return
	}
	response.OK(c, posts)
}

// Latest handles GET /posts/latest.
func (h *Handler) Latest(c *gin.Context) {
	post, err := h.store.Latest(c.Request.Context())
	if errors.Is(err, ErrNoPosts) {
		response.NotFound(c, "no posts")
		return
	}
	if err != nil {
		h.logger.Error("latest post lookup failed", zap.Error(err))
		response.Internal(c, "failed to load post")
		return
	}
	response.OK(c, gin.H{"id": post.ID, "content": post.Content})
}
