package survey

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pulso-social/backend/internal/models"
	"github.com/pulso-social/backend/pkg/response"
)

// defaultUserAgent stands in when the client sends no User-Agent header.
const defaultUserAgent = "unknown"

// Store is the persistence surface the handler depends on.
type Store interface {
	NextForUser(ctx context.Context, userID string) (*models.Post, error)
	Record(ctx context.Context, resp *models.SurveyResponse) error
	ListResponses(ctx context.Context) ([]*models.AdminResponse, error)
}

// SubmitRequest is the body for POST /survey. PublishedByUser is a pointer so
// an omitted field is rejected instead of defaulting to false.
type SubmitRequest struct {
	PostID          int64  `json:"post_id" binding:"required"`
	UserID          string `json:"user_id" binding:"required"`
	PublishedByUser *bool  `json:"published_by_user" binding:"required"`
}

// Handler handles the survey assignment and recording endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a survey handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Next handles GET /posts/next/:userId. Responds with the oldest post the
// user has not answered, or {done:true} once the user has answered them all.
func (h *Handler) Next(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		response.BadRequest(c, "missing user id")
		return
	}

	post, err := h.store.NextForUser(c.Request.Context(), userID)
	if errors.Is(err, ErrExhausted) {
		response.OK(c, gin.H{"done": true})
		return
	}
	if err != nil {
		h.logger.Error("next post lookup failed", zap.Error(err), zap.String("user_id", userID))
		response.Internal(c, "failed to load next post")
		return
	}
	response.OK(c, gin.H{"id": post.ID, "content": post.Content})
}

// Submit handles POST /survey. Duplicate submissions for the same
// (post, user) pair still answer {ok:true}; only the first one writes a row.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "post_id, user_id and published_by_user are required")
		return
	}

	resp := &models.SurveyResponse{
		PostID:          req.PostID,
		UserID:          req.UserID,
		PublishedByUser: *req.PublishedByUser,
		IPAddress:       clientIP(c),
		UserAgent:       userAgent(c),
	}
	if err := h.store.Record(c.Request.Context(), resp); err != nil {
		h.logger.Error("record survey response failed", zap.Error(err),
			zap.Int64("post_id", req.PostID), zap.String("user_id", req.UserID))
		response.Internal(c, "failed to record response")
		return
	}
	response.OK(c, gin.H{"ok": true})
}

// AdminResponses handles GET /admin/responses.
func (h *Handler) AdminResponses(c *gin.Context) {
	responses, err := h.store.ListResponses(c.Request.Context())
	if err != nil {
		h.logger.Error("list survey responses failed", zap.Error(err))
		response.Internal(c, "failed to load responses")
		return
	}
	response.OK(c, responses)
}

// clientIP prefers the first X-Forwarded-For entry (the server runs behind a
// proxy) and falls back to the transport-level peer address.
func clientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}

func userAgent(c *gin.Context) string {
	if ua := c.Request.UserAgent(); ua != "" {
		return ua
	}
	return defaultUserAgent
}
