package images

import (
	"context"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulso-social/backend/internal/models"
	"github.com/pulso-social/backend/pkg/response"
	"github.com/pulso-social/backend/pkg/storage"
)

// Store is the persistence surface the handler depends on.
type Store interface {
	Create(ctx context.Context, img *models.PostImage) error
	ListByPost(ctx context.Context, postID int64) ([]*models.PostImage, error)
}

// Handler handles image upload and listing. Uploads stream to S3 server-side;
// the handler persists only the resulting public URL.
type Handler struct {
	store  Store
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an images handler. s3 may be nil when storage is not
// configured; uploads then fail with a 500 while listing keeps working.
func NewHandler(store Store, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{store: store, s3: s3, logger: logger}
}

// Upload handles POST /upload-image (multipart: file + post_id).
func (h *Handler) Upload(c *gin.Context) {
	postID, err := strconv.ParseInt(c.PostForm("post_id"), 10, 64)
	if err != nil || postID <= 0 {
		response.BadRequest(c, "missing or invalid post_id")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file (form field: file)")
		return
	}
	if file.Size > storage.MaxImageFileSize {
		response.BadRequest(c, "file size exceeds 10MB limit")
		return
	}
	if !storage.ValidateImageFileType(file.Header.Get("Content-Type"), file.Filename) {
		response.BadRequest(c, "invalid file type: only jpg, png, webp and gif allowed")
		return
	}

	if h.s3 == nil {
		response.Internal(c, "image storage not configured")
		return
	}

	contentType := storage.ContentTypeForFilename(file.Filename)
	if ct := file.Header.Get("Content-Type"); ct != "" {
		if _, ok := storage.AllowedImageTypes[ct]; ok {
			contentType = ct
		}
	}

	// Random object name so repeated uploads of the same filename never clobber each other.
	key := storage.ImageKey(strconv.FormatInt(postID, 10), uuid.NewString()+path.Ext(file.Filename))
	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	url, err := h.s3.Upload(c.Request.Context(), h.s3.ImagesBucket(), key, contentType, rc, file.Size)
	if err != nil {
		h.logger.Error("S3 upload failed", zap.Error(err),
			zap.Int64("post_id", postID), zap.String("key", key))
		response.Internal(c, "failed to upload file to storage")
		return
	}

	img := &models.PostImage{
		PostID:      postID,
		URL:         url,
		S3Key:       key,
		ContentType: contentType,
	}
	if err := h.store.Create(c.Request.Context(), img); err != nil {
		h.logger.Error("persist image record failed", zap.Error(err),
			zap.Int64("post_id", postID), zap.String("key", key))
		response.Internal(c, "failed to save image record")
		return
	}
	response.Created(c, img)
}

// ListByPost handles GET /images/:postId.
func (h *Handler) ListByPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return
	}

	imgs, err := h.store.ListByPost(c.Request.Context(), postID)
	if err != nil {
		h.logger.Error("list images failed", zap.Error(err), zap.Int64("post_id", postID))
		response.Internal(c, "failed to load images")
		return
	}
	response.OK(c, imgs)
}
