package images

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulso-social/backend/internal/models"
)

// Repository handles image record persistence. Only the S3 URL and key are
// stored; the binary lives in the bucket.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an images repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an image record for a post.
func (r *Repository) Create(ctx context.Context, img *models.PostImage) error {
	const query = `INSERT INTO post_images (post_id, url, s3_key, content_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, img.PostID, img.URL, img.S3Key, img.ContentType).
		Scan(&img.ID, &img.CreatedAt)
}

// ListByPost returns a post's image records, oldest first.
func (r *Repository) ListByPost(ctx context.Context, postID int64) ([]*models.PostImage, error) {
	const query = `SELECT id, post_id, url, s3_key, content_type, created_at
		FROM post_images
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	imgs := make([]*models.PostImage, 0)
	for rows.Next() {
		var img models.PostImage
		if err := rows.Scan(&img.ID, &img.PostID, &img.URL, &img.S3Key, &img.ContentType, &img.CreatedAt); err != nil {
			return nil, err
		}
		imgs = append(imgs, &img)
	}
	return imgs, rows.Err()
}
