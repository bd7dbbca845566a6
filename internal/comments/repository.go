package comments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulso-social/backend/internal/models"
)

// Repository handles comment persistence. Comments are append-only.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a comments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create appends a comment to a post.
func (r *Repository) Create(ctx context.Context, postID int64, content string) (*models.Comment, error) {
	const query = `INSERT INTO comments (post_id, content) VALUES ($1, $2)
		RETURNING id, post_id, content, created_at`
	var cm models.Comment
	err := r.pool.QueryRow(ctx, query, postID, content).
		Scan(&cm.ID, &cm.PostID, &cm.Content, &cm.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

// ListByPost returns a post's comments, oldest first.
func (r *Repository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	const query = `SELECT id, post_id, content, created_at FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.Content, &cm.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &cm)
	}
	return comments, rows.Err()
}
