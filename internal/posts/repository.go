package posts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulso-social/backend/internal/models"
)

// ErrNoPosts signals an empty post store.
var ErrNoPosts = errors.New("no posts")

// Repository handles post persistence. Posts are immutable once created.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a posts repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new post. Content may be nil for image-only posts.
func (r *Repository) Create(ctx context.Context, content *string) (*models.Post, error) {
	const query = `INSERT INTO posts (content) VALUES ($1) RETURNING id, content, created_at`
	var p models.Post
	if err := r.pool.QueryRow(ctx, query, content).Scan(&p.ID, &p.Content, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all posts, newest first.
func (r *Repository) List(ctx context.Context) ([]*models.Post, error) {
	const query = `SELECT id, content, created_at FROM posts ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

// Latest returns the newest post with non-null content, or ErrNoPosts.
func (r *Repository) Latest(ctx context.Context) (*models.Post, error) {
	const query = `SELECT id, content, created_at FROM posts
		WHERE content IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	var p models.Post
	err := r.pool.QueryRow(ctx, query).Scan(&p.ID, &p.Content, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoPosts
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
