package reactions

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulso-social/backend/internal/models"
)

// Repository handles reaction persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reactions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Increment bumps the counter for (postID, emoji), creating the row at count 1
// when it does not exist, and returns the row's current state. The upsert is a
// single statement so racing increments serialize in the database instead of
// losing updates to a read-then-write.
func (r *Repository) Increment(ctx context.Context, postID int64, emoji string) (*models.Reaction, error) {
	const query = `INSERT INTO reactions (post_id, emoji) VALUES ($1, $2)
		ON CONFLICT (post_id, emoji) DO UPDATE SET count = reactions.count + 1
		RETURNING id, post_id, emoji, count`
	var reaction models.Reaction
	err := r.pool.QueryRow(ctx, query, postID, emoji).
		Scan(&reaction.ID, &reaction.PostID, &reaction.Emoji, &reaction.Count)
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// ListByPost returns all reaction rows for a post.
func (r *Repository) ListByPost(ctx context.Context, postID int64) ([]*models.Reaction, error) {
	const query = `SELECT id, post_id, emoji, count FROM reactions WHERE post_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reactions := make([]*models.Reaction, 0)
	for rows.Next() {
		var reaction models.Reaction
		if err := rows.Scan(&reaction.ID, &reaction.PostID, &reaction.Emoji, &reaction.Count); err != nil {
			return nil, err
		}
		reactions = append(reactions, &reaction)
	}
	return reactions, rows.Err()
}
