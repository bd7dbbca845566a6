package survey

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulso-social/backend/internal/models"
)

// ErrExhausted signals that a user has answered every eligible post. It is a
// terminal state of the survey walk, not a failure.
var ErrExhausted = errors.New("survey exhausted: no unanswered posts remain")

// Repository handles survey persistence. The (post_id, user_id) primary key
// on post_publication_survey is the only concurrency control: concurrent
// duplicate submissions collapse to a single stored row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a survey repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextForUser returns the oldest post with non-null content that has no
// survey response from userID, or ErrExhausted when none remains.
//
// Posts sharing a created_at timestamp are ordered by id ascending, so every
// user walks the post set in the same stable sequence with no skips and no
// repeats. This is a pure read; nothing is reserved for the user.
func (r *Repository) NextForUser(ctx context.Context, userID string) (*models.Post, error) {
	const query = `SELECT p.id, p.content, p.created_at
		FROM posts p
		WHERE p.content IS NOT NULL
		AND NOT EXISTS (
			SELECT 1 FROM post_publication_survey s
			WHERE s.post_id = p.id AND s.user_id = $1
		)
		ORDER BY p.created_at ASC, p.id ASC
		LIMIT 1`
	var p models.Post
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.ID, &p.Content, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExhausted
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Record inserts a survey response. A duplicate (post_id, user_id) pair is a
// silent no-op so client retries after a timeout stay safe.
func (r *Repository) Record(ctx context.Context, resp *models.SurveyResponse) error {
	const query = `INSERT INTO post_publication_survey
		(post_id, user_id, published_by_user, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id, user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query,
		resp.PostID, resp.UserID, resp.PublishedByUser, resp.IPAddress, resp.UserAgent)
	return err
}

// ListResponses returns every survey response joined with its post, newest first.
func (r *Repository) ListResponses(ctx context.Context) ([]*models.AdminResponse, error) {
	const query = `SELECT p.content, s.published_by_user, s.ip_address, s.user_agent, s.user_id, s.created_at
		FROM post_publication_survey s
		JOIN posts p ON p.id = s.post_id
		ORDER BY s.created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make([]*models.AdminResponse, 0)
	for rows.Next() {
		var resp models.AdminResponse
		if err := rows.Scan(&resp.Post, &resp.PublishedByUser, &resp.IPAddress, &resp.UserAgent, &resp.UserID, &resp.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, &resp)
	}
	return responses, rows.Err()
}
