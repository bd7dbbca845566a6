package models

import "time"

// PostImage records an uploaded image's public URL; the binary lives in S3.
type PostImage struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	URL         string    `json:"url"`
	S3Key       string    `json:"s3_key"`
	ContentType string    `json:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
