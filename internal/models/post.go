package models

import "time"

// Post is a user-submitted unit of content. Content is nullable: image-only
// posts carry no text and are excluded from the publication survey.
type Post struct {
	ID        int64     `json:"id"`
	Content   *string   `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
