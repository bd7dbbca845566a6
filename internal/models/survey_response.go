package models

import "time"

// SurveyResponse is one user's answer about one post. At most one row exists
// per (post_id, user_id); rows are never updated or deleted.
type SurveyResponse struct {
	PostID          int64     `json:"post_id"`
	UserID          string    `json:"user_id"`
	PublishedByUser bool      `json:"published_by_user"`
	IPAddress       string    `json:"ip_address"`
	UserAgent       string    `json:"user_agent"`
	CreatedAt       time.Time `json:"created_at"`
}

// AdminResponse is a survey response joined with the post it answers, for the
// admin report.
type AdminResponse struct {
	Post            *string   `json:"post"`
	PublishedByUser bool      `json:"published_by_user"`
	IPAddress       string    `json:"ip_address"`
	UserAgent       string    `json:"user_agent"`
	UserID          string    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
}
