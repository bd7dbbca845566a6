package models

// Reaction is a per-post emoji counter. There is no decrement; the counter
// only grows, one atomic increment at a time.
type Reaction struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"post_id"`
	Emoji  string `json:"emoji"`
	Count  int    `json:"count"`
}
