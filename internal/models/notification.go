package models

import "time"

// Notification event types.
const (
	EventNewFollower     = "new_follower"
	EventArticleComment  = "article_comment"
	EventArticleFavoured = "article_favourited"
)

// Notification is the payload pushed to a user's realtime channel.
type Notification struct {
	Type      string    `json:"type"`
	ActorID   uint      `json:"actor_id"`
	Actor     string    `json:"actor,omitempty"`
	ArticleID *uint     `json:"article_id,omitempty"`
	Slug      string    `json:"slug,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
