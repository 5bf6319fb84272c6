package models

import "time"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ArticleRating is a single user's score for an article.
type ArticleRating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_article_rating_pair" json:"article_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_article_rating_pair;index" json:"user_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Review    string    `gorm:"type:text" json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Article Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (ArticleRating) TableName() string {
	return "article_ratings"
}
