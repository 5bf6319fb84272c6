package models

import "time"

// ArticleBookmark saves an article to a user's reading list.
type ArticleBookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_article_bookmark_pair" json:"article_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_article_bookmark_pair;index" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Article Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"article"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (ArticleBookmark) TableName() string {
	return "article_bookmarks"
}
