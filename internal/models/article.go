package models

import "time"

// Article is an authored post addressed by its unique slug.
type Article struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	ReadingTime int       `gorm:"not null;default:1" json:"reading_time"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// FavouritesCount is not persisted; computed at query time
	FavouritesCount int `gorm:"->;-:migration" json:"favourites_count"`
	// UnfavouritesCount is not persisted; computed at query time
	UnfavouritesCount int `gorm:"->;-:migration" json:"unfavourites_count"`
	// AverageRating is not persisted; computed at query time
	AverageRating float64 `gorm:"->;-:migration" json:"average_rating"`
	// Favourited indicates whether the requesting user favourited this article (computed)
	Favourited bool `gorm:"->;-:migration" json:"favourited"`
	// Unfavourited indicates whether the requesting user unfavourited this article (computed)
	Unfavourited bool `gorm:"->;-:migration" json:"unfavourited"`
}

// GetUserID returns the article author.
func (a *Article) GetUserID() uint { return a.AuthorID }

// Reaction is a user's membership in one of an article's two mutually
// exclusive sets.
type Reaction string

const (
	ReactionNone        Reaction = ""
	ReactionFavourite   Reaction = "favourite"
	ReactionUnfavourite Reaction = "unfavourite"
)

// ArticleFavourite records a user in an article's favourite set.
type ArticleFavourite struct {
	ArticleID uint      `gorm:"primaryKey" json:"article_id"`
	UserID    uint      `gorm:"primaryKey;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Article Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (ArticleFavourite) TableName() string {
	return "article_favourites"
}

// ArticleUnfavourite records a user in an article's unfavourite set.
type ArticleUnfavourite struct {
	ArticleID uint      `gorm:"primaryKey" json:"article_id"`
	UserID    uint      `gorm:"primaryKey;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	Article Article `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (ArticleUnfavourite) TableName() string {
	return "article_unfavourites"
}
