package database

import "speaksfer/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.UserFollowing{},
		&models.Article{},
		&models.ArticleFavourite{},
		&models.ArticleUnfavourite{},
		&models.ArticleComment{},
		&models.ArticleRating{},
		&models.ArticleBookmark{},
		&models.ArticleHighlight{},
	}
}
