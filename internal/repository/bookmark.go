package repository

import (
	"context"

	"gorm.io/gorm"

	"speaksfer/internal/models"
)

// BookmarkRepository defines persistence operations for bookmarks.
type BookmarkRepository interface {
	Create(ctx context.Context, bookmark *models.ArticleBookmark) error
	Delete(ctx context.Context, userID, articleID uint) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.ArticleBookmark, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

// NewBookmarkRepository returns a new BookmarkRepository implementation.
func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Create(ctx context.Context, bookmark *models.ArticleBookmark) error {
	if err := r.db.WithContext(ctx).Omit("Article", "User").Create(bookmark).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Article already bookmarked")
		}
		return insertError(err)
	}
	return nil
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, articleID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Delete(&models.ArticleBookmark{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Bookmark", articleID)
	}
	return nil
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.ArticleBookmark, error) {
	limit, offset = clampPage(limit, offset)
	var bookmarks []models.ArticleBookmark
	if err := r.db.WithContext(ctx).
		Preload("Article").
		Preload("Article.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&bookmarks).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return bookmarks, nil
}
