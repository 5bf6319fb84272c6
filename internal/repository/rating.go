package repository

import (
	"context"

	"gorm.io/gorm"

	"speaksfer/internal/models"
)

// RatingRepository defines persistence operations for article ratings.
type RatingRepository interface {
	// Create stores the rating. A second rating by the same user for the same
	// article is a conflict.
	Create(ctx context.Context, rating *models.ArticleRating) error
	List(ctx context.Context, articleID uint, limit, offset int) ([]models.ArticleRating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository returns a new RatingRepository implementation.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.ArticleRating) error {
	if err := r.db.WithContext(ctx).Omit("Article", "User").Create(rating).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You have already rated this article")
		}
		return insertError(err)
	}
	return nil
}

func (r *ratingRepository) List(ctx context.Context, articleID uint, limit, offset int) ([]models.ArticleRating, error) {
	limit, offset = clampPage(limit, offset)
	q := r.db.WithContext(ctx)
	if articleID != 0 {
		q = q.Where("article_id = ?", articleID)
	}
	var ratings []models.ArticleRating
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&ratings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ratings, nil
}
