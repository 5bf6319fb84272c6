package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"speaksfer/internal/models"
)

// HighlightRepository defines persistence operations for highlights.
type HighlightRepository interface {
	Create(ctx context.Context, highlight *models.ArticleHighlight) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ArticleHighlight, error)
	// ListByArticle returns the highlighter's highlights on an article, newest first.
	ListByArticle(ctx context.Context, articleID, highlighterID uint) ([]models.ArticleHighlight, error)
	UpdateComment(ctx context.Context, id uuid.UUID, comment string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type highlightRepository struct {
	db *gorm.DB
}

// NewHighlightRepository returns a new HighlightRepository implementation.
func NewHighlightRepository(db *gorm.DB) HighlightRepository {
	return &highlightRepository{db: db}
}

func (r *highlightRepository) Create(ctx context.Context, highlight *models.ArticleHighlight) error {
	if err := r.db.WithContext(ctx).Omit("Article", "Highlighter").Create(highlight).Error; err != nil {
		return insertError(err)
	}
	return nil
}

func (r *highlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ArticleHighlight, error) {
	var highlight models.ArticleHighlight
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&highlight).Error; err != nil {
		return nil, notFoundOr(err, "Highlight", id)
	}
	return &highlight, nil
}

func (r *highlightRepository) ListByArticle(ctx context.Context, articleID, highlighterID uint) ([]models.ArticleHighlight, error) {
	var highlights []models.ArticleHighlight
	if err := r.db.WithContext(ctx).
		Where("article_id = ? AND highlighter_id = ?", articleID, highlighterID).
		Order("created_at DESC").
		Find(&highlights).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return highlights, nil
}

func (r *highlightRepository) UpdateComment(ctx context.Context, id uuid.UUID, comment string) error {
	res := r.db.WithContext(ctx).Model(&models.ArticleHighlight{}).Where("id = ?", id).Update("comment", comment)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Highlight", id)
	}
	return nil
}

func (r *highlightRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ArticleHighlight{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Highlight", id)
	}
	return nil
}
