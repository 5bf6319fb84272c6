package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"speaksfer/internal/models"
)

// CommentRepository defines persistence operations for article comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.ArticleComment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ArticleComment, error)
	// List returns comments newest first, optionally limited to one article.
	List(ctx context.Context, articleID uint, limit, offset int) ([]models.ArticleComment, error)
	UpdateBody(ctx context.Context, id uuid.UUID, body string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.ArticleComment) error {
	if err := r.db.WithContext(ctx).Omit("Article", "Author").Create(comment).Error; err != nil {
		return insertError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ArticleComment, error) {
	var comment models.ArticleComment
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) List(ctx context.Context, articleID uint, limit, offset int) ([]models.ArticleComment, error) {
	limit, offset = clampPage(limit, offset)
	q := r.db.WithContext(ctx).Preload("Author")
	if articleID != 0 {
		q = q.Where("article_id = ?", articleID)
	}
	var comments []models.ArticleComment
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) UpdateBody(ctx context.Context, id uuid.UUID, body string) error {
	res := r.db.WithContext(ctx).Model(&models.ArticleComment{}).Where("id = ?", id).Update("body", body)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ArticleComment{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}
