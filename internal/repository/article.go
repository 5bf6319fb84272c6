package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"speaksfer/internal/models"
)

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	AuthorID uint
	Limit    int
	Offset   int
}

// ArticleRepository defines persistence operations for articles and their
// favourite/unfavourite sets.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Article, error)
	List(ctx context.Context, filter ArticleFilter, viewerID uint) ([]models.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, article *models.Article) error
	// Delete removes the article with its comments, ratings, bookmarks,
	// highlights and reactions in one transaction.
	Delete(ctx context.Context, id uint) error
	// ToggleReaction flips userID's membership in the want set and clears the
	// opposite set. It returns the reaction held afterwards.
	ToggleReaction(ctx context.Context, articleID, userID uint, want models.Reaction) (models.Reaction, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository returns a new ArticleRepository implementation.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// applyArticleDetails adds subqueries to fetch counts, average rating and the
// viewer's reaction in a single query.
func applyArticleDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Select("articles.*, "+
		"(SELECT COUNT(*) FROM article_favourites af WHERE af.article_id = articles.id) AS favourites_count, "+
		"(SELECT COUNT(*) FROM article_unfavourites au WHERE au.article_id = articles.id) AS unfavourites_count, "+
		"COALESCE((SELECT AVG(ar.rating) FROM article_ratings ar WHERE ar.article_id = articles.id), 0) AS average_rating, "+
		"EXISTS(SELECT 1 FROM article_favourites af WHERE af.article_id = articles.id AND af.user_id = ?) AS favourited, "+
		"EXISTS(SELECT 1 FROM article_unfavourites au WHERE au.article_id = articles.id AND au.user_id = ?) AS unfavourited",
		viewerID, viewerID).
		Preload("Author")
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("An article with that slug already exists")
		}
		return insertError(err)
	}
	return nil
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Article, error) {
	var article models.Article
	if err := applyArticleDetails(r.db.WithContext(ctx), viewerID).
		Where("articles.slug = ?", slug).
		First(&article).Error; err != nil {
		return nil, notFoundOr(err, "Article", slug)
	}
	return &article, nil
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter, viewerID uint) ([]models.Article, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)
	q := applyArticleDetails(r.db.WithContext(ctx), viewerID)
	if filter.AuthorID != 0 {
		q = q.Where("articles.author_id = ?", filter.AuthorID)
	}

	var articles []models.Article
	if err := q.Order("articles.created_at DESC, articles.id DESC").
		Limit(limit).Offset(offset).
		Find(&articles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return articles, nil
}

func (r *articleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Article{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	res := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", article.ID).
		Updates(map[string]interface{}{
			"title":        article.Title,
			"description":  article.Description,
			"body":         article.Body,
			"reading_time": article.ReadingTime,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Article", article.ID)
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Article{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return deleteArticleTree(tx, []uint{id})
	})
	if err != nil {
		return notFoundOr(err, "Article", id)
	}
	return nil
}

// deleteArticleTree removes articles and every child row keyed to them.
func deleteArticleTree(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	children := []interface{}{
		&models.ArticleComment{},
		&models.ArticleRating{},
		&models.ArticleBookmark{},
		&models.ArticleHighlight{},
		&models.ArticleFavourite{},
		&models.ArticleUnfavourite{},
	}
	for _, child := range children {
		if err := tx.Where("article_id IN ?", ids).Delete(child).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", ids).Delete(&models.Article{}).Error
}

func (r *articleRepository) ToggleReaction(ctx context.Context, articleID, userID uint, want models.Reaction) (models.Reaction, error) {
	var target, opposite interface{}
	switch want {
	case models.ReactionFavourite:
		target, opposite = &models.ArticleFavourite{}, &models.ArticleUnfavourite{}
	case models.ReactionUnfavourite:
		target, opposite = &models.ArticleUnfavourite{}, &models.ArticleFavourite{}
	default:
		return models.ReactionNone, models.NewValidationError("unknown reaction")
	}

	result := models.ReactionNone
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed := tx.Where("article_id = ? AND user_id = ?", articleID, userID).Delete(target)
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected > 0 {
			return nil
		}

		if err := tx.Where("article_id = ? AND user_id = ?", articleID, userID).Delete(opposite).Error; err != nil {
			return err
		}

		var row interface{}
		if want == models.ReactionFavourite {
			row = &models.ArticleFavourite{ArticleID: articleID, UserID: userID}
		} else {
			row = &models.ArticleUnfavourite{ArticleID: articleID, UserID: userID}
		}
		if err := tx.Omit("Article", "User").Create(row).Error; err != nil {
			return err
		}
		result = want
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.ReactionNone, models.NewConflictError("Reaction changed concurrently, try again")
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return models.ReactionNone, err
		}
		return models.ReactionNone, insertError(err)
	}
	return result, nil
}
