package service

import (
	"context"
	"strings"

	"speaksfer/internal/models"
	"speaksfer/internal/repository"
	"speaksfer/internal/validation"
)

// RatingService records one score per user and article.
type RatingService struct {
	ratings  repository.RatingRepository
	articles repository.ArticleRepository
}

func NewRatingService(ratings repository.RatingRepository, articles repository.ArticleRepository) *RatingService {
	return &RatingService{ratings: ratings, articles: articles}
}

type RateInput struct {
	UserID uint
	Slug   string
	Rating int
	Review string
}

func (s *RatingService) Rate(ctx context.Context, in RateInput) (*models.ArticleRating, error) {
	if strings.TrimSpace(in.Slug) == "" {
		return nil, models.NewFieldError("article", msgFieldRequired)
	}
	if err := validation.ValidateRating(in.Rating, models.MinRating, models.MaxRating); err != nil {
		return nil, models.NewFieldError("rating", err.Error())
	}
	article, err := s.articles.GetBySlug(ctx, in.Slug, in.UserID)
	if err != nil {
		return nil, err
	}
	rating := &models.ArticleRating{
		ArticleID: article.ID,
		UserID:    in.UserID,
		Rating:    in.Rating,
		Review:    strings.TrimSpace(in.Review),
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// List returns ratings newest first; an empty slug lists every article.
func (s *RatingService) List(ctx context.Context, slug string, limit, offset int) ([]models.ArticleRating, error) {
	var articleID uint
	if slug != "" {
		article, err := s.articles.GetBySlug(ctx, slug, 0)
		if err != nil {
			return nil, err
		}
		articleID = article.ID
	}
	return s.ratings.List(ctx, articleID, limit, offset)
}

// BookmarkService maintains a user's reading list.
type BookmarkService struct {
	bookmarks repository.BookmarkRepository
	articles  repository.ArticleRepository
}

func NewBookmarkService(bookmarks repository.BookmarkRepository, articles repository.ArticleRepository) *BookmarkService {
	return &BookmarkService{bookmarks: bookmarks, articles: articles}
}

func (s *BookmarkService) Add(ctx context.Context, userID uint, slug string) (*models.ArticleBookmark, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, models.NewFieldError("article", msgFieldRequired)
	}
	article, err := s.articles.GetBySlug(ctx, slug, userID)
	if err != nil {
		return nil, err
	}
	bookmark := &models.ArticleBookmark{ArticleID: article.ID, UserID: userID}
	if err := s.bookmarks.Create(ctx, bookmark); err != nil {
		return nil, err
	}
	bookmark.Article = *article
	return bookmark, nil
}

func (s *BookmarkService) Remove(ctx context.Context, userID uint, slug string) error {
	article, err := s.articles.GetBySlug(ctx, slug, userID)
	if err != nil {
		return err
	}
	return s.bookmarks.Delete(ctx, userID, article.ID)
}

func (s *BookmarkService) List(ctx context.Context, userID uint, limit, offset int) ([]models.ArticleBookmark, error) {
	return s.bookmarks.ListByUser(ctx, userID, limit, offset)
}
