package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"speaksfer/internal/middleware"
	"speaksfer/internal/models"
	"speaksfer/internal/repository"
)

const maxCommentLength = 10000

// CommentService manages comments on articles.
type CommentService struct {
	comments  repository.CommentRepository
	articles  repository.ArticleRepository
	users     repository.UserRepository
	publisher Publisher
	now       func() time.Time
}

func NewCommentService(
	comments repository.CommentRepository,
	articles repository.ArticleRepository,
	users repository.UserRepository,
	publisher Publisher,
) *CommentService {
	return &CommentService{
		comments:  comments,
		articles:  articles,
		users:     users,
		publisher: publisher,
		now:       time.Now,
	}
}

// ParseCommentID parses the path form of a comment id.
func ParseCommentID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NewValidationError("Invalid comment ID")
	}
	return id, nil
}

// Create comments on the article with the given slug and notifies its author.
func (s *CommentService) Create(ctx context.Context, userID uint, slug, body string) (*models.ArticleComment, error) {
	body, err := normalizeCommentBody(body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(slug) == "" {
		return nil, models.NewFieldError("article", msgFieldRequired)
	}
	article, err := s.articles.GetBySlug(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.ArticleComment{ArticleID: article.ID, AuthorID: userID, Body: body}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if article.AuthorID != userID && s.publisher != nil {
		articleID := article.ID
		event := models.Notification{
			Type:      models.EventArticleComment,
			ActorID:   userID,
			ArticleID: &articleID,
			Slug:      article.Slug,
			CreatedAt: s.now().UTC(),
		}
		if actor, err := s.users.GetByID(ctx, userID); err == nil {
			event.Actor = actor.Username
		}
		if err := s.publisher.Notify(ctx, article.AuthorID, event); err != nil {
			middleware.Logger.WarnContext(ctx, "comment notification not published", "article_id", article.ID, "error", err)
		}
	}

	return s.comments.GetByID(ctx, comment.ID)
}

func (s *CommentService) Get(ctx context.Context, id uuid.UUID) (*models.ArticleComment, error) {
	return s.comments.GetByID(ctx, id)
}

// List returns comments newest first; an empty slug lists every article.
func (s *CommentService) List(ctx context.Context, slug string, limit, offset int) ([]models.ArticleComment, error) {
	var articleID uint
	if slug != "" {
		article, err := s.articles.GetBySlug(ctx, slug, 0)
		if err != nil {
			return nil, err
		}
		articleID = article.ID
	}
	return s.comments.List(ctx, articleID, limit, offset)
}

func (s *CommentService) Update(ctx context.Context, userID uint, id uuid.UUID, body string) (*models.ArticleComment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorOrReadOnly(comment, userID); err != nil {
		return nil, err
	}
	body, err = normalizeCommentBody(body)
	if err != nil {
		return nil, err
	}
	if err := s.comments.UpdateBody(ctx, id, body); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorOrReadOnly(comment, userID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, id)
}

func normalizeCommentBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", models.NewFieldError("body", msgFieldRequired)
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return "", models.NewFieldError("body", "Comment is too long")
	}
	return body, nil
}
