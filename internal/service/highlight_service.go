package service

import (
	"context"

	"github.com/google/uuid"

	"speaksfer/internal/models"
	"speaksfer/internal/repository"
	"speaksfer/internal/validation"
)

// HighlightService stores annotated spans of article bodies. Offsets count
// runes, not bytes.
type HighlightService struct {
	highlights repository.HighlightRepository
	articles   repository.ArticleRepository
}

func NewHighlightService(highlights repository.HighlightRepository, articles repository.ArticleRepository) *HighlightService {
	return &HighlightService{highlights: highlights, articles: articles}
}

type HighlightInput struct {
	UserID  uint
	Slug    string
	Start   int
	End     int
	Comment string
}

// ParseHighlightID parses the path form of a highlight id.
func ParseHighlightID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NewValidationError("Invalid highlight ID")
	}
	return id, nil
}

func (s *HighlightService) Create(ctx context.Context, in HighlightInput) (*models.ArticleHighlight, error) {
	article, err := s.articles.GetBySlug(ctx, in.Slug, in.UserID)
	if err != nil {
		return nil, err
	}
	body := []rune(article.Body)
	if err := validation.ValidateSpan(in.Start, in.End, len(body)); err != nil {
		return nil, models.NewFieldError("highlight", err.Error())
	}

	highlight := &models.ArticleHighlight{
		ArticleID:     article.ID,
		HighlighterID: in.UserID,
		Start:         in.Start,
		End:           in.End,
		Text:          string(body[in.Start:in.End]),
		Comment:       in.Comment,
	}
	if err := s.highlights.Create(ctx, highlight); err != nil {
		return nil, err
	}
	return highlight, nil
}

// List returns the caller's own highlights on the article.
func (s *HighlightService) List(ctx context.Context, userID uint, slug string) ([]models.ArticleHighlight, error) {
	article, err := s.articles.GetBySlug(ctx, slug, userID)
	if err != nil {
		return nil, err
	}
	return s.highlights.ListByArticle(ctx, article.ID, userID)
}

// UpdateComment edits the note attached to a highlight. The span is fixed.
func (s *HighlightService) UpdateComment(ctx context.Context, userID uint, id uuid.UUID, comment string) (*models.ArticleHighlight, error) {
	highlight, err := s.highlights.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorOrReadOnly(highlight, userID); err != nil {
		return nil, err
	}
	if err := s.highlights.UpdateComment(ctx, id, comment); err != nil {
		return nil, err
	}
	highlight.Comment = comment
	return highlight, nil
}

func (s *HighlightService) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	highlight, err := s.highlights.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorOrReadOnly(highlight, userID); err != nil {
		return err
	}
	return s.highlights.Delete(ctx, id)
}
