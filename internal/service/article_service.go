package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"speaksfer/internal/middleware"
	"speaksfer/internal/models"
	"speaksfer/internal/observability"
	"speaksfer/internal/repository"
	"speaksfer/internal/validation"
)

const (
	wordsPerMinute = 200
	maxBodyLength  = 100000
	slugSuffixLen  = 8
	maxSlugLen     = 255
	// maxSlugBase leaves room for "-" plus a suffix inside the slug column.
	maxSlugBase = maxSlugLen - 1 - slugSuffixLen
)

// ArticleService owns article authoring and the favourite/unfavourite sets.
type ArticleService struct {
	articles  repository.ArticleRepository
	publisher Publisher
	now       func() time.Time
}

func NewArticleService(articles repository.ArticleRepository, publisher Publisher) *ArticleService {
	return &ArticleService{articles: articles, publisher: publisher, now: time.Now}
}

type CreateArticleInput struct {
	AuthorID    uint
	Title       string
	Description string
	Body        string
}

// UpdateArticleInput carries a partial update; nil fields are left alone.
type UpdateArticleInput struct {
	UserID      uint
	Slug        string
	Title       *string
	Description *string
	Body        *string
}

func (s *ArticleService) Create(ctx context.Context, in CreateArticleInput) (*models.Article, error) {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewFieldError("title", err.Error())
	}
	if err := validateBody(in.Body); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, in.Title)
	if err != nil {
		return nil, err
	}
	article := &models.Article{
		Slug:        slug,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Body:        in.Body,
		ReadingTime: ReadingTime(in.Body),
		AuthorID:    in.AuthorID,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != models.CodeConflict {
			return nil, err
		}
		// Lost a race for the slug; the suffixed form is effectively unique.
		article.Slug = withSuffix(Slugify(article.Title))
		if err := s.articles.Create(ctx, article); err != nil {
			return nil, err
		}
	}
	return s.articles.GetBySlug(ctx, article.Slug, in.AuthorID)
}

func (s *ArticleService) Get(ctx context.Context, slug string, viewerID uint) (*models.Article, error) {
	return s.articles.GetBySlug(ctx, slug, viewerID)
}

func (s *ArticleService) List(ctx context.Context, filter repository.ArticleFilter, viewerID uint) ([]models.Article, error) {
	return s.articles.List(ctx, filter, viewerID)
}

// Update edits an article. Only its author may do so; the slug is stable.
func (s *ArticleService) Update(ctx context.Context, in UpdateArticleInput) (*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, in.Slug, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := authorOrReadOnly(article, in.UserID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, models.NewFieldError("title", err.Error())
		}
		article.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		article.Description = *in.Description
	}
	if in.Body != nil {
		if err := validateBody(*in.Body); err != nil {
			return nil, err
		}
		article.Body = *in.Body
		article.ReadingTime = ReadingTime(article.Body)
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	return s.articles.GetBySlug(ctx, article.Slug, in.UserID)
}

// Delete removes an article and all of its dependent rows. Author only.
func (s *ArticleService) Delete(ctx context.Context, userID uint, slug string) error {
	article, err := s.articles.GetBySlug(ctx, slug, userID)
	if err != nil {
		return err
	}
	if err := authorOrReadOnly(article, userID); err != nil {
		return err
	}
	return s.articles.Delete(ctx, article.ID)
}

// React toggles the caller into (or out of) the want set. Joining one set
// always leaves the other.
func (s *ArticleService) React(ctx context.Context, userID uint, slug string, want models.Reaction) (*models.Article, models.Reaction, error) {
	ctx, span := observability.StartSpan(ctx, "ArticleService", "React",
		attribute.String("slug", slug), attribute.String("reaction", string(want)))
	article, got, err := s.react(ctx, userID, slug, want)
	observability.EndSpan(span, err)
	return article, got, err
}

func (s *ArticleService) react(ctx context.Context, userID uint, slug string, want models.Reaction) (*models.Article, models.Reaction, error) {
	article, err := s.articles.GetBySlug(ctx, slug, userID)
	if err != nil {
		return nil, models.ReactionNone, err
	}

	got, err := s.articles.ToggleReaction(ctx, article.ID, userID, want)
	if err != nil {
		return nil, models.ReactionNone, err
	}
	label := string(got)
	if got == models.ReactionNone {
		label = "none"
	}
	observability.ArticleReactions.WithLabelValues(label).Inc()

	if got == models.ReactionFavourite && article.AuthorID != userID && s.publisher != nil {
		articleID := article.ID
		event := models.Notification{
			Type:      models.EventArticleFavoured,
			ActorID:   userID,
			ArticleID: &articleID,
			Slug:      article.Slug,
			CreatedAt: s.now().UTC(),
		}
		if err := s.publisher.Notify(ctx, article.AuthorID, event); err != nil {
			middleware.Logger.WarnContext(ctx, "favourite notification not published", "article_id", article.ID, "error", err)
		}
	}

	fresh, err := s.articles.GetBySlug(ctx, slug, userID)
	if err != nil {
		return nil, models.ReactionNone, err
	}
	return fresh, got, nil
}

func (s *ArticleService) uniqueSlug(ctx context.Context, title string) (string, error) {
	slug := Slugify(title)
	taken, err := s.articles.SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if taken {
		slug = withSuffix(slug)
	}
	return slug, nil
}

func withSuffix(slug string) string {
	return slug + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLen]
}

// Slugify folds title to lowercase ASCII words joined by hyphens, short enough
// to take a uniqueness suffix.
func Slugify(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	slug := b.String()
	if len(slug) > maxSlugBase {
		slug = strings.TrimRight(slug[:maxSlugBase], "-")
	}
	if slug == "" {
		return "article"
	}
	return slug
}

// ReadingTime estimates minutes at 200 words per minute, at least one.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return models.NewFieldError("body", msgFieldRequired)
	}
	if len(body) > maxBodyLength {
		return models.NewFieldError("body", "body is too long")
	}
	return nil
}
