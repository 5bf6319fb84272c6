// Package seed creates demo data for development databases and tests.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"speaksfer/internal/models"
	"speaksfer/internal/service"
)

// DefaultPassword is the plaintext password every seeded account shares.
const DefaultPassword = "password123"

// Options tunes how factories build rows.
type Options struct {
	// SkipBcrypt stores a cheap hash so large seeds finish quickly.
	SkipBcrypt bool
	// DryRun builds rows and assigns synthetic ids without writing.
	DryRun bool
	// MaxDays spreads created_at over the last N days.
	MaxDays int
}

// Factory builds domain entities and persists them.
type Factory struct {
	db     *gorm.DB
	opts   Options
	hash   string
	nextID uint
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", err
	}
	f.hash = string(h)
	return f.hash, nil
}

func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(gofakeit.Number(0, maxDays*24*60)) * time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) syntheticID() uint {
	f.nextID++
	return f.nextID
}

// CreateUser persists a verified user and its profile.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:   fmt.Sprintf("%s%d", sanitizeUsername(gofakeit.Username()), gofakeit.Number(100, 999)),
		Email:      gofakeit.Email(),
		Password:   hash,
		IsVerified: true,
		IsActive:   true,
		Profile:    &models.Profile{Bio: gofakeit.Sentence(10)},
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		user.ID = f.syntheticID()
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateArticle persists an article by author with a unique slug.
func (f *Factory) CreateArticle(author *models.User, overrides ...func(*models.Article)) (*models.Article, error) {
	article := &models.Article{
		Title:       strings.TrimSuffix(gofakeit.Sentence(gofakeit.Number(3, 8)), "."),
		Description: gofakeit.Sentence(12),
		Body:        gofakeit.Paragraph(gofakeit.Number(2, 6), 5, 12, "\n\n"),
		AuthorID:    author.ID,
		CreatedAt:   f.createdAt(),
	}
	for _, override := range overrides {
		override(article)
	}
	article.Slug = service.Slugify(article.Title) + "-" + strings.ToLower(gofakeit.LetterN(6))
	article.ReadingTime = service.ReadingTime(article.Body)

	if f.opts.DryRun {
		article.ID = f.syntheticID()
		log.Printf("[dry-run] CreateArticle: author=%d slug=%s", article.AuthorID, article.Slug)
		return article, nil
	}
	if err := f.db.Omit(clause.Associations).Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

// CreateComment persists a comment by author on article.
func (f *Factory) CreateComment(author *models.User, article *models.Article) (*models.ArticleComment, error) {
	comment := &models.ArticleComment{
		ArticleID: article.ID,
		AuthorID:  author.ID,
		Body:      gofakeit.Sentence(gofakeit.Number(5, 25)),
		CreatedAt: f.createdAt(),
	}
	if f.opts.DryRun {
		return comment, nil
	}
	if err := f.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateRating persists a rating; an existing rating for the pair is kept.
func (f *Factory) CreateRating(user *models.User, article *models.Article) error {
	if f.opts.DryRun {
		return nil
	}
	rating := &models.ArticleRating{
		ArticleID: article.ID,
		UserID:    user.ID,
		Rating:    gofakeit.Number(models.MinRating, models.MaxRating),
		Review:    gofakeit.Sentence(8),
	}
	return f.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(rating).Error
}

// CreateFollow persists follower -> following. Self edges are skipped.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	if f.opts.DryRun || follower.ID == following.ID {
		return nil
	}
	edge := &models.UserFollowing{FollowerID: follower.ID, FollowingID: following.ID}
	return f.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
}

// CreateFavourite adds user to the article's favourite set.
func (f *Factory) CreateFavourite(user *models.User, article *models.Article) error {
	if f.opts.DryRun {
		return nil
	}
	fav := &models.ArticleFavourite{ArticleID: article.ID, UserID: user.ID}
	return f.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error
}

// CreateBookmark saves article to the user's reading list.
func (f *Factory) CreateBookmark(user *models.User, article *models.Article) error {
	if f.opts.DryRun {
		return nil
	}
	b := &models.ArticleBookmark{ArticleID: article.ID, UserID: user.ID}
	return f.db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
}

// sanitizeUsername keeps characters valid in a username and caps the length
// so the numeric suffix still fits.
func sanitizeUsername(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
		if b.Len() >= 24 {
			break
		}
	}
	if b.Len() < 3 {
		return "user"
	}
	return b.String()
}
