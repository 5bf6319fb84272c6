package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"speaksfer/internal/models"
	"speaksfer/internal/repository"
)

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code, appErr.Message)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppCode(t, err, models.CodeValidation)
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getAccountFn     func(context.Context, uint) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	takenFn          func(context.Context, string, string) (bool, bool, error)
	registerFn       func(context.Context, *models.User, func(*models.User) error) error
	markVerifiedFn   func(context.Context, uint) error
	updatePasswordFn func(context.Context, uint, string) error
	touchFn          func(context.Context, uint, time.Time) error
	listFn           func(context.Context, int, int) ([]models.User, error)
	deleteFn         func(context.Context, uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetAccount(ctx context.Context, id uint) (*models.User, error) {
	return s.getAccountFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Taken(ctx context.Context, email, username string) (bool, bool, error) {
	return s.takenFn(ctx, email, username)
}
func (s *userRepoStub) Register(ctx context.Context, user *models.User, afterCreate func(*models.User) error) error {
	return s.registerFn(ctx, user, afterCreate)
}
func (s *userRepoStub) MarkVerified(ctx context.Context, id uint) error {
	return s.markVerifiedFn(ctx, id)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return s.touchFn(ctx, id, at)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	found := func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "user", IsActive: true}, nil
	}
	return &userRepoStub{
		getByIDFn:    found,
		getAccountFn: found,
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", email)
		},
		getByUsernameFn: func(_ context.Context, name string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", name)
		},
		takenFn: func(_ context.Context, _, _ string) (bool, bool, error) { return false, false, nil },
		registerFn: func(_ context.Context, u *models.User, after func(*models.User) error) error {
			u.ID = 1
			if after != nil {
				return after(u)
			}
			return nil
		},
		markVerifiedFn:   func(_ context.Context, _ uint) error { return nil },
		updatePasswordFn: func(_ context.Context, _ uint, _ string) error { return nil },
		touchFn:          func(_ context.Context, _ uint, _ time.Time) error { return nil },
		listFn:           func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn        func(context.Context, *models.UserFollowing) error
	existsFn        func(context.Context, uint, uint) (bool, error)
	deleteFn        func(context.Context, uint, uint) error
	listFollowersFn func(context.Context, uint, int, int) ([]models.User, error)
	listFollowingFn func(context.Context, uint, int, int) ([]models.User, error)
}

func (s *followRepoStub) Create(ctx context.Context, edge *models.UserFollowing) error {
	return s.createFn(ctx, edge)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID uint) error {
	return s.deleteFn(ctx, followerID, followingID)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowingFn(ctx, userID, limit, offset)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:        func(_ context.Context, _ *models.UserFollowing) error { return nil },
		existsFn:        func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		deleteFn:        func(_ context.Context, _, _ uint) error { return nil },
		listFollowersFn: func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		listFollowingFn: func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// articleRepoStub is a stub for repository.ArticleRepository.
type articleRepoStub struct {
	createFn     func(context.Context, *models.Article) error
	getBySlugFn  func(context.Context, string, uint) (*models.Article, error)
	listFn       func(context.Context, repository.ArticleFilter, uint) ([]models.Article, error)
	slugExistsFn func(context.Context, string) (bool, error)
	updateFn     func(context.Context, *models.Article) error
	deleteFn     func(context.Context, uint) error
	toggleFn     func(context.Context, uint, uint, models.Reaction) (models.Reaction, error)
}

func (s *articleRepoStub) Create(ctx context.Context, a *models.Article) error {
	return s.createFn(ctx, a)
}
func (s *articleRepoStub) GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Article, error) {
	return s.getBySlugFn(ctx, slug, viewerID)
}
func (s *articleRepoStub) List(ctx context.Context, f repository.ArticleFilter, viewerID uint) ([]models.Article, error) {
	return s.listFn(ctx, f, viewerID)
}
func (s *articleRepoStub) SlugExists(ctx context.Context, slug string) (bool, error) {
	return s.slugExistsFn(ctx, slug)
}
func (s *articleRepoStub) Update(ctx context.Context, a *models.Article) error {
	return s.updateFn(ctx, a)
}
func (s *articleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *articleRepoStub) ToggleReaction(ctx context.Context, articleID, userID uint, want models.Reaction) (models.Reaction, error) {
	return s.toggleFn(ctx, articleID, userID, want)
}

// noopArticleRepo serves a single article authored by user 10.
func noopArticleRepo() *articleRepoStub {
	return &articleRepoStub{
		createFn: func(_ context.Context, a *models.Article) error {
			a.ID = 1
			return nil
		},
		getBySlugFn: func(_ context.Context, slug string, _ uint) (*models.Article, error) {
			return &models.Article{ID: 1, Slug: slug, Title: "Title", Body: "hello wide world", AuthorID: 10}, nil
		},
		listFn:       func(_ context.Context, _ repository.ArticleFilter, _ uint) ([]models.Article, error) { return nil, nil },
		slugExistsFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		updateFn:     func(_ context.Context, _ *models.Article) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		toggleFn: func(_ context.Context, _, _ uint, want models.Reaction) (models.Reaction, error) {
			return want, nil
		},
	}
}

func missingArticleRepo() *articleRepoStub {
	repo := noopArticleRepo()
	repo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Article, error) {
		return nil, models.NewNotFoundError("Article", slug)
	}
	return repo
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.ArticleComment) error
	getByIDFn    func(context.Context, uuid.UUID) (*models.ArticleComment, error)
	listFn       func(context.Context, uint, int, int) ([]models.ArticleComment, error)
	updateBodyFn func(context.Context, uuid.UUID, string) error
	deleteFn     func(context.Context, uuid.UUID) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.ArticleComment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.ArticleComment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) List(ctx context.Context, articleID uint, limit, offset int) ([]models.ArticleComment, error) {
	return s.listFn(ctx, articleID, limit, offset)
}
func (s *commentRepoStub) UpdateBody(ctx context.Context, id uuid.UUID, body string) error {
	return s.updateBodyFn(ctx, id, body)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.ArticleComment) error {
			c.ID = uuid.New()
			return nil
		},
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.ArticleComment, error) {
			return &models.ArticleComment{ID: id, AuthorID: 1, Body: "stored"}, nil
		},
		listFn:       func(_ context.Context, _ uint, _, _ int) ([]models.ArticleComment, error) { return nil, nil },
		updateBodyFn: func(_ context.Context, _ uuid.UUID, _ string) error { return nil },
		deleteFn:     func(_ context.Context, _ uuid.UUID) error { return nil },
	}
}

// ratingRepoStub is a stub for repository.RatingRepository.
type ratingRepoStub struct {
	createFn func(context.Context, *models.ArticleRating) error
	listFn   func(context.Context, uint, int, int) ([]models.ArticleRating, error)
}

func (s *ratingRepoStub) Create(ctx context.Context, r *models.ArticleRating) error {
	return s.createFn(ctx, r)
}
func (s *ratingRepoStub) List(ctx context.Context, articleID uint, limit, offset int) ([]models.ArticleRating, error) {
	return s.listFn(ctx, articleID, limit, offset)
}

// bookmarkRepoStub is a stub for repository.BookmarkRepository.
type bookmarkRepoStub struct {
	createFn func(context.Context, *models.ArticleBookmark) error
	deleteFn func(context.Context, uint, uint) error
	listFn   func(context.Context, uint, int, int) ([]models.ArticleBookmark, error)
}

func (s *bookmarkRepoStub) Create(ctx context.Context, b *models.ArticleBookmark) error {
	return s.createFn(ctx, b)
}
func (s *bookmarkRepoStub) Delete(ctx context.Context, userID, articleID uint) error {
	return s.deleteFn(ctx, userID, articleID)
}
func (s *bookmarkRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.ArticleBookmark, error) {
	return s.listFn(ctx, userID, limit, offset)
}

// highlightRepoStub is a stub for repository.HighlightRepository.
type highlightRepoStub struct {
	createFn        func(context.Context, *models.ArticleHighlight) error
	getByIDFn       func(context.Context, uuid.UUID) (*models.ArticleHighlight, error)
	listFn          func(context.Context, uint, uint) ([]models.ArticleHighlight, error)
	updateCommentFn func(context.Context, uuid.UUID, string) error
	deleteFn        func(context.Context, uuid.UUID) error
}

func (s *highlightRepoStub) Create(ctx context.Context, h *models.ArticleHighlight) error {
	return s.createFn(ctx, h)
}
func (s *highlightRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.ArticleHighlight, error) {
	return s.getByIDFn(ctx, id)
}
func (s *highlightRepoStub) ListByArticle(ctx context.Context, articleID, highlighterID uint) ([]models.ArticleHighlight, error) {
	return s.listFn(ctx, articleID, highlighterID)
}
func (s *highlightRepoStub) UpdateComment(ctx context.Context, id uuid.UUID, comment string) error {
	return s.updateCommentFn(ctx, id, comment)
}
func (s *highlightRepoStub) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func noopHighlightRepo() *highlightRepoStub {
	return &highlightRepoStub{
		createFn: func(_ context.Context, _ *models.ArticleHighlight) error { return nil },
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.ArticleHighlight, error) {
			return &models.ArticleHighlight{ID: id, HighlighterID: 1}, nil
		},
		listFn:          func(_ context.Context, _, _ uint) ([]models.ArticleHighlight, error) { return nil, nil },
		updateCommentFn: func(_ context.Context, _ uuid.UUID, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _ uuid.UUID) error { return nil },
	}
}

// profileRepoStub is a stub for repository.ProfileRepository.
type profileRepoStub struct {
	getFn    func(context.Context, uint) (*models.Profile, error)
	listFn   func(context.Context, int, int) ([]models.Profile, error)
	updateFn func(context.Context, *models.Profile) error
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getFn(ctx, userID)
}
func (s *profileRepoStub) List(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *profileRepoStub) Update(ctx context.Context, p *models.Profile) error {
	return s.updateFn(ctx, p)
}

// recordingPublisher captures notifications in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	sent   map[uint][]models.Notification
	failed error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{sent: make(map[uint][]models.Notification)}
}

func (p *recordingPublisher) Notify(_ context.Context, recipientID uint, event models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failed != nil {
		return p.failed
	}
	p.sent[recipientID] = append(p.sent[recipientID], event)
	return nil
}

func (p *recordingPublisher) For(recipientID uint) []models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Notification(nil), p.sent[recipientID]...)
}
