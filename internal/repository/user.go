package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"speaksfer/internal/cache"
	"speaksfer/internal/models"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// GetByID returns a cached public view of the user. Password is not populated.
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// GetAccount loads the full row, bypassing the cache.
	GetAccount(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Taken(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error)
	// Register creates the user and its profile, then runs afterCreate in the
	// same transaction. Any error rolls the whole registration back.
	Register(ctx context.Context, user *models.User, afterCreate func(*models.User) error) error
	MarkVerified(ctx context.Context, id uint) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			return notFoundOr(err, "User", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

func (r *userRepository) GetAccount(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) Taken(ctx context.Context, email, username string) (bool, bool, error) {
	var emailCount, usernameCount int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&emailCount).Error; err != nil {
		return false, false, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&usernameCount).Error; err != nil {
		return false, false, models.NewInternalError(err)
	}
	return emailCount > 0, usernameCount > 0, nil
}

func (r *userRepository) Register(ctx context.Context, user *models.User, afterCreate func(*models.User) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := &models.Profile{UserID: user.ID}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		if afterCreate != nil {
			return afterCreate(user)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	user.ID = 0
	user.Profile = nil

	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case isUniqueConstraintError(err):
		return models.NewConflictError("A user with that email or username already exists")
	default:
		return models.NewInternalError(err)
	}
}

func (r *userRepository) MarkVerified(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_verified", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Delete removes the user and everything the user owns: profile, follow
// edges, authored articles with their children, and the user's own
// comments, ratings, bookmarks, highlights and reactions.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	var related []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(`SELECT CASE WHEN follower_id = ? THEN following_id ELSE follower_id END
			FROM user_followings WHERE follower_id = ? OR following_id = ?`, id, id, id).
			Scan(&related).Error; err != nil {
			return err
		}

		var articleIDs []uint
		if err := tx.Model(&models.Article{}).Where("author_id = ?", id).Pluck("id", &articleIDs).Error; err != nil {
			return err
		}
		if err := deleteArticleTree(tx, articleIDs); err != nil {
			return err
		}

		owned := []struct {
			model  interface{}
			column string
		}{
			{&models.ArticleComment{}, "author_id"},
			{&models.ArticleRating{}, "user_id"},
			{&models.ArticleBookmark{}, "user_id"},
			{&models.ArticleHighlight{}, "highlighter_id"},
			{&models.ArticleFavourite{}, "user_id"},
			{&models.ArticleUnfavourite{}, "user_id"},
			{&models.Profile{}, "user_id"},
		}
		for _, o := range owned {
			if err := tx.Where(o.column+" = ?", id).Delete(o.model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("follower_id = ? OR following_id = ?", id, id).Delete(&models.UserFollowing{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "User", id)
	}
	cache.InvalidateUser(ctx, id)
	for _, other := range related {
		cache.Invalidate(ctx, cache.ProfileKey(other))
	}
	return nil
}
