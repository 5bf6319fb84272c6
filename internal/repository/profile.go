package repository

import (
	"context"

	"gorm.io/gorm"

	"speaksfer/internal/cache"
	"speaksfer/internal/models"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	List(ctx context.Context, limit, offset int) ([]models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// withFollowCounts selects follower and following counts alongside the row.
func withFollowCounts(db *gorm.DB) *gorm.DB {
	return db.Select("profiles.*, " +
		"(SELECT COUNT(*) FROM user_followings uf WHERE uf.following_id = profiles.user_id) AS followers_count, " +
		"(SELECT COUNT(*) FROM user_followings uf WHERE uf.follower_id = profiles.user_id) AS following_count").
		Preload("User")
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		if err := withFollowCounts(r.db.WithContext(ctx)).Where("profiles.user_id = ?", userID).First(&profile).Error; err != nil {
			return notFoundOr(err, "Profile", userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) List(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	limit, offset = clampPage(limit, offset)
	var profiles []models.Profile
	if err := withFollowCounts(r.db.WithContext(ctx)).
		Order("profiles.id ASC").Limit(limit).Offset(offset).
		Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]interface{}{"bio": profile.Bio, "image": profile.Image})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", profile.UserID)
	}
	cache.Invalidate(ctx, cache.ProfileKey(profile.UserID))
	return nil
}
