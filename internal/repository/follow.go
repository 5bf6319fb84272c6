package repository

import (
	"context"

	"gorm.io/gorm"

	"speaksfer/internal/cache"
	"speaksfer/internal/models"
)

// FollowRepository stores directed follower -> following edges.
type FollowRepository interface {
	// Create inserts the edge. A duplicate pair yields models.ErrAlreadyFollowing,
	// including when a concurrent insert wins the race.
	Create(ctx context.Context, edge *models.UserFollowing) error
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	// Delete removes the edge or yields models.ErrNotFollowing.
	Delete(ctx context.Context, followerID, followingID uint) error
	// ListFollowers returns users following userID, newest edge first.
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	// ListFollowing returns users userID follows, newest edge first.
	ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, edge *models.UserFollowing) error {
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.ErrAlreadyFollowing
		}
		return insertError(err)
	}
	invalidateEdge(ctx, edge.FollowerID, edge.FollowingID)
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserFollowing{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.UserFollowing{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFollowing
	}
	invalidateEdge(ctx, followerID, followingID)
	return nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return r.listUsers(ctx, "uf.follower_id", "uf.following_id", userID, limit, offset)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return r.listUsers(ctx, "uf.following_id", "uf.follower_id", userID, limit, offset)
}

// listUsers joins users on joinColumn and filters edges by filterColumn.
func (r *followRepository) listUsers(ctx context.Context, joinColumn, filterColumn string, userID uint, limit, offset int) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("users.*").
		Joins("JOIN user_followings uf ON users.id = "+joinColumn).
		Where(filterColumn+" = ?", userID).
		Order("uf.created_at DESC, uf.id DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func invalidateEdge(ctx context.Context, followerID, followingID uint) {
	cache.Invalidate(ctx, cache.ProfileKey(followerID), cache.ProfileKey(followingID))
}
