package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speaksfer/internal/models"
)

func TestFollowService_Follow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing target", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), nil)
		_, err := svc.Follow(ctx, 1, 0)
		assertValidationError(t, err)
	})

	t.Run("self follow rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), nil)
		_, err := svc.Follow(ctx, 4, 4)
		assert.ErrorIs(t, err, models.ErrSelfFollow)
	})

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			if id == 2 {
				return nil, models.NewNotFoundError("User", id)
			}
			return &models.User{ID: id}, nil
		}
		svc := NewFollowService(noopFollowRepo(), users, nil)
		_, err := svc.Follow(ctx, 1, 2)
		assertAppCode(t, err, models.CodeNotFound)
	})

	t.Run("existing edge", func(t *testing.T) {
		t.Parallel()
		follows := noopFollowRepo()
		created := false
		follows.existsFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
		follows.createFn = func(_ context.Context, _ *models.UserFollowing) error {
			created = true
			return nil
		}
		svc := NewFollowService(follows, noopUserRepo(), nil)
		_, err := svc.Follow(ctx, 1, 2)
		assert.ErrorIs(t, err, models.ErrAlreadyFollowing)
		assert.False(t, created)
	})

	t.Run("race lost at insert", func(t *testing.T) {
		t.Parallel()
		follows := noopFollowRepo()
		follows.createFn = func(_ context.Context, _ *models.UserFollowing) error { return models.ErrAlreadyFollowing }
		pub := newRecordingPublisher()
		svc := NewFollowService(follows, noopUserRepo(), pub)
		_, err := svc.Follow(ctx, 1, 2)
		assert.ErrorIs(t, err, models.ErrAlreadyFollowing)
		assert.Empty(t, pub.For(2))
	})

	t.Run("success notifies target", func(t *testing.T) {
		t.Parallel()
		var stored *models.UserFollowing
		follows := noopFollowRepo()
		follows.createFn = func(_ context.Context, e *models.UserFollowing) error {
			stored = e
			return nil
		}
		pub := newRecordingPublisher()
		svc := NewFollowService(follows, noopUserRepo(), pub)

		edge, err := svc.Follow(ctx, 1, 2)
		require.NoError(t, err)
		assert.Same(t, stored, edge)
		assert.Equal(t, uint(1), edge.FollowerID)
		assert.Equal(t, uint(2), edge.FollowingID)

		events := pub.For(2)
		require.Len(t, events, 1)
		assert.Equal(t, models.EventNewFollower, events[0].Type)
		assert.Equal(t, uint(1), events[0].ActorID)
		assert.Equal(t, "user", events[0].Actor)
	})

	t.Run("publish failure does not fail follow", func(t *testing.T) {
		t.Parallel()
		pub := newRecordingPublisher()
		pub.failed = errors.New("redis down")
		svc := NewFollowService(noopFollowRepo(), noopUserRepo(), pub)
		_, err := svc.Follow(ctx, 1, 2)
		assert.NoError(t, err)
	})
}

func TestFollowService_Unfollow(t *testing.T) {
	t.Parallel()
	follows := noopFollowRepo()
	follows.deleteFn = func(_ context.Context, _, _ uint) error { return models.ErrNotFollowing }
	svc := NewFollowService(follows, noopUserRepo(), nil)
	assert.ErrorIs(t, svc.Unfollow(context.Background(), 1, 2), models.ErrNotFollowing)
}

func TestFollowService_Lists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	follows := noopFollowRepo()
	follows.listFollowersFn = func(_ context.Context, id uint, limit, offset int) ([]models.User, error) {
		assert.Equal(t, 10, limit)
		assert.Equal(t, 5, offset)
		return []models.User{{ID: id + 1}}, nil
	}
	follows.listFollowingFn = func(_ context.Context, id uint, _, _ int) ([]models.User, error) {
		return []models.User{{ID: id + 2}}, nil
	}
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		if id == 404 {
			return nil, models.NewNotFoundError("User", id)
		}
		return &models.User{ID: id}, nil
	}
	svc := NewFollowService(follows, users, nil)

	followers, err := svc.Followers(ctx, 1, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(2), followers[0].ID)

	following, err := svc.Following(ctx, 1, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, uint(3), following[0].ID)

	_, err = svc.Followers(ctx, 404, 10, 0)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestFollowResult(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ok", followResult(nil))
	assert.Equal(t, "self_follow", followResult(models.ErrSelfFollow))
	assert.Equal(t, "error", followResult(models.NewInternalError(errors.New("db"))))
	assert.Equal(t, "error", followResult(errors.New("plain")))
}
