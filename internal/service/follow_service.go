package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"speaksfer/internal/middleware"
	"speaksfer/internal/models"
	"speaksfer/internal/observability"
	"speaksfer/internal/repository"
)

// FollowService maintains the directed follow graph between users.
type FollowService struct {
	follows   repository.FollowRepository
	users     repository.UserRepository
	publisher Publisher
	now       func() time.Time
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository, publisher Publisher) *FollowService {
	return &FollowService{
		follows:   follows,
		users:     users,
		publisher: publisher,
		now:       time.Now,
	}
}

// Follow creates the actor -> target edge. Self-follows and duplicate edges
// are rejected rather than ignored.
func (s *FollowService) Follow(ctx context.Context, actorID, targetID uint) (*models.UserFollowing, error) {
	ctx, span := observability.StartSpan(ctx, "FollowService", "Follow", attribute.Int64("target_id", int64(targetID)))
	edge, err := s.follow(ctx, actorID, targetID)
	observability.EndSpan(span, err)
	observability.FollowEvents.WithLabelValues("follow", followResult(err)).Inc()
	return edge, err
}

func (s *FollowService) follow(ctx context.Context, actorID, targetID uint) (*models.UserFollowing, error) {
	if targetID == 0 {
		return nil, models.NewFieldError("follow", "This field is required.")
	}
	if actorID == targetID {
		return nil, models.ErrSelfFollow
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	exists, err := s.follows.Exists(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrAlreadyFollowing
	}

	edge := &models.UserFollowing{FollowerID: actorID, FollowingID: targetID}
	if err := s.follows.Create(ctx, edge); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := models.Notification{
			Type:      models.EventNewFollower,
			ActorID:   actorID,
			Actor:     actor.Username,
			CreatedAt: s.now().UTC(),
		}
		if err := s.publisher.Notify(ctx, targetID, event); err != nil {
			middleware.Logger.WarnContext(ctx, "follow notification not published", "target_id", targetID, "error", err)
		}
	}
	return edge, nil
}

// Unfollow deletes the actor -> target edge or fails with NotFollowing.
func (s *FollowService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	ctx, span := observability.StartSpan(ctx, "FollowService", "Unfollow", attribute.Int64("target_id", int64(targetID)))
	err := s.follows.Delete(ctx, actorID, targetID)
	observability.EndSpan(span, err)
	observability.FollowEvents.WithLabelValues("unfollow", followResult(err)).Inc()
	return err
}

// Followers lists the users following userID, newest edge first.
func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.ListFollowers(ctx, userID, limit, offset)
}

// Following lists the users userID follows, newest edge first.
func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.ListFollowing(ctx, userID, limit, offset)
}

// followResult labels an outcome by error code so rejected transitions are
// visible separately from failures.
func followResult(err error) string {
	var appErr *models.AppError
	switch {
	case err == nil:
		return observability.ResultOK
	case errors.As(err, &appErr) && models.StatusFor(err) < 500:
		return strings.ToLower(appErr.Code)
	default:
		return observability.ResultError
	}
}
