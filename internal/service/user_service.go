package service

import (
	"context"

	"speaksfer/internal/middleware"
	"speaksfer/internal/models"
	"speaksfer/internal/repository"
)

// UserService exposes account listing and self-deletion.
type UserService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	images   AvatarStore
}

func NewUserService(users repository.UserRepository, profiles repository.ProfileRepository, images AvatarStore) *UserService {
	return &UserService{users: users, profiles: profiles, images: images}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// DeleteAccount removes the user and everything they own.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	var avatar string
	if s.profiles != nil {
		if profile, err := s.profiles.GetByUserID(ctx, userID); err == nil {
			avatar = profile.Image
		}
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	if avatar != "" && s.images != nil {
		s.images.RemoveAvatar(avatar)
	}
	middleware.Logger.InfoContext(ctx, "account deleted", "user_id", userID)
	return nil
}
