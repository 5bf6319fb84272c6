package service

import (
	"context"

	"speaksfer/internal/middleware"
	"speaksfer/internal/models"
	"speaksfer/internal/repository"
	"speaksfer/internal/validation"
)

// AvatarStore persists processed avatar images. *ImageService implements it.
type AvatarStore interface {
	StoreAvatar(in UploadImageInput) (string, error)
	RemoveAvatar(url string)
}

// ProfileService reads and edits user profiles.
type ProfileService struct {
	profiles repository.ProfileRepository
	images   AvatarStore
}

func NewProfileService(profiles repository.ProfileRepository, images AvatarStore) *ProfileService {
	return &ProfileService{profiles: profiles, images: images}
}

func (s *ProfileService) Get(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

func (s *ProfileService) List(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	return s.profiles.List(ctx, limit, offset)
}

// UpdateProfileInput is a partial profile edit; nil fields are left alone.
type UpdateProfileInput struct {
	Bio *string
}

// Update edits ownerID's profile. Only the owner may edit it.
func (s *ProfileService) Update(ctx context.Context, actorID, ownerID uint, in UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := authorOrReadOnly(profile, actorID); err != nil {
		return nil, err
	}
	if in.Bio == nil {
		return profile, nil
	}
	if err := validation.ValidateBio(*in.Bio); err != nil {
		return nil, models.NewFieldError("bio", err.Error())
	}
	profile.Bio = *in.Bio
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return s.profiles.GetByUserID(ctx, ownerID)
}

// SetImage stores a new avatar for ownerID and drops the previous file.
func (s *ProfileService) SetImage(ctx context.Context, actorID, ownerID uint, in UploadImageInput) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := authorOrReadOnly(profile, actorID); err != nil {
		return nil, err
	}

	in.UserID = ownerID
	url, err := s.images.StoreAvatar(in)
	if err != nil {
		return nil, err
	}
	previous := profile.Image
	profile.Image = url
	if err := s.profiles.Update(ctx, profile); err != nil {
		s.images.RemoveAvatar(url)
		return nil, err
	}
	if previous != "" && previous != url {
		s.images.RemoveAvatar(previous)
	}
	middleware.Logger.InfoContext(ctx, "avatar updated", "user_id", ownerID, "image", url)
	return s.profiles.GetByUserID(ctx, ownerID)
}
