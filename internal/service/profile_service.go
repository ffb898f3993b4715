package service

import (
	"context"

	"huddle/internal/models"
	"huddle/internal/repository"
)

// AvatarStore persists an uploaded avatar and its thumbnail, returning
// the stored paths.
type AvatarStore interface {
	SaveAvatar(ctx context.Context, userID uint, filename string, content []byte) (avatar string, thumbnail string, err error)
}

type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	avatars     AvatarStore
}

type UpdateProfileInput struct {
	UserID         uint
	Cover          *string
	AvatarFilename string
	Avatar         []byte
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	avatars AvatarStore,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		avatars:     avatars,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewNotFoundError("Profile", userID)
	}
	return profile, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Cover != nil {
		fields["cover"] = *in.Cover
	}
	if len(in.Avatar) > 0 {
		avatarPath, thumbPath, saveErr := s.avatars.SaveAvatar(ctx, in.UserID, in.AvatarFilename, in.Avatar)
		if saveErr != nil {
			return nil, saveErr
		}
		fields["avatar"] = avatarPath
		fields["avatar_thumbnail"] = thumbPath
	}
	if len(fields) > 0 {
		if err := s.profileRepo.UpdateFields(ctx, profile.ID, fields); err != nil {
			return nil, err
		}
	}
	return s.GetProfile(ctx, in.UserID)
}

func (s *ProfileService) ListFriends(ctx context.Context, userID uint) ([]*models.Profile, error) {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	return s.profileRepo.ListFriends(ctx, userID)
}

// AddFriend links both profiles; friendship is symmetric.
func (s *ProfileService) AddFriend(ctx context.Context, userID, friendUserID uint) error {
	if userID == friendUserID {
		return models.NewValidationError("You cannot friend yourself")
	}
	if _, err := s.GetProfile(ctx, friendUserID); err != nil {
		return err
	}
	return s.profileRepo.AddFriend(ctx, userID, friendUserID)
}

func (s *ProfileService) RemoveFriend(ctx context.Context, userID, friendUserID uint) error {
	if userID == friendUserID {
		return models.NewValidationError("You cannot unfriend yourself")
	}
	if _, err := s.GetProfile(ctx, friendUserID); err != nil {
		return err
	}
	return s.profileRepo.RemoveFriend(ctx, userID, friendUserID)
}
