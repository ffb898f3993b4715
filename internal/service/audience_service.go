package service

import (
	"context"
	"strings"

	"huddle/internal/models"
	"huddle/internal/repository"
)

type AudienceService struct {
	audienceRepo repository.AudienceRepository
	profileRepo  repository.ProfileRepository
	userRepo     repository.UserRepository
}

type CreateAudienceInput struct {
	UserID    uint
	Title     string
	MemberIDs []uint
}

type UpdateAudienceInput struct {
	UserID     uint
	AudienceID uint
	Title      *string
	// MemberIDs of nil leaves the member set untouched; non-nil replaces
	// it, including an empty slice clearing it.
	MemberIDs []uint
}

type SetDefaultAudienceInput struct {
	UserID           uint
	Audience         int
	CustomAudienceID *uint
}

func NewAudienceService(
	audienceRepo repository.AudienceRepository,
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
) *AudienceService {
	return &AudienceService{
		audienceRepo: audienceRepo,
		profileRepo:  profileRepo,
		userRepo:     userRepo,
	}
}

func (s *AudienceService) validateMembers(ctx context.Context, memberIDs []uint) error {
	if len(memberIDs) == 0 {
		return nil
	}
	missing, err := s.userRepo.MissingIDs(ctx, memberIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return models.NewValidationError("Audience members must be existing users")
	}
	return nil
}

func (s *AudienceService) getOwned(ctx context.Context, userID, audienceID uint) (*models.Audience, error) {
	audience, err := s.audienceRepo.GetByID(ctx, audienceID)
	if err != nil {
		return nil, err
	}
	if audience == nil || audience.UserID != userID {
		return nil, models.NewNotFoundError("Audience", audienceID)
	}
	return audience, nil
}

func (s *AudienceService) CreateAudience(ctx context.Context, in CreateAudienceInput) (*models.Audience, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if err := s.validateMembers(ctx, in.MemberIDs); err != nil {
		return nil, err
	}
	audience := &models.Audience{
		Title:  in.Title,
		UserID: in.UserID,
		Level:  models.AudienceCustom,
	}
	if err := s.audienceRepo.Create(ctx, audience, in.MemberIDs); err != nil {
		return nil, err
	}
	return s.audienceRepo.GetByID(ctx, audience.ID)
}

func (s *AudienceService) GetAudience(ctx context.Context, userID, audienceID uint) (*models.Audience, error) {
	return s.getOwned(ctx, userID, audienceID)
}

func (s *AudienceService) ListAudiences(ctx context.Context, userID uint) ([]*models.Audience, error) {
	return s.audienceRepo.ListByOwner(ctx, userID)
}

func (s *AudienceService) UpdateAudience(ctx context.Context, in UpdateAudienceInput) (*models.Audience, error) {
	audience, err := s.getOwned(ctx, in.UserID, in.AudienceID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, models.NewValidationError("Title is required")
		}
		audience.Title = *in.Title
	}
	if err := s.validateMembers(ctx, in.MemberIDs); err != nil {
		return nil, err
	}
	if err := s.audienceRepo.Update(ctx, audience, in.MemberIDs); err != nil {
		return nil, err
	}
	return s.audienceRepo.GetByID(ctx, in.AudienceID)
}

// DeleteAudience removes the list and repairs anything pointing at it:
// posts fall back to no custom audience, and the owner's profile default
// is repointed or reset inside the same transaction.
func (s *AudienceService) DeleteAudience(ctx context.Context, userID, audienceID uint) error {
	audience, err := s.getOwned(ctx, userID, audienceID)
	if err != nil {
		return err
	}
	return s.audienceRepo.DeleteWithRepair(ctx, audience)
}

func (s *AudienceService) GetDefaultAudience(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewNotFoundError("Profile", userID)
	}
	return profile, nil
}

// SetDefaultAudience updates the profile default applied to new posts.
// A custom level without an explicit list picks the owner's first list;
// owning none is an error the client can surface.
func (s *AudienceService) SetDefaultAudience(ctx context.Context, in SetDefaultAudienceInput) (*models.Profile, error) {
	if !models.ValidAudienceLevel(in.Audience) {
		return nil, models.NewValidationError("Invalid audience level")
	}

	var customID *uint
	if in.Audience == models.AudienceCustom {
		if in.CustomAudienceID != nil {
			audience, err := s.getOwned(ctx, in.UserID, *in.CustomAudienceID)
			if err != nil {
				return nil, err
			}
			customID = &audience.ID
		} else {
			first, err := s.audienceRepo.FirstByOwner(ctx, in.UserID)
			if err != nil {
				return nil, err
			}
			if first == nil {
				return nil, models.NewNoCustomAudienceError()
			}
			customID = &first.ID
		}
	}

	profile, err := s.GetDefaultAudience(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.UpdateFields(ctx, profile.ID, map[string]interface{}{
		"default_audience":           in.Audience,
		"default_custom_audience_id": customID,
	}); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByUserID(ctx, in.UserID)
}
