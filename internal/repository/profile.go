package repository

import (
	"context"
	"errors"

	"huddle/internal/cache"
	"huddle/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateFields(ctx context.Context, profileID uint, fields map[string]interface{}) error
	ListFriends(ctx context.Context, userID uint) ([]*models.Profile, error)
	AddFriend(ctx context.Context, userID, friendUserID uint) error
	RemoveFriend(ctx context.Context, userID, friendUserID uint) error
	IsFavorite(ctx context.Context, userID, postID uint) (bool, error)
	// ToggleFavorite flips membership of the post in the user's
	// favorites set and returns the new state.
	ToggleFavorite(ctx context.Context, userID, postID uint) (bool, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID)
	return nil
}

func (r *profileRepository) UpdateFields(ctx context.Context, profileID uint, fields map[string]interface{}) error {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Profile", profileID)
		}
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profileID).
		Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, profile.UserID)
	return nil
}

func (r *profileRepository) ListFriends(ctx context.Context, userID uint) ([]*models.Profile, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var friends []*models.Profile
	if err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN profile_friends pf ON pf.friend_id = profiles.id").
		Where("pf.profile_id = ?", profile.ID).
		Find(&friends).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friends, nil
}

// AddFriend links two profiles symmetrically in one transaction.
func (r *profileRepository) AddFriend(ctx context.Context, userID, friendUserID uint) error {
	profile, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	friend, err := r.GetByUserID(ctx, friendUserID)
	if err != nil {
		return err
	}
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(profile).Association("Friends").Append(friend); err != nil {
			return err
		}
		return tx.Model(friend).Association("Friends").Append(profile)
	})
	if txErr != nil {
		return models.NewInternalError(txErr)
	}
	cache.InvalidateProfile(ctx, userID)
	cache.InvalidateProfile(ctx, friendUserID)
	return nil
}

func (r *profileRepository) RemoveFriend(ctx context.Context, userID, friendUserID uint) error {
	profile, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	friend, err := r.GetByUserID(ctx, friendUserID)
	if err != nil {
		return err
	}
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(profile).Association("Friends").Delete(friend); err != nil {
			return err
		}
		return tx.Model(friend).Association("Friends").Delete(profile)
	})
	if txErr != nil {
		return models.NewInternalError(txErr)
	}
	cache.InvalidateProfile(ctx, userID)
	cache.InvalidateProfile(ctx, friendUserID)
	return nil
}

func (r *profileRepository) IsFavorite(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("profile_favorites").
		Joins("JOIN profiles ON profiles.id = profile_favorites.profile_id").
		Where("profiles.user_id = ? AND profile_favorites.post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *profileRepository) ToggleFavorite(ctx context.Context, userID, postID uint) (bool, error) {
	profile, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return false, err
	}

	favorite, err := r.IsFavorite(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	post := models.Post{ID: postID}
	if favorite {
		if err := r.db.WithContext(ctx).Model(profile).Association("Favorites").Delete(&post); err != nil {
			return false, models.NewInternalError(err)
		}
	} else {
		if err := r.db.WithContext(ctx).Model(profile).Association("Favorites").Append(&post); err != nil {
			return false, models.NewInternalError(err)
		}
	}
	cache.InvalidatePost(ctx, postID)
	return !favorite, nil
}
