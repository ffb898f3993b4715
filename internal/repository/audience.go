package repository

import (
	"context"
	"errors"

	"huddle/internal/cache"
	"huddle/internal/models"
	"huddle/internal/observability"

	"gorm.io/gorm"
)

// AudienceRepository defines the interface for audience list operations
type AudienceRepository interface {
	Create(ctx context.Context, audience *models.Audience, memberIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Audience, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*models.Audience, error)
	FirstByOwner(ctx context.Context, ownerID uint) (*models.Audience, error)
	// Update saves the audience row; memberIDs of nil leaves the member
	// set untouched, non-nil replaces it wholesale.
	Update(ctx context.Context, audience *models.Audience, memberIDs []uint) error
	// DeleteWithRepair removes the audience and, in the same transaction,
	// nulls referencing posts and repairs the owner's profile default.
	DeleteWithRepair(ctx context.Context, audience *models.Audience) error
}

type audienceRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewAudienceRepository creates a new audience repository
func NewAudienceRepository(db *gorm.DB) AudienceRepository {
	return &audienceRepository{db: db, log: observability.NewRepoLogger("audiences")}
}

func (r *audienceRepository) Create(ctx context.Context, audience *models.Audience, memberIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(audience).Error; err != nil {
			return err
		}
		return replaceMembers(tx, audience, memberIDs)
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	return nil
}

func (r *audienceRepository) GetByID(ctx context.Context, id uint) (*models.Audience, error) {
	var audience models.Audience
	if err := r.db.WithContext(ctx).Preload("Members").First(&audience, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Audience", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &audience, nil
}

func (r *audienceRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Audience, error) {
	var audiences []*models.Audience
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Find(&audiences).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return audiences, nil
}

func (r *audienceRepository) FirstByOwner(ctx context.Context, ownerID uint) (*models.Audience, error) {
	var audience models.Audience
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		First(&audience).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &audience, nil
}

func (r *audienceRepository) Update(ctx context.Context, audience *models.Audience, memberIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(audience).Error; err != nil {
			return err
		}
		if memberIDs == nil {
			return nil
		}
		return replaceMembers(tx, audience, memberIDs)
	})
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	return nil
}

func replaceMembers(tx *gorm.DB, audience *models.Audience, memberIDs []uint) error {
	var members []models.User
	if len(memberIDs) > 0 {
		if err := tx.Where("id IN ?", memberIDs).Find(&members).Error; err != nil {
			return err
		}
	}
	return tx.Model(audience).Association("Members").Replace(members)
}

func (r *audienceRepository) DeleteWithRepair(ctx context.Context, audience *models.Audience) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(audience).Association("Members").Clear(); err != nil {
			return err
		}

		// Posts that referenced this list keep their declared audience
		// level but lose the dangling reference.
		if err := tx.Model(&models.Post{}).
			Where("custom_audience_id = ?", audience.ID).
			Update("custom_audience_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Audience{}, audience.ID).Error; err != nil {
			return err
		}

		// Repair the owner's profile default inside the same transaction
		// so default_custom_audience never dangles.
		var profile models.Profile
		err := tx.Where("user_id = ?", audience.UserID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if profile.DefaultAudience != models.AudienceCustom ||
			profile.DefaultCustomAudienceID == nil ||
			*profile.DefaultCustomAudienceID != audience.ID {
			return nil
		}

		var replacement models.Audience
		err = tx.Where("user_id = ?", audience.UserID).Order("id ASC").First(&replacement).Error
		switch {
		case err == nil:
			return tx.Model(&models.Profile{}).
				Where("id = ?", profile.ID).
				Update("default_custom_audience_id", replacement.ID).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Model(&models.Profile{}).
				Where("id = ?", profile.ID).
				Updates(map[string]interface{}{
					"default_audience":           models.AudiencePublic,
					"default_custom_audience_id": nil,
				}).Error
		default:
			return err
		}
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	cache.InvalidateProfile(ctx, audience.UserID)
	return nil
}
