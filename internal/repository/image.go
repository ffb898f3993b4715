package repository

import (
	"context"
	"errors"

	"huddle/internal/models"

	"gorm.io/gorm"
)

// ImageRepository defines the interface for image data operations
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id uint) (*models.Image, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Image, error)
	Update(ctx context.Context, image *models.Image) error
	Delete(ctx context.Context, id uint) error
	AddTag(ctx context.Context, tag *models.ImageTag) error
	ListTags(ctx context.Context, imageID uint) ([]*models.ImageTag, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new image repository
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *imageRepository) GetByID(ctx context.Context, id uint) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).Preload("Tags").Preload("Tags.User").First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Image", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &image, nil
}

func (r *imageRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Image, error) {
	var images []*models.Image
	if err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("post_id = ?", postID).
		Order("order_id ASC").
		Find(&images).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}

func (r *imageRepository) Update(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Save(image).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *imageRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Image{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *imageRepository) AddTag(ctx context.Context, tag *models.ImageTag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *imageRepository) ListTags(ctx context.Context, imageID uint) ([]*models.ImageTag, error) {
	var tags []*models.ImageTag
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("image_id = ?", imageID).
		Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}
