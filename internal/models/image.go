package models

import (
	"time"

	"gorm.io/gorm"
)

// Image is a rendition attached to a post, ordered within the post by
// OrderID. The thumbnail dimensions come out of the aspect-ratio bucketed
// resize in the image service.
type Image struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Caption string `gorm:"size:500" json:"caption"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	PostID  *uint  `gorm:"index" json:"post_id,omitempty"`

	Path            string `gorm:"size:255" json:"image"`
	ThumbnailPath   string `gorm:"size:255" json:"image_thumbnail"`
	Width           int    `gorm:"not null;default:0" json:"image_width"`
	Height          int    `gorm:"not null;default:0" json:"image_height"`
	ThumbnailWidth  int    `gorm:"not null;default:0" json:"thumbnail_width"`
	ThumbnailHeight int    `gorm:"not null;default:0" json:"thumbnail_height"`

	OrderID int `gorm:"not null;default:-1" json:"order_id"`

	Tags []ImageTag `gorm:"foreignKey:ImageID" json:"tagged_friends,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ImageTag positions a tagged friend inside an image. One tag per
// (user, image).
type ImageTag struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_image_tag_user" json:"user_id"`
	ImageID uint `gorm:"not null;uniqueIndex:idx_image_tag_user" json:"image_id"`
	Top     int  `gorm:"not null;default:0" json:"top"`
	Left    int  `gorm:"not null;default:0" json:"left"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
