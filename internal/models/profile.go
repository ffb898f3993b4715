package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile carries per-user presentation and social state: avatar art,
// the symmetric friends set, favorited posts, and the default audience
// applied to new posts when none is chosen.
type Profile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Avatar          string `gorm:"size:255" json:"avatar"`
	AvatarThumbnail string `gorm:"size:255" json:"avatar_thumbnail"`
	Cover           string `gorm:"size:255" json:"cover"`

	Friends   []*Profile `gorm:"many2many:profile_friends" json:"friends,omitempty"`
	Favorites []Post     `gorm:"many2many:profile_favorites" json:"-"`

	// DefaultAudience of AudienceCustom requires a resolvable
	// DefaultCustomAudienceID; audience deletion repairs or resets it.
	DefaultAudience         int       `gorm:"not null;default:1" json:"default_audience"`
	DefaultCustomAudienceID *uint     `json:"default_custom_audience"`
	DefaultCustomAudience   *Audience `gorm:"foreignKey:DefaultCustomAudienceID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
