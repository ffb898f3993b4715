package models

import "time"

// Audience is a named, owner-scoped visibility list of users. Posts and
// profile defaults with the custom audience level reference one.
//
// Audiences are hard-deleted: deletion nulls out referencing posts and
// repairs the owner's profile default in the same transaction, so no
// tombstone is needed.
type Audience struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"size:100;not null" json:"title"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Level  int    `gorm:"not null;default:1" json:"audience"`

	Members []User `gorm:"many2many:audience_members" json:"members,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
