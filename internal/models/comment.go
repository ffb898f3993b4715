package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. A comment with ParentID set is a
// reply; only one level of nesting is ever queried.
type Comment struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Text   string `gorm:"type:text;not null" json:"text"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	PostID uint   `gorm:"not null;index" json:"post_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user"`

	ParentID        *uint `gorm:"index" json:"parent_id,omitempty"`
	MentionedUserID *uint `json:"mentioned_user_id,omitempty"`
	MentionedUser   *User `gorm:"foreignKey:MentionedUserID" json:"mentioned_user,omitempty"`

	// IsLikedByAuthor marks a comment the post owner has endorsed.
	IsLikedByAuthor bool `gorm:"not null;default:false" json:"is_liked_by_author"`

	// Computed at query time, relative to the requesting viewer.
	LikesCount        int  `gorm:"->" json:"likes_count"`
	DislikesCount     int  `gorm:"->" json:"dislikes_count"`
	Liked             bool `gorm:"->" json:"liked"`
	Disliked          bool `gorm:"->" json:"disliked"`
	RepliesCount      int  `gorm:"->" json:"replies_count"`
	IsRepliedByAuthor bool `gorm:"->" json:"is_replied_by_author"`
	IsPinnedByAuthor  bool `gorm:"->" json:"is_pinned_by_author"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
