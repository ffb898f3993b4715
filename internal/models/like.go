package models

import "time"

// LikeTarget tags which kind of entity a like row points at. Post and
// comment votes share one table and one toggle state machine.
type LikeTarget string

const (
	// LikeTargetPost marks a vote on a post.
	LikeTargetPost LikeTarget = "post"
	// LikeTargetComment marks a vote on a comment.
	LikeTargetComment LikeTarget = "comment"
)

// Like represents a user's vote on a post or comment. IsLike true is a
// like, false a dislike. At most one row may exist per (user, kind,
// target); the unique index is the arbiter under concurrent toggles.
type Like struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_like_user_target" json:"user_id"`
	TargetKind LikeTarget `gorm:"type:varchar(10);not null;uniqueIndex:idx_like_user_target" json:"target_kind"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_like_user_target" json:"target_id"`
	IsLike     bool       `gorm:"not null" json:"like"`
	CreatedAt  time.Time  `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// LikeSummary is the aggregate returned after every toggle transition:
// fresh counts plus the caller's own vote state.
type LikeSummary struct {
	LikesCount    int  `json:"likes_count"`
	DislikesCount int  `json:"dislikes_count"`
	Liked         bool `json:"liked"`
	Disliked      bool `json:"disliked"`
}
