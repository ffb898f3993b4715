package models

import (
	"time"

	"gorm.io/gorm"
)

// Audience levels a post or profile default can carry.
const (
	AudiencePrivate = 0
	AudiencePublic  = 1
	AudienceFriends = 2
	AudienceFoF     = 3
	AudienceCustom  = 4
)

// Post represents a post in the Huddle application.
//
// Audience and CustomAudienceID describe the owner's visibility settings.
// They are private configuration: response builders null them out for any
// viewer other than the owner.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"size:100" json:"title"`
	Text    string `gorm:"type:text" json:"text"`
	Feeling string `gorm:"size:10" json:"feeling,omitempty"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`

	Audience         int       `gorm:"not null;default:1" json:"-"`
	CustomAudienceID *uint     `json:"-"`
	CustomAudience   *Audience `gorm:"foreignKey:CustomAudienceID" json:"-"`

	// PinnedCommentID is a plain column rather than a declared association:
	// posts and comments reference each other, and GORM cannot migrate the
	// resulting constraint cycle.
	PinnedCommentID *uint `json:"pinned_comment_id,omitempty"`

	TaggedFriends []User  `gorm:"many2many:post_tagged_friends" json:"tagged_friends,omitempty"`
	Images        []Image `gorm:"foreignKey:PostID" json:"images,omitempty"`

	// Computed at query time, relative to the requesting viewer.
	LikesCount    int  `gorm:"->" json:"likes_count"`
	DislikesCount int  `gorm:"->" json:"dislikes_count"`
	CommentsCount int  `gorm:"->" json:"comments_count"`
	Liked         bool `gorm:"->" json:"liked"`
	Disliked      bool `gorm:"->" json:"disliked"`
	Favorite      bool `gorm:"->" json:"favorite"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostView is the wire form of a post. The audience fields are pointers so
// they serialize as null for every viewer except the owner.
type PostView struct {
	Post
	AudienceLevel     *int  `json:"audience"`
	CustomAudienceRef *uint `json:"custom_audience"`
}

// ViewFor renders the post for the given viewer, withholding audience
// configuration unless the viewer owns the post.
func (p *Post) ViewFor(viewerID uint) *PostView {
	view := &PostView{Post: *p}
	if viewerID != 0 && viewerID == p.UserID {
		level := p.Audience
		view.AudienceLevel = &level
		if p.Audience == AudienceCustom {
			view.CustomAudienceRef = p.CustomAudienceID
		}
	}
	return view
}

// ValidAudienceLevel reports whether level is one of the defined audience
// levels.
func ValidAudienceLevel(level int) bool {
	return level >= AudiencePrivate && level <= AudienceCustom
}
