package repository

import (
	"context"
	"errors"

	"huddle/internal/cache"
	"huddle/internal/models"

	"gorm.io/gorm"
)

// PostFilter selects which slice of the feed a viewer sees.
type PostFilter string

const (
	// PostFilterAll is posts the viewer owns or is tagged in.
	PostFilterAll PostFilter = "all"
	// PostFilterMy is posts the viewer owns.
	PostFilterMy PostFilter = "my"
	// PostFilterFavorites is posts the viewer has favorited.
	PostFilterFavorites PostFilter = "favorites"
	// PostFilterLiked is posts the viewer has liked.
	PostFilterLiked PostFilter = "liked"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, viewerID uint, filter PostFilter, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateFields(ctx context.Context, postID uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	ReplaceTaggedFriends(ctx context.Context, post *models.Post, userIDs []uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	var err error
	if viewerID == 0 {
		// Anonymous reads share one cache entry; viewer-relative reads
		// always hit the database.
		err = cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
			return r.applyPostDetails(r.db.WithContext(ctx), 0).
				Preload("User").
				Preload("TaggedFriends").
				Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("images.order_id ASC") }).
				First(&post, id).Error
		})
	} else {
		err = r.applyPostDetails(r.db.WithContext(ctx), viewerID).
			Preload("User").
			Preload("TaggedFriends").
			Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("images.order_id ASC") }).
			First(&post, id).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, viewerID uint, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	// Every filter is viewer-relative; without a viewer the feed is empty.
	if viewerID == 0 {
		return []*models.Post{}, nil
	}

	base := r.applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Preload("TaggedFriends").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("images.order_id ASC") })

	switch filter {
	case PostFilterMy:
		base = base.Where("posts.user_id = ?", viewerID)
	case PostFilterFavorites:
		base = base.Where(
			"EXISTS(SELECT 1 FROM profile_favorites pf JOIN profiles pr ON pr.id = pf.profile_id WHERE pf.post_id = posts.id AND pr.user_id = ?)",
			viewerID)
	case PostFilterLiked:
		base = base.Where(
			"EXISTS(SELECT 1 FROM likes WHERE likes.target_kind = 'post' AND likes.target_id = posts.id AND likes.user_id = ? AND likes.is_like)",
			viewerID)
	default: // PostFilterAll and anything unrecognized
		base = base.Where(
			"posts.user_id = ? OR EXISTS(SELECT 1 FROM post_tagged_friends ptf WHERE ptf.post_id = posts.id AND ptf.user_id = ?)",
			viewerID, viewerID)
	}

	var posts []*models.Post
	err := base.
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyPostDetails adds subqueries to fetch counts and the viewer's own
// vote/favorite state in a single query. comments_count excludes replies.
func (r *postRepository) applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.parent_id IS NULL AND comments.deleted_at IS NULL) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.target_kind = 'post' AND likes.target_id = posts.id AND likes.is_like) AS likes_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.target_kind = 'post' AND likes.target_id = posts.id AND NOT likes.is_like) AS dislikes_count"

	if viewerID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.target_kind = 'post' AND likes.target_id = posts.id AND likes.user_id = ? AND likes.is_like) AS liked"+
			", EXISTS(SELECT 1 FROM likes WHERE likes.target_kind = 'post' AND likes.target_id = posts.id AND likes.user_id = ? AND NOT likes.is_like) AS disliked"+
			", EXISTS(SELECT 1 FROM profile_favorites pf JOIN profiles pr ON pr.id = pf.profile_id WHERE pf.post_id = posts.id AND pr.user_id = ?) AS favorite",
			viewerID, viewerID, viewerID)
	}

	return db.Select(selectQuery + ", FALSE AS liked, FALSE AS disliked, FALSE AS favorite")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// UpdateFields writes specific columns, including explicit NULLs that
// Save would skip (pinned_comment_id, custom_audience_id).
func (r *postRepository) UpdateFields(ctx context.Context, postID uint, fields map[string]interface{}) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) ReplaceTaggedFriends(ctx context.Context, post *models.Post, userIDs []uint) error {
	var users []models.User
	if len(userIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	if err := r.db.WithContext(ctx).Model(post).Association("TaggedFriends").Replace(users); err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}
