package repository

import (
	"context"
	"errors"

	"huddle/internal/models"

	"gorm.io/gorm"
)

// CommentSort selects the ordering of a post's top-level comments.
type CommentSort string

const (
	// CommentSortTop ranks pinned, then author-endorsed, then most-liked,
	// then newest.
	CommentSortTop CommentSort = "top_comments"
	// CommentSortNewest ranks pinned first, then newest. It is also the
	// fallback for unrecognized sort values.
	CommentSortNewest CommentSort = "newest"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, post *models.Post, viewerID uint, sort CommentSort) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uint, viewerID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	SetLikedByAuthor(ctx context.Context, id uint, liked bool) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListTopLevel returns a post's top-level comments ordered per sort. The
// pinned comment outranks everything under every sort mode.
func (r *commentRepository) ListTopLevel(ctx context.Context, post *models.Post, viewerID uint, sort CommentSort) ([]*models.Comment, error) {
	var pinnedID uint
	if post.PinnedCommentID != nil {
		pinnedID = *post.PinnedCommentID
	}

	base := r.applyCommentDetails(r.db.WithContext(ctx), viewerID, pinnedID).
		Preload("User").
		Preload("MentionedUser").
		Where("comments.post_id = ? AND comments.parent_id IS NULL", post.ID)

	switch sort {
	case CommentSortTop:
		base = base.
			Order(gorm.Expr("CASE WHEN comments.id = ? THEN 1 ELSE 0 END DESC", pinnedID)).
			Order("comments.is_liked_by_author DESC").
			Order("likes_count DESC").
			Order("comments.created_at DESC")
	default: // newest and anything unrecognized
		base = base.
			Order(gorm.Expr("CASE WHEN comments.id = ? THEN 1 ELSE 0 END DESC", pinnedID)).
			Order("comments.created_at DESC")
	}

	var comments []*models.Comment
	if err := base.Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListReplies returns the direct replies of a comment, oldest first.
func (r *commentRepository) ListReplies(ctx context.Context, parentID uint, viewerID uint) ([]*models.Comment, error) {
	var replies []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx), viewerID, 0).
		Preload("User").
		Preload("MentionedUser").
		Where("comments.parent_id = ?", parentID).
		Order("comments.created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

// applyCommentDetails adds the per-viewer annotation subqueries. pinnedID
// of zero matches no comment.
func (r *commentRepository) applyCommentDetails(db *gorm.DB, viewerID uint, pinnedID uint) *gorm.DB {
	selectQuery := "comments.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.target_kind = 'comment' AND likes.target_id = comments.id AND likes.is_like) AS likes_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.target_kind = 'comment' AND likes.target_id = comments.id AND NOT likes.is_like) AS dislikes_count, " +
		"(SELECT COUNT(*) FROM comments r WHERE r.parent_id = comments.id AND r.deleted_at IS NULL) AS replies_count, " +
		"EXISTS(SELECT 1 FROM comments r JOIN posts p ON p.id = comments.post_id WHERE r.parent_id = comments.id AND r.user_id = p.user_id AND r.deleted_at IS NULL) AS is_replied_by_author, " +
		"(comments.id = ?) AS is_pinned_by_author"

	if viewerID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.target_kind = 'comment' AND likes.target_id = comments.id AND likes.user_id = ? AND likes.is_like) AS liked"+
			", EXISTS(SELECT 1 FROM likes WHERE likes.target_kind = 'comment' AND likes.target_id = comments.id AND likes.user_id = ? AND NOT likes.is_like) AS disliked",
			pinnedID, viewerID, viewerID)
	}

	return db.Select(selectQuery+", FALSE AS liked, FALSE AS disliked", pinnedID)
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) SetLikedByAuthor(ctx context.Context, id uint, liked bool) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("is_liked_by_author", liked).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete soft-deletes a comment and its direct replies; their likes stay
// behind but are unreachable once the rows are gone from queries.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
