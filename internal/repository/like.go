package repository

import (
	"context"
	"errors"

	"huddle/internal/cache"
	"huddle/internal/models"
	"huddle/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository runs the vote toggle state machine shared by posts and
// comments and recomputes aggregates.
type LikeRepository interface {
	// Toggle applies one transition for (userID, kind, targetID):
	// no row inserts the vote, the same vote deletes the row, the
	// opposite vote flips it. It returns the recomputed aggregate.
	Toggle(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint, isLike bool) (*models.LikeSummary, error)
	Summary(ctx context.Context, kind models.LikeTarget, targetID uint, viewerID uint) (*models.LikeSummary, error)
}

type likeRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, log: observability.NewRepoLogger("likes")}
}

func (r *likeRepository) Toggle(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint, isLike bool) (*models.LikeSummary, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.
			Where("user_id = ? AND target_kind = ? AND target_id = ?", userID, kind, targetID).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := models.Like{
				UserID:     userID,
				TargetKind: kind,
				TargetID:   targetID,
				IsLike:     isLike,
			}
			// The unique index arbitrates concurrent first votes; losing
			// the race is not an error, the winning row stands.
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
		}
		if err != nil {
			return err
		}

		if existing.IsLike == isLike {
			// Re-submitting the same vote clears it.
			return tx.Delete(&models.Like{}, existing.ID).Error
		}
		return tx.Model(&models.Like{}).
			Where("id = ?", existing.ID).
			Update("is_like", isLike).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "toggle")
		return nil, models.NewInternalError(err)
	}

	if kind == models.LikeTargetPost {
		cache.InvalidatePost(ctx, targetID)
	}
	return r.Summary(ctx, kind, targetID, userID)
}

func (r *likeRepository) Summary(ctx context.Context, kind models.LikeTarget, targetID uint, viewerID uint) (*models.LikeSummary, error) {
	var summary models.LikeSummary

	var likes, dislikes int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_kind = ? AND target_id = ? AND is_like = ?", kind, targetID, true).
		Count(&likes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_kind = ? AND target_id = ? AND is_like = ?", kind, targetID, false).
		Count(&dislikes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	summary.LikesCount = int(likes)
	summary.DislikesCount = int(dislikes)

	if viewerID != 0 {
		var own models.Like
		err := r.db.WithContext(ctx).
			Where("user_id = ? AND target_kind = ? AND target_id = ?", viewerID, kind, targetID).
			First(&own).Error
		switch {
		case err == nil:
			summary.Liked = own.IsLike
			summary.Disliked = !own.IsLike
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no vote
		default:
			return nil, models.NewInternalError(err)
		}
	}

	return &summary, nil
}
