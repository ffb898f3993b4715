package repository

import (
	"context"
	"testing"
	"time"

	"huddle/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func backdate(t *testing.T, db *gorm.DB, comment *models.Comment, age time.Duration) {
	t.Helper()
	ts := time.Now().Add(-age)
	if err := db.Model(&models.Comment{}).Where("id = ?", comment.ID).
		Update("created_at", ts).Error; err != nil {
		t.Fatalf("Failed to backdate comment: %v", err)
	}
}

func TestListTopLevelPinnedFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	users := seedUsers(t, db, 2)
	post := seedPost(t, db, users[0], "hello")

	first := seedComment(t, db, users[1], post, "first")
	second := seedComment(t, db, users[1], post, "second")
	pinned := seedComment(t, db, users[1], post, "pinned")
	backdate(t, db, first, 3*time.Hour)
	backdate(t, db, second, 2*time.Hour)
	backdate(t, db, pinned, 4*time.Hour)

	post.PinnedCommentID = &pinned.ID
	assert.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		Update("pinned_comment_id", pinned.ID).Error)

	// Default sort: pinned first, then newest.
	comments, err := repo.ListTopLevel(ctx, post, users[1].ID, CommentSortNewest)
	assert.NoError(t, err)
	if assert.Len(t, comments, 3) {
		assert.Equal(t, pinned.ID, comments[0].ID)
		assert.True(t, comments[0].IsPinnedByAuthor)
		assert.Equal(t, second.ID, comments[1].ID)
		assert.Equal(t, first.ID, comments[2].ID)
	}

	// The pinned comment also leads the top sort regardless of votes.
	likeRepo := NewLikeRepository(db)
	_, err = likeRepo.Toggle(ctx, users[0].ID, models.LikeTargetComment, first.ID, true)
	assert.NoError(t, err)

	comments, err = repo.ListTopLevel(ctx, post, users[1].ID, CommentSortTop)
	assert.NoError(t, err)
	if assert.Len(t, comments, 3) {
		assert.Equal(t, pinned.ID, comments[0].ID)
		assert.Equal(t, first.ID, comments[1].ID)
	}
}

func TestListTopLevelTopOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	likeRepo := NewLikeRepository(db)
	ctx := context.Background()

	users := seedUsers(t, db, 4)
	post := seedPost(t, db, users[0], "hello")

	popular := seedComment(t, db, users[1], post, "popular")
	endorsed := seedComment(t, db, users[1], post, "endorsed")
	newest := seedComment(t, db, users[1], post, "newest")
	backdate(t, db, popular, 3*time.Hour)
	backdate(t, db, endorsed, 2*time.Hour)

	for _, u := range users[2:] {
		_, err := likeRepo.Toggle(ctx, u.ID, models.LikeTargetComment, popular.ID, true)
		assert.NoError(t, err)
	}
	assert.NoError(t, repo.SetLikedByAuthor(ctx, endorsed.ID, true))

	// Author endorsement outranks like count, which outranks recency.
	comments, err := repo.ListTopLevel(ctx, post, 0, CommentSortTop)
	assert.NoError(t, err)
	if assert.Len(t, comments, 3) {
		assert.Equal(t, endorsed.ID, comments[0].ID)
		assert.True(t, comments[0].IsLikedByAuthor)
		assert.Equal(t, popular.ID, comments[1].ID)
		assert.Equal(t, 2, comments[1].LikesCount)
		assert.Equal(t, newest.ID, comments[2].ID)
	}
}

func TestListTopLevelExcludesReplies(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	users := seedUsers(t, db, 2)
	post := seedPost(t, db, users[0], "hello")
	parent := seedComment(t, db, users[1], post, "parent")

	reply := &models.Comment{Text: "reply", UserID: users[0].ID, PostID: post.ID, ParentID: &parent.ID}
	assert.NoError(t, db.Create(reply).Error)

	comments, err := repo.ListTopLevel(ctx, post, 0, CommentSortNewest)
	assert.NoError(t, err)
	if assert.Len(t, comments, 1) {
		assert.Equal(t, parent.ID, comments[0].ID)
		assert.Equal(t, 1, comments[0].RepliesCount)
		// the reply came from the post author
		assert.True(t, comments[0].IsRepliedByAuthor)
	}
}

func TestListRepliesOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	users := seedUsers(t, db, 2)
	post := seedPost(t, db, users[0], "hello")
	parent := seedComment(t, db, users[1], post, "parent")

	older := &models.Comment{Text: "older", UserID: users[0].ID, PostID: post.ID, ParentID: &parent.ID}
	newer := &models.Comment{Text: "newer", UserID: users[1].ID, PostID: post.ID, ParentID: &parent.ID}
	assert.NoError(t, db.Create(older).Error)
	assert.NoError(t, db.Create(newer).Error)
	backdate(t, db, older, time.Hour)

	replies, err := repo.ListReplies(ctx, parent.ID, 0)
	assert.NoError(t, err)
	if assert.Len(t, replies, 2) {
		assert.Equal(t, older.ID, replies[0].ID)
		assert.Equal(t, newer.ID, replies[1].ID)
	}
}

func TestDeleteCommentSoftDeletesReplies(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	users := seedUsers(t, db, 2)
	post := seedPost(t, db, users[0], "hello")
	parent := seedComment(t, db, users[1], post, "parent")
	reply := &models.Comment{Text: "reply", UserID: users[0].ID, PostID: post.ID, ParentID: &parent.ID}
	assert.NoError(t, db.Create(reply).Error)

	assert.NoError(t, repo.Delete(ctx, parent.ID))

	gone, err := repo.GetByID(ctx, parent.ID)
	assert.NoError(t, err)
	assert.Nil(t, gone)
	goneReply, err := repo.GetByID(ctx, reply.ID)
	assert.NoError(t, err)
	assert.Nil(t, goneReply)
}
