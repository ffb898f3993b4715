package service

import (
	"context"
	"strings"
	"testing"

	"huddle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(
	postRepo *postRepoStub,
	commentRepo *commentRepoStub,
	likeRepo *likeRepoStub,
	profileRepo *profileRepoStub,
	audienceRepo *audienceRepoStub,
	userRepo *userRepoStub,
) *PostService {
	return NewPostService(postRepo, commentRepo, likeRepo, profileRepo, audienceRepo, userRepo)
}

func defaultPostService() *PostService {
	return newPostService(noopPostRepo(), noopCommentRepo(), noopLikeRepo(),
		noopProfileRepo(), noopAudienceRepo(), noopUserRepo())
}

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }

func TestCreatePostValidation(t *testing.T) {
	t.Parallel()
	svc := defaultPostService()
	ctx := context.Background()

	t.Run("empty text", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1})
		assertValidationError(t, err)
	})

	t.Run("title too long", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID: 1, Text: "hi", Title: strings.Repeat("x", 101),
		})
		assertValidationError(t, err)
	})

	t.Run("invalid audience level", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID: 1, Text: "hi", Audience: intPtr(9),
		})
		assertValidationError(t, err)
	})
}

func TestCreatePostAudienceResolution(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("custom level requires a list", func(t *testing.T) {
		svc := defaultPostService()
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID: 1, Text: "hi", Audience: intPtr(models.AudienceCustom),
		})
		assertValidationError(t, err)
	})

	t.Run("custom list must belong to the author", func(t *testing.T) {
		audienceRepo := noopAudienceRepo()
		audienceRepo.getByIDFn = func(_ context.Context, id uint) (*models.Audience, error) {
			return &models.Audience{ID: id, UserID: 99}, nil
		}
		svc := newPostService(noopPostRepo(), noopCommentRepo(), noopLikeRepo(),
			noopProfileRepo(), audienceRepo, noopUserRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID: 1, Text: "hi",
			Audience:         intPtr(models.AudienceCustom),
			CustomAudienceID: uintPtr(5),
		})
		assertValidationError(t, err)
	})

	t.Run("non-custom level drops the list silently", func(t *testing.T) {
		var created *models.Post
		postRepo := noopPostRepo()
		postRepo.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 1
			created = p
			return nil
		}
		svc := newPostService(postRepo, noopCommentRepo(), noopLikeRepo(),
			noopProfileRepo(), noopAudienceRepo(), noopUserRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID: 1, Text: "hi",
			Audience:         intPtr(models.AudienceFriends),
			CustomAudienceID: uintPtr(5),
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, models.AudienceFriends, created.Audience)
		assert.Nil(t, created.CustomAudienceID)
	})

	t.Run("missing level falls back to profile default", func(t *testing.T) {
		profileRepo := noopProfileRepo()
		profileRepo.getByUserIDFn = func(_ context.Context, userID uint) (*models.Profile, error) {
			id := uint(7)
			return &models.Profile{
				ID: userID, UserID: userID,
				DefaultAudience:         models.AudienceCustom,
				DefaultCustomAudienceID: &id,
			}, nil
		}
		var created *models.Post
		postRepo := noopPostRepo()
		postRepo.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 1
			created = p
			return nil
		}
		svc := newPostService(postRepo, noopCommentRepo(), noopLikeRepo(),
			profileRepo, noopAudienceRepo(), noopUserRepo())
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: 1, Text: "hi"})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, models.AudienceCustom, created.Audience)
		require.NotNil(t, created.CustomAudienceID)
		assert.EqualValues(t, 7, *created.CustomAudienceID)
	})

	t.Run("tagged friends must exist", func(t *testing.T) {
		userRepo := noopUserRepo()
		userRepo.missingIDsFn = func(_ context.Context, _ []uint) ([]uint, error) {
			return []uint{42}, nil
		}
		svc := newPostService(noopPostRepo(), noopCommentRepo(), noopLikeRepo(),
			noopProfileRepo(), noopAudienceRepo(), userRepo)
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID: 1, Text: "hi", TaggedFriendIDs: []uint{42},
		})
		assertValidationError(t, err)
	})
}

func TestUpdatePostOwnership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 2}, nil
	}
	svc := newPostService(postRepo, noopCommentRepo(), noopLikeRepo(),
		noopProfileRepo(), noopAudienceRepo(), noopUserRepo())

	text := "edited"
	_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: 1, PostID: 1, Text: &text})
	assertPermissionDenied(t, err)

	err = svc.DeletePost(ctx, 1, 1)
	assertPermissionDenied(t, err)
}

func TestTogglePin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("only the owner pins", func(t *testing.T) {
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 2}, nil
		}
		svc := newPostService(postRepo, noopCommentRepo(), noopLikeRepo(),
			noopProfileRepo(), noopAudienceRepo(), noopUserRepo())
		_, err := svc.TogglePin(ctx, TogglePinInput{UserID: 1, PostID: 1, CommentID: 3})
		assertPermissionDenied(t, err)
	})

	t.Run("comment must belong to the post", func(t *testing.T) {
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 99}, nil
		}
		svc := newPostService(noopPostRepo(), commentRepo, noopLikeRepo(),
			noopProfileRepo(), noopAudienceRepo(), noopUserRepo())
		_, err := svc.TogglePin(ctx, TogglePinInput{UserID: 1, PostID: 1, CommentID: 3})
		assertValidationError(t, err)
	})

	t.Run("new id pins", func(t *testing.T) {
		var savedFields map[string]interface{}
		postRepo := noopPostRepo()
		postRepo.updateFieldsFn = func(_ context.Context, _ uint, fields map[string]interface{}) error {
			savedFields = fields
			return nil
		}
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1}, nil
		}
		svc := newPostService(postRepo, commentRepo, noopLikeRepo(),
			noopProfileRepo(), noopAudienceRepo(), noopUserRepo())
		pinned, err := svc.TogglePin(ctx, TogglePinInput{UserID: 1, PostID: 1, CommentID: 3})
		require.NoError(t, err)
		require.NotNil(t, pinned)
		assert.EqualValues(t, 3, *pinned)
		require.NotNil(t, savedFields["pinned_comment_id"])
	})

	t.Run("same id unpins", func(t *testing.T) {
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
			pinnedID := uint(3)
			return &models.Post{ID: id, UserID: 1, PinnedCommentID: &pinnedID}, nil
		}
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1}, nil
		}
		svc := newPostService(postRepo, commentRepo, noopLikeRepo(),
			noopProfileRepo(), noopAudienceRepo(), noopUserRepo())
		pinned, err := svc.TogglePin(ctx, TogglePinInput{UserID: 1, PostID: 1, CommentID: 3})
		require.NoError(t, err)
		assert.Nil(t, pinned)
	})
}

func TestListPostsFilterValidation(t *testing.T) {
	t.Parallel()
	svc := defaultPostService()

	_, err := svc.ListPosts(context.Background(), ListPostsInput{ViewerID: 1, Filter: "bogus"})
	assertValidationError(t, err)

	_, err = svc.ListPosts(context.Background(), ListPostsInput{ViewerID: 1})
	assert.NoError(t, err)
}
