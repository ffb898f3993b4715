package service

import (
	"context"
	"strings"

	"huddle/internal/models"
	"huddle/internal/repository"
)

type PostService struct {
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	likeRepo     repository.LikeRepository
	profileRepo  repository.ProfileRepository
	audienceRepo repository.AudienceRepository
	userRepo     repository.UserRepository
}

type CreatePostInput struct {
	UserID           uint
	Title            string
	Text             string
	Feeling          string
	Audience         *int
	CustomAudienceID *uint
	TaggedFriendIDs  []uint
}

type UpdatePostInput struct {
	UserID           uint
	PostID           uint
	Title            *string
	Text             *string
	Feeling          *string
	Audience         *int
	CustomAudienceID *uint
	TaggedFriendIDs  []uint
}

type ListPostsInput struct {
	ViewerID uint
	Filter   string
	Limit    int
	Offset   int
}

type TogglePinInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	profileRepo repository.ProfileRepository,
	audienceRepo repository.AudienceRepository,
	userRepo repository.UserRepository,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		likeRepo:     likeRepo,
		profileRepo:  profileRepo,
		audienceRepo: audienceRepo,
		userRepo:     userRepo,
	}
}

const maxPostTitleLen = 100

// resolveAudience normalizes the audience pair for a write. A nil level
// falls back to the owner's profile default. A custom list id is kept only
// when the level is custom; any other level drops it silently. A custom
// level without a resolvable owned list is a validation error.
func (s *PostService) resolveAudience(ctx context.Context, userID uint, level *int, customID *uint) (int, *uint, error) {
	if level == nil {
		profile, err := s.profileRepo.GetByUserID(ctx, userID)
		if err != nil {
			return 0, nil, err
		}
		if profile == nil {
			return models.AudiencePublic, nil, nil
		}
		return profile.DefaultAudience, profile.DefaultCustomAudienceID, nil
	}

	if !models.ValidAudienceLevel(*level) {
		return 0, nil, models.NewValidationError("Invalid audience level")
	}
	if *level != models.AudienceCustom {
		return *level, nil, nil
	}

	if customID == nil {
		return 0, nil, models.NewValidationError("Custom audience requires an audience list")
	}
	audience, err := s.audienceRepo.GetByID(ctx, *customID)
	if err != nil {
		return 0, nil, err
	}
	if audience == nil || audience.UserID != userID {
		return 0, nil, models.NewValidationError("Custom audience requires an audience list")
	}
	return models.AudienceCustom, customID, nil
}

func (s *PostService) validateTaggedFriends(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	missing, err := s.userRepo.MissingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return models.NewValidationError("Tagged friends must be existing users")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(in.Title) > maxPostTitleLen {
		return nil, models.NewValidationError("Title too long (max 100 characters)")
	}

	level, customID, err := s.resolveAudience(ctx, in.UserID, in.Audience, in.CustomAudienceID)
	if err != nil {
		return nil, err
	}
	if err := s.validateTaggedFriends(ctx, in.TaggedFriendIDs); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:            in.Title,
		Text:             in.Text,
		Feeling:          in.Feeling,
		UserID:           in.UserID,
		Audience:         level,
		CustomAudienceID: customID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	if len(in.TaggedFriendIDs) > 0 {
		if err := s.postRepo.ReplaceTaggedFriends(ctx, post, in.TaggedFriendIDs); err != nil {
			return nil, err
		}
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	filter := repository.PostFilter(in.Filter)
	switch filter {
	case repository.PostFilterAll, repository.PostFilterMy,
		repository.PostFilterFavorites, repository.PostFilterLiked:
	case "":
		filter = repository.PostFilterAll
	default:
		return nil, models.NewValidationError("Invalid filterBy value")
	}

	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}
	return s.postRepo.List(ctx, in.ViewerID, filter, limit, offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.GetPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewPermissionDeniedError("You can only edit your own posts")
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		if len(*in.Title) > maxPostTitleLen {
			return nil, models.NewValidationError("Title too long (max 100 characters)")
		}
		fields["title"] = *in.Title
	}
	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			return nil, models.NewValidationError("Text is required")
		}
		fields["text"] = *in.Text
	}
	if in.Feeling != nil {
		fields["feeling"] = *in.Feeling
	}
	if in.Audience != nil {
		level, customID, resolveErr := s.resolveAudience(ctx, in.UserID, in.Audience, in.CustomAudienceID)
		if resolveErr != nil {
			return nil, resolveErr
		}
		fields["audience"] = level
		fields["custom_audience_id"] = customID
	}
	if len(fields) > 0 {
		if err := s.postRepo.UpdateFields(ctx, in.PostID, fields); err != nil {
			return nil, err
		}
	}
	if in.TaggedFriendIDs != nil {
		if err := s.validateTaggedFriends(ctx, in.TaggedFriendIDs); err != nil {
			return nil, err
		}
		if err := s.postRepo.ReplaceTaggedFriends(ctx, post, in.TaggedFriendIDs); err != nil {
			return nil, err
		}
	}
	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.GetPost(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewPermissionDeniedError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// TogglePin pins the comment on the post, or unpins it when it is already
// the pinned one. Only the post owner may pin, and the comment must belong
// to the post.
func (s *PostService) TogglePin(ctx context.Context, in TogglePinInput) (*uint, error) {
	post, err := s.GetPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewPermissionDeniedError("Only the post owner can pin comments")
	}

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, models.NewNotFoundError("Comment", in.CommentID)
	}
	if comment.PostID != in.PostID {
		return nil, models.NewValidationError("Comment does not belong to this post")
	}

	var pinned *uint
	if post.PinnedCommentID == nil || *post.PinnedCommentID != in.CommentID {
		id := in.CommentID
		pinned = &id
	}
	if err := s.postRepo.UpdateFields(ctx, in.PostID, map[string]interface{}{
		"pinned_comment_id": pinned,
	}); err != nil {
		return nil, err
	}
	return pinned, nil
}

func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint, isLike bool) (*models.LikeSummary, error) {
	if _, err := s.GetPost(ctx, postID, userID); err != nil {
		return nil, err
	}
	return s.likeRepo.Toggle(ctx, userID, models.LikeTargetPost, postID, isLike)
}

func (s *PostService) ToggleFavorite(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.GetPost(ctx, postID, userID); err != nil {
		return false, err
	}
	return s.profileRepo.ToggleFavorite(ctx, userID, postID)
}
