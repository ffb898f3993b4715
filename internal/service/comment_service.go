package service

import (
	"context"
	"strings"

	"huddle/internal/models"
	"huddle/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
	userRepo    repository.UserRepository
}

type CreateCommentInput struct {
	UserID          uint
	PostID          uint
	Text            string
	ParentID        *uint
	MentionedUserID *uint
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Text      string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		likeRepo:    likeRepo,
		userRepo:    userRepo,
	}
}

func (s *CommentService) getComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return comment, nil
}

func (s *CommentService) getPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if _, err := s.getPost(ctx, in.PostID, in.UserID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.getComment(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment does not belong to this post")
		}
		// One level of nesting only.
		if parent.ParentID != nil {
			return nil, models.NewValidationError("Replies to replies are not allowed")
		}
	}
	if in.MentionedUserID != nil {
		mentioned, err := s.userRepo.GetByID(ctx, *in.MentionedUserID)
		if err != nil {
			return nil, err
		}
		if mentioned == nil {
			return nil, models.NewValidationError("Mentioned user does not exist")
		}
	}

	comment := &models.Comment{
		Text:            in.Text,
		UserID:          in.UserID,
		PostID:          in.PostID,
		ParentID:        in.ParentID,
		MentionedUserID: in.MentionedUserID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) ListComments(ctx context.Context, postID, viewerID uint, sortBy string) ([]*models.Comment, error) {
	post, err := s.getPost(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	return s.commentRepo.ListTopLevel(ctx, post, viewerID, repository.CommentSort(sortBy))
}

func (s *CommentService) ListReplies(ctx context.Context, commentID, viewerID uint) ([]*models.Comment, error) {
	if _, err := s.getComment(ctx, commentID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListReplies(ctx, commentID, viewerID)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Text is required")
	}
	comment, err := s.getComment(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewPermissionDeniedError("You can only edit your own comments")
	}
	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, in.CommentID)
}

// DeleteComment removes a comment. The comment author and the author of
// the post it sits on may both delete it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		post, postErr := s.getPost(ctx, comment.PostID, userID)
		if postErr != nil {
			return postErr
		}
		if post.UserID != userID {
			return models.NewPermissionDeniedError("You cannot delete this comment")
		}
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// ToggleLikeByAuthor flips the post author's endorsement mark on a comment.
func (s *CommentService) ToggleLikeByAuthor(ctx context.Context, userID, commentID uint) (bool, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return false, err
	}
	post, err := s.getPost(ctx, comment.PostID, userID)
	if err != nil {
		return false, err
	}
	if post.UserID != userID {
		return false, models.NewPermissionDeniedError("Only the post author can endorse comments")
	}
	liked := !comment.IsLikedByAuthor
	if err := s.commentRepo.SetLikedByAuthor(ctx, commentID, liked); err != nil {
		return false, err
	}
	return liked, nil
}

func (s *CommentService) ToggleLike(ctx context.Context, userID, commentID uint, isLike bool) (*models.LikeSummary, error) {
	if _, err := s.getComment(ctx, commentID); err != nil {
		return nil, err
	}
	return s.likeRepo.Toggle(ctx, userID, models.LikeTargetComment, commentID, isLike)
}
