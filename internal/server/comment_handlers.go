package server

import (
	"huddle/internal/models"
	"huddle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		PostID          uint   `json:"post_id"`
		Text            string `json:"text"`
		ParentID        *uint  `json:"parent_id"`
		MentionedUserID *uint  `json:"mentioned_user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:          currentUserID(c),
		PostID:          req.PostID,
		Text:            req.Text,
		ParentID:        req.ParentID,
		MentionedUserID: req.MentionedUserID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// ListComments handles GET /api/posts/comments/:post?sort_by=
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(
		c.Context(), postID, currentUserID(c), c.Query("sort_by"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(comments)
}

// ListReplies handles GET /api/posts/replies/:comment
func (s *Server) ListReplies(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "comment")
	if err != nil {
		return nil
	}
	replies, err := s.commentService.ListReplies(c.Context(), commentID, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(replies)
}

// UpdateComment handles PUT /api/posts/comments/:id/update
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, updateErr := s.commentService.UpdateComment(c.Context(), service.UpdateCommentInput{
		UserID:    currentUserID(c),
		CommentID: commentID,
		Text:      req.Text,
	})
	if updateErr != nil {
		return fail(c, updateErr)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/posts/comments/:id/delete
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.Context(), currentUserID(c), commentID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// ToggleCommentLike handles POST /api/posts/comments/:id/likes
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Like bool `json:"like"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	summary, err := s.commentService.ToggleLike(c.Context(), currentUserID(c), commentID, req.Like)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}

// ToggleCommentLikeByAuthor handles POST /api/posts/comments/:id/like_by_author
func (s *Server) ToggleCommentLikeByAuthor(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.commentService.ToggleLikeByAuthor(c.Context(), currentUserID(c), commentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"is_liked_by_author": liked})
}
