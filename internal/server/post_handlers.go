package server

import (
	"huddle/internal/models"
	"huddle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/posts?filterBy=
func (s *Server) ListPosts(c *fiber.Ctx) error {
	viewerID := currentUserID(c)
	pagination := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		ViewerID: viewerID,
		Filter:   c.Query("filterBy"),
		Limit:    pagination.Limit,
		Offset:   pagination.Offset,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(postViews(posts, viewerID))
}

// GetPost handles GET /api/posts/:id/details
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID := currentUserID(c)

	post, err := s.postService.GetPost(c.Context(), postID, viewerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post.ViewFor(viewerID))
}

type postRequest struct {
	Title            string `json:"title"`
	Text             string `json:"text"`
	Feeling          string `json:"feeling"`
	Audience         *int   `json:"audience"`
	CustomAudienceID *uint  `json:"custom_audience"`
	TaggedFriendIDs  []uint `json:"tagged_friends"`
}

// CreatePost handles POST /api/posts/create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:           userID,
		Title:            req.Title,
		Text:             req.Text,
		Feeling:          req.Feeling,
		Audience:         req.Audience,
		CustomAudienceID: req.CustomAudienceID,
		TaggedFriendIDs:  req.TaggedFriendIDs,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post.ViewFor(userID))
}

// UpdatePost handles PUT /api/posts/:id/update
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	var req struct {
		Title            *string `json:"title"`
		Text             *string `json:"text"`
		Feeling          *string `json:"feeling"`
		Audience         *int    `json:"audience"`
		CustomAudienceID *uint   `json:"custom_audience"`
		TaggedFriendIDs  []uint  `json:"tagged_friends"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, updateErr := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:           userID,
		PostID:           postID,
		Title:            req.Title,
		Text:             req.Text,
		Feeling:          req.Feeling,
		Audience:         req.Audience,
		CustomAudienceID: req.CustomAudienceID,
		TaggedFriendIDs:  req.TaggedFriendIDs,
	})
	if updateErr != nil {
		return fail(c, updateErr)
	}
	return c.JSON(post.ViewFor(userID))
}

// DeletePost handles DELETE /api/posts/:id/delete
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// TogglePostLike handles POST /api/posts/:id/likes
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
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

	summary, err := s.postService.ToggleLike(c.Context(), currentUserID(c), postID, req.Like)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}

// TogglePinComment handles POST /api/posts/:id/pin-comment
func (s *Server) TogglePinComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		CommentID uint `json:"comment_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.CommentID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("comment_id is required"))
	}

	pinned, err := s.postService.TogglePin(c.Context(), service.TogglePinInput{
		UserID:    currentUserID(c),
		PostID:    postID,
		CommentID: req.CommentID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"pinned_comment_id": pinned})
}

// ToggleFavorite handles POST /api/posts/:id/favorite
func (s *Server) ToggleFavorite(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	favorite, err := s.postService.ToggleFavorite(c.Context(), currentUserID(c), postID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"favorite": favorite})
}
