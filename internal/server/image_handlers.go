package server

import (
	"io"
	"strconv"

	"huddle/internal/models"
	"huddle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/images/upload (multipart form).
func (s *Server) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil || file == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}
	f, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read upload"))
	}
	content, readErr := io.ReadAll(f)
	_ = f.Close()
	if readErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read upload"))
	}

	in := service.UploadImageInput{
		UserID:      currentUserID(c),
		Caption:     c.FormValue("caption"),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	}
	if n, convErr := strconv.Atoi(c.FormValue("order")); convErr == nil {
		in.OrderID = n
	}
	if postID, convErr := strconv.ParseUint(c.FormValue("post"), 10, 32); convErr == nil && postID > 0 {
		id := uint(postID)
		in.PostID = &id
	}

	img, uploadErr := s.imageService.Upload(c.Context(), in)
	if uploadErr != nil {
		return fail(c, uploadErr)
	}
	return c.Status(fiber.StatusCreated).JSON(img)
}

// ListImages handles GET /api/images?post=
func (s *Server) ListImages(c *fiber.Ctx) error {
	postID := c.QueryInt("post", 0)
	if postID <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post query parameter is required"))
	}
	images, err := s.imageService.ListByPost(c.Context(), uint(postID))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(images)
}

// UpdateImage handles PUT /api/images/:id/update
func (s *Server) UpdateImage(c *fiber.Ctx) error {
	imageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Caption *string `json:"caption"`
		OrderID *int    `json:"order_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	img, updateErr := s.imageService.UpdateImage(c.Context(), service.UpdateImageInput{
		UserID:  currentUserID(c),
		ImageID: imageID,
		Caption: req.Caption,
		OrderID: req.OrderID,
	})
	if updateErr != nil {
		return fail(c, updateErr)
	}
	return c.JSON(img)
}

// DeleteImage handles DELETE /api/images/:id/delete
func (s *Server) DeleteImage(c *fiber.Ctx) error {
	imageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.imageService.DeleteImage(c.Context(), currentUserID(c), imageID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Image deleted"})
}

// ListImageTags handles GET /api/images/:id/tagged-friends
func (s *Server) ListImageTags(c *fiber.Ctx) error {
	imageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	tags, err := s.imageService.ListTags(c.Context(), imageID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tags)
}

// TagImageFriend handles POST /api/images/:id/tagged-friends
func (s *Server) TagImageFriend(c *fiber.Ctx) error {
	imageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		UserID uint `json:"user_id"`
		Top    int  `json:"top"`
		Left   int  `json:"left"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	tag, tagErr := s.imageService.TagFriend(c.Context(), service.TagFriendInput{
		UserID:       currentUserID(c),
		ImageID:      imageID,
		TaggedUserID: req.UserID,
		Top:          req.Top,
		Left:         req.Left,
	})
	if tagErr != nil {
		return fail(c, tagErr)
	}
	return c.Status(fiber.StatusCreated).JSON(tag)
}
