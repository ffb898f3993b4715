package server

import (
	"huddle/internal/models"
	"huddle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateAudience handles POST /api/posts/audience
func (s *Server) CreateAudience(c *fiber.Ctx) error {
	var req struct {
		Title     string `json:"title"`
		MemberIDs []uint `json:"members"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	audience, err := s.audienceService.CreateAudience(c.Context(), service.CreateAudienceInput{
		UserID:    currentUserID(c),
		Title:     req.Title,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(audience)
}

// ListAudiences handles GET /api/posts/audience/list
func (s *Server) ListAudiences(c *fiber.Ctx) error {
	audiences, err := s.audienceService.ListAudiences(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(audiences)
}

// GetAudience handles GET /api/posts/audience/:id/details
func (s *Server) GetAudience(c *fiber.Ctx) error {
	audienceID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	audience, err := s.audienceService.GetAudience(c.Context(), currentUserID(c), audienceID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(audience)
}

// UpdateAudience handles PUT /api/posts/audience/:id/update
func (s *Server) UpdateAudience(c *fiber.Ctx) error {
	audienceID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title     *string `json:"title"`
		MemberIDs []uint  `json:"members"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	audience, updateErr := s.audienceService.UpdateAudience(c.Context(), service.UpdateAudienceInput{
		UserID:     currentUserID(c),
		AudienceID: audienceID,
		Title:      req.Title,
		MemberIDs:  req.MemberIDs,
	})
	if updateErr != nil {
		return fail(c, updateErr)
	}
	return c.JSON(audience)
}

// DeleteAudience handles DELETE /api/posts/audience/:id/delete
func (s *Server) DeleteAudience(c *fiber.Ctx) error {
	audienceID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.audienceService.DeleteAudience(c.Context(), currentUserID(c), audienceID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Audience deleted"})
}

// GetDefaultAudience handles GET /api/profiles/:id/audience
func (s *Server) GetDefaultAudience(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	// Audience defaults are private configuration.
	if userID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewPermissionDeniedError("You can only view your own audience settings"))
	}

	profile, getErr := s.audienceService.GetDefaultAudience(c.Context(), userID)
	if getErr != nil {
		return fail(c, getErr)
	}
	return c.JSON(fiber.Map{
		"default_audience":        profile.DefaultAudience,
		"default_custom_audience": profile.DefaultCustomAudienceID,
	})
}

// SetDefaultAudience handles PUT /api/profiles/audience
func (s *Server) SetDefaultAudience(c *fiber.Ctx) error {
	var req struct {
		Audience         int   `json:"audience"`
		CustomAudienceID *uint `json:"custom_audience"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.audienceService.SetDefaultAudience(c.Context(), service.SetDefaultAudienceInput{
		UserID:           currentUserID(c),
		Audience:         req.Audience,
		CustomAudienceID: req.CustomAudienceID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"default_audience":        profile.DefaultAudience,
		"default_custom_audience": profile.DefaultCustomAudienceID,
	})
}
