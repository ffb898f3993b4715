package server

import (
	"io"

	"huddle/internal/models"
	"huddle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profiles/:id
func (s *Server) GetProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.profileService.GetProfile(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles PUT /api/profiles/update. It accepts multipart
// form data so the avatar can ride along with the other fields.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	in := service.UpdateProfileInput{UserID: currentUserID(c)}

	if cover := c.FormValue("cover"); cover != "" {
		in.Cover = &cover
	}
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		f, openErr := file.Open()
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read avatar upload"))
		}
		content, readErr := io.ReadAll(f)
		_ = f.Close()
		if readErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read avatar upload"))
		}
		in.AvatarFilename = file.Filename
		in.Avatar = content
	}

	profile, err := s.profileService.UpdateProfile(c.Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// ListFriends handles GET /api/profiles/:id/friends
func (s *Server) ListFriends(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	friends, err := s.profileService.ListFriends(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(friends)
}

// AddFriend handles POST /api/profiles/friends/:id
func (s *Server) AddFriend(c *fiber.Ctx) error {
	friendID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.profileService.AddFriend(c.Context(), currentUserID(c), friendID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Friend added"})
}

// RemoveFriend handles DELETE /api/profiles/friends/:id
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	friendID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.profileService.RemoveFriend(c.Context(), currentUserID(c), friendID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Friend removed"})
}
