package server

import (
	"recipenest/internal/models"
	"recipenest/internal/service"

	"github.com/gofiber/fiber/v2"
)

// accountResponse re-attaches the email for the authenticated /users/me
// surface. User itself never serializes it.
type accountResponse struct {
	*models.User
	Email string `json:"email"`
}

func account(user *models.User) accountResponse {
	return accountResponse{User: user, Email: user.Email}
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetMe(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(account(user))
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var body struct {
		DisplayName *string `json:"display_name"`
		Bio         *string `json:"bio"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:      userID,
		DisplayName: body.DisplayName,
		Bio:         body.Bio,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(account(user))
}

// UploadAvatar handles POST /api/users/me/avatar
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	file, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Avatar file is required"))
	}

	user, svcErr := s.userService.UploadAvatar(c.UserContext(), userID, file)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(account(user))
}

// DeleteAvatar handles DELETE /api/users/me/avatar
func (s *Server) DeleteAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.DeleteAvatar(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(account(user))
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)

	profile, err := s.userService.GetProfile(c.UserContext(), c.Params("username"), currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}
