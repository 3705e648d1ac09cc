package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}
