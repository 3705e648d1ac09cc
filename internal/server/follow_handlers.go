package server

import (
	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/users/:username/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.followService.Follow(c.UserContext(), userID, c.Params("username")); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Followed"})
}

// UnfollowUser handles DELETE /api/users/:username/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := s.followService.Unfollow(c.UserContext(), userID, c.Params("username")); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unfollowed"})
}

// GetFollowers handles GET /api/users/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	profiles, err := s.followService.GetFollowers(c.UserContext(), c.Params("username"), p.Limit, p.Offset(), currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"users":    profiles,
		"page":     p.Page,
		"limit":    p.Limit,
		"has_more": len(profiles) == p.Limit,
	})
}

// GetFollowing handles GET /api/users/:username/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	profiles, err := s.followService.GetFollowing(c.UserContext(), c.Params("username"), p.Limit, p.Offset(), currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"users":    profiles,
		"page":     p.Page,
		"limit":    p.Limit,
		"has_more": len(profiles) == p.Limit,
	})
}
