package server

import (
	"recipenest/internal/models"
	"recipenest/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/recipes/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	recipeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	comments, svcErr := s.commentService.ListComments(c.UserContext(), recipeID, p.Limit, p.Offset(), currentUserID)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(fiber.Map{
		"comments": comments,
		"page":     p.Page,
		"limit":    p.Limit,
		"has_more": len(comments) == p.Limit,
	})
}

// CreateComment handles POST /api/recipes/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	recipeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   userID,
		RecipeID: recipeID,
		ParentID: body.ParentID,
		Content:  body.Content,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, svcErr := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    userID,
		CommentID: commentID,
		Content:   body.Content,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if svcErr := s.commentService.DeleteComment(c.UserContext(), userID, commentID); svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// ToggleCommentLike handles POST /api/comments/:id/like
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, svcErr := s.commentService.ToggleLike(c.UserContext(), userID, commentID)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(comment)
}
