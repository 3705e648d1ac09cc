package server

import (
	"encoding/json"
	"mime/multipart"
	"strings"

	"recipenest/internal/models"
	"recipenest/internal/service"

	"github.com/gofiber/fiber/v2"
)

// recipePayload is the request body for create/update. Multipart
// requests carry the same fields as form values, with ingredients,
// steps and categories encoded as JSON strings.
type recipePayload struct {
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	Visibility  *string                   `json:"visibility"`
	Difficulty  *string                   `json:"difficulty"`
	Servings    *int                      `json:"servings"`
	PrepMinutes *int                      `json:"prep_minutes"`
	CookMinutes *int                      `json:"cook_minutes"`
	Ingredients []service.IngredientInput `json:"ingredients"`
	Steps       []service.StepInput       `json:"steps"`
	Categories  []string                  `json:"categories"`
}

// GetFeed handles GET /api/recipes
func (s *Server) GetFeed(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	page, err := s.feedService.GetFeed(c.UserContext(), service.FeedInput{
		Feed:          c.Query("feed"),
		Category:      c.Query("category"),
		Page:          p.Page,
		Limit:         p.Limit,
		CurrentUserID: currentUserID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// SearchRecipes handles GET /api/recipes/search
func (s *Server) SearchRecipes(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	page, err := s.feedService.Search(c.UserContext(), service.SearchInput{
		Query:         c.Query("q"),
		Category:      c.Query("category"),
		Sort:          c.Query("sort"),
		Page:          p.Page,
		Limit:         p.Limit,
		CurrentUserID: currentUserID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetRecipe handles GET /api/recipes/:id
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	currentUserID, _ := s.optionalUserID(c)

	recipe, err := s.recipeService.GetRecipe(c.UserContext(), id, currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(recipe)
}

// GetRecipeBySlug handles GET /api/users/:username/recipes/:slug
func (s *Server) GetRecipeBySlug(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)

	author, err := s.userRepo.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", c.Params("username")))
	}

	recipe, err := s.recipeService.GetRecipeBySlug(c.UserContext(), author, c.Params("slug"), currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(recipe)
}

// GetUserRecipes handles GET /api/users/:username/recipes
func (s *Server) GetUserRecipes(c *fiber.Ctx) error {
	currentUserID, _ := s.optionalUserID(c)
	p := parsePagination(c, 20)

	author, err := s.userRepo.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if author == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", c.Params("username")))
	}

	recipes, err := s.recipeService.GetUserRecipes(c.UserContext(), author.ID, p.Limit, p.Offset(), currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"recipes":  recipes,
		"page":     p.Page,
		"limit":    p.Limit,
		"has_more": len(recipes) == p.Limit,
	})
}

// CreateRecipe handles POST /api/recipes
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	payload, image, ok := s.parseRecipePayload(c)
	if !ok {
		return nil
	}

	in := service.CreateRecipeInput{
		UserID:        userID,
		Ingredients:   payload.Ingredients,
		Steps:         payload.Steps,
		CategorySlugs: payload.Categories,
		Image:         image,
	}
	if payload.Title != nil {
		in.Title = *payload.Title
	}
	if payload.Description != nil {
		in.Description = *payload.Description
	}
	if payload.Visibility != nil {
		in.Visibility = *payload.Visibility
	}
	if payload.Difficulty != nil {
		in.Difficulty = *payload.Difficulty
	}
	if payload.Servings != nil {
		in.Servings = *payload.Servings
	}
	if payload.PrepMinutes != nil {
		in.PrepMinutes = *payload.PrepMinutes
	}
	if payload.CookMinutes != nil {
		in.CookMinutes = *payload.CookMinutes
	}

	recipe, err := s.recipeService.CreateRecipe(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// UpdateRecipe handles PUT /api/recipes/:id
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	payload, image, ok := s.parseRecipePayload(c)
	if !ok {
		return nil
	}

	recipe, svcErr := s.recipeService.UpdateRecipe(c.UserContext(), service.UpdateRecipeInput{
		UserID:        userID,
		RecipeID:      id,
		Title:         payload.Title,
		Description:   payload.Description,
		Visibility:    payload.Visibility,
		Difficulty:    payload.Difficulty,
		Servings:      payload.Servings,
		PrepMinutes:   payload.PrepMinutes,
		CookMinutes:   payload.CookMinutes,
		Ingredients:   payload.Ingredients,
		Steps:         payload.Steps,
		CategorySlugs: payload.Categories,
		Image:         image,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(recipe)
}

// DeleteRecipe handles DELETE /api/recipes/:id
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.recipeService.DeleteRecipe(c.UserContext(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Recipe deleted"})
}

// ToggleLike handles POST /api/recipes/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	recipe, svcErr := s.recipeService.ToggleLike(c.UserContext(), userID, id)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(recipe)
}

// ToggleSave handles POST /api/recipes/:id/save
func (s *Server) ToggleSave(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	recipe, svcErr := s.recipeService.ToggleSave(c.UserContext(), userID, id)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(recipe)
}

// GetSavedRecipes handles GET /api/recipes/saved
func (s *Server) GetSavedRecipes(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	recipes, err := s.recipeService.ListSaved(c.UserContext(), userID, p.Limit, p.Offset())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"recipes":  recipes,
		"page":     p.Page,
		"limit":    p.Limit,
		"has_more": len(recipes) == p.Limit,
	})
}

// parseRecipePayload accepts either a JSON body or a multipart form with
// an optional "image" file. Returns ok=false after writing a 400.
func (s *Server) parseRecipePayload(c *fiber.Ctx) (recipePayload, *multipart.FileHeader, bool) {
	var payload recipePayload

	contentType := c.Get(fiber.HeaderContentType)
	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		if !parseMultipartRecipe(c, &payload) {
			return payload, nil, false
		}
		image, err := c.FormFile("image")
		if err != nil {
			image = nil
		}
		return payload, image, true
	}

	if err := c.BodyParser(&payload); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return payload, nil, false
	}
	return payload, nil, true
}

func parseMultipartRecipe(c *fiber.Ctx, payload *recipePayload) bool {
	setString := func(dst **string, field string) {
		if v := c.FormValue(field, "\x00"); v != "\x00" {
			value := v
			*dst = &value
		}
	}
	setString(&payload.Title, "title")
	setString(&payload.Description, "description")
	setString(&payload.Visibility, "visibility")
	setString(&payload.Difficulty, "difficulty")

	setInt := func(dst **int, field string) bool {
		v := c.FormValue(field, "\x00")
		if v == "\x00" {
			return true
		}
		var n int
		if err := json.Unmarshal([]byte(v), &n); err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid "+field))
			return false
		}
		*dst = &n
		return true
	}
	if !setInt(&payload.Servings, "servings") ||
		!setInt(&payload.PrepMinutes, "prep_minutes") ||
		!setInt(&payload.CookMinutes, "cook_minutes") {
		return false
	}

	if v := c.FormValue("ingredients"); v != "" {
		if err := json.Unmarshal([]byte(v), &payload.Ingredients); err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid ingredients payload"))
			return false
		}
	}
	if v := c.FormValue("steps"); v != "" {
		if err := json.Unmarshal([]byte(v), &payload.Steps); err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid steps payload"))
			return false
		}
	}
	if v := c.FormValue("categories"); v != "" {
		if err := json.Unmarshal([]byte(v), &payload.Categories); err != nil {
			_ = models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid categories payload"))
			return false
		}
	}
	return true
}
