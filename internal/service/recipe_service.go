// Package service contains the application's business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"recipenest/internal/models"
	"recipenest/internal/repository"
	"recipenest/internal/storage"
	"recipenest/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	maxIngredients    = 100
	maxSteps          = 50
)

type RecipeService struct {
	recipeRepo   repository.RecipeRepository
	categoryRepo repository.CategoryRepository
	s3           storage.AwsS3
}

// IngredientInput is one ingredient line in create/update payloads.
// Ordering follows slice order; positions are assigned server-side.
type IngredientInput struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Note     string  `json:"note"`
}

// StepInput is one instruction in create/update payloads.
type StepInput struct {
	Instruction string `json:"instruction"`
}

type CreateRecipeInput struct {
	UserID        uint
	Title         string
	Description   string
	Visibility    string
	Difficulty    string
	Servings      int
	PrepMinutes   int
	CookMinutes   int
	Ingredients   []IngredientInput
	Steps         []StepInput
	CategorySlugs []string
	Image         *multipart.FileHeader
}

type UpdateRecipeInput struct {
	UserID        uint
	RecipeID      uint
	Title         *string
	Description   *string
	Visibility    *string
	Difficulty    *string
	Servings      *int
	PrepMinutes   *int
	CookMinutes   *int
	Ingredients   []IngredientInput
	Steps         []StepInput
	CategorySlugs []string
	Image         *multipart.FileHeader
}

func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	categoryRepo repository.CategoryRepository,
	s3 storage.AwsS3,
) *RecipeService {
	return &RecipeService{
		recipeRepo:   recipeRepo,
		categoryRepo: categoryRepo,
		s3:           s3,
	}
}

func (s *RecipeService) CreateRecipe(ctx context.Context, in CreateRecipeInput) (*models.Recipe, error) {
	if err := validateRecipeFields(in.Title, in.Description, in.Ingredients, in.Steps); err != nil {
		return nil, err
	}

	visibility, err := parseVisibility(in.Visibility)
	if err != nil {
		return nil, err
	}
	difficulty, err := parseDifficulty(in.Difficulty)
	if err != nil {
		return nil, err
	}
	if in.Servings < 0 || in.PrepMinutes < 0 || in.CookMinutes < 0 {
		return nil, models.NewValidationError("Servings and times cannot be negative")
	}

	slug, err := s.uniqueSlug(ctx, in.UserID, in.Title)
	if err != nil {
		return nil, err
	}

	categories, err := s.resolveCategories(ctx, in.CategorySlugs)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:       strings.TrimSpace(in.Title),
		Slug:        slug,
		UserID:      in.UserID,
		Description: in.Description,
		Visibility:  visibility,
		Difficulty:  difficulty,
		Servings:    in.Servings,
		PrepMinutes: in.PrepMinutes,
		CookMinutes: in.CookMinutes,
		Ingredients: buildIngredients(in.Ingredients),
		Steps:       buildSteps(in.Steps),
		Categories:  categories,
	}

	if in.Image != nil {
		url, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = url
	}

	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.GetRecipe(ctx, recipe.ID, in.UserID)
}

func (s *RecipeService) GetRecipe(ctx context.Context, id uint, currentUserID uint) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, id, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Private recipes surface as not found so their existence leaks nothing.
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	return recipe, nil
}

// GetRecipeBySlug resolves a recipe by author username and slug.
func (s *RecipeService) GetRecipeBySlug(ctx context.Context, author *models.User, slug string, currentUserID uint) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetBySlug(ctx, author.ID, slug, currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return recipe, nil
}

func (s *RecipeService) GetUserRecipes(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Recipe, error) {
	recipes, err := s.recipeRepo.GetByUserID(ctx, userID, limit, offset, currentUserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, in UpdateRecipeInput) (*models.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, in.RecipeID, in.UserID)
	if err != nil {
		return nil, err
	}
	if recipe.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own recipes")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		if len(title) > maxTitleLen {
			return nil, models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
		}
		// The slug never changes after creation so shared URLs stay valid.
		recipe.Title = title
	}
	if in.Description != nil {
		if len(*in.Description) > maxDescriptionLen {
			return nil, models.NewValidationError(fmt.Sprintf("Description too long (max %d characters)", maxDescriptionLen))
		}
		recipe.Description = *in.Description
	}
	if in.Visibility != nil {
		visibility, err := parseVisibility(*in.Visibility)
		if err != nil {
			return nil, err
		}
		recipe.Visibility = visibility
	}
	if in.Difficulty != nil {
		difficulty, err := parseDifficulty(*in.Difficulty)
		if err != nil {
			return nil, err
		}
		recipe.Difficulty = difficulty
	}
	if in.Servings != nil {
		if *in.Servings < 0 {
			return nil, models.NewValidationError("Servings cannot be negative")
		}
		recipe.Servings = *in.Servings
	}
	if in.PrepMinutes != nil {
		if *in.PrepMinutes < 0 {
			return nil, models.NewValidationError("Prep minutes cannot be negative")
		}
		recipe.PrepMinutes = *in.PrepMinutes
	}
	if in.CookMinutes != nil {
		if *in.CookMinutes < 0 {
			return nil, models.NewValidationError("Cook minutes cannot be negative")
		}
		recipe.CookMinutes = *in.CookMinutes
	}

	replaceChildren := in.Ingredients != nil || in.Steps != nil || in.CategorySlugs != nil
	if replaceChildren {
		if in.Ingredients != nil {
			if err := validateIngredients(in.Ingredients); err != nil {
				return nil, err
			}
			recipe.Ingredients = buildIngredients(in.Ingredients)
		}
		if in.Steps != nil {
			if err := validateSteps(in.Steps); err != nil {
				return nil, err
			}
			recipe.Steps = buildSteps(in.Steps)
		}
		if in.CategorySlugs != nil {
			categories, err := s.resolveCategories(ctx, in.CategorySlugs)
			if err != nil {
				return nil, err
			}
			recipe.Categories = categories
		}
		stripChildIDs(recipe)
	}

	if in.Image != nil {
		url, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = url
	}

	// Computed columns must not be written back.
	recipe.LikeCount, recipe.SaveCount, recipe.CommentCount = 0, 0, 0
	recipe.Liked, recipe.Saved = false, false

	if err := s.recipeRepo.Update(ctx, recipe, replaceChildren); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.GetRecipe(ctx, recipe.ID, in.UserID)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.GetRecipe(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	if recipe.UserID != userID {
		return models.NewForbiddenError("You can only delete your own recipes")
	}
	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return models.NewInternalError(err)
	}

	// Cover removal is best-effort.
	if s.s3 != nil && recipe.ImageURL != "" {
		if key := coverKey(recipe.ImageURL); key != "" {
			_ = s.s3.DeleteFile(ctx, key)
		}
	}
	return nil
}

// coverKey recovers the object key from a public cover URL.
func coverKey(url string) string {
	idx := strings.Index(url, "/recipes/")
	if idx < 0 {
		return ""
	}
	return url[idx+1:]
}

// ToggleLike flips the viewer's like on the recipe and returns it with
// fresh counts. Liking twice is a no-op followed by an unlike.
func (s *RecipeService) ToggleLike(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	if _, err := s.GetRecipe(ctx, recipeID, userID); err != nil {
		return nil, err
	}

	isLiked, err := s.recipeRepo.IsLiked(ctx, userID, recipeID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if isLiked {
		err = s.recipeRepo.Unlike(ctx, userID, recipeID)
	} else {
		err = s.recipeRepo.Like(ctx, userID, recipeID)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.GetRecipe(ctx, recipeID, userID)
}

// ToggleSave flips the viewer's bookmark on the recipe.
func (s *RecipeService) ToggleSave(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	if _, err := s.GetRecipe(ctx, recipeID, userID); err != nil {
		return nil, err
	}

	isSaved, err := s.recipeRepo.IsSaved(ctx, userID, recipeID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if isSaved {
		err = s.recipeRepo.Unsave(ctx, userID, recipeID)
	} else {
		err = s.recipeRepo.Save(ctx, userID, recipeID)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.GetRecipe(ctx, recipeID, userID)
}

func (s *RecipeService) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Recipe, error) {
	recipes, err := s.recipeRepo.ListSaved(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

// uniqueSlug derives the recipe's slug from its title. When the author
// already uses the base slug the smallest free numeric suffix is
// appended: "apple-pie", "apple-pie-1", "apple-pie-2".
func (s *RecipeService) uniqueSlug(ctx context.Context, userID uint, title string) (string, error) {
	base := validation.Slugify(title)

	existing, err := s.recipeRepo.SlugsLike(ctx, userID, base)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	taken := make(map[string]struct{}, len(existing))
	for _, slug := range existing {
		taken[slug] = struct{}{}
	}

	if _, ok := taken[base]; !ok {
		return base, nil
	}
	for n := 1; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}

func (s *RecipeService) resolveCategories(ctx context.Context, slugs []string) ([]models.Category, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	categories, err := s.categoryRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(categories) != len(slugs) {
		return nil, models.NewValidationError("One or more categories do not exist")
	}
	return categories, nil
}

func (s *RecipeService) uploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if s.s3 == nil {
		return "", models.NewValidationError("Image uploads are not available")
	}
	key, err := s.s3.UploadFile(ctx, uuid.NewString(), file, "recipes", storage.AllowImage...)
	if err != nil {
		return "", models.NewValidationError("Image upload failed: " + err.Error())
	}
	return s.s3.GetPublicLinkKey(key), nil
}

func validateRecipeFields(title, description string, ingredients []IngredientInput, steps []StepInput) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError(fmt.Sprintf("Title too long (max %d characters)", maxTitleLen))
	}
	if len(description) > maxDescriptionLen {
		return models.NewValidationError(fmt.Sprintf("Description too long (max %d characters)", maxDescriptionLen))
	}
	if err := validateIngredients(ingredients); err != nil {
		return err
	}
	return validateSteps(steps)
}

func validateIngredients(ingredients []IngredientInput) error {
	if len(ingredients) == 0 {
		return models.NewValidationError("At least one ingredient is required")
	}
	if len(ingredients) > maxIngredients {
		return models.NewValidationError(fmt.Sprintf("Too many ingredients (max %d)", maxIngredients))
	}
	for _, ing := range ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return models.NewValidationError("Ingredient name is required")
		}
		if ing.Quantity < 0 {
			return models.NewValidationError("Ingredient quantity cannot be negative")
		}
	}
	return nil
}

func validateSteps(steps []StepInput) error {
	if len(steps) == 0 {
		return models.NewValidationError("At least one step is required")
	}
	if len(steps) > maxSteps {
		return models.NewValidationError(fmt.Sprintf("Too many steps (max %d)", maxSteps))
	}
	for _, step := range steps {
		if strings.TrimSpace(step.Instruction) == "" {
			return models.NewValidationError("Step instruction is required")
		}
	}
	return nil
}

func parseVisibility(v string) (models.Visibility, error) {
	switch models.Visibility(v) {
	case models.VisibilityPublic, models.VisibilityPrivate:
		return models.Visibility(v), nil
	case "":
		return models.VisibilityPublic, nil
	default:
		return "", models.NewValidationError("Visibility must be public or private")
	}
}

func parseDifficulty(d string) (models.Difficulty, error) {
	switch models.Difficulty(d) {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return models.Difficulty(d), nil
	case "":
		return models.DifficultyMedium, nil
	default:
		return "", models.NewValidationError("Difficulty must be easy, medium or hard")
	}
}

// buildIngredients assigns positions from slice order, starting at 0.
func buildIngredients(in []IngredientInput) []models.RecipeIngredient {
	out := make([]models.RecipeIngredient, len(in))
	for i, ing := range in {
		out[i] = models.RecipeIngredient{
			Position: i,
			Name:     strings.TrimSpace(ing.Name),
			Quantity: ing.Quantity,
			Unit:     strings.TrimSpace(ing.Unit),
			Note:     strings.TrimSpace(ing.Note),
		}
	}
	return out
}

func buildSteps(in []StepInput) []models.RecipeStep {
	out := make([]models.RecipeStep, len(in))
	for i, step := range in {
		out[i] = models.RecipeStep{
			Position:    i,
			Instruction: strings.TrimSpace(step.Instruction),
		}
	}
	return out
}

// stripChildIDs zeroes child primary keys so replaced rows insert fresh.
func stripChildIDs(recipe *models.Recipe) {
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].ID = 0
		recipe.Ingredients[i].RecipeID = recipe.ID
	}
	for i := range recipe.Steps {
		recipe.Steps[i].ID = 0
		recipe.Steps[i].RecipeID = recipe.ID
	}
}
