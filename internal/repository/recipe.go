// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"recipenest/internal/cache"
	"recipenest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRepository defines the interface for recipe data operations
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	Update(ctx context.Context, recipe *models.Recipe, replaceChildren bool) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Recipe, error)
	GetBySlug(ctx context.Context, userID uint, slug string, currentUserID uint) (*models.Recipe, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Recipe, error)
	List(ctx context.Context, opts ListOptions, currentUserID uint) ([]*models.Recipe, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Recipe, error)
	ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Recipe, error)
	Search(ctx context.Context, query string, opts ListOptions, currentUserID uint) ([]*models.Recipe, error)
	SlugsLike(ctx context.Context, userID uint, base string) ([]string, error)
	Like(ctx context.Context, userID, recipeID uint) error
	Unlike(ctx context.Context, userID, recipeID uint) error
	IsLiked(ctx context.Context, userID, recipeID uint) (bool, error)
	Save(ctx context.Context, userID, recipeID uint) error
	Unsave(ctx context.Context, userID, recipeID uint) error
	IsSaved(ctx context.Context, userID, recipeID uint) (bool, error)
	GetLikedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error)
	GetSavedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error)
}

// ListOptions narrows a recipe listing.
type ListOptions struct {
	Sort         string // "recent" or "popular"
	CategorySlug string
	Limit        int
	Offset       int
}

// recipeRepository implements RecipeRepository
type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create persists the recipe together with its ingredients, steps and
// category links in a single transaction.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(recipe).Error
	})
}

// Update saves the recipe row. When replaceChildren is set the existing
// ingredients, steps and category links are dropped and the ones on the
// model inserted in their place, all inside one transaction.
func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, replaceChildren bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !replaceChildren {
			return tx.Omit(clause.Associations).Save(recipe).Error
		}
		// Replace children wholesale: delete then insert keeps ordering
		// authoritative and avoids diffing positions row by row.
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeStep{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Categories").Clear(); err != nil {
			return err
		}
		return tx.Omit("Categories.*").Save(recipe).Error
	})
	if err == nil {
		cache.InvalidateRecipe(ctx, recipe.ID)
	}
	return err
}

func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Recipe{}, id).Error; err != nil {
		return err
	}
	cache.InvalidateRecipe(ctx, id)
	return nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.applyRecipeDetails(r.applyVisibility(r.db.WithContext(ctx), currentUserID), currentUserID).
		Preload("User").
		Preload("Ingredients", ingredientOrder).
		Preload("Steps", stepOrder).
		Preload("Categories").
		First(&recipe, "recipes.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetBySlug(ctx context.Context, userID uint, slug string, currentUserID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.applyRecipeDetails(r.applyVisibility(r.db.WithContext(ctx), currentUserID), currentUserID).
		Preload("User").
		Preload("Ingredients", ingredientOrder).
		Preload("Steps", stepOrder).
		Preload("Categories").
		Where("recipes.user_id = ? AND recipes.slug = ?", userID, slug).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Recipe, error) {
	var recipes []*models.Recipe
	err := r.applyRecipeCounts(r.applyVisibility(r.db.WithContext(ctx), currentUserID)).
		Preload("User").
		Preload("Categories").
		Where("recipes.user_id = ?", userID).
		Order("recipes.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) List(ctx context.Context, opts ListOptions, currentUserID uint) ([]*models.Recipe, error) {
	var recipes []*models.Recipe
	q := r.applyRecipeCounts(r.applyVisibility(r.db.WithContext(ctx), currentUserID)).
		Preload("User").
		Preload("Categories")
	if opts.CategorySlug != "" {
		q = q.Joins("JOIN recipe_categories rc ON rc.recipe_id = recipes.id").
			Joins("JOIN categories ON categories.id = rc.category_id").
			Where("categories.slug = ?", opts.CategorySlug)
	}
	err := r.applySort(q, opts.Sort).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&recipes).Error
	return recipes, err
}

// ListByAuthors returns public recipes from the given authors ordered by
// recency. Used by the following feed; the author set is resolved first
// so this stays a single IN query.
func (r *recipeRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Recipe, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var recipes []*models.Recipe
	err := r.applyRecipeCounts(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Categories").
		Where("recipes.user_id IN ? AND recipes.visibility = ?", authorIDs, models.VisibilityPublic).
		Order("recipes.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) ListSaved(ctx context.Context, userID uint, limit, offset int) ([]*models.Recipe, error) {
	var recipes []*models.Recipe
	err := r.applyRecipeCounts(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Categories").
		Joins("JOIN saves ON saves.recipe_id = recipes.id").
		Where("saves.user_id = ?", userID).
		Where("recipes.visibility = ? OR recipes.user_id = ?", models.VisibilityPublic, userID).
		Order("saves.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) Search(ctx context.Context, query string, opts ListOptions, currentUserID uint) ([]*models.Recipe, error) {
	var recipes []*models.Recipe
	like := "%" + query + "%"
	q := r.applyRecipeCounts(r.applyVisibility(r.db.WithContext(ctx), currentUserID)).
		Preload("User").
		Preload("Categories").
		Where("recipes.title ILIKE ? OR recipes.description ILIKE ?", like, like)
	if opts.CategorySlug != "" {
		q = q.Joins("JOIN recipe_categories rc ON rc.recipe_id = recipes.id").
			Joins("JOIN categories ON categories.id = rc.category_id").
			Where("categories.slug = ?", opts.CategorySlug)
	}
	err := r.applySort(q, opts.Sort).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&recipes).Error
	return recipes, err
}

// SlugsLike returns the author's slugs equal to base or starting with
// "base-", including soft-deleted rows so remembered URLs never collide.
func (r *recipeRepository) SlugsLike(ctx context.Context, userID uint, base string) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Recipe{}).
		Where("user_id = ? AND (slug = ? OR slug LIKE ?)", userID, base, base+"-%").
		Pluck("slug", &slugs).Error
	return slugs, err
}

func (r *recipeRepository) Like(ctx context.Context, userID, recipeID uint) error {
	// ON CONFLICT DO NOTHING keeps repeated likes idempotent under races
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: userID, RecipeID: recipeID}).Error
	if err == nil {
		cache.InvalidateRecipe(ctx, recipeID)
	}
	return err
}

func (r *recipeRepository) Unlike(ctx context.Context, userID, recipeID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidateRecipe(ctx, recipeID)
	}
	return err
}

func (r *recipeRepository) IsLiked(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) Save(ctx context.Context, userID, recipeID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Save{UserID: userID, RecipeID: recipeID}).Error
	if err == nil {
		cache.InvalidateRecipe(ctx, recipeID)
	}
	return err
}

func (r *recipeRepository) Unsave(ctx context.Context, userID, recipeID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Save{}).Error
	if err == nil {
		cache.InvalidateRecipe(ctx, recipeID)
	}
	return err
}

func (r *recipeRepository) IsSaved(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Save{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *recipeRepository) GetLikedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}
	var likedIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &likedIDs).Error
	return likedIDs, err
}

func (r *recipeRepository) GetSavedRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}
	var savedIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Save{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &savedIDs).Error
	return savedIDs, err
}

// applyVisibility hides private recipes from everyone but their author.
func (r *recipeRepository) applyVisibility(db *gorm.DB, currentUserID uint) *gorm.DB {
	if currentUserID == 0 {
		return db.Where("recipes.visibility = ?", models.VisibilityPublic)
	}
	return db.Where("recipes.visibility = ? OR recipes.user_id = ?", models.VisibilityPublic, currentUserID)
}

// applyRecipeCounts adds subqueries to fetch interaction counts in a single query.
func (r *recipeRepository) applyRecipeCounts(db *gorm.DB) *gorm.DB {
	return db.Select("recipes.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.recipe_id = recipes.id) as like_count, " +
		"(SELECT COUNT(*) FROM saves WHERE saves.recipe_id = recipes.id) as save_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.recipe_id = recipes.id AND comments.deleted_at IS NULL) as comment_count")
}

// applyRecipeDetails adds the count subqueries plus per-viewer liked/saved flags.
func (r *recipeRepository) applyRecipeDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "recipes.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.recipe_id = recipes.id) as like_count, " +
		"(SELECT COUNT(*) FROM saves WHERE saves.recipe_id = recipes.id) as save_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.recipe_id = recipes.id AND comments.deleted_at IS NULL) as comment_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.recipe_id = recipes.id AND likes.user_id = ?) as liked"+
			", EXISTS(SELECT 1 FROM saves WHERE saves.recipe_id = recipes.id AND saves.user_id = ?) as saved",
			currentUserID, currentUserID)
	}

	return db.Select(selectQuery + ", false as liked, false as saved")
}

// applySort appends the ORDER BY clause for the requested sort type.
// like_count is a SELECT alias from applyRecipeCounts; PostgreSQL allows
// referencing it in ORDER BY within the same query level.
func (r *recipeRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "popular":
		return db.Order("like_count DESC, recipes.created_at DESC")
	default: // "recent" and anything unrecognized
		return db.Order("recipes.created_at DESC")
	}
}

func ingredientOrder(db *gorm.DB) *gorm.DB {
	return db.Order("recipe_ingredients.position ASC")
}

func stepOrder(db *gorm.DB) *gorm.DB {
	return db.Order("recipe_steps.position ASC")
}
