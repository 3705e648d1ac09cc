package repository

import (
	"context"

	"recipenest/internal/cache"
	"recipenest/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository defines the interface for category operations
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Category, error)
	Seed(ctx context.Context, categories []models.Category) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := cache.Aside(ctx, cache.CategoriesKey, &categories, cache.CategoriesTTL, func() error {
		return r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetBySlugs resolves category slugs to rows in a single IN query.
func (r *categoryRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Category, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var categories []models.Category
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&categories).Error
	return categories, err
}

// Seed inserts the fixed category set, skipping ones that already exist.
func (r *categoryRepository) Seed(ctx context.Context, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&categories).Error
	if err == nil {
		cache.InvalidateCategories(ctx)
	}
	return err
}
