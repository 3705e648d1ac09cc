package models

import (
	"time"

	"gorm.io/gorm"
)

// Visibility controls who can see a recipe.
type Visibility string

const (
	// VisibilityPublic makes a recipe visible to everyone.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate restricts a recipe to its author.
	VisibilityPrivate Visibility = "private"
)

// Difficulty is the author-assigned skill level for a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Recipe represents a published recipe in RecipeNest.
type Recipe struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"not null;uniqueIndex:idx_recipes_user_slug" json:"slug"`
	UserID      uint       `gorm:"not null;index;uniqueIndex:idx_recipes_user_slug" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user"`
	Description string     `gorm:"type:text" json:"description"`
	ImageURL    string     `json:"image_url"`
	Visibility  Visibility `gorm:"type:varchar(10);default:'public';index" json:"visibility"`
	Difficulty  Difficulty `gorm:"type:varchar(10);default:'medium'" json:"difficulty"`
	Servings    int        `json:"servings"`
	PrepMinutes int        `json:"prep_minutes"`
	CookMinutes int        `json:"cook_minutes"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
	Steps       []RecipeStep       `gorm:"foreignKey:RecipeID" json:"steps"`
	Categories  []Category         `gorm:"many2many:recipe_categories" json:"categories"`

	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"like_count"`
	// SaveCount is not persisted; computed at query time
	SaveCount int `gorm:"->" json:"save_count"`
	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->" json:"comment_count"`
	// Liked indicates whether the current requesting user liked this recipe (computed)
	Liked bool `gorm:"->" json:"liked"`
	// Saved indicates whether the current requesting user saved this recipe (computed)
	Saved     bool           `gorm:"->" json:"saved"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RecipeIngredient is one line of a recipe's ingredient list.
// Position preserves author ordering.
type RecipeIngredient struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	RecipeID uint    `gorm:"not null;index" json:"-"`
	Position int     `gorm:"not null" json:"position"`
	Name     string  `gorm:"not null" json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Note     string  `json:"note,omitempty"`
}

// RecipeStep is one instruction in a recipe, ordered by Position.
type RecipeStep struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RecipeID    uint   `gorm:"not null;index" json:"-"`
	Position    int    `gorm:"not null" json:"position"`
	Instruction string `gorm:"type:text;not null" json:"instruction"`
}

// Category is a curated recipe grouping (e.g. "desserts", "vegan").
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
	Slug string `gorm:"unique;not null" json:"slug"`
}
