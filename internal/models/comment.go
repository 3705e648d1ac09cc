package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a recipe. A comment with a ParentID
// is a reply; replies nest one level only.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Content  string `gorm:"not null" json:"content"`
	UserID   uint   `gorm:"not null" json:"user_id"`
	RecipeID uint   `gorm:"not null;index" json:"recipe_id"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Recipe   Recipe `gorm:"foreignKey:RecipeID" json:"recipe,omitempty"`
	// Replies is assembled in the service layer for root comments.
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"like_count"`
	// Liked indicates whether the current requesting user liked this comment (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	IsEdited  bool           `json:"is_edited"`
	EditedAt  *time.Time     `json:"edited_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
