// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a RecipeNest account. Email is never serialized from
// here; the /users/me handlers attach it explicitly.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"unique;not null" json:"username"`
	DisplayName string         `json:"display_name"`
	Email       string         `gorm:"unique;not null" json:"-"`
	Password    string         `gorm:"not null" json:"-"`
	Bio         string         `json:"bio"`
	AvatarURL   string         `json:"avatar_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Computed at query time, never persisted.
	RecipeCount    int  `gorm:"->" json:"recipe_count"`
	FollowerCount  int  `gorm:"->" json:"follower_count"`
	FollowingCount int  `gorm:"->" json:"following_count"`
	Followed       bool `gorm:"->" json:"followed"`
	// FollowedAt is the follow edge's creation time; set only by the
	// follower/following listings.
	FollowedAt *time.Time `gorm:"->" json:"followed_at,omitempty"`

	Recipes []Recipe `gorm:"foreignKey:UserID" json:"recipes,omitempty"`
}

// Profile is the public projection of a user.
type Profile struct {
	ID             uint       `json:"id"`
	Username       string     `json:"username"`
	DisplayName    string     `json:"display_name"`
	Bio            string     `json:"bio"`
	AvatarURL      string     `json:"avatar_url"`
	RecipeCount    int        `json:"recipe_count"`
	FollowerCount  int        `json:"follower_count"`
	FollowingCount int        `json:"following_count"`
	Followed       bool       `json:"followed"`
	FollowedAt     *time.Time `json:"followed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToProfile strips private fields for public responses.
func (u *User) ToProfile() Profile {
	return Profile{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		Bio:            u.Bio,
		AvatarURL:      u.AvatarURL,
		RecipeCount:    u.RecipeCount,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		Followed:       u.Followed,
		FollowedAt:     u.FollowedAt,
		CreatedAt:      u.CreatedAt,
	}
}
