package models

import "time"

// Follow represents a directed follow edge from one user to another.
// The combination of FollowerID and FolloweeID must be unique and a
// user can never follow themselves.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followee User `gorm:"foreignKey:FolloweeID" json:"followee,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
