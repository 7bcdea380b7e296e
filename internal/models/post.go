package models

import (
	"time"
)

// Location is a geocoded coordinate pair resolved from a post's address.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Post represents a post in the Wander application. Creator is immutable
// after creation; Location is recomputed only when Address changes.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ImageURL    string    `json:"image,omitempty"`
	Address     string    `json:"address,omitempty"`
	Location    *Location `gorm:"embedded" json:"location,omitempty"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`
	Creator     User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	// Likes is the set of user IDs that liked this post; computed at query time.
	Likes []uint `gorm:"-" json:"likes"`
	// LikesCount is not persisted; computed at query time.
	LikesCount int       `gorm:"->" json:"likes_count"`
	Comments   []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PostLike records a user's like on a post. The combination of UserID and
// PostID must be unique.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (PostLike) TableName() string {
	return "post_likes"
}
