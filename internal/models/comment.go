package models

import (
	"time"
)

// MaxCommentLen caps comment and reply content length.
const MaxCommentLen = 255

// Comment represents a comment on a post.
type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	PostID  uint   `gorm:"not null;index" json:"post_id"`
	UserID  uint   `gorm:"not null" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content string `gorm:"type:varchar(255);not null" json:"content"`
	// Likes is the set of user IDs that liked this comment; computed at query time.
	Likes      []uint    `gorm:"-" json:"likes"`
	LikesCount int       `gorm:"->" json:"likes_count"`
	Replies    []Reply   `gorm:"foreignKey:CommentID" json:"replies,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Reply represents a reply to a comment.
type Reply struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CommentID  uint      `gorm:"not null;index" json:"comment_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content    string    `gorm:"type:varchar(255);not null" json:"content"`
	Likes      []uint    `gorm:"-" json:"likes"`
	LikesCount int       `gorm:"->" json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommentLike records a user's like on a comment.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_like_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_like_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (CommentLike) TableName() string {
	return "comment_likes"
}

// ReplyLike records a user's like on a reply.
type ReplyLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reply_like_user_reply" json:"user_id"`
	ReplyID   uint      `gorm:"not null;uniqueIndex:idx_reply_like_user_reply" json:"reply_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (ReplyLike) TableName() string {
	return "reply_likes"
}
