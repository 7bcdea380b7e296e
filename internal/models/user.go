// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultAvatarURL is assigned to accounts created without an avatar.
const DefaultAvatarURL = "https://www.pngitem.com/pimgs/m/150-1503945_transparent-user-png-default-user-image-png-png.png"

// Role is the authorization role of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Gender is the self-reported gender of a user.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// User represents an account in the Wander application.
//
// TokenVersion is embedded into every refresh token at issue time;
// incrementing it invalidates all outstanding refresh tokens for the user.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"unique;not null" json:"username"`
	Email        string     `gorm:"unique;not null" json:"email"`
	Password     string     `gorm:"not null" json:"-"`
	Avatar       string     `json:"avatar"`
	Bio          string     `json:"bio"`
	CoverImage   string     `json:"cover_image"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	Gender       Gender     `gorm:"type:varchar(10)" json:"gender,omitempty"`
	Role         Role       `gorm:"type:varchar(10);default:'user'" json:"role"`
	IsVerified   bool       `gorm:"not null;default:false" json:"is_verified"`
	TokenVersion int        `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Followers/Following are the IDs of users on either side of the
	// follow relation; computed at query time from the follows table.
	Followers []uint `gorm:"-" json:"followers"`
	Following []uint `gorm:"-" json:"following"`

	Posts []Post `gorm:"foreignKey:CreatorID" json:"posts,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Follow is one directed edge of the follow relation. The composite primary
// key makes the relation a set: following twice is a constraint violation,
// and a single row insert/delete keeps both users' follower/following views
// consistent by construction.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Follow) TableName() string {
	return "follows"
}
