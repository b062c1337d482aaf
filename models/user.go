package models

import (
	"time"

	"gorm.io/gorm"
)

// Role levels form a strict hierarchy; each level inherits the rights of the
// levels below it.
const (
	RoleReader      = "reader"
	RoleContributor = "contributor"
	RoleEditor      = "editor"
	RoleAdmin       = "admin"
)

var roleRanks = map[string]int{
	RoleReader:      0,
	RoleContributor: 1,
	RoleEditor:      2,
	RoleAdmin:       3,
}

// RoleRank returns the numeric rank of a role. Unknown roles rank below reader.
func RoleRank(role string) int {
	if r, ok := roleRanks[role]; ok {
		return r
	}
	return -1
}

// RoleAtLeast reports whether role meets or exceeds the minimum role.
func RoleAtLeast(role, min string) bool {
	return RoleRank(role) >= RoleRank(min) && RoleRank(role) >= 0
}

// User represents an account with a role in the editorial hierarchy.
// Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string         `gorm:"size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:16;not null;default:'reader'" json:"role"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Posts        []Post         `json:"-"`
	Comments     []Comment      `json:"-"`
}

// BeforeCreate normalizes the role so every account carries a valid rank.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if RoleRank(u.Role) < 0 {
		u.Role = RoleReader
	}
	return nil
}
