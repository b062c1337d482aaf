package models

import "time"

// Division is a brand division of the group, addressed by a human-chosen
// unique slug. The creating user owns it; mutation is restricted to the
// owner or admins.
type Division struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Slug        string    `gorm:"size:160;not null;uniqueIndex" json:"slug"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Tagline     string    `gorm:"size:512" json:"tagline"`
	Description string    `gorm:"type:text" json:"description"`
	LogoURL     string    `gorm:"size:512" json:"logo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"owner"`
}
