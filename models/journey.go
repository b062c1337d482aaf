package models

import "time"

// JourneyItem is one entry of the company timeline. Position drives manual
// ordering; the reorder endpoint rewrites positions for a whole list.
type JourneyItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Year        int       `gorm:"not null" json:"year"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Position    int       `gorm:"index;not null;default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
