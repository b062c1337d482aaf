package models

import "time"

// Client is a company shown on the public clients page.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	LogoURL   string    `gorm:"size:512" json:"logo_url"`
	Website   string    `gorm:"size:512" json:"website"`
	Industry  string    `gorm:"size:128" json:"industry"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
