package models

import "time"

// PostView records one page load of a post. There is no uniqueness
// constraint: every read may insert a row, and the post's cached views
// counter is incremented alongside.
type PostView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	IP        string    `gorm:"size:45" json:"ip"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
