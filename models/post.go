package models

import "time"

// Post is a blog entry. Likes, Views and CommentsCount are cached counters:
// Likes/Views only move through atomic SQL updates, CommentsCount is
// recomputed from live comment rows on every comment mutation.
// PublishedAt == nil means the post is a draft and hidden from public listings.
type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	Slug          string     `gorm:"size:160;not null;uniqueIndex" json:"slug"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Excerpt       string     `gorm:"size:512" json:"excerpt"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Category      string     `gorm:"size:32;index;default:'news'" json:"category"`
	CoverURL      string     `gorm:"size:512" json:"cover_url"`
	Featured      bool       `gorm:"default:false" json:"featured"`
	Likes         int64      `gorm:"not null;default:0" json:"likes"`
	Views         int64      `gorm:"not null;default:0" json:"views"`
	CommentsCount int64      `gorm:"not null;default:0" json:"comments_count"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	User          User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments      []Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

// Published reports whether the post is visible to the public.
func (p *Post) Published() bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(time.Now())
}
