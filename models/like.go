package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Like marks a post as liked by either a registered user or an anonymous
// visitor identified by a derived token, never both and never neither.
// One-per-identity is enforced by the toggle handler's existence check; the
// database carries lookup indexes only.
type Like struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"index:idx_likes_post_user;index:idx_likes_post_anon;not null" json:"post_id"`
	UserID      *uint     `gorm:"index:idx_likes_post_user" json:"user_id,omitempty"`
	AnonymousID *string   `gorm:"size:20;index:idx_likes_post_anon" json:"anonymous_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

var ErrLikeIdentity = errors.New("like must carry exactly one of user id or anonymous id")

// BeforeCreate rejects rows that do not carry exactly one identity.
func (l *Like) BeforeCreate(tx *gorm.DB) error {
	hasUser := l.UserID != nil
	hasAnon := l.AnonymousID != nil && *l.AnonymousID != ""
	if hasUser == hasAnon {
		return ErrLikeIdentity
	}
	return nil
}
