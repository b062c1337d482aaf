package utils

import (
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/models"
)

// ViewEvent describes one page load of a post.
type ViewEvent struct {
	PostID    uint
	UserID    *uint
	IP        string
	UserAgent string
}

// ViewTracker persists view events from a background worker so the response
// never waits on the write. Failures are logged and dropped; a full buffer
// drops the event. Under-counting on failure and double counting on client
// retries are accepted.
type ViewTracker struct {
	db     *gorm.DB
	events chan ViewEvent
	done   chan struct{}
}

// NewViewTracker starts the worker goroutine.
func NewViewTracker(db *gorm.DB, buffer int) *ViewTracker {
	if buffer <= 0 {
		buffer = 256
	}
	t := &ViewTracker{
		db:     db,
		events: make(chan ViewEvent, buffer),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// Track enqueues a view event. Returns false when the buffer is full and the
// event was dropped.
func (t *ViewTracker) Track(ev ViewEvent) bool {
	select {
	case t.events <- ev:
		return true
	default:
		if Sugar != nil {
			Sugar.Warnf("view tracker buffer full, dropping event for post %d", ev.PostID)
		}
		return false
	}
}

// Stop drains all pending events and waits for the worker to exit. Track must
// not be called after Stop.
func (t *ViewTracker) Stop() {
	close(t.events)
	<-t.done
}

func (t *ViewTracker) run() {
	defer close(t.done)
	for ev := range t.events {
		t.record(ev)
	}
}

// record inserts the view row and bumps the cached counter. The two writes
// are independent best-effort statements.
func (t *ViewTracker) record(ev ViewEvent) {
	view := models.PostView{
		PostID:    ev.PostID,
		UserID:    ev.UserID,
		IP:        ev.IP,
		UserAgent: ev.UserAgent,
	}
	if err := t.db.Create(&view).Error; err != nil {
		if Sugar != nil {
			Sugar.Warnf("view row insert failed for post %d: %v", ev.PostID, err)
		}
	}
	if err := t.db.Model(&models.Post{}).
		Where("id = ?", ev.PostID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		if Sugar != nil {
			Sugar.Warnf("view counter update failed for post %d: %v", ev.PostID, err)
		}
	}
}
