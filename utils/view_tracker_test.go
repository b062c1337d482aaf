package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kinygroup/kiny/models"
)

func newTrackerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.PostView{}))
	return db
}

func TestViewTrackerRecordsEvents(t *testing.T) {
	db := newTrackerDB(t)
	post := models.Post{UserID: 1, Slug: "tracked", Title: "Tracked", Content: "body", Category: "news"}
	require.NoError(t, db.Create(&post).Error)

	tracker := NewViewTracker(db, 8)
	userID := uint(5)
	assert.True(t, tracker.Track(ViewEvent{PostID: post.ID, UserID: &userID, IP: "203.0.113.7", UserAgent: "test-agent"}))
	assert.True(t, tracker.Track(ViewEvent{PostID: post.ID, IP: "203.0.113.8", UserAgent: "test-agent"}))
	tracker.Stop()

	var rows []models.PostView
	require.NoError(t, db.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].UserID)
	assert.EqualValues(t, 5, *rows[0].UserID)
	assert.Nil(t, rows[1].UserID)
	assert.Equal(t, "203.0.113.7", rows[0].IP)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.EqualValues(t, 2, stored.Views)
}

// Track never blocks; a full buffer drops the event, and the counter matches
// whatever was accepted once the worker drains.
func TestViewTrackerCountsAcceptedEvents(t *testing.T) {
	db := newTrackerDB(t)
	post := models.Post{UserID: 1, Slug: "busy", Title: "Busy", Content: "body", Category: "news"}
	require.NoError(t, db.Create(&post).Error)

	tracker := NewViewTracker(db, 1)
	accepted := 0
	for i := 0; i < 200; i++ {
		if tracker.Track(ViewEvent{PostID: post.ID, IP: "203.0.113.9"}) {
			accepted++
		}
	}
	tracker.Stop()

	assert.Greater(t, accepted, 0)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.EqualValues(t, accepted, stored.Views)

	var viewRows int64
	require.NoError(t, db.Model(&models.PostView{}).Count(&viewRows).Error)
	assert.EqualValues(t, accepted, viewRows)
}
