package utils

import (
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/kinygroup/kiny/models"
)

// StartUploadCleaner launches a background goroutine that periodically
// deletes expired uploaded files recorded in the database. It is best-effort
// and logs failures. The returned function stops the goroutine.
func StartUploadCleaner(db *gorm.DB, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				sweepExpiredUploads(db)
			}
		}
	}()
	return func() {
		close(quit)
		<-done
	}
}

func sweepExpiredUploads(db *gorm.DB) {
	var items []models.UploadedFile
	if err := db.Where("expires_at <= ?", time.Now()).Limit(100).Find(&items).Error; err != nil {
		if Sugar != nil {
			Sugar.Warnf("upload cleaner query failed: %v", err)
		}
		return
	}
	for _, it := range items {
		if it.FilePath != "" {
			_ = os.Remove(it.FilePath)
		}
		// Remove the row regardless of file deletion outcome.
		if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
			if Sugar != nil {
				Sugar.Warnf("upload cleaner delete row failed: %v", err)
			}
		}
	}
}
