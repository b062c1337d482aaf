package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/config"
	"github.com/kinygroup/kiny/models"
	"github.com/kinygroup/kiny/utils"
)

// UploadController stores image uploads on local disk under a dated directory
// and records them for TTL based cleanup.
type UploadController struct {
	db *gorm.DB
}

func NewUploadController(db *gorm.DB) *UploadController {
	return &UploadController{db: db}
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadImage accepts a multipart "file" field, sniffs the content type and
// saves allowed images under UploadDir/yyyy/mm/dd/.
func (u *UploadController) UploadImage(ctx *gin.Context) {
	cfg := config.Get()

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40095, "file field is required")
		return
	}
	maxBytes := int64(cfg.UploadMaxSizeMB) << 20
	if fileHeader.Size > maxBytes {
		utils.Error(ctx, http.StatusBadRequest, 40096, fmt.Sprintf("file exceeds %dMB limit", cfg.UploadMaxSizeMB))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to read upload")
		return
	}
	defer src.Close()

	// Sniff the real content type instead of trusting the client header.
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to read upload")
		return
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40097, "only jpeg, png, gif and webp images are allowed")
		return
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50102, "failed to read upload")
		return
	}

	now := time.Now()
	relDir := filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	dir := filepath.Join(cfg.UploadDir, relDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50103, "failed to prepare upload directory")
		return
	}

	name := uuid.NewString() + ext
	fullPath := filepath.Join(dir, name)
	dst, err := os.Create(fullPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50104, "failed to store upload")
		return
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(fullPath)
		utils.Error(ctx, http.StatusInternalServerError, 50105, "failed to store upload")
		return
	}

	userID, _ := getUserID(ctx)
	url := "/static/uploads/" + filepath.ToSlash(filepath.Join(relDir, name))
	record := models.UploadedFile{
		UserID:    userID,
		FilePath:  fullPath,
		URL:       url,
		ExpiresAt: now.Add(time.Duration(cfg.UploadTTLMinutes) * time.Minute),
	}
	if err := u.db.Create(&record).Error; err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnw("failed to record upload", "path", fullPath, "error", err)
		}
	}

	utils.Success(ctx, gin.H{"url": fmt.Sprintf("%s?v=%d", url, now.Unix())})
}
