package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/models"
	"github.com/kinygroup/kiny/utils"
)

// JourneyController manages the ordered company timeline.
type JourneyController struct {
	db *gorm.DB
}

func NewJourneyController(db *gorm.DB) *JourneyController {
	return &JourneyController{db: db}
}

// ListJourney returns timeline items in display order, public.
func (j *JourneyController) ListJourney(ctx *gin.Context) {
	if cached, ok := utils.CacheGetBytes("cache:journey:list"); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}
	var items []models.JourneyItem
	if err := j.db.Order("position ASC, year ASC").Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to list journey items")
		return
	}
	payload := gin.H{"items": items}
	utils.CacheSetJSON("cache:journey:list", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

type journeyRequest struct {
	Year        int    `json:"year" binding:"required"`
	Title       string `json:"title" binding:"required,min=1"`
	Description string `json:"description"`
}

// CreateJourneyItem is editor and above; new items append to the end.
func (j *JourneyController) CreateJourneyItem(ctx *gin.Context) {
	var req journeyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	var maxPos int
	if err := j.db.Model(&models.JourneyItem{}).Select("COALESCE(MAX(position), 0)").Scan(&maxPos).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to determine position")
		return
	}

	item := models.JourneyItem{
		Year:        req.Year,
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Description: utils.Sanitize(req.Description),
		Position:    maxPos + 1,
	}
	if err := j.db.Create(&item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to create journey item")
		return
	}
	utils.InvalidateByPrefix("cache:journey:")
	utils.Success(ctx, gin.H{"item": item})
}

// UpdateJourneyItem is editor and above.
func (j *JourneyController) UpdateJourneyItem(ctx *gin.Context) {
	var req journeyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, "invalid request payload")
		return
	}
	var item models.JourneyItem
	if err := j.db.First(&item, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "journey item not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to load journey item")
		return
	}
	item.Year = req.Year
	item.Title = utils.Sanitize(strings.TrimSpace(req.Title))
	item.Description = utils.Sanitize(req.Description)
	if err := j.db.Save(&item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to update journey item")
		return
	}
	utils.InvalidateByPrefix("cache:journey:")
	utils.Success(ctx, gin.H{"item": item})
}

// DeleteJourneyItem is admin only.
func (j *JourneyController) DeleteJourneyItem(ctx *gin.Context) {
	var item models.JourneyItem
	if err := j.db.First(&item, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40451, "journey item not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to load journey item")
		return
	}
	if err := j.db.Delete(&item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to delete journey item")
		return
	}
	utils.InvalidateByPrefix("cache:journey:")
	utils.Success(ctx, gin.H{"message": "journey item deleted"})
}

// ReorderJourney rewrites positions from an ordered ID list in a single
// transaction so the list cannot be observed half-reordered. Every existing
// item must appear exactly once.
func (j *JourneyController) ReorderJourney(ctx *gin.Context) {
	var req struct {
		IDs []uint `json:"ids" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid request payload")
		return
	}

	seen := make(map[uint]bool, len(req.IDs))
	for _, id := range req.IDs {
		if seen[id] {
			utils.Error(ctx, http.StatusBadRequest, 40083, "duplicate id in order list")
			return
		}
		seen[id] = true
	}

	var total int64
	if err := j.db.Model(&models.JourneyItem{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50087, "failed to count journey items")
		return
	}
	if total != int64(len(req.IDs)) {
		utils.Error(ctx, http.StatusBadRequest, 40084, "order list must contain every journey item exactly once")
		return
	}

	var known int64
	if err := j.db.Model(&models.JourneyItem{}).Where("id IN ?", req.IDs).Count(&known).Error; err != nil || known != int64(len(req.IDs)) {
		utils.Error(ctx, http.StatusBadRequest, 40085, "unknown id in order list")
		return
	}

	err := j.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range req.IDs {
			if err := tx.Model(&models.JourneyItem{}).Where("id = ?", id).UpdateColumn("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50088, "failed to reorder journey items")
		return
	}

	utils.InvalidateByPrefix("cache:journey:")
	utils.Success(ctx, gin.H{"message": "journey reordered"})
}
