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

// AchievementController manages awards and milestones.
type AchievementController struct {
	db *gorm.DB
}

func NewAchievementController(db *gorm.DB) *AchievementController {
	return &AchievementController{db: db}
}

// ListAchievements returns all achievements, newest year first, public.
func (a *AchievementController) ListAchievements(ctx *gin.Context) {
	if cached, ok := utils.CacheGetBytes("cache:achievements:list"); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}
	var achievements []models.Achievement
	if err := a.db.Order("year DESC, created_at DESC").Find(&achievements).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to list achievements")
		return
	}
	payload := gin.H{"items": achievements}
	utils.CacheSetJSON("cache:achievements:list", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

type achievementRequest struct {
	Title       string `json:"title" binding:"required,min=1"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Year        int    `json:"year"`
}

// CreateAchievement is editor and above. Mutations invalidate the cached
// pages that render achievements.
func (a *AchievementController) CreateAchievement(ctx *gin.Context) {
	var req achievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}
	achievement := models.Achievement{
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Description: utils.Sanitize(req.Description),
		ImageURL:    req.ImageURL,
		Year:        req.Year,
	}
	if err := a.db.Create(&achievement).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create achievement")
		return
	}
	utils.InvalidateByPrefix("cache:achievements:")
	utils.Success(ctx, gin.H{"achievement": achievement})
}

// UpdateAchievement is editor and above.
func (a *AchievementController) UpdateAchievement(ctx *gin.Context) {
	var req achievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid request payload")
		return
	}
	var achievement models.Achievement
	if err := a.db.First(&achievement, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "achievement not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load achievement")
		return
	}
	achievement.Title = utils.Sanitize(strings.TrimSpace(req.Title))
	achievement.Description = utils.Sanitize(req.Description)
	achievement.ImageURL = req.ImageURL
	achievement.Year = req.Year
	if err := a.db.Save(&achievement).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to update achievement")
		return
	}
	utils.InvalidateByPrefix("cache:achievements:")
	utils.Success(ctx, gin.H{"achievement": achievement})
}

// DeleteAchievement is admin only.
func (a *AchievementController) DeleteAchievement(ctx *gin.Context) {
	var achievement models.Achievement
	if err := a.db.First(&achievement, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40441, "achievement not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to load achievement")
		return
	}
	if err := a.db.Delete(&achievement).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to delete achievement")
		return
	}
	utils.InvalidateByPrefix("cache:achievements:")
	utils.Success(ctx, gin.H{"message": "achievement deleted"})
}
