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

// DivisionController manages brand divisions and slug validation.
type DivisionController struct {
	db *gorm.DB
}

// NewDivisionController creates a new DivisionController instance.
func NewDivisionController(db *gorm.DB) *DivisionController {
	return &DivisionController{db: db}
}

// ListDivisions returns all divisions, newest first.
func (d *DivisionController) ListDivisions(ctx *gin.Context) {
	if cached, ok := utils.CacheGetBytes("cache:divisions:list"); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}

	var divisions []models.Division
	if err := d.db.Preload("User").Order("created_at DESC").Find(&divisions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list divisions")
		return
	}

	payload := gin.H{"items": divisions}
	utils.CacheSetJSON("cache:divisions:list", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetDivision returns a single division by slug.
func (d *DivisionController) GetDivision(ctx *gin.Context) {
	var division models.Division
	if err := d.db.Preload("User").Where("slug = ?", ctx.Param("slug")).First(&division).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "division not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to load division")
		return
	}
	utils.Success(ctx, gin.H{"division": division})
}

// ValidateSlug checks slug format and uniqueness. The result is always HTTP
// 200 with the outcome embedded, so routine validation failures do not read
// as request errors on the client.
func (d *DivisionController) ValidateSlug(ctx *gin.Context) {
	var req struct {
		Slug      string `json:"slug" binding:"required"`
		CurrentID uint   `json:"current_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusOK, gin.H{"available": false, "error": "slug is required"})
		return
	}

	available, reason, err := slugAvailability(d.db, &models.Division{}, strings.TrimSpace(req.Slug), req.CurrentID)
	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"available": false, "error": "validation failed, try again"})
		return
	}
	if !available {
		ctx.JSON(http.StatusOK, gin.H{"available": false, "error": reason})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"available": true})
}

type divisionRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required,min=1"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
}

// CreateDivision allows editors and above to create a division; the creator
// becomes the owner.
func (d *DivisionController) CreateDivision(ctx *gin.Context) {
	var req divisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	slug := strings.TrimSpace(req.Slug)
	available, reason, err := slugAvailability(d.db, &models.Division{}, slug, 0)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to validate slug")
		return
	}
	if !available {
		utils.Error(ctx, http.StatusBadRequest, 40051, reason)
		return
	}

	division := models.Division{
		UserID:      userID,
		Slug:        slug,
		Name:        utils.Sanitize(strings.TrimSpace(req.Name)),
		Tagline:     utils.Sanitize(req.Tagline),
		Description: utils.Sanitize(req.Description),
		LogoURL:     req.LogoURL,
	}
	if err := d.db.Create(&division).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to create division")
		return
	}

	utils.InvalidateByPrefix("cache:divisions:")
	utils.Success(ctx, gin.H{"division": division})
}

// UpdateDivision allows the owning editor or admins to update a division.
func (d *DivisionController) UpdateDivision(ctx *gin.Context) {
	var req divisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid request payload")
		return
	}

	var division models.Division
	if err := d.db.Where("slug = ?", ctx.Param("slug")).First(&division).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "division not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to load division")
		return
	}

	userID, _ := getUserID(ctx)
	if division.UserID != userID && !models.RoleAtLeast(getRole(ctx), models.RoleAdmin) {
		utils.Error(ctx, http.StatusForbidden, 40304, "you can only update your own divisions")
		return
	}

	newSlug := strings.TrimSpace(req.Slug)
	available, reason, err := slugAvailability(d.db, &models.Division{}, newSlug, division.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to validate slug")
		return
	}
	if !available {
		utils.Error(ctx, http.StatusBadRequest, 40053, reason)
		return
	}

	division.Slug = newSlug
	division.Name = utils.Sanitize(strings.TrimSpace(req.Name))
	division.Tagline = utils.Sanitize(req.Tagline)
	division.Description = utils.Sanitize(req.Description)
	division.LogoURL = req.LogoURL
	if err := d.db.Save(&division).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to update division")
		return
	}

	utils.InvalidateByPrefix("cache:divisions:")
	utils.Success(ctx, gin.H{"division": division})
}

// DeleteDivision is admin only.
func (d *DivisionController) DeleteDivision(ctx *gin.Context) {
	var division models.Division
	if err := d.db.Where("slug = ?", ctx.Param("slug")).First(&division).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40412, "division not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to load division")
		return
	}

	if err := d.db.Delete(&division).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50058, "failed to delete division")
		return
	}

	utils.InvalidateByPrefix("cache:divisions:")
	utils.Success(ctx, gin.H{"message": "division deleted"})
}
