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

// TeamController manages departments and team members.
type TeamController struct {
	db *gorm.DB
}

func NewTeamController(db *gorm.DB) *TeamController {
	return &TeamController{db: db}
}

// ListTeam returns departments with their members in display order, public.
func (t *TeamController) ListTeam(ctx *gin.Context) {
	if cached, ok := utils.CacheGetBytes("cache:team:list"); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}
	var departments []models.Department
	if err := t.db.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, name ASC") }).
		Order("position ASC, name ASC").
		Find(&departments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to list team")
		return
	}
	payload := gin.H{"items": departments}
	utils.CacheSetJSON("cache:team:list", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// CreateDepartment is editor and above.
func (t *TeamController) CreateDepartment(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,min=1"`
		Position int    `json:"position"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid request payload")
		return
	}
	department := models.Department{
		Name:     utils.Sanitize(strings.TrimSpace(req.Name)),
		Position: req.Position,
	}
	if err := t.db.Create(&department).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to create department")
		return
	}
	utils.InvalidateByPrefix("cache:team:")
	utils.Success(ctx, gin.H{"department": department})
}

// DeleteDepartment is admin only; members cascade.
func (t *TeamController) DeleteDepartment(ctx *gin.Context) {
	var department models.Department
	if err := t.db.First(&department, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "department not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to load department")
		return
	}
	if err := t.db.Where("department_id = ?", department.ID).Delete(&models.TeamMember{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to delete members")
		return
	}
	if err := t.db.Delete(&department).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to delete department")
		return
	}
	utils.InvalidateByPrefix("cache:team:")
	utils.Success(ctx, gin.H{"message": "department deleted"})
}

type memberRequest struct {
	DepartmentID uint   `json:"department_id" binding:"required"`
	Name         string `json:"name" binding:"required,min=1"`
	Title        string `json:"title"`
	PhotoURL     string `json:"photo_url"`
	Bio          string `json:"bio"`
	Position     int    `json:"position"`
}

// CreateMember is editor and above.
func (t *TeamController) CreateMember(ctx *gin.Context) {
	var req memberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid request payload")
		return
	}
	var department models.Department
	if err := t.db.First(&department, req.DepartmentID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40092, "department not found")
		return
	}
	member := models.TeamMember{
		DepartmentID: department.ID,
		Name:         utils.Sanitize(strings.TrimSpace(req.Name)),
		Title:        utils.Sanitize(req.Title),
		PhotoURL:     req.PhotoURL,
		Bio:          utils.Sanitize(req.Bio),
		Position:     req.Position,
	}
	if err := t.db.Create(&member).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to create member")
		return
	}
	utils.InvalidateByPrefix("cache:team:")
	utils.Success(ctx, gin.H{"member": member})
}

// UpdateMember is editor and above.
func (t *TeamController) UpdateMember(ctx *gin.Context) {
	var req memberRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40093, "invalid request payload")
		return
	}
	var member models.TeamMember
	if err := t.db.First(&member, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40461, "member not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to load member")
		return
	}
	if req.DepartmentID != member.DepartmentID {
		var department models.Department
		if err := t.db.First(&department, req.DepartmentID).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40094, "department not found")
			return
		}
		member.DepartmentID = department.ID
	}
	member.Name = utils.Sanitize(strings.TrimSpace(req.Name))
	member.Title = utils.Sanitize(req.Title)
	member.PhotoURL = req.PhotoURL
	member.Bio = utils.Sanitize(req.Bio)
	member.Position = req.Position
	if err := t.db.Save(&member).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to update member")
		return
	}
	utils.InvalidateByPrefix("cache:team:")
	utils.Success(ctx, gin.H{"member": member})
}

// DeleteMember is admin only.
func (t *TeamController) DeleteMember(ctx *gin.Context) {
	var member models.TeamMember
	if err := t.db.First(&member, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40462, "member not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50098, "failed to load member")
		return
	}
	if err := t.db.Delete(&member).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50099, "failed to delete member")
		return
	}
	utils.InvalidateByPrefix("cache:team:")
	utils.Success(ctx, gin.H{"message": "member deleted"})
}
