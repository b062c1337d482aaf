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

// ClientController manages the public clients list.
type ClientController struct {
	db *gorm.DB
}

func NewClientController(db *gorm.DB) *ClientController {
	return &ClientController{db: db}
}

// ListClients returns all clients, public.
func (c *ClientController) ListClients(ctx *gin.Context) {
	if cached, ok := utils.CacheGetBytes("cache:clients:list"); ok {
		ctx.Data(http.StatusOK, "application/json", cached)
		return
	}
	var clients []models.Client
	if err := c.db.Order("name ASC").Find(&clients).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to list clients")
		return
	}
	payload := gin.H{"items": clients}
	utils.CacheSetJSON("cache:clients:list", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

type clientRequest struct {
	Name     string `json:"name" binding:"required,min=1"`
	LogoURL  string `json:"logo_url"`
	Website  string `json:"website"`
	Industry string `json:"industry"`
}

// CreateClient is editor and above.
func (c *ClientController) CreateClient(ctx *gin.Context) {
	var req clientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	client := models.Client{
		Name:     utils.Sanitize(strings.TrimSpace(req.Name)),
		LogoURL:  req.LogoURL,
		Website:  req.Website,
		Industry: utils.Sanitize(req.Industry),
	}
	if err := c.db.Create(&client).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create client")
		return
	}
	utils.InvalidateByPrefix("cache:clients:")
	utils.Success(ctx, gin.H{"client": client})
}

// UpdateClient is editor and above.
func (c *ClientController) UpdateClient(ctx *gin.Context) {
	var req clientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid request payload")
		return
	}
	var client models.Client
	if err := c.db.First(&client, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "client not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load client")
		return
	}
	client.Name = utils.Sanitize(strings.TrimSpace(req.Name))
	client.LogoURL = req.LogoURL
	client.Website = req.Website
	client.Industry = utils.Sanitize(req.Industry)
	if err := c.db.Save(&client).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to update client")
		return
	}
	utils.InvalidateByPrefix("cache:clients:")
	utils.Success(ctx, gin.H{"client": client})
}

// DeleteClient is admin only.
func (c *ClientController) DeleteClient(ctx *gin.Context) {
	var client models.Client
	if err := c.db.First(&client, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40431, "client not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load client")
		return
	}
	if err := c.db.Delete(&client).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to delete client")
		return
	}
	utils.InvalidateByPrefix("cache:clients:")
	utils.Success(ctx, gin.H{"message": "client deleted"})
}
