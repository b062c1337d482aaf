package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/models"
	"github.com/kinygroup/kiny/utils"
)

// StatsController exposes public aggregate counters for the site footer.
type StatsController struct {
	db *gorm.DB
}

func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns user, published post, comment and total view counts.
// Each aggregate is best effort and falls back to zero on failure.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var users, posts, comments int64
	var views int64

	if err := s.db.Model(&models.User{}).Count(&users).Error; err != nil {
		users = 0
	}
	now := time.Now()
	if err := s.db.Model(&models.Post{}).
		Where("published_at IS NOT NULL AND published_at <= ?", now).
		Count(&posts).Error; err != nil {
		posts = 0
	}
	if err := s.db.Model(&models.Comment{}).Count(&comments).Error; err != nil {
		comments = 0
	}
	if err := s.db.Model(&models.Post{}).
		Select("COALESCE(SUM(views), 0)").
		Scan(&views).Error; err != nil {
		views = 0
	}

	utils.Success(ctx, gin.H{
		"users":    users,
		"posts":    posts,
		"comments": comments,
		"views":    views,
	})
}
