package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kinygroup/kiny/config"
	"github.com/kinygroup/kiny/controllers"
	"github.com/kinygroup/kiny/middleware"
	"github.com/kinygroup/kiny/models"
	"github.com/kinygroup/kiny/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, views *utils.ViewTracker) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	al, err := utils.NewRollingFileLogger(cfg.AccessLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(al, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(al, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	blogController := controllers.NewBlogController(db, views)
	divisionController := controllers.NewDivisionController(db)
	clientController := controllers.NewClientController(db)
	journeyController := controllers.NewJourneyController(db)
	achievementController := controllers.NewAchievementController(db)
	teamController := controllers.NewTeamController(db)
	uploadController := controllers.NewUploadController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public blog surface. Detail and like resolve the viewer when a token is
	// present but never require one.
	blog := api.Group("/blog")
	blog.GET("", blogController.ListPosts)
	blog.GET("/categories", blogController.ListCategories)
	blog.GET("/:slug", middleware.OptionalAuth(), blogController.GetPost)
	blog.POST("/:slug/like", middleware.OptionalAuth(), blogController.ToggleLike)

	// Public site content.
	api.GET("/divisions", divisionController.ListDivisions)
	api.POST("/divisions/validate-slug", divisionController.ValidateSlug)
	api.GET("/divisions/:slug", divisionController.GetDivision)
	api.GET("/clients", clientController.ListClients)
	api.GET("/journey", journeyController.ListJourney)
	api.GET("/achievements", achievementController.ListAchievements)
	api.GET("/team", teamController.ListTeam)
	api.GET("/stats", statsController.GetStats)

	// Commenting only needs an account; ownership checks for deletion happen
	// in the controller.
	member := api.Group("")
	member.Use(middleware.AuthRequired())
	member.POST("/blog/:slug/comments", blogController.CreateComment)
	member.DELETE("/comments/:id", blogController.DeleteComment)

	// Authoring requires at least the contributor role. Ownership checks for
	// contributors happen in the controllers.
	authoring := api.Group("")
	authoring.Use(middleware.AuthRequired(), middleware.RequireRole(models.RoleContributor))
	authoring.GET("/blog/mine", blogController.ListMyPosts)
	authoring.POST("/blog", blogController.CreatePost)
	authoring.PUT("/blog/:slug", blogController.UpdatePost)
	authoring.DELETE("/blog/:slug", blogController.DeletePost)
	authoring.POST("/upload", uploadController.UploadImage)

	// Site content management is editor and above, deletes admin only.
	editing := api.Group("")
	editing.Use(middleware.AuthRequired(), middleware.RequireRole(models.RoleEditor))
	editing.POST("/divisions", divisionController.CreateDivision)
	editing.PUT("/divisions/:slug", divisionController.UpdateDivision)
	editing.POST("/clients", clientController.CreateClient)
	editing.PUT("/clients/:id", clientController.UpdateClient)
	editing.POST("/journey", journeyController.CreateJourneyItem)
	editing.PUT("/journey/:id", journeyController.UpdateJourneyItem)
	editing.PUT("/journey/reorder", journeyController.ReorderJourney)
	editing.POST("/achievements", achievementController.CreateAchievement)
	editing.PUT("/achievements/:id", achievementController.UpdateAchievement)
	editing.POST("/team/departments", teamController.CreateDepartment)
	editing.POST("/team/members", teamController.CreateMember)
	editing.PUT("/team/members/:id", teamController.UpdateMember)

	admin := api.Group("")
	admin.Use(middleware.AuthRequired(), middleware.RequireRole(models.RoleAdmin))
	admin.DELETE("/divisions/:slug", divisionController.DeleteDivision)
	admin.DELETE("/clients/:id", clientController.DeleteClient)
	admin.DELETE("/journey/:id", journeyController.DeleteJourneyItem)
	admin.DELETE("/achievements/:id", achievementController.DeleteAchievement)
	admin.DELETE("/team/departments/:id", teamController.DeleteDepartment)
	admin.DELETE("/team/members/:id", teamController.DeleteMember)
	admin.GET("/users", authController.ListUsers)
	admin.PATCH("/users/:id/role", authController.UpdateUserRole)
	admin.DELETE("/users/:id", authController.DeleteUser)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
