package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/kinygroup/kiny/config"
	"github.com/kinygroup/kiny/models"
	"github.com/kinygroup/kiny/routes"
	"github.com/kinygroup/kiny/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.PostView{},
		&models.Division{},
		&models.Client{},
		&models.JourneyItem{},
		&models.Achievement{},
		&models.Department{},
		&models.TeamMember{},
		&models.UploadedFile{},
	)

	views := utils.NewViewTracker(db, 256)
	stopCleaner := utils.StartUploadCleaner(db, 5*time.Minute)

	r := routes.SetupRouter(db, views)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	err := utils.GraceServer(":"+cfg.AppPort, r, func() {
		stopCleaner()
		views.Stop()
	})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
