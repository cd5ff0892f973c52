package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/duckytan/DotCircle/internal/api"
	"github.com/duckytan/DotCircle/internal/config"
	"github.com/duckytan/DotCircle/internal/credit"
	"github.com/duckytan/DotCircle/internal/database"
	"github.com/duckytan/DotCircle/internal/handler"
	"github.com/duckytan/DotCircle/internal/help"
	"github.com/duckytan/DotCircle/internal/leaderboard"
	"github.com/duckytan/DotCircle/internal/logger"
	"github.com/duckytan/DotCircle/internal/maintenance"
	"github.com/duckytan/DotCircle/internal/middleware"
	"github.com/duckytan/DotCircle/internal/packages"
	"github.com/duckytan/DotCircle/internal/quota"
	"github.com/duckytan/DotCircle/internal/services"
	"github.com/duckytan/DotCircle/internal/store/postgres"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Error("Database connection failed: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	pgStore := postgres.New(db)

	// Cloudinary optionnel : les paquets IMAGE gardent alors le fileID brut
	// et le téléversement d'avatar répond indisponible
	var uploader packages.ImageUploader
	var avatars handler.AvatarUploader
	if cloud, err := services.NewCloudinaryService(cfg); err != nil {
		logger.Warning("Cloudinary désactivé: %v", err)
	} else {
		uploader = cloud
		avatars = cloud
	}

	// Services métier
	creditSvc := credit.NewService(pgStore)
	quotaTracker := quota.NewTracker(pgStore, creditSvc)
	helpSvc := help.NewCoordinator(pgStore, pgStore, creditSvc)
	packageSvc := packages.NewService(pgStore, pgStore, creditSvc, uploader)
	leaderboardSvc := leaderboard.NewService(pgStore)

	handler.Init(handler.Deps{
		Packages:    pgStore,
		Users:       pgStore,
		Credit:      creditSvc,
		PackageSvc:  packageSvc,
		Help:        helpSvc,
		Leaderboard: leaderboardSvc,
		Quota:       quotaTracker,
		Avatar:      avatars,
	})

	// Worker de maintenance (reprises, récupération de crédit, expirations)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	worker := maintenance.NewWorker(pgStore, pgStore, creditSvc, helpSvc, cfg.MaintenanceInterval)
	go worker.Run(ctx)

	// Initialize routes
	router := api.SetupRouter()

	// Wrap router with CORS middleware
	h := middleware.CORSMiddleware(router)

	// Start server
	logger.Success("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, h); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
