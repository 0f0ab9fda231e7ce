package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yeremiapane/garcom-app/config"
	"github.com/yeremiapane/garcom-app/database"
	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/router"
	"github.com/yeremiapane/garcom-app/services"
	"github.com/yeremiapane/garcom-app/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}
	utils.InitLogger()

	cfg := config.Load()
	utils.SetLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// schema upgrades run before any view can be served
	applied, err := database.Migrate(db)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}
	utils.InfoLogger.Printf("Migrations completed (%d applied)", applied)

	hub := live.NewHub()
	if cfg.SeedCatalog {
		if err := services.NewCatalogService(db, hub).EnsureDefaults(context.Background()); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed catalog: %v", err)
		}
	}

	clock := live.NewClock(hub, cfg.TickInterval)
	clock.Start()
	defer clock.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.SetupRouter(db, hub, cfg),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Shutdown: %v", err)
	}
}
