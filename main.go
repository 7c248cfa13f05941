package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/taskmaster-be/internal/api"
	"github.com/isdelr/taskmaster-be/internal/auth"
	"github.com/isdelr/taskmaster-be/internal/config"
	"github.com/isdelr/taskmaster-be/internal/database"
	"github.com/isdelr/taskmaster-be/internal/logger"
	"github.com/isdelr/taskmaster-be/internal/metrics"
	"github.com/isdelr/taskmaster-be/internal/monitoring"
	"github.com/isdelr/taskmaster-be/internal/services"
	"github.com/isdelr/taskmaster-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

const statInterval = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Set up database
	db, err := database.Open(context.Background(), cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("Failed to initialize database")
	}
	defer db.Close()

	m := metrics.New()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.TokenTTL, nil)
	userService := services.NewUserService(db)
	authService := services.NewAuthService(userService, tokens)
	taskService := services.NewTaskService(db, nil)
	categoryService := services.NewCategoryService(db)
	locationService := services.NewLocationService(db)
	deviceService := services.NewDeviceService(db)
	notificationService := services.NewNotificationService(db)

	// Set up and run the background stats updater
	statUpdater, err := monitoring.NewStatUpdater(taskService, m, cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize stat updater")
	}
	go statUpdater.Run(statInterval)

	// Set up and run the reminder scheduler
	scheduler, err := monitoring.NewReminderScheduler(notificationService, hub, m, cfg.ReminderSchedule, cfg.ReminderLead, nil)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ReminderSchedule).Msg("Failed to initialize reminder scheduler")
	}
	scheduler.Start()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		DB:             db,
		Hub:            hub,
		Metrics:        m,
		Stats:          statUpdater,
		Users:          userService,
		Auth:           authService,
		Tasks:          taskService,
		Categories:     categoryService,
		Locations:      locationService,
		Devices:        deviceService,
		Notifications:  notificationService,
		AllowedOrigins: cfg.AllowedOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		SecureCookies:  cfg.IsProduction(),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Environment).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop()
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
