// cmd/server/main.go
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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/config"
	"github.com/ultrulas16/sinekapar/internal/database"
	"github.com/ultrulas16/sinekapar/internal/i18n"
	"github.com/ultrulas16/sinekapar/internal/repository"
	"github.com/ultrulas16/sinekapar/internal/router"
)

func configureLogging(cfg config.LoggingConfig, environment string) {
	if cfg.Format == "json" || environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
}

// openStore returns the configured store and a cleanup func.
func openStore(ctx context.Context, cfg *config.Config) (router.Store, func(), error) {
	if cfg.Database.Driver == "memory" {
		store := repository.NewMemoryStore()
		if cfg.Database.Seed {
			if err := database.SeedMemory(ctx, store); err != nil {
				return nil, nil, fmt.Errorf("failed to seed memory store: %w", err)
			}
		}
		logrus.Warn("Using in-memory store; data is lost on restart")
		return store, func() {}, nil
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, nil, err
	}

	if cfg.Database.Seed {
		if err := database.SeedCatalog(db); err != nil {
			database.Close(db)
			return nil, nil, err
		}
	}

	return repository.NewGormStore(db), func() { database.Close(db) }, nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	configureLogging(cfg.Logging, cfg.Environment)

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open store")
	}
	defer closeStore()

	limiters := router.NewLimiters(cfg.RateLimit)
	go limiters.General.Run(ctx)
	go limiters.Cart.Run(ctx)
	go limiters.Upload.Run(ctx)

	r, err := router.Initialize(router.Dependencies{
		Store:    store,
		Limiters: limiters,
	}, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"port":   cfg.Server.Port,
			"driver": cfg.Database.Driver,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}
