package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/tickify/internal/api"
	"github.com/dom/tickify/internal/config"
	"github.com/dom/tickify/internal/events"
	"github.com/dom/tickify/internal/logging"
	"github.com/dom/tickify/internal/repository"
	"github.com/dom/tickify/internal/repository/postgres"
	"github.com/dom/tickify/internal/repository/sqlite"
	"github.com/dom/tickify/internal/service"
	"go.uber.org/zap"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize storage
	repos, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeStore()

	// Initialize live change feed
	hub := events.NewHub(logger)
	go hub.Run()

	// Initialize services
	services := service.NewServices(repos, cfg, hub)

	// Initialize router
	router := api.NewRouter(services, hub, cfg, logger)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	hub.Stop()

	logger.Info("server stopped")
}

// openStore connects the configured storage driver and returns its
// repositories with a function that releases the connection.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Repositories, func() error, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewRepositories(db), db.Close, nil

	case config.StorageDriverPostgres:
		db, err := postgres.NewConnection(cfg.DatabaseURL, gormLogLevel(cfg.LogLevel))
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewRepositories(db), sqlDB.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func gormLogLevel(level string) gormLogger.LogLevel {
	switch level {
	case "debug":
		return gormLogger.Info
	case "warn", "error":
		return gormLogger.Error
	}
	return gormLogger.Warn
}
