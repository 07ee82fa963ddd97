package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "toolshare-backend/internal/api/http"
	"toolshare-backend/internal/clock"
	"toolshare-backend/internal/config"
	"toolshare-backend/internal/jobs"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
	"toolshare-backend/internal/repository/memory"
	"toolshare-backend/internal/repository/postgres"
	"toolshare-backend/internal/scheduler"
	"toolshare-backend/internal/security"
	"toolshare-backend/internal/service"
	"toolshare-backend/internal/storage"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Toolshare Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "timezone", cfg.Clock.Timezone)

	ctx := context.Background()

	// Initialize Store
	var store repository.Store
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("Using in-memory store; data is lost on restart")
		store = memory.NewStore()
	default:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(db); err != nil {
				logger.Error("Failed to migrate database", "error", err)
				log.Fatalf("Failed to migrate database: %v", err)
			}
		}
		store = postgres.NewStore(db)
	}

	clk := clock.NewSystem(cfg.Location())

	// Initialize Storage Service
	iconStorage, mockStorage, err := storage.New(ctx, storage.Config{
		Type:    cfg.Storage.Type,
		MockDir: cfg.Storage.UploadDir,
		BaseURL: cfg.Storage.BaseURL,
		S3: storage.S3Config{
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			PathStyle:       cfg.Storage.S3.PathStyle,
		},
	})
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "type", cfg.Storage.Type)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Icon storage ready", "type", cfg.Storage.Type)

	// Initialize Services
	requestSvc := service.NewBorrowRequestService(store, clk)
	toolSvc := service.NewToolService(store, clk)
	iconSvc := service.NewIconService(iconStorage, cfg.PresignExpiry())

	// Initialize Security
	var tokenManager security.TokenManager
	if cfg.Auth.JWTSecret != "" {
		tokenManager = security.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTokenExpiry)*time.Minute)
	}
	if cfg.Auth.AllowUserHeader {
		logger.Warn("X-User-ID header authentication is enabled; do not use in production")
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		BorrowRequests:  requestSvc,
		Tools:           toolSvc,
		Icons:           iconSvc,
		MockStorage:     mockStorage,
		TokenManager:    tokenManager,
		AllowUserHeader: cfg.Auth.AllowUserHeader,
		MetricsPath:     metricsPath,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	// Optional in-process scheduler; cmd/cronjob runs the same jobs standalone
	var cronScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		cronScheduler = scheduler.NewScheduler(jobs.NewJobRunner(requestSvc, cfg), cfg.Location())
		cronScheduler.Start()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal or a listener failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Received signal, initiating graceful shutdown", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	logger.Info("Server stopped")
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Database connection established")
	return db, nil
}
