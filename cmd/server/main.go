package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/cardio-risk-server/internal/api"
	"github.com/cardio-risk-server/internal/audit"
	"github.com/cardio-risk-server/internal/config"
	"github.com/cardio-risk-server/internal/database"
	"github.com/cardio-risk-server/internal/domain"
	"github.com/cardio-risk-server/internal/repository"
	"github.com/cardio-risk-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting cardiovascular risk assessment server")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional durable assessment store
	var repo *repository.AssessmentRepository
	if cfg.Database.Enabled {
		db, err := database.NewConnection(ctx, database.Config{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			Database:    cfg.Database.Database,
			Username:    cfg.Database.Username,
			Password:    cfg.Database.Password,
			SSLMode:     cfg.Database.SSLMode,
			MaxConns:    int32(cfg.Database.MaxOpenConns),
			MinConns:    int32(cfg.Database.MaxIdleConns),
			MaxConnLife: cfg.Database.ConnMaxLifetime,
			MaxConnIdle: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		repo = repository.NewAssessmentRepository(db.Pool, logger)
	}

	auditStore, err := newAuditStore(cfg.Audit)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open audit store")
	}
	if auditStore != nil {
		defer auditStore.Close()
	}

	assessor := service.NewAssessorService(logger, auditStore, assessorRepo(repo))

	server, err := api.NewServer(cfg, logger, assessor, repo)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server shutdown complete")
}

// assessorRepo converts a possibly-nil concrete repository into the service
// interface. A typed nil inside a non-nil interface would defeat the
// service's nil checks.
func assessorRepo(repo *repository.AssessmentRepository) service.AssessmentRepository {
	if repo == nil {
		return nil
	}
	return repo
}

func newAuditStore(cfg domain.AuditConfig) (audit.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "none":
		return nil, nil
	case "sqlite":
		return audit.NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		return audit.NewPostgresStoreFromURL(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown audit backend: %s", cfg.Backend)
	}
}

func newLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
