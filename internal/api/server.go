// Package api exposes the risk calculators over HTTP with gin.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cardio-risk-server/internal/domain"
	"github.com/cardio-risk-server/internal/middleware"
	"github.com/cardio-risk-server/internal/repository"
	"github.com/cardio-risk-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	config   *domain.Config
	logger   *logrus.Logger
	assessor *service.AssessorService
	repo     *repository.AssessmentRepository
	recent   *RecentCache
	router   *gin.Engine
	server   *http.Server
}

// NewServer creates a new HTTP server instance. repo may be nil when
// database persistence is disabled.
func NewServer(cfg *domain.Config, logger *logrus.Logger, assessor *service.AssessorService, repo *repository.AssessmentRepository) (*Server, error) {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	recent, err := NewRecentCache(cfg.Limits.RecentCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating recent cache: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RateLimit(cfg.Limits.RequestsPerSecond, cfg.Limits.Burst))

	s := &Server{
		config:   cfg,
		logger:   logger,
		assessor: assessor,
		repo:     repo,
		recent:   recent,
		router:   router,
	}

	s.setupRoutes()

	return s, nil
}

// Router exposes the underlying gin engine, primarily for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/ascvd", s.handleASCVD)
		v1.POST("/bp", s.handleBloodPressure)
		v1.POST("/stroke-risk", s.handleStrokeRisk)
		v1.POST("/ecg/rhythm", s.handleECGRhythm)
		v1.POST("/ecg/twelve-lead", s.handleECGTwelveLead)
		v1.POST("/ecg/comprehensive", s.handleECGComprehensive)
		v1.GET("/assessments/recent", s.handleRecentAssessments)
		v1.GET("/assessments/:id", s.handleGetAssessment)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}
