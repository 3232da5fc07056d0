package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"gold-analysis-bot/internal/signal"
	"gold-analysis-bot/internal/storage"
)

// SignalStore is the read surface the API serves from.
type SignalStore interface {
	HealthCheck(ctx context.Context) error
	Latest(ctx context.Context) (*signal.Signal, error)
	Recent(ctx context.Context, limit int) ([]*signal.Signal, error)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ProductionMode bool
}

// Server exposes the generated signals over HTTP.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	store      SignalStore
	config     ServerConfig
	logger     zerolog.Logger
}

// NewServer creates the API server and registers its routes.
func NewServer(config ServerConfig, store SignalStore, logger zerolog.Logger) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	router.Use(cors.New(corsConfig))

	s := &Server{
		router: router,
		store:  store,
		config: config,
		logger: logger.With().Str("component", "api").Logger(),
	}

	router.GET("/health", s.handleHealth)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/signals/latest", s.handleLatestSignal)
		v1.GET("/signals", s.handleRecentSignals)
	}

	return s
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK
	if err := s.store.HealthCheck(ctx); err != nil {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLatestSignal(c *gin.Context) {
	sig, err := s.store.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNoSignals) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no signals generated yet"})
			return
		}
		s.logger.Error().Err(err).Msg("latest signal lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, sig)
}

func (s *Server) handleRecentSignals(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 200"})
			return
		}
		limit = parsed
	}

	signals, err := s.store.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("recent signals lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if signals == nil {
		signals = []*signal.Signal{}
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals, "count": len(signals)})
}
