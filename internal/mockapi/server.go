package mockapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/placeboard/placeboard/internal/config"
	"github.com/placeboard/placeboard/internal/models"
)

// Server represents the mock API HTTP server
type Server struct {
	router *gin.Engine
	db     *gorm.DB
	config config.MockAPIConfig
	logger zerolog.Logger
	tokens *tokenIssuer
	cron   *cron.Cron
	now    func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithClock overrides the time source for tokens, deadlines and the
// job-closing schedule
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a new server instance over an open database
func New(cfg config.MockAPIConfig, db *gorm.DB, zlog zerolog.Logger, opts ...Option) (*Server, error) {
	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		// Generate JWT secret (64 hex characters = 32 bytes of randomness)
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		secret = hex.EncodeToString(secretBytes)
		zlog.Info().Msg("No MOCKAPI_JWT_SECRET set - generated a random secret, tokens will not survive restarts")
	}

	s := &Server{
		db:     db,
		config: cfg,
		logger: zlog,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tokens = newTokenIssuer(secret, s.now)

	registerValidators()
	if err := s.setupRouter(); err != nil {
		return nil, err
	}

	return s, nil
}

// registerValidators adds custom rules to gin's binding validator
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("appstatus", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.ApplicationStatuses, fl.Field().String())
	})
}

// OpenDatabase opens the SQLite database with development settings
func OpenDatabase(path string) (*gorm.DB, error) {
	const (
		busyTimeout = 5000 // 5 seconds
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// SQLite serialises writers; one connection avoids SQLITE_BUSY in dev
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=1",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() error {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// Browsers only need CORS when the dashboard runs on another origin
	if s.config.CORSOrigin != "" {
		corsConfig := cors.Config{
			AllowOrigins:     []string{s.config.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
		if err := corsConfig.Validate(); err != nil {
			return fmt.Errorf("invalid CORS origin %q: %w", s.config.CORSOrigin, err)
		}
		s.router.Use(cors.New(corsConfig))
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public auth endpoints (no auth required)
	s.router.POST("/api/auth/login", s.login)
	s.router.POST("/api/auth/refresh", s.refresh)

	// Authenticated API routes (JWT required)
	api := s.router.Group("/api")
	api.Use(RequireCaller(s.db, s.tokens, s.logger))
	{
		api.GET("/auth/me", s.getCurrentUser)
		api.POST("/auth/logout", s.logout)

		api.GET("/dashboard/summary", s.getSummary)

		staff := RequireRole(s.logger, models.RoleAdmin, models.RolePlacementOfficer)

		// Companies (read for everyone, write for staff)
		api.GET("/companies", s.listCompanies)
		api.GET("/companies/:id", s.getCompany)
		api.POST("/companies", staff, s.createCompany)
		api.PATCH("/companies/:id", staff, s.updateCompany)
		api.DELETE("/companies/:id", staff, s.deleteCompany)

		// Jobs
		api.GET("/jobs", s.listJobs)
		api.GET("/jobs/:id", s.getJob)
		api.POST("/jobs", s.createJob)
		api.PATCH("/jobs/:id", s.updateJob)
		api.POST("/jobs/:id/close", s.closeJob)
		api.DELETE("/jobs/:id", staff, s.deleteJob)

		// Applications
		api.GET("/applications", s.listApplications)
		api.POST("/applications", s.createApplication)
		api.PATCH("/applications/:id/status", s.updateApplicationStatus)

		// Notifications (scoped to the caller)
		api.GET("/notifications", s.listNotifications)
		api.GET("/notifications/unread-count", s.unreadCount)
		api.POST("/notifications/read-all", s.markAllRead)
		api.POST("/notifications/:id/read", s.markRead)

		// Tickets
		api.GET("/tickets", s.listTickets)
		api.GET("/tickets/:id", s.getTicket)
		api.POST("/tickets", s.createTicket)
		api.POST("/tickets/:id/messages", s.replyTicket)
		api.PATCH("/tickets/:id/status", s.updateTicketStatus)
	}

	return nil
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": s.now().UTC(),
		"service":   "placeboard-mockapi",
	})
}

// Handler exposes the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// DB returns the database connection
func (s *Server) DB() *gorm.DB {
	return s.db
}

// Start serves until SIGINT/SIGTERM, running the job-closing schedule alongside
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	if err := s.StartScheduler(); err != nil {
		return err
	}
	defer s.StopScheduler()

	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("Starting mock API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
