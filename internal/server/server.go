// Package server
//
// @title Ignite Gym API
// @version 1.0
// @description Exercise catalog and workout history API
// @host localhost:3333
// @BasePath /
package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ignite-gym/ignitegym/internal/auth"
	"github.com/ignite-gym/ignitegym/internal/avatars"
	"github.com/ignite-gym/ignitegym/internal/catalog"
	"github.com/ignite-gym/ignitegym/internal/config"
	"github.com/ignite-gym/ignitegym/internal/database"
)

// Server represents the HTTP server
type Server struct {
	router   *gin.Engine
	db       *gorm.DB
	logger   zerolog.Logger
	issuer   *auth.Issuer
	avatars  avatars.Store
	sweeper  *avatars.Sweeper
	opts     Options
	location *time.Location
	version  string
}

// Options carries the server's dependencies. New builds them from the
// configuration; tests construct them directly.
type Options struct {
	DB      *gorm.DB
	Issuer  *auth.Issuer
	Avatars avatars.Store
	Logger  zerolog.Logger

	// MediaDir holds the demo/ and thumb/ exercise files
	MediaDir string
	// MaxAvatarSize is the upload limit in bytes
	MaxAvatarSize int64
	// AllowedOrigins for CORS; "*" allows any origin
	AllowedOrigins []string
	// SweepSchedule is the cron spec of the orphaned avatar sweep; empty disables it
	SweepSchedule string
	// Location is used to group history by day; defaults to time.Local
	Location *time.Location
	Version  string
}

// New creates a new server instance
func New(ctx context.Context, cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Initialize database with production settings
	db, err := database.Open(cfg.Database.URL, zlog)
	if err != nil {
		return nil, err
	}

	entries, err := loadCatalog(cfg.Exercises.CatalogFile)
	if err != nil {
		return nil, err
	}
	seeded, err := catalog.Seed(ctx, db, entries)
	if err != nil {
		return nil, err
	}
	zlog.Info().Int("exercises", seeded).Msg("Exercise catalog seeded")

	store, err := newAvatarStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewWithOptions(Options{
		DB:             db,
		Issuer:         auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
		Avatars:        store,
		Logger:         zlog,
		MediaDir:       cfg.Exercises.MediaDir,
		MaxAvatarSize:  cfg.Avatars.MaxSize,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		SweepSchedule:  cfg.Avatars.SweepSchedule,
		Version:        version,
	}), nil
}

func loadCatalog(path string) ([]catalog.Entry, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func newAvatarStore(ctx context.Context, cfg *config.Config) (avatars.Store, error) {
	if cfg.Avatars.Storage == config.AvatarStorageMinio {
		return avatars.NewMinioStore(ctx, avatars.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
	}
	return avatars.NewDiskStore(cfg.Avatars.Dir)
}

// NewWithOptions creates a server around already built dependencies
func NewWithOptions(opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MaxAvatarSize <= 0 {
		opts.MaxAvatarSize = 5 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		db:       opts.DB,
		logger:   opts.Logger,
		issuer:   opts.Issuer,
		avatars:  opts.Avatars,
		sweeper:  avatars.NewSweeper(opts.Avatars, opts.DB, opts.Logger),
		opts:     opts,
		location: opts.Location,
		version:  opts.Version,
	}
	s.setupRouter()
	return s
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	// Report binding errors with JSON field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(cors.New(s.corsConfig()))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public endpoints
	s.router.POST("/sessions", s.createSession)
	s.router.POST("/users", s.createUser)
	s.router.GET("/avatar/:file", s.getAvatar)
	s.router.Static("/exercise/demo", filepath.Join(s.opts.MediaDir, "demo"))
	s.router.Static("/exercise/thumb", filepath.Join(s.opts.MediaDir, "thumb"))

	// Authenticated routes (JWT required)
	api := s.router.Group("")
	api.Use(JWTAuthMiddleware(s.db, s.issuer, s.logger))
	{
		api.PUT("/users", s.updateUser)
		api.PATCH("/users/avatar", s.updateAvatar)

		api.GET("/groups", s.listGroups)
		api.GET("/exercises/bygroup/:group", s.listExercisesByGroup)
		api.GET("/exercises/:id", s.getExercise)

		api.POST("/history", s.createHistory)
		api.GET("/history", s.listHistory)
	}

	s.router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Resource not found.")
	})
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range s.opts.AllowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}

	cfg.AllowOrigins = s.opts.AllowedOrigins
	cfg.AllowCredentials = true
	return cfg
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "ignitegym-api",
		"version":   s.version,
	})
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	if s.opts.SweepSchedule != "" {
		if err := s.sweeper.Start(s.opts.SweepSchedule); err != nil {
			return err
		}
		defer s.sweeper.Stop()
	}

	// Create HTTP server with production timeouts
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

// Close releases the database connection
func (s *Server) Close() error {
	s.logger.Info().Msg("Closing database connection...")
	return database.Close(s.db)
}
