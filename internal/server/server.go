package server

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
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/bootstrap"
	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// Server holds the state for the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	db     *db.DB
	logger zerolog.Logger
	http   *http.Server
}

// NewServer loads config, prepares the database and wires the router.
func NewServer(configPath string) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	ctx := context.Background()
	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	if err := bootstrap.RunSeed(ctx, cfg, deps); err != nil {
		// seeding is idempotent and retried on the next start
		lgr.Error().Err(err).Msg("Failed to seed default data, proceeding anyway...")
	}

	router, err := bootstrap.SetupRouter(cfg, deps, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	return &Server{
		config: cfg,
		router: router,
		db:     database,
		logger: lgr,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  helpers.ParseDuration(s.config.Server.ReadTimeout, 10*time.Second),
		WriteTimeout: helpers.ParseDuration(s.config.Server.WriteTimeout, 10*time.Second),
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.closeDB()
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var shutdownErr error
	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	if err := s.closeDB(); err != nil {
		shutdownErr = errors.Join(shutdownErr, err)
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}

func (s *Server) closeDB() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	if err != nil {
		s.logger.Error().Err(err).Msg("Database close error")
	}
	s.db = nil
	return err
}
