package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/aiready-backend/internal/config"
	"github.com/stemsi/aiready-backend/internal/database"
	"github.com/stemsi/aiready-backend/internal/handler"
	"github.com/stemsi/aiready-backend/internal/logger"
	"github.com/stemsi/aiready-backend/internal/model"
	"github.com/stemsi/aiready-backend/internal/repository"
	"github.com/stemsi/aiready-backend/internal/router"
	"github.com/stemsi/aiready-backend/internal/service"
	"github.com/stemsi/aiready-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("session_store", cfg.SessionStore).
		Msg("Starting AI Readiness Survey")

	if err := cfg.CheckSigningKey(); err != nil {
		log.Fatal().Err(err).Msg("Refusing to start with the default signing key")
	}
	if cfg.UsesDefaultSigningKey() {
		log.Warn().Msg("SESSION_SIGNING_KEY is not set; session tokens use the development key")
	}

	// ─── Load Survey Catalog ───────────────────────────────────────────
	catalog, err := model.LoadCatalog()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid survey catalog")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup(catalog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Session Store ─────────────────────────────────────────────────
	var sessions repository.SessionRepository
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		sessions = repository.NewRedisSessionRepository(rdb)
	case config.SessionStoreMemory:
		sessions = repository.NewMemorySessionRepository()
	default:
		log.Fatal().Str("session_store", cfg.SessionStore).Msg("Unknown SESSION_STORE")
	}

	// ─── Initialize Services ───────────────────────────────────────────
	secret, err := service.NewSecretVerifier(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Survey secret is not provisioned")
	}

	sessionService := service.NewSessionService(cfg, sessions)
	gateService := service.NewGateService(sessions, secret, log)
	scoringService := service.NewScoringService(catalog, log)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(sessionService, gateService),
		Survey:  handler.NewSurveyHandler(catalog, scoringService),
	}
	services := &router.Services{
		Session: sessionService,
		Gate:    gateService,
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, services, handlers, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
