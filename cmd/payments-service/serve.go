package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/contractor-payments/internal/auth"
	"github.com/nurpe/contractor-payments/internal/config"
	"github.com/nurpe/contractor-payments/internal/db"
	"github.com/nurpe/contractor-payments/internal/excel"
	httphandler "github.com/nurpe/contractor-payments/internal/http"
	"github.com/nurpe/contractor-payments/internal/http/middleware"
	"github.com/nurpe/contractor-payments/internal/idempotency"
	"github.com/nurpe/contractor-payments/internal/logger"
	"github.com/nurpe/contractor-payments/internal/pdf"
	"github.com/nurpe/contractor-payments/internal/repository"
	"github.com/nurpe/contractor-payments/internal/service"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDatabase(database)

	idemStore, closeIdem, err := newIdempotencyStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeIdem()

	contractRepo := repository.NewContractRepository(database)
	jobRepo := repository.NewJobRepository(database)
	profileRepo := repository.NewProfileRepository(database)
	reportRepo := repository.NewReportRepository(database)

	handler := httphandler.NewHandler(httphandler.Services{
		Contracts: service.NewContractService(contractRepo, jobRepo, cfg),
		Payments:  service.NewPaymentService(jobRepo, pdf.NewGenerator()),
		Reports:   service.NewReportService(reportRepo, excel.NewGenerator(), cfg),
		Health: func(ctx context.Context) error {
			return db.Ping(ctx, database)
		},
	}, log, cfg.API.EmptyListAsNotFound)

	var tokenParser *auth.Parser
	if cfg.AdminAuthEnabled() {
		tokenParser = auth.NewParser(cfg.Auth.AccessSecret)
	} else {
		log.Warn().Msg("JWT_ACCESS_SECRET is empty, /admin routes are open")
	}

	router := httphandler.NewRouter(handler, httphandler.Middlewares{
		Profile:     middleware.Profile(profileRepo, log),
		Admin:       middleware.Admin(tokenParser),
		Idempotency: middleware.Idempotency(idemStore, cfg.Redis.IdempotencyTTL, log),
		RateLimit:   middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware(),
	}, cfg.Environment, cfg.HTTP.CORSAllowedOrigins, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting payments service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}

// newIdempotencyStore prefers Redis and falls back to process memory when
// REDIS_URL is empty.
func newIdempotencyStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (idempotency.Store, func(), error) {
	if cfg.Redis.URL == "" {
		log.Warn().Msg("REDIS_URL is empty, idempotency keys are kept in process memory")
		return idempotency.NewMemoryStore(), func() {}, nil
	}

	client, err := idempotency.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return idempotency.NewRedisStore(client), func() { _ = client.Close() }, nil
}

func closeDatabase(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
