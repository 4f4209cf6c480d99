// Package main is the entry point for the travel planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/git21git/travelplanner/internal/auth"
	"github.com/git21git/travelplanner/internal/config"
	"github.com/git21git/travelplanner/internal/geocode"
	"github.com/git21git/travelplanner/internal/handler"
	"github.com/git21git/travelplanner/internal/middleware"
	"github.com/git21git/travelplanner/internal/migrate"
	"github.com/git21git/travelplanner/internal/ratelimit"
	"github.com/git21git/travelplanner/internal/repo"
	"github.com/git21git/travelplanner/internal/service"
	"github.com/git21git/travelplanner/openapi"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.AutoMigrate {
		if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	// --- Metrics ----------------------------------------------------------
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics(registry)

	// --- Geocoder ---------------------------------------------------------
	geo, err := geocode.New(geocode.Config{
		APIKey:  cfg.Geocoder.APIKey,
		BaseURL: cfg.Geocoder.BaseURL,
		Timeout: cfg.Geocoder.Timeout,
	}, logger, registry)
	if err != nil {
		slog.Error("failed to configure geocoder", "error", err)
		os.Exit(1)
	}

	// --- Auth -------------------------------------------------------------
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		slog.Error("failed to configure tokens", "error", err)
		os.Exit(1)
	}
	passwords := auth.NewPasswordService(auth.DefaultCost)

	limiter := newLimiter(cfg.RateLimit, logger)
	defer limiter.Close()

	// --- Services ---------------------------------------------------------
	tripRepo := repo.NewTripRepo(pool)
	placeRepo := repo.NewPlaceRepo(pool)
	userRepo := repo.NewUserRepo(pool)
	guard := service.NewGuard(tripRepo)

	srv := handler.NewServer(handler.Deps{
		Auth:          service.NewAuthService(userRepo, passwords, tokens, logger),
		Trips:         service.NewTripService(tripRepo, guard, logger),
		Places:        service.NewPlaceService(tripRepo, placeRepo, guard, geo, logger),
		Export:        service.NewExportService(tripRepo, placeRepo),
		DB:            pool,
		OpenAPI:       openapi.Document,
		SecureCookies: cfg.CookieSecure,
		Log:           logger,
	})

	// --- Router -----------------------------------------------------------
	router := handler.NewRouter(srv, handler.RouterConfig{
		Tokens:       tokens,
		Limiter:      limiter,
		AuthRule:     ratelimit.Rule{Limit: cfg.RateLimit.AuthLimit, Window: cfg.RateLimit.AuthWindow},
		Metrics:      httpMetrics,
		Gatherer:     registry,
		CORSOrigins:  cfg.CORSOrigins,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Log:          logger,
	})

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout leaves room for a full geocoder timeout inside a request.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Geocoder.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func runMigrations(dsn string, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	runner, err := migrate.Open(ctx, dsn, log)
	if err != nil {
		return err
	}
	defer runner.Close()
	return runner.Up(ctx)
}

// newLimiter prefers Redis so limits hold across replicas, and falls back to
// the in-process limiter when Redis is not configured or not reachable.
func newLimiter(cfg config.RateLimitConfig, log *slog.Logger) ratelimit.Limiter {
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemory()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rl, err := ratelimit.NewRedis(ctx, ratelimit.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, log)
	if err != nil {
		log.Warn("redis rate limiter unavailable, using in-memory limiter", "error", err)
		return ratelimit.NewMemory()
	}
	return rl
}
