// Command server starts the Veridian Due Diligence API.
//
// Configuration comes from the environment; see internal/config. JWT_SECRET
// is required. With DATA_MODE=simulated the server runs fully offline
// against deterministic source data.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"veridian/diligence-api/internal/analysis"
	"veridian/diligence-api/internal/api"
	"veridian/diligence-api/internal/auth"
	"veridian/diligence-api/internal/cache"
	"veridian/diligence-api/internal/config"
	"veridian/diligence-api/internal/gateway"
	"veridian/diligence-api/internal/metrics"
	"veridian/diligence-api/internal/probe"
	"veridian/diligence-api/internal/store"
)

func main() {
	// Structured logging — JSON in production, text-friendly in development.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// ── Wire dependencies ─────────────────────────────────────────────────────
	m := metrics.New()

	fallback := gateway.NewSimulatedSources()
	sources := fallback
	if cfg.DataMode == config.ModeLive {
		client := gateway.NewClient(cfg.SourceTimeout, cfg.SourceRetries, m.SourceObserver())
		sources = gateway.NewHTTPSources(client, gateway.DefaultEndpoints())
	}

	set := probe.NewSet(sources, fallback, probe.DefaultPolicy())
	analyzer := analysis.New(set, m)

	var c cache.Cache = cache.NewMemory(cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cfg.RedisAddr, cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			slog.Warn("redis unreachable, using in-memory cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			c = redisCache
		}
		cancel()
	}
	if cfg.CacheTTL <= 0 {
		c = cache.Noop{}
	}

	users := auth.NewUserStore()
	if cfg.AdminPassword != "" {
		if _, err := users.Create(cfg.AdminUser, cfg.AdminPassword, auth.RoleAdmin); err != nil {
			slog.Error("seeding admin account failed", "error", err)
			os.Exit(1)
		}
		slog.Info("admin account seeded", "username", cfg.AdminUser)
	} else {
		slog.Warn("ADMIN_PASSWORD not set; no accounts exist until one is created")
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	handler := api.NewHandler(analyzer, store.New(), c, users, tokens)
	router := api.NewRouter(handler, tokens)

	// ── Start HTTP server ─────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: progress streams stay open for the full run.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server listening", "port", cfg.Port, "data_mode", cfg.DataMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
