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

	"nftmarket/internal/auth"
	"nftmarket/internal/backend"
	"nftmarket/internal/cache"
	"nftmarket/internal/config"
	"nftmarket/internal/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Getenv(config.ConfigPathEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	logging.New(logging.Options{Service: "mock-backend", Level: cfg.LogLevel, Format: cfg.LogFormat})

	seed, err := backend.LoadSeed(cfg.SeedFile)
	if err != nil {
		slog.Error("Failed to load seed", "file", cfg.SeedFile, "error", err)
		return 1
	}
	store := backend.NewStore(seed)
	slog.Info("Seed loaded", "collections", len(seed.Collections), "nfts", len(seed.Nfts))

	handler := backend.NewHandler(store, auth.NewMiddleware(cfg.Token, cfg.JWTSecret))

	if cfg.RateLimit > 0 && cfg.RedisAddr != "" {
		redisClient, err := cache.NewClient(cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			return 1
		}
		defer redisClient.Close()
		slog.Info("Connected to Redis", "addr", cfg.RedisAddr)

		handler.SetRateLimiter(redisClient.RateLimiter(cfg.RateLimit, cfg.RateWindow))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/", handler.Routes())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
		return 1
	}
	slog.Info("Server stopped")
	return 0
}
