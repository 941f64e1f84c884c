package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"nftmarket/internal/cache"
	"nftmarket/internal/config"
	"nftmarket/internal/logging"
	"nftmarket/internal/models"
	"nftmarket/internal/services"
)

type app struct {
	cfg   *config.Config
	svc   *services.Assembly
	redis *cache.Client
}

func (a *app) init(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	logging.New(logging.Options{Service: appName, Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})

	var storage cache.Storage = cache.NewMemory()
	if cfg.RedisAddr != "" {
		client, err := cache.NewClient(cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			slog.Warn("Redis unavailable, using in-memory NFT cache", "addr", cfg.RedisAddr, "error", err)
		} else {
			slog.Debug("Connected to Redis", "addr", cfg.RedisAddr)
			a.redis = client
			storage = client
		}
	}

	a.cfg = cfg
	a.svc = services.NewAssembly(cfg, storage)
	return nil
}

func (a *app) close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func (a *app) findCollection(ctx context.Context, id string) (models.NftCollection, error) {
	list, err := a.svc.Catalog.LoadCollections(ctx)
	if err != nil {
		return models.NftCollection{}, err
	}
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return models.NftCollection{}, fmt.Errorf("collection %q not found", id)
}

func (a *app) loadProfile(ctx context.Context) (models.Profile, error) {
	return a.svc.Profile.LoadProfile(ctx, config.ProfileID)
}
