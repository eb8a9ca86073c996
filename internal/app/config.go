package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/astrocore/internal/adapters/cache"
	"github.com/okian/astrocore/internal/config"
	"github.com/okian/astrocore/internal/domain/compat"
	"github.com/okian/astrocore/internal/domain/ephemeris"
	"github.com/okian/astrocore/internal/domain/signs"
)

// OptionsFromConfig translates cfg into Service options. It loads the
// weight table file and connects the cache backend, so it can fail.
func OptionsFromConfig(ctx context.Context, cfg *config.Config) ([]Option, error) {
	hs, err := ephemeris.ParseHouseSystem(cfg.HouseSystem)
	if err != nil {
		return nil, fmt.Errorf("%w: house_system: %w", config.ErrInvalidConfig, err)
	}
	policy, err := signs.ParseUnknownTimePolicy(cfg.UnknownTimePolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown_time_policy: %w", config.ErrInvalidConfig, err)
	}

	opts := []Option{
		WithHouseSystem(hs),
		WithUnknownTimePolicy(policy),
		WithBatchConcurrency(cfg.BatchConcurrency),
		WithMaxBatchSize(cfg.MaxBatchSize),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.EventQueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithPartialScoreSets(cfg.AllowPartialScores),
	}

	if cfg.WeightsFile != "" {
		table, err := compat.LoadTable(cfg.WeightsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithWeightTable(table))
	}

	c, err := NewCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return append(opts, WithCache(c)), nil
}

// NewCache builds the cache backend named by cfg.CacheBackend.
func NewCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	switch cfg.CacheBackend {
	case config.CacheNone:
		return cache.NewNop(), nil
	case config.CacheRedis:
		return cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cache.WithRedisTTL(ttl))
	case config.CacheMemory, "":
		return cache.NewMemory(cache.WithMaxEntries(cfg.CacheSize), cache.WithTTL(ttl)), nil
	default:
		return nil, fmt.Errorf("%w: unknown cache_backend %q", config.ErrInvalidConfig, cfg.CacheBackend)
	}
}
