// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and ASTRO_ environment variables over them.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HouseSystem picks the Ascendant house system (placidus by default).
	HouseSystem string `koanf:"house_system"`

	// UnknownTimePolicy decides the rising sign when birth time is unknown:
	// omit or noon.
	UnknownTimePolicy string `koanf:"unknown_time_policy"`

	// WeightsFile optionally replaces the embedded compatibility weight table.
	WeightsFile string `koanf:"weights_file"`

	// AllowPartialScores lets compatibility score sets omit categories.
	AllowPartialScores bool `koanf:"allow_partial_scores"`

	// BatchConcurrency bounds parallel resolutions in a batch.
	BatchConcurrency int `koanf:"batch_concurrency"`

	// MaxBatchSize caps POST /signs/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// EventQueueSize bounds the in-memory profile recompute queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// CacheBackend is memory, redis or none.
	CacheBackend string `koanf:"cache_backend"`

	// CacheSize bounds the in-memory sign cache.
	CacheSize int `koanf:"cache_size"`

	// CacheTTLSeconds expires cached triads; 0 keeps them forever.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// RedisAddr and RedisDB configure the redis cache backend.
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		HouseSystem:       "placidus",
		UnknownTimePolicy: "omit",
		BatchConcurrency:  runtime.NumCPU(),
		MaxBatchSize:      1_000,
		EventQueueSize:    10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        100_000,
		CacheBackend:      CacheMemory,
		CacheSize:         50_000,
		CacheTTLSeconds:   0,
		RedisAddr:         "localhost:6379",
		RedisDB:           0,
	}
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	if c.BatchConcurrency < 1 {
		problems = append(problems, "batch_concurrency must be positive")
	}
	if c.MaxBatchSize < 1 {
		problems = append(problems, "max_batch_size must be positive")
	}
	if c.EventQueueSize < 1 {
		problems = append(problems, "queue_size must be positive")
	}
	if c.WorkerCount < 1 {
		problems = append(problems, "worker_count must be positive")
	}
	if c.DedupeSize < 1 {
		problems = append(problems, "dedupe_size must be positive")
	}
	if c.CacheTTLSeconds < 0 {
		problems = append(problems, "cache_ttl_seconds must not be negative")
	}
	switch c.CacheBackend {
	case CacheMemory:
		if c.CacheSize < 1 {
			problems = append(problems, "cache_size must be positive")
		}
	case CacheRedis:
		if c.RedisAddr == "" {
			problems = append(problems, "redis_addr must not be empty")
		}
	case CacheNone:
	default:
		problems = append(problems, fmt.Sprintf("unknown cache_backend %q", c.CacheBackend))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
