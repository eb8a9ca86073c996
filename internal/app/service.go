// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/okian/astrocore/internal/adapters/cache"
	eventqueue "github.com/okian/astrocore/internal/adapters/mq/queue"
	workerpool "github.com/okian/astrocore/internal/adapters/mq/worker"
	"github.com/okian/astrocore/internal/adapters/repository"
	"github.com/okian/astrocore/internal/domain/compat"
	"github.com/okian/astrocore/internal/domain/dedupe"
	"github.com/okian/astrocore/internal/domain/ephemeris"
	"github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/internal/domain/signs"
	"github.com/okian/astrocore/internal/domain/tz"
	"github.com/okian/astrocore/pkg/logger"
	"github.com/okian/astrocore/pkg/metrics"
)

// Default configuration constants.
const (
	defaultQueueSize    = 10_000
	defaultDedupeSize   = 50_000
	defaultMaxBatchSize = 1_000
	shutdownTimeout     = 10 * time.Second
)

// Service implements the API dependencies for the computation core.
type Service struct {
	mu sync.RWMutex

	// Core components
	signs   *signs.Service
	engine  *compat.Engine
	zones   *tz.Resolver
	cache   cache.Cache
	flights singleflight.Group

	// Profile pipeline, built by Start
	store   *repository.MemoryStore
	deduper dedupe.Deduper
	queue   *eventqueue.InMemoryQueue
	pool    *workerpool.Pool

	// Configuration
	houseSystem      ephemeris.HouseSystem
	policy           signs.UnknownTimePolicy
	table            *compat.WeightTable
	allowPartial     bool
	batchConcurrency int
	maxBatchSize     int
	workerCount      int
	queueSize        int
	dedupeSize       int
	now              func() time.Time

	// State
	started     bool
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	resolved    atomic.Int64
	failed      atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a Service. Sign resolution and scoring work immediately;
// the profile pipeline needs Start.
func New(opts ...Option) *Service {
	s := &Service{
		houseSystem:      ephemeris.DefaultHouseSystem,
		policy:           signs.OmitRising,
		batchConcurrency: runtime.NumCPU(),
		maxBatchSize:     defaultMaxBatchSize,
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        defaultQueueSize,
		dedupeSize:       defaultDedupeSize,
		now:              time.Now,
		logger:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewNop()
	}

	s.zones = tz.NewResolver(tz.WithLogger(s.logger.Named("tz")))
	s.signs = signs.NewService(
		signs.WithCalculator(ephemeris.NewCalculator(ephemeris.WithHouseSystem(s.houseSystem))),
		signs.WithZoneResolver(s.zones),
		signs.WithUnknownTimePolicy(s.policy),
		signs.WithBatchConcurrency(s.batchConcurrency),
		signs.WithLogger(s.logger.Named("signs")),
	)
	s.engine = compat.NewEngine(
		compat.WithWeightTable(s.table),
		compat.WithPartialScoreSets(s.allowPartial),
	)
	return s
}

// Start builds and starts the profile pipeline.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting astro service...")

	s.store = repository.NewMemoryStore(ctx, repository.WithClock(s.now))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.store,
		workerpool.WithName("recompute"),
		workerpool.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "astro service started",
		logger.String("house_system", string(s.houseSystem)),
		logger.String("unknown_time_policy", string(s.policy)),
		logger.String("weights", s.engine.Table().Version),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
	)
	return nil
}

// Stop drains the pipeline and releases the cache.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.logger.Info(ctx, "stopping astro service...")
		sctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		if err := s.pool.Shutdown(sctx); err != nil {
			s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
		}
		cancel()
		_ = s.store.Close()
		s.started = false
	}
	if err := s.cache.Close(); err != nil {
		s.logger.Warn(ctx, "cache close failed", logger.Error(err))
	}
	s.logger.Info(ctx, "astro service stopped")
}

// HouseSystem returns the configured house system.
func (s *Service) HouseSystem() ephemeris.HouseSystem { return s.houseSystem }

// Policy returns the configured unknown-time policy.
func (s *Service) Policy() signs.UnknownTimePolicy { return s.policy }

// WeightTable returns the compatibility weight table in use.
func (s *Service) WeightTable() *compat.WeightTable { return s.engine.Table() }

// cacheKey scopes a birth key to the settings that change the triad.
func (s *Service) cacheKey(b model.BirthEvent) string {
	return string(s.houseSystem) + "|" + string(s.policy) + "|" + b.Key()
}

// ResolveSigns resolves one birth event, consulting the cache first.
// Concurrent requests for the same key share one computation.
func (s *Service) ResolveSigns(ctx context.Context, b model.BirthEvent) (model.SignTriad, error) {
	start := time.Now()
	key := s.cacheKey(b)

	if t, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn(ctx, "cache get failed", logger.Error(err))
	} else if ok {
		s.cacheHits.Add(1)
		metrics.RecordCacheHit()
		return *t, nil
	}
	s.cacheMisses.Add(1)
	metrics.RecordCacheMiss()

	v, err, _ := s.flights.Do(key, func() (any, error) {
		t, err := s.signs.ResolveSigns(ctx, b)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, &t); err != nil {
			s.logger.Warn(ctx, "cache set failed", logger.Error(err))
		}
		return t, nil
	})
	metrics.RecordSignLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		s.failed.Add(1)
		metrics.RecordSignResolutionError(ErrorKind(err))
		return model.SignTriad{}, err
	}
	t := v.(model.SignTriad)
	s.resolved.Add(1)
	metrics.RecordSignResolution(t.HasRising())
	return t, nil
}

// ResolveBatch resolves every event independently. Per-element failures are
// reported in the results.
func (s *Service) ResolveBatch(ctx context.Context, births []model.BirthEvent) ([]signs.BatchResult, error) {
	switch {
	case len(births) == 0:
		return nil, ErrEmptyBatch
	case len(births) > s.maxBatchSize:
		return nil, fmt.Errorf("%w: %d events, limit %d", ErrBatchTooLarge, len(births), s.maxBatchSize)
	}
	metrics.RecordBatchSize(len(births))
	return signs.Batch(ctx, s, births, s.batchConcurrency)
}

// Score computes compatibility for one combined score set.
func (s *Service) Score(_ context.Context, set compat.ScoreSet, rel compat.RelationshipType) (compat.Breakdown, error) {
	b, err := s.engine.Breakdown(set, rel)
	return s.recordScore(b, err)
}

// ScorePair merges two people's score sets and scores the result.
func (s *Service) ScorePair(_ context.Context, a, b compat.ScoreSet, rel compat.RelationshipType) (compat.Breakdown, error) {
	bd, err := s.engine.ScorePair(a, b, rel)
	return s.recordScore(bd, err)
}

func (s *Service) recordScore(b compat.Breakdown, err error) (compat.Breakdown, error) {
	if err != nil {
		metrics.RecordCompatibilityError()
		return compat.Breakdown{}, err
	}
	metrics.RecordCompatibilityScore(string(b.Relationship), b.Overall)
	return b, nil
}

// DayAnchors returns yesterday/today/tomorrow in the resolved zone.
func (s *Service) DayAnchors(ctx context.Context, zone string, offsetHours *float64) (tz.DayAnchors, error) {
	z, err := s.zones.Resolve(ctx, zone, offsetHours)
	if err != nil {
		return tz.DayAnchors{}, err
	}
	return z.DayAnchors(s.now()), nil
}

// SubmitResult is the outcome of SubmitProfile.
type SubmitResult struct {
	Profile   model.Profile `json:"profile"`
	EventID   string        `json:"event_id"`
	Duplicate bool          `json:"duplicate"`
}

// SubmitProfile stores birth data and queues the signs for resolution.
// An empty id or eventID is generated. A repeated eventID is acknowledged
// without re-queueing.
func (s *Service) SubmitProfile(ctx context.Context, id, eventID string, b model.BirthEvent) (SubmitResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return SubmitResult{}, ErrNotStarted
	}
	if err := signs.Validate(b); err != nil {
		return SubmitResult{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, eventID) {
		metrics.RecordEventDuplicate()
		p, err := s.store.Get(ctx, id)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return SubmitResult{}, err
		}
		return SubmitResult{Profile: p, EventID: eventID, Duplicate: true}, nil
	}

	p, err := s.store.Upsert(ctx, id, b)
	if err != nil {
		s.deduper.Unrecord(ctx, eventID)
		return SubmitResult{}, err
	}
	ev := model.RecomputeEvent{EventID: eventID, ProfileID: id, Version: p.Version, Birth: b, TS: s.now().UTC()}
	if err := s.queue.Enqueue(ctx, ev); err != nil {
		s.deduper.Unrecord(ctx, eventID)
		if errors.Is(err, eventqueue.ErrQueueFull) {
			return SubmitResult{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return SubmitResult{}, err
	}
	s.logger.Debug(ctx, "queued profile recompute",
		logger.String("profile_id", id),
		logger.String("event_id", eventID),
		logger.Int64("version", p.Version),
	)
	return SubmitResult{Profile: p, EventID: eventID}, nil
}

// GetProfile returns a stored profile.
func (s *Service) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Profile{}, ErrNotStarted
	}
	return s.store.Get(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":             s.started,
		"house_system":        string(s.houseSystem),
		"unknown_time_policy": string(s.policy),
		"weights_version":     s.engine.Table().Version,
		"resolved":            s.resolved.Load(),
		"failed":              s.failed.Load(),
		"cache_hits":          s.cacheHits.Load(),
		"cache_misses":        s.cacheMisses.Load(),
		"worker_count":        s.workerCount,
		"queue_capacity":      s.queueSize,
	}
	if s.started {
		ctx := context.Background()
		profiles := s.store.Count(ctx)
		c := s.pool.Counters()
		stats["queue_length"] = s.queue.Len()
		stats["profiles"] = profiles
		stats["dedupe_size"] = s.deduper.Size()
		stats["recomputed"] = c.Processed.Load()
		stats["recompute_failed"] = c.Failed.Load()
		stats["recompute_stale"] = c.Stale.Load()
		metrics.UpdateProfilesTotal(profiles)
	}
	return stats
}
