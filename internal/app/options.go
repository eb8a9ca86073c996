package service

import (
	"time"

	"github.com/okian/astrocore/internal/adapters/cache"
	"github.com/okian/astrocore/internal/domain/compat"
	"github.com/okian/astrocore/internal/domain/ephemeris"
	"github.com/okian/astrocore/internal/domain/signs"
	"github.com/okian/astrocore/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithHouseSystem selects the Ascendant house system.
func WithHouseSystem(hs ephemeris.HouseSystem) Option {
	return func(s *Service) {
		if hs != "" {
			s.houseSystem = hs
		}
	}
}

// WithUnknownTimePolicy selects the rising-sign policy for unknown times.
func WithUnknownTimePolicy(p signs.UnknownTimePolicy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithWeightTable replaces the embedded compatibility weight table.
func WithWeightTable(t *compat.WeightTable) Option {
	return func(s *Service) {
		s.table = t
	}
}

// WithPartialScoreSets accepts score sets missing canonical categories.
func WithPartialScoreSets(allow bool) Option {
	return func(s *Service) {
		s.allowPartial = allow
	}
}

// WithBatchConcurrency bounds parallel resolutions per batch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithMaxBatchSize caps the number of events in one batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithCache sets the SignTriad cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithClock overrides the time source used for day anchors and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
