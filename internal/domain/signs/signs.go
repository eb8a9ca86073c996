// Package signs turns a birth event into Sun, Moon and Rising signs.
//
// Resolution is deterministic: the same BirthEvent always yields the same
// SignTriad, independent of the host zone or the current time.
package signs

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/astrocore/internal/domain/ephemeris"
	"github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/internal/domain/tz"
	"github.com/okian/astrocore/internal/domain/zodiac"
	"github.com/okian/astrocore/pkg/logger"
)

// Default configuration constants.
const (
	defaultBatchConcurrency = 8
	substitutedHour         = 12
)

// UnknownTimePolicy decides what happens to the rising sign when the birth
// time is unknown and local noon is substituted.
type UnknownTimePolicy string

// Supported policies.
const (
	// OmitRising leaves Rising nil; the Ascendant moves about a degree every
	// four minutes, so a noon value is not a usable placement.
	OmitRising UnknownTimePolicy = "omit"
	// NoonRising computes Rising at local noon and flags it approximate.
	NoonRising UnknownTimePolicy = "noon"
)

// ParseUnknownTimePolicy accepts "omit" (default) or "noon".
func ParseUnknownTimePolicy(s string) (UnknownTimePolicy, error) {
	switch p := UnknownTimePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return OmitRising, nil
	case OmitRising, NoonRising:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTimePolicy, s)
	}
}

// Resolver computes SignTriads.
type Resolver interface {
	ResolveSigns(ctx context.Context, b model.BirthEvent) (model.SignTriad, error)
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCalculator sets the ephemeris calculator.
func WithCalculator(c *ephemeris.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calc = c
		}
	}
}

// WithZoneResolver sets the timezone resolver.
func WithZoneResolver(r *tz.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.zones = r
		}
	}
}

// WithUnknownTimePolicy sets how rising signs are handled for unknown times.
func WithUnknownTimePolicy(p UnknownTimePolicy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithBatchConcurrency bounds the goroutines used by ResolveBatch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service orchestrates validation, timezone resolution and the ephemeris.
type Service struct {
	calc        *ephemeris.Calculator
	zones       *tz.Resolver
	policy      UnknownTimePolicy
	concurrency int
	logger      logger.Logger
}

// NewService creates a Service with Placidus houses and the omit policy
// unless configured otherwise.
func NewService(opts ...Option) *Service {
	s := &Service{
		calc:        ephemeris.NewCalculator(),
		policy:      OmitRising,
		concurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.zones == nil {
		s.zones = tz.NewResolver(tz.WithLogger(s.logger))
	}
	return s
}

// Policy returns the configured unknown-time policy.
func (s *Service) Policy() UnknownTimePolicy { return s.policy }

// Concurrency returns the batch concurrency limit.
func (s *Service) Concurrency() int { return s.concurrency }

// HouseSystem returns the configured house system.
func (s *Service) HouseSystem() ephemeris.HouseSystem { return s.calc.HouseSystem() }

// ResolveSigns validates b, resolves its zone, computes the three longitudes
// and maps them to signs. Errors are *ValidationError, *tz.ResolutionError
// or *ephemeris.ComputationError.
func (s *Service) ResolveSigns(ctx context.Context, b model.BirthEvent) (model.SignTriad, error) {
	if err := Validate(b); err != nil {
		return model.SignTriad{}, err
	}

	local := tz.LocalDateTime{Year: b.Year, Month: b.Month, Day: b.Day, Hour: b.Hour, Minute: b.Minute}
	if b.TimeUnknown {
		local.Hour, local.Minute = substitutedHour, 0
	}

	zone, err := s.zones.Resolve(ctx, b.Timezone, b.OffsetHours)
	if err != nil {
		return model.SignTriad{}, err
	}
	instant := zone.ToUTC(local)
	at := ephemeris.Coordinates{Latitude: b.Latitude, Longitude: b.Longitude}

	triad := model.SignTriad{
		TimeUnknown: b.TimeUnknown,
		HouseSystem: string(s.calc.HouseSystem()),
		Timezone:    zone.Name(),
		UTC:         instant,
	}

	if b.TimeUnknown && s.policy == OmitRising {
		sun, moon, err := s.calc.Luminaries(ctx, instant)
		if err != nil {
			return model.SignTriad{}, err
		}
		triad.Sun = zodiac.FromLongitude(sun)
		triad.Moon = zodiac.FromLongitude(moon)
		triad.Longitudes = model.Longitudes{Sun: sun, Moon: moon}
		return triad, nil
	}

	pos, err := s.calc.Compute(ctx, instant, at)
	if err != nil {
		return model.SignTriad{}, err
	}
	sun, moon, rising := pos.Signs()
	asc := pos.Ascendant
	triad.Sun = sun
	triad.Moon = moon
	triad.Rising = &rising
	triad.RisingApproximate = b.TimeUnknown
	triad.Longitudes = model.Longitudes{Sun: pos.Sun, Moon: pos.Moon, Ascendant: &asc}
	return triad, nil
}

// BatchResult is the outcome for one element of a batch.
type BatchResult struct {
	Index int
	Triad model.SignTriad
	Err   error
}

// ResolveBatch resolves every event independently and in parallel. A failed
// element does not affect the others; only context cancellation aborts the
// batch.
func (s *Service) ResolveBatch(ctx context.Context, births []model.BirthEvent) ([]BatchResult, error) {
	return Batch(ctx, s, births, s.concurrency)
}

// Batch runs r over births with at most concurrency resolutions in flight.
// Results are in input order.
func Batch(ctx context.Context, r Resolver, births []model.BirthEvent, concurrency int) ([]BatchResult, error) {
	if concurrency < 1 {
		concurrency = defaultBatchConcurrency
	}
	results := make([]BatchResult, len(births))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range births {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			triad, err := r.ResolveSigns(gctx, births[i])
			results[i] = BatchResult{Index: i, Triad: triad, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
