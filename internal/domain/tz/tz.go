// Package tz resolves a canonical timezone for a birth event or user and
// converts between local wall-clock time and UTC instants.
//
// Resolution never consults the host's local zone: a zone is either an IANA
// identifier looked up in the embedded tz database or a fixed offset in hours.
package tz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata" // results must not depend on the host's zoneinfo

	"github.com/okian/astrocore/pkg/logger"
)

// Offset bounds, in hours. Real-world offsets range from -12 to +14.
const (
	MinOffsetHours = -14.0
	MaxOffsetHours = 14.0

	secondsPerHour = 3600
	noonHour       = 12
)

// LocalDateTime is a wall-clock reading in some zone, without the zone.
type LocalDateTime struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// Zone is a resolved timezone.
type Zone struct {
	name        string
	loc         *time.Location
	fixed       bool
	offsetHours float64
}

// Name returns the IANA identifier or a synthetic "UTC+05:30" style name.
func (z *Zone) Name() string { return z.name }

// Fixed reports whether the zone is a fixed offset rather than an IANA zone.
func (z *Zone) Fixed() bool { return z.fixed }

// Location exposes the underlying time.Location.
func (z *Zone) Location() *time.Location { return z.loc }

// ToUTC converts a local wall-clock reading to a UTC instant. Readings that
// fall into a DST gap are normalized forward the way time.Date does.
func (z *Zone) ToUTC(l LocalDateTime) time.Time {
	return time.Date(l.Year, time.Month(l.Month), l.Day, l.Hour, l.Minute, l.Second, 0, z.loc).UTC()
}

// FromUTC converts an instant to the local wall-clock reading in z.
func (z *Zone) FromUTC(t time.Time) LocalDateTime {
	lt := t.In(z.loc)
	return LocalDateTime{
		Year:   lt.Year(),
		Month:  int(lt.Month()),
		Day:    lt.Day(),
		Hour:   lt.Hour(),
		Minute: lt.Minute(),
		Second: lt.Second(),
	}
}

// OffsetHoursAt returns the zone's UTC offset in hours at instant t.
func (z *Zone) OffsetHoursAt(t time.Time) float64 {
	if z.fixed {
		return z.offsetHours
	}
	_, secs := t.In(z.loc).Zone()
	return float64(secs) / secondsPerHour
}

// Day is one local calendar date and the UTC-noon instant anchoring it.
type Day struct {
	Date    string    `json:"date"`
	Year    int       `json:"year"`
	Month   int       `json:"month"`
	Day     int       `json:"day"`
	NoonUTC time.Time `json:"noon_utc"`
}

// DayAnchors holds the local yesterday/today/tomorrow around an instant.
type DayAnchors struct {
	Zone      string `json:"zone"`
	Yesterday Day    `json:"yesterday"`
	Today     Day    `json:"today"`
	Tomorrow  Day    `json:"tomorrow"`
}

// DayAnchors returns the local calendar dates for yesterday, today and
// tomorrow as seen in z at instant now, each anchored at 12:00 UTC of that
// date. Day-scoped content keyed on the noon anchor does not flip when a DST
// transition moves local midnight.
func (z *Zone) DayAnchors(now time.Time) DayAnchors {
	lt := now.In(z.loc)
	mk := func(delta int) Day {
		// time.Date normalizes day overflow across months and years.
		noon := time.Date(lt.Year(), lt.Month(), lt.Day()+delta, noonHour, 0, 0, 0, time.UTC)
		return Day{
			Date:    noon.Format(time.DateOnly),
			Year:    noon.Year(),
			Month:   int(noon.Month()),
			Day:     noon.Day(),
			NoonUTC: noon,
		}
	}
	return DayAnchors{
		Zone:      z.name,
		Yesterday: mk(-1),
		Today:     mk(0),
		Tomorrow:  mk(1),
	}
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report offset fallbacks.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver turns a zone identifier and/or an offset into a Zone.
type Resolver struct {
	logger logger.Logger
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the zone named by zone, falling back to offsetHours when
// the name is empty or not in the tz database. It fails with a
// *ResolutionError when neither yields a zone.
func (r *Resolver) Resolve(ctx context.Context, zone string, offsetHours *float64) (*Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(zone)
	var lookupErr error
	if name != "" {
		z, err := loadIANA(name)
		if err == nil {
			return z, nil
		}
		lookupErr = err
		if offsetHours != nil && r.logger != nil {
			r.logger.Warn(ctx, "timezone lookup failed; using fixed offset",
				logger.String("zone", name),
				logger.Float64("offset_hours", *offsetHours),
				logger.Error(err),
			)
		}
	}

	if offsetHours == nil {
		if lookupErr == nil {
			lookupErr = ErrNoZone
		}
		return nil, &ResolutionError{Zone: name, Err: lookupErr}
	}

	z, err := FixedOffset(*offsetHours)
	if err != nil {
		return nil, &ResolutionError{Zone: name, Offset: offsetHours, Err: err}
	}
	return z, nil
}

// Resolve is the package-level form of Resolver.Resolve without logging.
func Resolve(ctx context.Context, zone string, offsetHours *float64) (*Zone, error) {
	return NewResolver().Resolve(ctx, zone, offsetHours)
}

// FixedOffset builds a zone with a constant offset in hours. Fractional
// offsets such as 5.5 or 5.75 are kept to the second.
func FixedOffset(hours float64) (*Zone, error) {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return nil, fmt.Errorf("%w: offset is not finite", ErrInvalidOffset)
	}
	if hours < MinOffsetHours || hours > MaxOffsetHours {
		return nil, fmt.Errorf("%w: %g outside [%g,%g]", ErrInvalidOffset, hours, MinOffsetHours, MaxOffsetHours)
	}
	secs := int(math.Round(hours * secondsPerHour))
	name := OffsetName(secs)
	return &Zone{
		name:        name,
		loc:         time.FixedZone(name, secs),
		fixed:       true,
		offsetHours: float64(secs) / secondsPerHour,
	}, nil
}

// OffsetName formats an offset in seconds as "UTC", "UTC+05:30", "UTC-09:30".
func OffsetName(secs int) string {
	if secs == 0 {
		return "UTC"
	}
	sign := '+'
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, secs/secondsPerHour, (secs%secondsPerHour)/60)
}

func loadIANA(name string) (*Zone, error) {
	// "Local" would bind the result to the host's zone.
	if strings.EqualFold(name, "local") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownZone, name, err)
	}
	return &Zone{name: loc.String(), loc: loc}, nil
}
