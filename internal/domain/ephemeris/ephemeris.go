// Package ephemeris computes tropical ecliptic longitudes of the Sun and
// Moon and the Ascendant for an instant and a place.
//
// Positions come from the Meeus algorithms in github.com/soniakeys/meeus.
// Everything here is a pure function of (instant, coordinates, house system).
package ephemeris

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/okian/astrocore/internal/domain/zodiac"
)

// Numeric constants.
const (
	secondsPerDay  = 86400.0
	degreesPerTurn = 360.0
	minLatitude    = -90.0
	maxLatitude    = 90.0
	minLongitude   = -180.0
	maxLongitude   = 180.0
)

// HouseSystem selects how the ecliptic is divided into houses. All quadrant
// systems share the same Ascendant; they differ in where they break down.
type HouseSystem string

// Supported house systems.
const (
	Placidus  HouseSystem = "placidus"
	Koch      HouseSystem = "koch"
	Porphyry  HouseSystem = "porphyry"
	Equal     HouseSystem = "equal"
	WholeSign HouseSystem = "whole_sign"
)

// DefaultHouseSystem is used when none is configured.
const DefaultHouseSystem = Placidus

// ParseHouseSystem accepts the names above, case-insensitively.
func ParseHouseSystem(s string) (HouseSystem, error) {
	switch hs := HouseSystem(strings.ToLower(strings.TrimSpace(s))); hs {
	case "":
		return DefaultHouseSystem, nil
	case Placidus, Koch, Porphyry, Equal, WholeSign:
		return hs, nil
	case "whole", "wholesign":
		return WholeSign, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownHouseSystem, s)
	}
}

// degeneratesNearPoles reports whether the system's cusps are undefined
// inside the polar circles.
func (h HouseSystem) degeneratesNearPoles() bool {
	return h == Placidus || h == Koch
}

// Coordinates are geographic decimal degrees, east and north positive.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinates are finite and within range.
func (c Coordinates) Valid() bool {
	return !math.IsNaN(c.Latitude) && !math.IsNaN(c.Longitude) &&
		c.Latitude >= minLatitude && c.Latitude <= maxLatitude &&
		c.Longitude >= minLongitude && c.Longitude <= maxLongitude
}

// Positions are the three longitudes of a chart, each in [0,360).
type Positions struct {
	JulianDay float64     `json:"julian_day"`
	Sun       float64     `json:"sun"`
	Moon      float64     `json:"moon"`
	Ascendant float64     `json:"ascendant"`
	Houses    HouseSystem `json:"house_system"`
}

// Signs maps the longitudes onto zodiac signs.
func (p Positions) Signs() (sun, moon, rising zodiac.Sign) {
	return zodiac.FromLongitude(p.Sun), zodiac.FromLongitude(p.Moon), zodiac.FromLongitude(p.Ascendant)
}

// JulianDay returns the Julian Day of a UTC instant on the proleptic
// Gregorian calendar.
func JulianDay(t time.Time) float64 {
	u := t.UTC()
	frac := (float64(u.Hour()) +
		float64(u.Minute())/60 +
		(float64(u.Second())+float64(u.Nanosecond())/1e9)/3600) / 24
	return julian.CalendarGregorianToJD(u.Year(), int(u.Month()), float64(u.Day())+frac)
}

// SunLongitude returns the apparent tropical longitude of the Sun in degrees.
func SunLongitude(jd float64) float64 {
	return zodiac.Normalize(solar.ApparentLongitude(base.J2000Century(jd)).Deg())
}

// MoonLongitude returns the apparent tropical longitude of the Moon in
// degrees (geometric position of date corrected for nutation in longitude).
func MoonLongitude(jd float64) float64 {
	lambda, _, _ := moonposition.Position(jd)
	dpsi, _ := nutation.Nutation(jd)
	return zodiac.Normalize(lambda.Deg() + dpsi.Deg())
}

// TrueObliquity returns the obliquity of the ecliptic of date in degrees.
func TrueObliquity(jd float64) float64 {
	_, deps := nutation.Nutation(jd)
	return nutation.MeanObliquity(jd).Deg() + deps.Deg()
}

// LocalSiderealDegrees returns the apparent local sidereal time at the given
// east longitude, expressed in degrees (the right ascension of the MC).
func LocalSiderealDegrees(jd, longitude float64) float64 {
	gast := float64(sidereal.Apparent(jd)) / secondsPerDay * degreesPerTurn
	return zodiac.Normalize(gast + longitude)
}

// Ascendant returns the ecliptic longitude rising on the eastern horizon.
// Placidus and Koch fail inside the polar circles, where some cusps never
// rise; every system fails at the geographic poles.
func Ascendant(jd, latitude, longitude float64, hs HouseSystem) (float64, error) {
	eps := TrueObliquity(jd)
	if math.Abs(latitude) >= maxLatitude {
		return 0, &ComputationError{Latitude: latitude, Houses: hs, Reason: "horizon undefined at the geographic pole"}
	}
	if hs.degeneratesNearPoles() && math.Abs(latitude) >= maxLatitude-eps {
		return 0, &ComputationError{
			Latitude: latitude,
			Houses:   hs,
			Reason:   fmt.Sprintf("latitude inside polar circle (|lat| >= %.4f)", maxLatitude-eps),
		}
	}

	ramc := rad(LocalSiderealDegrees(jd, longitude))
	e := rad(eps)
	phi := rad(latitude)
	asc := math.Atan2(math.Cos(ramc), -(math.Sin(ramc)*math.Cos(e) + math.Tan(phi)*math.Sin(e)))
	if math.IsNaN(asc) {
		return 0, &ComputationError{Latitude: latitude, Houses: hs, Reason: "ascendant not finite"}
	}
	return zodiac.Normalize(deg(asc)), nil
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithHouseSystem sets the house system used for the Ascendant.
func WithHouseSystem(hs HouseSystem) Option {
	return func(c *Calculator) {
		if hs != "" {
			c.houses = hs
		}
	}
}

// Calculator bundles the position functions behind a configured house system.
type Calculator struct {
	houses HouseSystem
}

// NewCalculator creates a Calculator using Placidus unless configured otherwise.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{houses: DefaultHouseSystem}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HouseSystem returns the configured house system.
func (c *Calculator) HouseSystem() HouseSystem { return c.houses }

// Compute returns all three longitudes for a UTC instant and place.
func (c *Calculator) Compute(ctx context.Context, instant time.Time, at Coordinates) (Positions, error) {
	if err := ctx.Err(); err != nil {
		return Positions{}, err
	}
	if !at.Valid() {
		return Positions{}, fmt.Errorf("%w: lat=%g lon=%g", ErrInvalidCoordinates, at.Latitude, at.Longitude)
	}
	jd := JulianDay(instant)
	asc, err := Ascendant(jd, at.Latitude, at.Longitude, c.houses)
	if err != nil {
		return Positions{}, err
	}
	return Positions{
		JulianDay: jd,
		Sun:       SunLongitude(jd),
		Moon:      MoonLongitude(jd),
		Ascendant: asc,
		Houses:    c.houses,
	}, nil
}

// Luminaries returns only the Sun and Moon longitudes, which need no place.
func (c *Calculator) Luminaries(ctx context.Context, instant time.Time) (float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	jd := JulianDay(instant)
	return SunLongitude(jd), MoonLongitude(jd), nil
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
