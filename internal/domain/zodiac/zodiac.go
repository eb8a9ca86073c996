// Package zodiac maps ecliptic longitudes onto the twelve tropical signs.
//
// Every sign in the system is derived by FromLongitude. There is no other
// lookup table: elements and modalities are computed from the sign index.
package zodiac

import (
	"fmt"
	"math"
	"strings"
)

// Partition constants.
const (
	fullCircle     = 360.0
	degreesPerSign = 30.0
	signCount      = 12
)

// Sign is one of the twelve zodiac signs, indexed from Aries (0).
type Sign int

// The twelve signs in ecliptic order.
const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [signCount]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Normalize reduces a longitude in degrees to [0,360).
func Normalize(longitude float64) float64 {
	l := math.Mod(longitude, fullCircle)
	if l < 0 {
		l += fullCircle
	}
	// math.Mod of a tiny negative value can round back up to 360.
	if l >= fullCircle {
		l = 0
	}
	return l
}

// FromLongitude returns the sign containing the ecliptic longitude:
// floor((longitude mod 360) / 30).
func FromLongitude(longitude float64) Sign {
	idx := int(math.Floor(Normalize(longitude) / degreesPerSign))
	if idx >= signCount {
		idx = signCount - 1
	}
	return Sign(idx)
}

// Valid reports whether s is one of the twelve signs.
func (s Sign) Valid() bool { return s >= Aries && s <= Pisces }

// Index returns the zero-based position of the sign.
func (s Sign) Index() int { return int(s) }

// StartLongitude returns the ecliptic longitude at which the sign begins.
func (s Sign) StartLongitude() float64 { return float64(s) * degreesPerSign }

// String returns the English sign name.
func (s Sign) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

// MarshalText encodes the sign as its name.
func (s Sign) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSign, int(s))
	}
	return []byte(signNames[s]), nil
}

// UnmarshalText decodes a sign name (case-insensitive).
func (s *Sign) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse converts a sign name to a Sign.
func Parse(name string) (Sign, error) {
	n := strings.TrimSpace(name)
	for i, candidate := range signNames {
		if strings.EqualFold(candidate, n) {
			return Sign(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSign, name)
}

// Element is the classical element of a sign.
type Element int

// Elements cycle fire, earth, air, water from Aries.
const (
	Fire Element = iota
	Earth
	Air
	Water
)

func (e Element) String() string {
	switch e {
	case Fire:
		return "fire"
	case Earth:
		return "earth"
	case Air:
		return "air"
	case Water:
		return "water"
	default:
		return "unknown"
	}
}

// Modality is the quality of a sign.
type Modality int

// Modalities cycle cardinal, fixed, mutable from Aries.
const (
	Cardinal Modality = iota
	Fixed
	Mutable
)

func (m Modality) String() string {
	switch m {
	case Cardinal:
		return "cardinal"
	case Fixed:
		return "fixed"
	case Mutable:
		return "mutable"
	default:
		return "unknown"
	}
}

// Element returns the sign's element.
func (s Sign) Element() Element { return Element(int(s) % 4) }

// Modality returns the sign's modality.
func (s Sign) Modality() Modality { return Modality(int(s) % 3) }

// DegreeInSign returns how far into its sign a longitude lies, in [0,30).
func DegreeInSign(longitude float64) float64 {
	return math.Mod(Normalize(longitude), degreesPerSign)
}
