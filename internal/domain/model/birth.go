// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/astrocore/internal/domain/zodiac"
)

// BirthEvent is the parsed birth data of one person.
// Fields mirror the OpenAPI schema for POST /signs.
type BirthEvent struct {
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	Day         int      `json:"day"`
	Hour        int      `json:"hour"`
	Minute      int      `json:"minute"`
	TimeUnknown bool     `json:"time_unknown"` // hour/minute ignored; local noon is used
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Timezone    string   `json:"timezone,omitempty"`     // IANA identifier
	OffsetHours *float64 `json:"offset_hours,omitempty"` // fallback fixed offset
}

// Key returns a canonical string identifying every field that influences
// the resulting SignTriad. Floats use the shortest exact representation.
func (b BirthEvent) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d-%02d-%02d", b.Year, b.Month, b.Day)
	if b.TimeUnknown {
		sb.WriteString("T?")
	} else {
		fmt.Fprintf(&sb, "T%02d:%02d", b.Hour, b.Minute)
	}
	sb.WriteString("@")
	sb.WriteString(strconv.FormatFloat(b.Latitude, 'g', -1, 64))
	sb.WriteString(",")
	sb.WriteString(strconv.FormatFloat(b.Longitude, 'g', -1, 64))
	sb.WriteString("|")
	sb.WriteString(b.Timezone)
	sb.WriteString("|")
	if b.OffsetHours != nil {
		sb.WriteString(strconv.FormatFloat(*b.OffsetHours, 'g', -1, 64))
	}
	return sb.String()
}

// Longitudes carries the raw positions behind a SignTriad. Ascendant is nil
// when the rising sign was not computed.
type Longitudes struct {
	Sun       float64  `json:"sun"`
	Moon      float64  `json:"moon"`
	Ascendant *float64 `json:"ascendant"`
}

// SignTriad is the Sun, Moon and Rising placement for one BirthEvent.
//
// When the birth time is unknown, TimeUnknown is set and Sun/Moon are taken
// at local noon. Rising is then either nil or, if the caller opted into noon
// substitution, present with RisingApproximate set.
type SignTriad struct {
	Sun               zodiac.Sign  `json:"sun_sign"`
	Moon              zodiac.Sign  `json:"moon_sign"`
	Rising            *zodiac.Sign `json:"rising_sign"`
	TimeUnknown       bool         `json:"time_unknown"`
	RisingApproximate bool         `json:"rising_approximate"`
	HouseSystem       string       `json:"house_system"`
	Timezone          string       `json:"timezone"`
	UTC               time.Time    `json:"utc"`
	Longitudes        Longitudes   `json:"longitudes"`
}

// HasRising reports whether a rising sign is present.
func (t SignTriad) HasRising() bool { return t.Rising != nil }
