package signs

import (
	"math"
	"time"

	"github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/internal/domain/tz"
)

// Accepted calendar range (proleptic Gregorian).
const (
	minYear = 1
	maxYear = 9999
)

// Validate checks every BirthEvent invariant and reports all violations at
// once. It returns nil when the event is valid.
func Validate(b model.BirthEvent) error {
	var fields []FieldError
	add := func(field string, value any, reason string) {
		fields = append(fields, FieldError{Field: field, Value: value, Reason: reason})
	}

	if b.Year < minYear || b.Year > maxYear {
		add("year", b.Year, "must be within [1,9999]")
	}
	monthOK := b.Month >= 1 && b.Month <= 12
	if !monthOK {
		add("month", b.Month, "must be within [1,12]")
	}
	if monthOK {
		if last := daysIn(b.Year, b.Month); b.Day < 1 || b.Day > last {
			add("day", b.Day, "must be a valid day of the month")
		}
	} else if b.Day < 1 || b.Day > 31 {
		add("day", b.Day, "must be within [1,31]")
	}

	if !b.TimeUnknown {
		if b.Hour < 0 || b.Hour > 23 {
			add("hour", b.Hour, "must be within [0,23]")
		}
		if b.Minute < 0 || b.Minute > 59 {
			add("minute", b.Minute, "must be within [0,59]")
		}
	}

	if math.IsNaN(b.Latitude) || b.Latitude < -90 || b.Latitude > 90 {
		add("latitude", b.Latitude, "must be within [-90,90]")
	}
	if math.IsNaN(b.Longitude) || b.Longitude < -180 || b.Longitude > 180 {
		add("longitude", b.Longitude, "must be within [-180,180]")
	}

	if b.OffsetHours != nil {
		o := *b.OffsetHours
		switch {
		case math.IsNaN(o) || math.IsInf(o, 0):
			add("offset_hours", o, "must be a finite number of hours")
		case o < tz.MinOffsetHours || o > tz.MaxOffsetHours:
			add("offset_hours", o, "must be within [-14,14]")
		}
	}
	if b.Timezone == "" && b.OffsetHours == nil {
		add("timezone", b.Timezone, "timezone or offset_hours is required")
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func daysIn(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
