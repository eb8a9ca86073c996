package tz

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrTimezoneResolution = errors.New("timezone resolution failed")
	ErrUnknownZone        = errors.New("unknown timezone")
	ErrInvalidOffset      = errors.New("invalid utc offset")
	ErrNoZone             = errors.New("no timezone or offset supplied")
)

// ResolutionError reports a zone that could not be resolved. It matches
// ErrTimezoneResolution under errors.Is and unwraps to the cause.
type ResolutionError struct {
	Zone   string
	Offset *float64
	Err    error
}

func (e *ResolutionError) Error() string {
	switch {
	case e.Zone != "" && e.Offset != nil:
		return fmt.Sprintf("timezone resolution failed for %q (offset %g): %v", e.Zone, *e.Offset, e.Err)
	case e.Zone != "":
		return fmt.Sprintf("timezone resolution failed for %q: %v", e.Zone, e.Err)
	case e.Offset != nil:
		return fmt.Sprintf("timezone resolution failed for offset %g: %v", *e.Offset, e.Err)
	default:
		return fmt.Sprintf("timezone resolution failed: %v", e.Err)
	}
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTimezoneResolution.
func (e *ResolutionError) Is(target error) bool { return target == ErrTimezoneResolution }
