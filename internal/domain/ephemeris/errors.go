package ephemeris

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrEphemerisComputation = errors.New("ephemeris computation failed")
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
	ErrUnknownHouseSystem   = errors.New("unknown house system")
)

// ComputationError reports a place/time for which the model has no answer.
// It matches ErrEphemerisComputation under errors.Is.
type ComputationError struct {
	Latitude float64
	Houses   HouseSystem
	Reason   string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("ephemeris computation failed (%s, lat=%g): %s", e.Houses, e.Latitude, e.Reason)
}

// Is reports whether target is ErrEphemerisComputation.
func (e *ComputationError) Is(target error) bool { return target == ErrEphemerisComputation }
