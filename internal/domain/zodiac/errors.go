package zodiac

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownSign = errors.New("unknown zodiac sign")
)
