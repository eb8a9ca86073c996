package cache

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrSerialization    = errors.New("cache serialization failed")
)
