package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("profile not found")
	ErrInvalidID    = errors.New("invalid profile id")
	ErrStaleVersion = errors.New("stale profile version")
)
