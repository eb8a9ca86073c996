package model

import "time"

// Profile is the persisted record the core reads a BirthEvent from and
// writes the resolved SignTriad back to.
type Profile struct {
	ID        string     `json:"id"`
	Birth     BirthEvent `json:"birth"`
	Signs     *SignTriad `json:"signs,omitempty"`
	Version   int64      `json:"version"`
	LastError string     `json:"last_error,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RecomputeEvent asks the worker pool to resolve a profile's signs.
type RecomputeEvent struct {
	EventID   string     // unique id for idempotency
	ProfileID string     // profile to write the triad to
	Version   int64      // profile version the birth data belongs to
	Birth     BirthEvent // birth data snapshot
	TS        time.Time  // submission time
}
