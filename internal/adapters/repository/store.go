// Package repository persists profiles and the sign triads resolved for them.
package repository

import (
	"context"

	"github.com/okian/astrocore/internal/domain/model"
)

// Store provides read/write access to profiles.
type Store interface {
	// Upsert stores birth data for id and bumps its version. Any
	// previously resolved signs are cleared until the new version resolves.
	Upsert(ctx context.Context, id string, birth model.BirthEvent) (model.Profile, error)

	// Get returns the profile for id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Profile, error)

	// WriteSigns records the outcome of resolving version of id. Exactly
	// one of triad or resolveErr is meaningful. Returns false without
	// writing when the profile has moved past version.
	WriteSigns(ctx context.Context, id string, version int64, triad *model.SignTriad, resolveErr error) (bool, error)

	// Count returns the number of stored profiles.
	Count(ctx context.Context) int
}
