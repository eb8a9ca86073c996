// Package cache stores resolved SignTriads keyed by the canonical birth key.
package cache

import (
	"context"

	"github.com/okian/astrocore/internal/domain/model"
)

// Cache is a SignTriad cache. A miss is (nil, false, nil); errors are
// reserved for a backend that could not answer.
type Cache interface {
	Get(ctx context.Context, key string) (*model.SignTriad, bool, error)
	Set(ctx context.Context, key string, t *model.SignTriad) error
	Close() error
}

// nopCache never stores anything.
type nopCache struct{}

// NewNop returns a Cache that always misses.
func NewNop() Cache { return nopCache{} }

func (nopCache) Get(context.Context, string) (*model.SignTriad, bool, error) { return nil, false, nil }
func (nopCache) Set(context.Context, string, *model.SignTriad) error         { return nil }
func (nopCache) Close() error                                                { return nil }
