package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/okian/astrocore/internal/domain/model"
)

const defaultMaxEntries = 10_000

// MemoryOption configures a memory cache.
type MemoryOption func(*memoryCache)

// WithMaxEntries bounds the number of cached triads.
func WithMaxEntries(n int) MemoryOption {
	return func(c *memoryCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithTTL expires entries after ttl. Zero keeps them until evicted.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *memoryCache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *memoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

type memoryEntry struct {
	key     string
	triad   model.SignTriad
	expires time.Time
}

// memoryCache is a bounded LRU.
type memoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	order      *list.List // front is most recently used
	items      map[string]*list.Element
}

// NewMemory creates an in-process LRU cache.
func NewMemory(opts ...MemoryOption) Cache {
	c := &memoryCache{
		maxEntries: defaultMaxEntries,
		now:        time.Now,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *memoryCache) Get(_ context.Context, key string) (*model.SignTriad, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*memoryEntry)
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.remove(el)
		return nil, false, nil
	}
	c.order.MoveToFront(el)
	t := e.triad
	return &t, true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, t *model.SignTriad) error {
	if t == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}
	if el, ok := c.items[key]; ok {
		e := el.Value.(*memoryEntry)
		e.triad, e.expires = *t, expires
		c.order.MoveToFront(el)
		return nil
	}
	c.items[key] = c.order.PushFront(&memoryEntry{key: key, triad: *t, expires: expires})
	for c.order.Len() > c.maxEntries {
		c.remove(c.order.Back())
	}
	return nil
}

func (c *memoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
	return nil
}

// remove must be called with c.mu held.
func (c *memoryCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*memoryEntry).key)
}
