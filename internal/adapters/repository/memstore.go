package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]model.Profile
	now  func() time.Time

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its metrics updater, which
// runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:                  make(map[string]model.Profile),
		now:                   time.Now,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Upsert implements Store.Upsert.
func (s *MemoryStore) Upsert(ctx context.Context, id string, birth model.BirthEvent) (model.Profile, error) {
	if err := ctx.Err(); err != nil {
		return model.Profile{}, err
	}
	if strings.TrimSpace(id) == "" {
		return model.Profile{}, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.byID[id]
	p.ID = id
	p.Birth = birth
	p.Signs = nil
	p.LastError = ""
	p.Version++
	p.UpdatedAt = s.now().UTC()
	s.byID[id] = p
	return p, nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Profile, error) {
	if err := ctx.Err(); err != nil {
		return model.Profile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	if p.Signs != nil {
		t := *p.Signs
		p.Signs = &t
	}
	return p, nil
}

// WriteSigns implements Store.WriteSigns.
func (s *MemoryStore) WriteSigns(ctx context.Context, id string, version int64, triad *model.SignTriad, resolveErr error) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if p.Version != version {
		return false, nil
	}
	if resolveErr != nil {
		p.Signs = nil
		p.LastError = resolveErr.Error()
	} else if triad != nil {
		t := *triad
		p.Signs = &t
		p.LastError = ""
	}
	p.UpdatedAt = s.now().UTC()
	s.byID[id] = p
	return true, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateProfilesTotal(s.Count(ctx))
			}
		}
	}()
}
