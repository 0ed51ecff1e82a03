// test/mock/store.go
package mock

import (
	"context"
	"sync"

	grantd_errors "github.com/accesskit/grantd/errors"
	"github.com/accesskit/grantd/model"
)

// MemoryGrantStore is an in-memory dao.GrantStore for tests. SaveErr, when
// set, makes every Save fail with that error.
type MemoryGrantStore struct {
	mu      sync.RWMutex
	grants  map[string]model.Grant
	SaveErr error
}

func NewMemoryGrantStore() *MemoryGrantStore {
	return &MemoryGrantStore{grants: make(map[string]model.Grant)}
}

func (s *MemoryGrantStore) Load(ctx context.Context, grantID string) (*model.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grant, ok := s.grants[grantID]
	if !ok {
		return nil, grantd_errors.ErrGrantNotFound
	}
	copied := grant
	return &copied, nil
}

func (s *MemoryGrantStore) Save(ctx context.Context, grant *model.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.grants[grant.ID] = *grant
	return nil
}

// Len returns the number of stored grants
func (s *MemoryGrantStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.grants)
}

func (s *MemoryGrantStore) ListActive(ctx context.Context) ([]*model.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []*model.Grant
	for _, grant := range s.grants {
		if grant.State == model.StateActive {
			copied := grant
			active = append(active, &copied)
		}
	}
	return active, nil
}

// NoopGrantCache satisfies service.GrantCache without a Redis backend
type NoopGrantCache struct{}

func (NoopGrantCache) GetGrant(ctx context.Context, grantID string) (*model.Grant, error) {
	return nil, nil
}

func (NoopGrantCache) SetGrant(ctx context.Context, grant *model.Grant) error { return nil }

func (NoopGrantCache) DeleteGrant(ctx context.Context, grantID string) error { return nil }

// NoopNotifier satisfies service.Notifier
type NoopNotifier struct{}

func (NoopNotifier) NotifyGrantChange(ctx context.Context, changeType string, grant *model.Grant) error {
	return nil
}

func (NoopNotifier) NotifyAdmins(ctx context.Context, message string) error { return nil }
