package identity

import (
	"context"
	"time"

	"modelkit.io/modelkit/internal/lru"
	"modelkit.io/modelkit/schema"
)

// CachedStore keeps recently resolved users in memory in front of another Store.
// Users are immutable instances, so one cached value is shared by every request.
type CachedStore struct {
	store Store
	cache *lru.LRU[string, *schema.Instance]
}

// NewCachedStore caches up to size users for ttl
func NewCachedStore(store Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{store: store, cache: lru.NewLRU[string, *schema.Instance](size, nil, ttl)}
}

// FindUser serves id from the cache, else from the wrapped store
func (s *CachedStore) FindUser(ctx context.Context, id string) (*schema.Instance, error) {
	if user, ok := s.cache.Get(id); ok {
		return user, nil
	}

	user, err := s.store.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, user)
	return user, nil
}

// Forget drops id so the next lookup reaches the wrapped store
func (s *CachedStore) Forget(id string) {
	s.cache.Remove(id)
}
