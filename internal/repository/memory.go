package repository

import (
	"context"
	"sync"
	"time"

	"glampbook/internal/models"
)

// MemoryPropertyCache is the in-process fallback when redis is disabled or
// unreachable.
type MemoryPropertyCache struct {
	entries sync.Map
	ttl     time.Duration
}

type cacheEntry struct {
	property  *models.Property
	expiresAt time.Time
}

func NewMemoryPropertyCache(ttl time.Duration) *MemoryPropertyCache {
	return &MemoryPropertyCache{ttl: ttl}
}

func (r *MemoryPropertyCache) Get(ctx context.Context, id string) (*models.Property, error) {
	val, ok := r.entries.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(cacheEntry)
	if time.Now().After(entry.expiresAt) {
		r.entries.Delete(id)
		return nil, nil
	}
	return entry.property, nil
}

func (r *MemoryPropertyCache) Set(ctx context.Context, property *models.Property) error {
	r.entries.Store(property.ID, cacheEntry{
		property:  property,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}
