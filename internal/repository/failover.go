package repository

import (
	"context"
	"sync/atomic"
	"time"

	"glampbook/internal/domain"
	"glampbook/internal/models"

	"github.com/rs/zerolog"
)

// FailoverPropertyCache prefers the primary cache and degrades to the
// fallback when the primary errors, retrying the primary after a minute.
// The resolver shares one instance across concurrent requests, so the
// down-state bookkeeping is atomic: lastCheck holds UnixNano.
type FailoverPropertyCache struct {
	primary   domain.PropertyCache
	fallback  domain.PropertyCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverPropertyCache(primary, fallback domain.PropertyCache, logger *zerolog.Logger) *FailoverPropertyCache {
	return &FailoverPropertyCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverPropertyCache) Get(ctx context.Context, id string) (*models.Property, error) {
	if !r.isDown.Load() {
		property, err := r.primary.Get(ctx, id)
		if err == nil {
			return property, nil
		}
		r.logger.Error().Err(err).Msg("Primary property cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck.Store(time.Now().UnixNano())
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute {
		property, err := r.primary.Get(ctx, id)
		if err == nil {
			r.isDown.Store(false)
			return property, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Get(ctx, id)
}

func (r *FailoverPropertyCache) Set(ctx context.Context, property *models.Property) error {
	if !r.isDown.Load() {
		err := r.primary.Set(ctx, property)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary property cache failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Set(ctx, property)
}
