package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"glampbook/internal/config"
	"glampbook/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisPropertyCache keeps short-lived property records looked up by the
// resolver's fallback fetch, so a burst of bookings referencing the same
// missing listing costs one storage call instead of one per booking.
type RedisPropertyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisPropertyCache(client *redis.Client, ttl time.Duration) *RedisPropertyCache {
	return &RedisPropertyCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisPropertyCache) Get(ctx context.Context, id string) (*models.Property, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("property:%s", id)
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property from redis: %w", err)
	}

	var property models.Property
	if err := json.Unmarshal([]byte(val), &property); err != nil {
		return nil, fmt.Errorf("failed to unmarshal property: %w", err)
	}

	return &property, nil
}

func (r *RedisPropertyCache) Set(ctx context.Context, property *models.Property) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("property:%s", property.ID)
	data, err := json.Marshal(property)
	if err != nil {
		return fmt.Errorf("failed to marshal property: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set property in redis: %w", err)
	}

	return nil
}
