package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warewolf/demand-engine/internal/config"
	"github.com/warewolf/demand-engine/internal/domain"
)

const (
	anomalyRecentKeyPrefix = "anomalies:recent"
	anomalyScanBatchSize   = 100
)

// AnomalyCache caches the recent-anomalies dashboard feed. Forecast
// results are deliberately not cached anywhere; they are transient by
// contract.
type AnomalyCache interface {
	GetRecent(ctx context.Context, limit int) ([]domain.DemandAnomaly, bool, error)
	SetRecent(ctx context.Context, limit int, anomalies []domain.DemandAnomaly) error
	InvalidateAll(ctx context.Context) error
}

type redisAnomalyCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnomalyCache struct{}

func NewAnomalyCache(cfg config.CacheConfig) (AnomalyCache, error) {
	if !cfg.Enabled {
		return &noopAnomalyCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnomalyCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnomalyCache() AnomalyCache {
	return &noopAnomalyCache{}
}

func (c *redisAnomalyCache) GetRecent(ctx context.Context, limit int) ([]domain.DemandAnomaly, bool, error) {
	key := buildRecentKey(limit)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var anomalies []domain.DemandAnomaly
	if err := json.Unmarshal(payload, &anomalies); err != nil {
		return nil, false, fmt.Errorf("decode recent anomalies cache: %w", err)
	}

	return anomalies, true, nil
}

func (c *redisAnomalyCache) SetRecent(ctx context.Context, limit int, anomalies []domain.DemandAnomaly) error {
	key := buildRecentKey(limit)
	payload, err := json.Marshal(anomalies)
	if err != nil {
		return fmt.Errorf("encode recent anomalies cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnomalyCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, anomalyRecentKeyPrefix, anomalyScanBatchSize)
}

func (n *noopAnomalyCache) GetRecent(ctx context.Context, limit int) ([]domain.DemandAnomaly, bool, error) {
	return nil, false, nil
}

func (n *noopAnomalyCache) SetRecent(ctx context.Context, limit int, anomalies []domain.DemandAnomaly) error {
	return nil
}

func (n *noopAnomalyCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRecentKey(limit int) string {
	return fmt.Sprintf("%s:%d", anomalyRecentKeyPrefix, limit)
}
