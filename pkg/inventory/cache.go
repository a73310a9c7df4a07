package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/platinummonkey/stockroom/pkg/observability"
	"github.com/platinummonkey/stockroom/pkg/query"
)

// ItemStore is the item CRUD surface. Store implements it directly;
// CachedStore wraps one with a read-through cache.
type ItemStore interface {
	Create(ctx context.Context, input CreateItemInput, actor string) (*Item, error)
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, filter ItemFilter, params query.Params) (*query.Page[*Item], error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput, actor string) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID, actor string) error
}

// CachedStore layers an in-process LRU and an optional Redis cache over an
// ItemStore. Only Get is served from cache; listings always hit the
// database so search results and ordering stay exact. A Redis outage is
// logged and treated as a miss.
type CachedStore struct {
	inner   ItemStore
	l1      *lru.Cache[uuid.UUID, *Item]
	redis   *redis.Client
	ttl     time.Duration
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewCachedStore wraps inner with caching. redisClient and metrics may be
// nil; l1Size must be positive.
func NewCachedStore(inner ItemStore, l1Size int, redisClient *redis.Client, ttl time.Duration, logger *observability.Logger, metrics *observability.Metrics) (*CachedStore, error) {
	l1, err := lru.New[uuid.UUID, *Item](l1Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create item cache: %w", err)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{
		inner:   inner,
		l1:      l1,
		redis:   redisClient,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}, nil
}

func (c *CachedStore) hit(cacheType string) {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues(cacheType).Inc()
	}
}

func (c *CachedStore) miss(cacheType string) {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

func redisKey(id uuid.UUID) string {
	return "stockroom:item:" + id.String()
}

// Get serves from L1, then Redis, then the database
func (c *CachedStore) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	if item, ok := c.l1.Get(id); ok {
		c.hit("l1")
		return item, nil
	}
	c.miss("l1")

	if c.redis != nil {
		data, err := c.redis.Get(ctx, redisKey(id)).Bytes()
		switch {
		case err == nil:
			item := &Item{}
			if err := json.Unmarshal(data, item); err == nil {
				c.hit("l2")
				c.l1.Add(id, item)
				return item, nil
			}
			c.logger.WithField("item_id", id.String()).Warn("Discarding undecodable cached item")
		case err != redis.Nil:
			c.logger.WithError(err).Warn("Redis get failed, falling through to database")
		}
		c.miss("l2")
	}

	item, err := c.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, item)
	return item, nil
}

// List always goes to the database
func (c *CachedStore) List(ctx context.Context, filter ItemFilter, params query.Params) (*query.Page[*Item], error) {
	return c.inner.List(ctx, filter, params)
}

// Create writes through and primes the caches
func (c *CachedStore) Create(ctx context.Context, input CreateItemInput, actor string) (*Item, error) {
	item, err := c.inner.Create(ctx, input, actor)
	if err != nil {
		return nil, err
	}
	c.store(ctx, item)
	return item, nil
}

// Update writes through and replaces the cached value
func (c *CachedStore) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput, actor string) (*Item, error) {
	item, err := c.inner.Update(ctx, id, input, actor)
	if err != nil {
		return nil, err
	}
	c.store(ctx, item)
	return item, nil
}

// Delete writes through and evicts the cached value
func (c *CachedStore) Delete(ctx context.Context, id uuid.UUID, actor string) error {
	if err := c.inner.Delete(ctx, id, actor); err != nil {
		return err
	}
	c.l1.Remove(id)
	if c.redis != nil {
		if err := c.redis.Del(ctx, redisKey(id)).Err(); err != nil {
			c.logger.WithError(err).Warn("Redis delete failed")
		}
	}
	return nil
}

func (c *CachedStore) store(ctx context.Context, item *Item) {
	c.l1.Add(item.ID, item)
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(item)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, redisKey(item.ID), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("Redis set failed")
	}
}
