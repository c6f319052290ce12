package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache holds encoded tables for a limited time.
type Cache interface {
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, duration time.Duration) error
}

type cacheItem struct {
	Value     string
	ExpiresAt time.Time
}

// NewCacheMemory returns a process-local cache. Expired items are dropped
// lazily on lookup.
func NewCacheMemory() (Cache, error) {
	return &cacheMemory{
		data: map[string]cacheItem{},
	}, nil
}

type cacheMemory struct {
	mutex sync.Mutex
	data  map[string]cacheItem
}

func (c *cacheMemory) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)

	return nil
}

func (c *cacheMemory) Get(ctx context.Context, key string) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, found := c.data[key]
	if !found {
		return "", ErrCacheMiss
	}

	if time.Since(item.ExpiresAt) >= 0 {
		delete(c.data, key)
		return "", ErrCacheMiss
	}

	return item.Value, nil
}

func (c *cacheMemory) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		Value:     value,
		ExpiresAt: time.Now().Add(duration),
	}

	return nil
}

type CacheRedisConfig struct {
	Host   string
	Number int
	Pass   string
	Port   int
	User   string
}

func NewCacheRedis(config CacheRedisConfig) (Cache, error) {
	return &cacheRedis{
		client: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
			Username: config.User,
			Password: config.Pass,
			DB:       config.Number,
		}),
	}, nil
}

type cacheRedis struct {
	client *redis.Client
}

func (c *cacheRedis) Get(ctx context.Context, key string) (string, error) {
	result, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}

		return "", err
	}

	return result, nil
}

func (c *cacheRedis) Set(ctx context.Context, key string, value string, duration time.Duration) error {
	return c.client.Set(ctx, key, value, duration).Err()
}

func (c *cacheRedis) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// CachedStore serves loads from a cache before falling back to the wrapped
// store.
type CachedStore struct {
	next   Store
	cache  Cache
	ttl    time.Duration
	prefix string
}

func NewCachedStore(next Store, cache Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		prefix: "flatsql-table",
	}
}

func (s *CachedStore) key(name string) string {
	return fmt.Sprintf("%s-%s", s.prefix, name)
}

type cachedTable struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

func (s *CachedStore) Load(ctx context.Context, name string) (Table, error) {
	if val, err := s.cache.Get(ctx, s.key(name)); err == nil {
		target := cachedTable{}
		if err := json.Unmarshal([]byte(val), &target); err == nil {
			return Table{Columns: target.Columns, Rows: target.Rows}, nil
		}
	}

	table, err := s.next.Load(ctx, name)
	if err != nil {
		return Table{}, err
	}

	jsonBytes, err := json.Marshal(cachedTable{Columns: table.Columns, Rows: table.Rows})
	if err != nil {
		return table, nil
	}
	// A failed cache fill only costs a reload next time.
	_ = s.cache.Set(ctx, s.key(name), string(jsonBytes), s.ttl)

	return table, nil
}

func (s *CachedStore) Save(ctx context.Context, name string, table Table) error {
	if err := s.cache.Delete(ctx, s.key(name)); err != nil {
		return writeFailed(name, err)
	}

	return s.next.Save(ctx, name, table)
}
