package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/caesar-terminal/listwatch/internal/instrument"
)

// ErrKeyNotFound is returned by a RedisClient when the key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// RedisClient abstracts the Redis operations used by RedisStore.
// In production this is satisfied by NewRedisClient; in tests by a mock.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// RedisStore keeps each market's snapshot as one string value using the
// schema:
//
//	Key:   {prefix}{market}
//	Value: canonical snapshot JSON
type RedisStore struct {
	client RedisClient
	prefix string
}

// NewRedisStore creates a RedisStore writing keys under prefix.
func NewRedisStore(client RedisClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Key returns the Redis key holding market's snapshot.
func (rs *RedisStore) Key(market instrument.Market) string {
	return rs.prefix + string(market)
}

// Load fetches and decodes the stored snapshot for market.
func (rs *RedisStore) Load(ctx context.Context, market instrument.Market) LoadResult {
	val, err := rs.client.Get(ctx, rs.Key(market))
	if errors.Is(err, ErrKeyNotFound) {
		return missing()
	}
	if err != nil {
		return unreadable(fmt.Errorf("store: redis get %s: %w", market, err))
	}
	return decodeResult([]byte(val), market)
}

// Save overwrites the stored snapshot for snap.Market.
func (rs *RedisStore) Save(ctx context.Context, snap instrument.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", snap.Market, err)
	}
	if err := rs.client.Set(ctx, rs.Key(snap.Market), string(data)); err != nil {
		return fmt.Errorf("store: redis set %s: %w", snap.Market, err)
	}
	return nil
}

// goRedis adapts *redis.Client to RedisClient.
type goRedis struct {
	c *redis.Client
}

// NewRedisClient connects to Redis with the given options.
func NewRedisClient(addr, password string, db int) RedisClient {
	return &goRedis{c: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (g *goRedis) Get(ctx context.Context, key string) (string, error) {
	val, err := g.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return val, err
}

func (g *goRedis) Set(ctx context.Context, key, value string) error {
	return g.c.Set(ctx, key, value, 0).Err()
}

// Close releases the underlying connection pool.
func (g *goRedis) Close() error {
	return g.c.Close()
}
