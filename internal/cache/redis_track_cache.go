package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"healthtracker/internal/models"

	"github.com/redis/go-redis/v9"
)

var errStale = errors.New("cache generation changed")

// RedisTrackCache stores each user's full track list as one JSON value.
type RedisTrackCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisTrackCache connects to Redis and verifies the connection with PING.
func NewRedisTrackCache(ctx context.Context, opts Options) (*RedisTrackCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	log.Printf("Connected to Redis at %s", opts.Addr)
	return NewRedisTrackCacheFromClient(rdb, opts.TTL), nil
}

// NewRedisTrackCacheFromClient wraps an existing client.
func NewRedisTrackCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisTrackCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisTrackCache{rdb: rdb, ttl: ttl}
}

func key(userID string) string {
	return "tracks:" + userID
}

// versionKey holds the user's list generation. Invalidate bumps it so a
// fill computed from an older read can be recognised and dropped.
func versionKey(userID string) string {
	return key(userID) + ":ver"
}

// Get returns the cached list; ok is false on a miss.
func (c *RedisTrackCache) Get(ctx context.Context, userID string) ([]models.TrackResponse, bool, error) {
	raw, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var tracks []models.TrackResponse
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key(userID), err)
	}
	return tracks, true, nil
}

// Version returns the user's current list generation, 0 if never invalidated.
// Read it before loading the list from storage and pass it to Set.
func (c *RedisTrackCache) Version(ctx context.Context, userID string) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set stores the list with the configured TTL, but only while the generation
// still equals version. A list read before a concurrent write is silently dropped.
func (c *RedisTrackCache) Set(ctx context.Context, userID string, version int64, tracks []models.TrackResponse) error {
	raw, err := json.Marshal(tracks)
	if err != nil {
		return err
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey(userID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(userID), raw, c.ttl)
			return nil
		})
		return err
	}, versionKey(userID))

	if errors.Is(err, errStale) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate bumps the generation and drops the user's cached list in one transaction.
func (c *RedisTrackCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Del(ctx, key(userID))
		return nil
	})
	return err
}

// Close closes the Redis client.
func (c *RedisTrackCache) Close() error {
	return c.rdb.Close()
}
