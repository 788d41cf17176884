package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "workhub:idempotency:"

// RedisStore shares records between replicas. Claims use SET NX so two
// replicas never run the same key.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func (s *RedisStore) Begin(ctx context.Context, key, fingerprint string) (Record, bool, error) {
	rec := Record{Fingerprint: fingerprint, Pending: true}
	payload, err := json.Marshal(rec)
	if err != nil {
		return Record{}, false, err
	}

	claimed, err := s.rdb.SetNX(ctx, keyPrefix+key, payload, s.ttl).Result()
	if err != nil {
		return Record{}, false, fmt.Errorf("s.rdb.SetNX -> %w", err)
	}
	if claimed {
		return rec, true, nil
	}

	raw, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; treat as a fresh claim attempt.
		return s.Begin(ctx, key, fingerprint)
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("s.rdb.Get -> %w", err)
	}

	var existing Record
	if err := json.Unmarshal(raw, &existing); err != nil {
		return Record{}, false, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return existing, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, key string, rec Record) error {
	rec.Pending = false
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, keyPrefix+key, payload, s.ttl).Err()
}

func (s *RedisStore) Abort(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, keyPrefix+key).Err()
}
