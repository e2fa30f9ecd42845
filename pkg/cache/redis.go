package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/psulibraries/rmdlink/pkg/httputil"
)

// RedisStore keeps entries in Redis.
//
// Values live at "{prefix}{key}" with a PX expiry. Tag membership is tracked in
// sets at "{prefix}tag:{tag}" whose members are the unprefixed keys; a tag
// set's own expiry is pushed forward on every write so it outlives its members.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore wraps an existing client. prefix is prepended to every key
// the store writes, e.g. "rmdlink:".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

// DialRedis connects to the Redis server at redisURL (redis:// or rediss://)
// and verifies the connection, retrying transient failures with backoff.
func DialRedis(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("could not configure redis cache: %w", err)
	}
	rdb := redis.NewClient(opt)
	err = httputil.RetryWithBackoff(ctx, func() error {
		return httputil.Retryable(rdb.Ping(ctx).Err())
	})
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis cache: %w", err)
	}
	return NewRedisStore(rdb, prefix), nil
}

// Get retrieves a value from Redis.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores a value in Redis and records its tags.
// An expiresAt already in the past removes the key instead.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, expiresAt time.Time, tags []string) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, key)
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.prefix+key, data, ttl)
	for _, t := range normalizeTags(tags) {
		tk := s.tagKey(t)
		pipe.SAdd(ctx, tk, key)
		if ttl > 0 {
			pipe.Expire(ctx, tk, ttl)
		} else {
			pipe.Persist(ctx, tk)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Delete removes a value from Redis. Stale tag memberships are left behind;
// they are dropped by the next invalidation of that tag.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// InvalidateTags deletes every key in the union of the tag sets, then the
// tag sets themselves.
func (s *RedisStore) InvalidateTags(ctx context.Context, tags ...string) (int, error) {
	tags = normalizeTags(tags)
	if len(tags) == 0 {
		return 0, nil
	}

	tagKeys := make([]string, len(tags))
	for i, t := range tags {
		tagKeys[i] = s.tagKey(t)
	}

	members, err := s.client.SUnion(ctx, tagKeys...).Result()
	if err != nil {
		return 0, err
	}

	pipe := s.client.TxPipeline()
	var deleted *redis.IntCmd
	if len(members) > 0 {
		keys := make([]string, len(members))
		for i, m := range members {
			keys[i] = s.prefix + m
		}
		deleted = pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, tagKeys...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	if deleted == nil {
		return 0, nil
	}
	return int(deleted.Val()), nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) tagKey(tag string) string {
	return s.prefix + "tag:" + tag
}

var _ Store = (*RedisStore)(nil)
