package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/logging"
	"air-demand-service/internal/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned by Get when no value is stored for a key.
var ErrCacheMiss = errors.New("cache miss")

// RedisIndicatorCache wraps an IndicatorProvider with a Redis read-through cache.
//
// Only successful lookups are stored. Redis failures are logged and the
// lookup falls through to the wrapped provider. Keys do not include the
// evaluation date, so the prefix should carry whatever pins the wrapped
// provider's data (for example its indicator year).
type RedisIndicatorCache struct {
	client *redis.Client
	inner  ports.IndicatorProvider
	prefix string
	ttl    time.Duration
}

func NewRedisIndicatorCache(client *redis.Client, inner ports.IndicatorProvider, prefix string, ttl time.Duration) *RedisIndicatorCache {
	return &RedisIndicatorCache{
		client: client,
		inner:  inner,
		prefix: prefix,
		ttl:    ttl,
	}
}

// IndicatorKey returns the cache key of a subject and metric under prefix.
func IndicatorKey(prefix, subject string, metric domain.Metric) string {
	subject = strings.ToLower(strings.Join(strings.Fields(subject), " "))
	if prefix == "" {
		return fmt.Sprintf("%s:%s", metric, subject)
	}
	return fmt.Sprintf("%s:%s:%s", prefix, metric, subject)
}

// Get returns the cached value of metric for subject.
func (c *RedisIndicatorCache) Get(ctx context.Context, subject string, metric domain.Metric) (float64, error) {
	val, err := c.client.Get(ctx, IndicatorKey(c.prefix, subject, metric)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("redis get indicator: %w", err)
	}

	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("redis get indicator: parse %q: %w", val, err)
	}
	return v, nil
}

// Put stores a value with the cache TTL.
func (c *RedisIndicatorCache) Put(ctx context.Context, subject string, metric domain.Metric, v float64) error {
	err := c.client.Set(ctx, IndicatorKey(c.prefix, subject, metric), strconv.FormatFloat(v, 'g', -1, 64), c.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set indicator: %w", err)
	}
	return nil
}

// Clear removes every key under the cache prefix.
func (c *RedisIndicatorCache) Clear(ctx context.Context) error {
	pattern := "*"
	if c.prefix != "" {
		pattern = c.prefix + ":*"
	}
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis clear indicators: %w", err)
		}
	}
	return iter.Err()
}

func (c *RedisIndicatorCache) LookupIndicator(ctx context.Context, subject string, metric domain.Metric, asOf time.Time) (float64, error) {
	log := logging.Named("cache")

	v, err := c.Get(ctx, subject, metric)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		log.Warn("indicator cache read failed", zap.String("subject", subject), zap.String("metric", string(metric)), zap.Error(err))
	}

	v, err = c.inner.LookupIndicator(ctx, subject, metric, asOf)
	if err != nil {
		return 0, err
	}

	if err := c.Put(ctx, subject, metric, v); err != nil {
		log.Warn("indicator cache write failed", zap.String("subject", subject), zap.String("metric", string(metric)), zap.Error(err))
	}
	return v, nil
}
