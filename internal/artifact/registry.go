package artifact

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRegistryKey = "artifacts:expiry"
	defaultTTL         = time.Hour
)

// Registry tracks published artifacts in a sorted set scored by expiry time.
type Registry struct {
	redis *redis.Client
	key   string
	ttl   time.Duration
}

func NewRegistry(redisClient *redis.Client, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Registry{
		redis: redisClient,
		key:   defaultRegistryKey,
		ttl:   ttl,
	}
}

func (r *Registry) TTL() time.Duration {
	return r.ttl
}

func (r *Registry) Register(ctx context.Context, path string) error {
	return r.RegisterAt(ctx, path, time.Now())
}

func (r *Registry) RegisterAt(ctx context.Context, path string, now time.Time) error {
	return r.redis.ZAdd(ctx, r.key, redis.Z{
		Score:  float64(now.Add(r.ttl).Unix()),
		Member: path,
	}).Err()
}

// Expired lists artifacts whose expiry is at or before now.
func (r *Registry) Expired(ctx context.Context, now time.Time) ([]string, error) {
	return r.redis.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
}

func (r *Registry) Forget(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	members := make([]any, len(paths))
	for i, p := range paths {
		members[i] = p
	}
	return r.redis.ZRem(ctx, r.key, members...).Err()
}

func (r *Registry) Count(ctx context.Context) (int64, error) {
	return r.redis.ZCard(ctx, r.key).Result()
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.redis.Ping(ctx).Err()
}
