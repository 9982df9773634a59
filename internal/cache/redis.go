package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"veridian/diligence-api/internal/domain"
)

// Redis is the shared cache backend for multi-instance deployments.
// Errors degrade to cache misses; the analysis pipeline is the source of
// truth, never the cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects a cache to the given Redis address.
func NewRedis(addr string, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func key(document string) string { return "diligence:analysis:" + document }

func (r *Redis) Get(ctx context.Context, document string) (*domain.AnalysisResult, bool) {
	b, err := r.client.Get(ctx, key(document)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache: redis get failed", "error", err)
		}
		return nil, false
	}
	var res domain.AnalysisResult
	if err := json.Unmarshal(b, &res); err != nil {
		slog.Warn("cache: corrupt entry dropped", "document", document, "error", err)
		return nil, false
	}
	return &res, true
}

func (r *Redis) Set(ctx context.Context, document string, res *domain.AnalysisResult) {
	b, err := json.Marshal(res)
	if err != nil {
		slog.Error("cache: marshal failed", "error", err)
		return
	}
	if err := r.client.Set(ctx, key(document), b, r.ttl).Err(); err != nil {
		slog.Warn("cache: redis set failed", "error", err)
	}
}

// Ping verifies connectivity at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
