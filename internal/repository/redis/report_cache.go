package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"examLens/domain"

	"github.com/redis/go-redis/v9"
)

// ReportCache memoizes full reports keyed by (dataset fingerprint,
// mapping-store version). The engine itself never caches; identical
// inputs produce identical outputs, which is what makes this safe.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ReportCache{client: client, ttl: ttl}
}

func cacheKey(key string) string {
	return fmt.Sprintf("report:%s", key)
}

func (c *ReportCache) Get(ctx context.Context, key string) (*domain.Report, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read report cache: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}
	return &report, true, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, report *domain.Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store report in cache: %w", err)
	}
	return nil
}
