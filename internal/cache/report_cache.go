package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iseprep/backend/internal/config"
	"github.com/iseprep/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix     = "report:"
	reportScanBatchSize = 100
)

// ReportCache memoizes computed report payloads per (report kind, filter)
// pair. Every report is a pure function of the database contents, so a
// short TTL is the only consistency mechanism needed; writes that change
// the underlying data call InvalidateAll.
type ReportCache interface {
	// Get unmarshals a cached payload into dest, reporting whether the
	// key was present.
	Get(ctx context.Context, kind string, filter domain.ReportFilter, dest interface{}) (bool, error)
	Set(ctx context.Context, kind string, filter domain.ReportFilter, value interface{}) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{client: client, ttl: ttl}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, kind string, filter domain.ReportFilter, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, reportKey(kind, filter)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode cached %s report: %w", kind, err)
	}
	return true, nil
}

func (c *redisReportCache) Set(ctx context.Context, kind string, filter domain.ReportFilter, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s report for cache: %w", kind, err)
	}

	if err := c.client.Set(ctx, reportKey(kind, filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, reportScanBatchSize)
}

func (n *noopReportCache) Get(ctx context.Context, kind string, filter domain.ReportFilter, dest interface{}) (bool, error) {
	return false, nil
}

func (n *noopReportCache) Set(ctx context.Context, kind string, filter domain.ReportFilter, value interface{}) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// reportKey hashes the full filter struct; json encoding of a struct has
// deterministic field order, so identical filters share a key.
func reportKey(kind string, filter domain.ReportFilter) string {
	raw, err := json.Marshal(filter)
	if err != nil {
		return reportKeyPrefix + kind + ":default"
	}
	sum := sha1.Sum(raw)
	return reportKeyPrefix + kind + ":" + hex.EncodeToString(sum[:])
}
