package cache

import (
	"context"
	"time"
)

// ReportCache caches rendered P/L reports as raw JSON. Keys change
// whenever the requested store/period changes, and entries expire on
// a short TTL, so writes after bill close need no invalidation.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// NoopReportCache is used when no Redis address is configured
type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (NoopReportCache) Delete(_ context.Context, _ string) error {
	return nil
}
