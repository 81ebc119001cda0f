package scheme

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/VismaKosice/pension-engine/log"
	"github.com/VismaKosice/pension-engine/metrics"
)

// DefaultCacheTTL is how long a cached accrual rate stays valid.
const DefaultCacheTTL = 15 * time.Minute

// cacheKeyPrefix namespaces rate entries in Redis.
const cacheKeyPrefix = "pension:accrual_rate:"

// CacheConfig configures the caching provider.
type CacheConfig struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// TTL is the entry lifetime (default 15m).
	TTL time.Duration
	// Logger logs cache failures. If nil, failures are silent.
	Logger *log.Logger
	// Collector records cache metrics. Nil-safe.
	Collector *metrics.Collector
}

// CachingProvider decorates a RateProvider with a Redis-backed cache.
//
// Cache entries are msgpack-encoded. Redis failures are never fatal: a broken
// cache degrades to pass-through lookups against the inner provider.
type CachingProvider struct {
	inner  RateProvider
	config CacheConfig
	client *goredis.Client
}

// cacheEntry is the msgpack-encoded cache record.
type cacheEntry struct {
	SchemeID string `msgpack:"scheme_id"`
	Rate     string `msgpack:"rate"`
}

// NewCachingProvider wraps inner with a Redis rate cache.
// Returns an error if the URL is empty or invalid.
func NewCachingProvider(inner RateProvider, cfg CacheConfig) (*CachingProvider, error) {
	if inner == nil {
		return nil, errors.New("rate cache requires an inner provider")
	}
	if cfg.URL == "" {
		return nil, errors.New("rate cache requires a Redis URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rate cache: invalid URL: %w", err)
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	return &CachingProvider{
		inner:  inner,
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// AccrualRate returns the cached rate for schemeID, resolving and caching via
// the inner provider on a miss.
func (p *CachingProvider) AccrualRate(ctx context.Context, schemeID string) decimal.Decimal {
	if rate, ok := p.get(ctx, schemeID); ok {
		p.config.Collector.IncSchemeCacheHit()
		return rate
	}
	p.config.Collector.IncSchemeCacheMiss()

	rate := p.inner.AccrualRate(ctx, schemeID)
	p.put(ctx, schemeID, rate)
	return rate
}

// get reads a cache entry. Any failure reads as a miss.
func (p *CachingProvider) get(ctx context.Context, schemeID string) (decimal.Decimal, bool) {
	raw, err := p.client.Get(ctx, cacheKeyPrefix+schemeID).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			p.config.Logger.Warn("rate cache read failed", map[string]any{
				"scheme_id": schemeID,
				"error":     err.Error(),
			})
		}
		return decimal.Zero, false
	}

	var entry cacheEntry
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		p.config.Logger.Warn("rate cache entry corrupt", map[string]any{
			"scheme_id": schemeID,
			"error":     err.Error(),
		})
		return decimal.Zero, false
	}

	rate, err := decimal.NewFromString(entry.Rate)
	if err != nil {
		return decimal.Zero, false
	}
	return rate, true
}

// put writes a cache entry. Failures are logged and ignored.
func (p *CachingProvider) put(ctx context.Context, schemeID string, rate decimal.Decimal) {
	body, err := msgpack.Marshal(&cacheEntry{SchemeID: schemeID, Rate: rate.String()})
	if err != nil {
		p.config.Logger.Warn("rate cache encode failed", map[string]any{
			"scheme_id": schemeID,
			"error":     err.Error(),
		})
		return
	}

	if err := p.client.Set(ctx, cacheKeyPrefix+schemeID, body, p.config.TTL).Err(); err != nil {
		p.config.Logger.Warn("rate cache write failed", map[string]any{
			"scheme_id": schemeID,
			"error":     err.Error(),
		})
	}
}

// Close releases the Redis client.
func (p *CachingProvider) Close() error {
	return p.client.Close()
}

// Verify interface conformance.
var _ RateProvider = (*CachingProvider)(nil)
