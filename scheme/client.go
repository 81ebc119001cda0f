package scheme

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/VismaKosice/pension-engine/iox"
	"github.com/VismaKosice/pension-engine/log"
	"github.com/VismaKosice/pension-engine/metrics"
)

// DefaultLookupTimeout caps a single registry lookup.
const DefaultLookupTimeout = 2 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RegistryConfig configures the registry-backed provider.
type RegistryConfig struct {
	// BaseURL is the scheme registry base URL (required).
	BaseURL string
	// Timeout is the per-lookup timeout (default 2s).
	Timeout time.Duration
	// Logger logs lookup failures. If nil, failures are silent.
	Logger *log.Logger
	// Collector records lookup metrics. Nil-safe.
	Collector *metrics.Collector
}

// RegistryClient resolves accrual rates from an external scheme registry via
// GET {base}/schemes/{scheme_id}. Every failure mode degrades to
// DefaultAccrualRate; the engine never sees lookup errors.
type RegistryClient struct {
	config RegistryConfig
	client *http.Client
}

// schemeDocument is the registry response body.
type schemeDocument struct {
	SchemeID    string          `json:"scheme_id"`
	AccrualRate decimal.Decimal `json:"accrual_rate"`
}

// NewRegistryClient creates a registry-backed provider.
// Returns an error if the base URL is empty or unparseable.
func NewRegistryClient(cfg RegistryConfig) (*RegistryClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("scheme registry requires a base URL")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("scheme registry: invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLookupTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	return &RegistryClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// AccrualRate resolves the rate for schemeID, falling back to
// DefaultAccrualRate on any failure.
func (c *RegistryClient) AccrualRate(ctx context.Context, schemeID string) decimal.Decimal {
	rate, err := c.fetch(ctx, schemeID)
	if err != nil {
		c.config.Collector.IncSchemeLookupFallback()
		c.config.Logger.Warn("accrual rate lookup failed, using default", map[string]any{
			"scheme_id": schemeID,
			"error":     err.Error(),
			"fallback":  DefaultAccrualRate.String(),
		})
		return DefaultAccrualRate
	}
	c.config.Collector.IncSchemeLookupSuccess()
	return rate
}

// fetch performs a single registry lookup and returns a classified error on
// failure.
func (c *RegistryClient) fetch(ctx context.Context, schemeID string) (decimal.Decimal, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + "/schemes/" + url.PathEscape(schemeID)
	req, err := http.NewRequestWithContext(lookupCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, wrapLookupError(fmt.Errorf("create request: %w", err), schemeID)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, wrapLookupError(err, schemeID)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		// Drain body to allow connection reuse
		_, _ = io.Copy(io.Discard, resp.Body)
		return decimal.Zero, wrapLookupError(fmt.Errorf("unexpected status %d", resp.StatusCode), schemeID)
	}

	var doc schemeDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return decimal.Zero, wrapLookupError(fmt.Errorf("decode response: %w", err), schemeID)
	}
	if doc.AccrualRate.IsNegative() {
		return decimal.Zero, wrapLookupError(fmt.Errorf("negative accrual rate %s", doc.AccrualRate), schemeID)
	}

	return doc.AccrualRate, nil
}

// Close releases client resources.
func (c *RegistryClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// Verify interface conformance.
var _ RateProvider = (*RegistryClient)(nil)
