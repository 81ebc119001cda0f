// Package scheme resolves per-scheme accrual rates for benefit calculation.
//
// The engine depends only on the RateProvider interface. The default is a
// constant rate; a registry-backed provider and a Redis caching decorator are
// available when a scheme registry is configured.
package scheme

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultAccrualRate is the accrual rate used when no registry is configured
// or a lookup fails.
var DefaultAccrualRate = decimal.NewFromFloat(0.02)

// RateProvider resolves the accrual rate for a pension scheme.
//
// Implementations never fail: any lookup problem degrades to
// DefaultAccrualRate so that benefit calculation always proceeds.
type RateProvider interface {
	AccrualRate(ctx context.Context, schemeID string) decimal.Decimal
}

// StaticProvider returns a fixed rate for every scheme.
type StaticProvider struct {
	Rate decimal.Decimal
}

// Default returns a StaticProvider carrying DefaultAccrualRate.
func Default() *StaticProvider {
	return &StaticProvider{Rate: DefaultAccrualRate}
}

// AccrualRate returns the fixed rate.
func (p *StaticProvider) AccrualRate(context.Context, string) decimal.Decimal {
	return p.Rate
}

// Verify interface conformance.
var _ RateProvider = (*StaticProvider)(nil)
