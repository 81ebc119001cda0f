// Package props extracts typed values from loosely-typed mutation properties.
//
// Mutation properties arrive as a JSON object whose values may be strings,
// numbers, or anything else a caller sent. Accessors never fail: absence and
// unparseable input collapse into sentinel values (empty string, the zero
// Date, decimal zero) that handler validation interprets downstream.
package props

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/VismaKosice/pension-engine/types"
)

// Bag is a free-form property mapping as decoded from mutation_properties.
type Bag map[string]any

// From wraps a raw property map. A nil map yields an empty Bag.
func From(m map[string]any) Bag { return Bag(m) }

// String returns the value coerced to a string, or "" when absent.
func (b Bag) String(key string) string {
	v, ok := b[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NullableString returns nil when the key is absent or coerces to "".
func (b Bag) NullableString(key string) *string {
	s := b.String(key)
	if s == "" {
		return nil
	}
	return &s
}

// Date parses an ISO calendar date, returning the zero Date sentinel when the
// key is absent or the value does not parse.
func (b Bag) Date(key string) types.Date {
	d, err := types.ParseDate(b.String(key))
	if err != nil {
		return types.Date{}
	}
	return d
}

// NullableDate returns nil when the key is absent or unparseable.
func (b Bag) NullableDate(key string) *types.Date {
	d := b.Date(key)
	if d.IsZero() {
		return nil
	}
	return &d
}

// Decimal accepts integer, floating, decimal, and numeric-string inputs,
// returning decimal zero when the key is absent or not numeric.
func (b Bag) Decimal(key string) decimal.Decimal {
	v, ok := b[key]
	if !ok || v == nil {
		return decimal.Zero
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	case decimal.Decimal:
		return n
	default:
		return decimal.Zero
	}
}

// Has reports whether the key is present, regardless of value.
func (b Bag) Has(key string) bool {
	_, ok := b[key]
	return ok
}
