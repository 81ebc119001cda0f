// Package metrics provides process-wide counters for the calculation service.
//
// The Collector accumulates counters across requests. It is a leaf package
// with no internal dependencies. All increment methods are nil-receiver safe
// so callers never need to guard against an unconfigured collector.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Calculation lifecycle
	CalculationsStarted   int64 `json:"calculations_started"`
	CalculationsSucceeded int64 `json:"calculations_succeeded"`
	CalculationsFailed    int64 `json:"calculations_failed"`

	// Evaluation
	MutationsEvaluated int64 `json:"mutations_evaluated"`
	WarningsEmitted    int64 `json:"warnings_emitted"`
	CriticalsEmitted   int64 `json:"criticals_emitted"`

	// Scheme registry
	SchemeLookupSuccess  int64 `json:"scheme_lookup_success"`
	SchemeLookupFallback int64 `json:"scheme_lookup_fallback"`
	SchemeCacheHits      int64 `json:"scheme_cache_hits"`
	SchemeCacheMisses    int64 `json:"scheme_cache_misses"`

	// Boundary
	RequestsRejected int64 `json:"requests_rejected"`
}

// Collector accumulates service counters.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	calculationsStarted   int64
	calculationsSucceeded int64
	calculationsFailed    int64

	mutationsEvaluated int64
	warningsEmitted    int64
	criticalsEmitted   int64

	schemeLookupSuccess  int64
	schemeLookupFallback int64
	schemeCacheHits      int64
	schemeCacheMisses    int64

	requestsRejected int64
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// inc bumps a counter under the collector mutex. Callers have already
// checked the receiver for nil.
func (c *Collector) inc(field *int64) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

// IncCalculationStarted records a calculation start.
func (c *Collector) IncCalculationStarted() {
	if c == nil {
		return
	}
	c.inc(&c.calculationsStarted)
}

// IncCalculationSucceeded records a SUCCESS outcome.
func (c *Collector) IncCalculationSucceeded() {
	if c == nil {
		return
	}
	c.inc(&c.calculationsSucceeded)
}

// IncCalculationFailed records a FAILURE outcome.
func (c *Collector) IncCalculationFailed() {
	if c == nil {
		return
	}
	c.inc(&c.calculationsFailed)
}

// AddMutationsEvaluated records n evaluated mutations.
func (c *Collector) AddMutationsEvaluated(n int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.mutationsEvaluated += int64(n)
	c.mu.Unlock()
}

// IncWarningEmitted records an emitted WARNING message.
func (c *Collector) IncWarningEmitted() {
	if c == nil {
		return
	}
	c.inc(&c.warningsEmitted)
}

// IncCriticalEmitted records an emitted CRITICAL message.
func (c *Collector) IncCriticalEmitted() {
	if c == nil {
		return
	}
	c.inc(&c.criticalsEmitted)
}

// IncSchemeLookupSuccess records a successful registry lookup.
func (c *Collector) IncSchemeLookupSuccess() {
	if c == nil {
		return
	}
	c.inc(&c.schemeLookupSuccess)
}

// IncSchemeLookupFallback records a lookup that fell back to the default rate.
func (c *Collector) IncSchemeLookupFallback() {
	if c == nil {
		return
	}
	c.inc(&c.schemeLookupFallback)
}

// IncSchemeCacheHit records a rate-cache hit.
func (c *Collector) IncSchemeCacheHit() {
	if c == nil {
		return
	}
	c.inc(&c.schemeCacheHits)
}

// IncSchemeCacheMiss records a rate-cache miss.
func (c *Collector) IncSchemeCacheMiss() {
	if c == nil {
		return
	}
	c.inc(&c.schemeCacheMisses)
}

// IncRequestRejected records a request rejected at the boundary (400).
func (c *Collector) IncRequestRejected() {
	if c == nil {
		return
	}
	c.inc(&c.requestsRejected)
}

// Snapshot returns an immutable copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		CalculationsStarted:   c.calculationsStarted,
		CalculationsSucceeded: c.calculationsSucceeded,
		CalculationsFailed:    c.calculationsFailed,
		MutationsEvaluated:    c.mutationsEvaluated,
		WarningsEmitted:       c.warningsEmitted,
		CriticalsEmitted:      c.criticalsEmitted,
		SchemeLookupSuccess:   c.schemeLookupSuccess,
		SchemeLookupFallback:  c.schemeLookupFallback,
		SchemeCacheHits:       c.schemeCacheHits,
		SchemeCacheMisses:     c.schemeCacheMisses,
		RequestsRejected:      c.requestsRejected,
	}
}
