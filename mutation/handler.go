// Package mutation implements the handlers that evaluate domain mutations
// against a situation.
//
// Each handler validates its preconditions in a fixed order and either applies
// its whole change or emits a CRITICAL message (after any WARNINGs already
// collected) and leaves the situation untouched. WARNING messages record observations without stopping evaluation;
// severity-driven control flow belongs to the engine, not the handlers.
package mutation

import (
	"context"
	"time"

	"github.com/VismaKosice/pension-engine/scheme"
	"github.com/VismaKosice/pension-engine/types"
)

// Handler evaluates one mutation kind against the situation.
//
// Implementations mutate sit in place only when every precondition holds.
// Returned messages are appended to the request's flat message list by the
// engine.
type Handler interface {
	Apply(ctx context.Context, sit *types.Situation, mut *types.Mutation) []types.CalculationMessage
}

// RegistryConfig configures handler construction.
type RegistryConfig struct {
	// Rates resolves per-scheme accrual rates. If nil, the default constant
	// rate is used.
	Rates scheme.RateProvider
	// Now supplies the current time for birth-date validation. If nil,
	// time.Now is used. Override in tests for determinism.
	Now func() time.Time
}

// Registry maps mutation_definition_name to its handler.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds the closed set of known mutation handlers.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Rates == nil {
		cfg.Rates = scheme.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Registry{
		handlers: map[string]Handler{
			types.MutationCreateDossier:              &createDossier{now: cfg.Now},
			types.MutationAddPolicy:                  &addPolicy{},
			types.MutationApplyIndexation:            &applyIndexation{},
			types.MutationCalculateRetirementBenefit: &calculateRetirementBenefit{rates: cfg.Rates},
		},
	}
}

// Lookup returns the handler for a mutation definition name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}
