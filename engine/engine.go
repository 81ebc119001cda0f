// Package engine evaluates an ordered mutation list against an initially
// empty situation and assembles the calculation response.
//
// Evaluation flow:
//  1. Initialize an empty situation
//  2. For each mutation, in list order: dispatch to its handler
//  3. Append emitted messages; record the per-mutation index range
//  4. On the first CRITICAL message, stop; otherwise advance the
//     last-successful pointers
//  5. Assemble metadata, message list, and situation snapshots
//
// Handlers apply their whole change or none, so the in-memory situation after
// the loop is exactly the state produced by the last successful mutation.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/VismaKosice/pension-engine/log"
	"github.com/VismaKosice/pension-engine/metrics"
	"github.com/VismaKosice/pension-engine/mutation"
	"github.com/VismaKosice/pension-engine/types"
)

// Config configures an Evaluator.
type Config struct {
	// Registry dispatches mutations to handlers (required).
	Registry *mutation.Registry
	// Logger logs evaluation lifecycle. If nil, logging is disabled.
	Logger *log.Logger
	// Collector records evaluation metrics. Nil-safe.
	Collector *metrics.Collector
	// NewID generates calculation ids. Defaults to uuid.NewString.
	NewID func() string
	// Now supplies wall-clock timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Evaluator runs calculation requests. Safe for concurrent use: all mutable
// state lives in the per-request evaluation.
type Evaluator struct {
	registry  *mutation.Registry
	logger    *log.Logger
	collector *metrics.Collector
	newID     func() string
	now       func() time.Time
}

// New creates an Evaluator.
func New(cfg Config) *Evaluator {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Evaluator{
		registry:  cfg.Registry,
		logger:    cfg.Logger,
		collector: cfg.Collector,
		newID:     cfg.NewID,
		now:       cfg.Now,
	}
}

// evaluation is the per-request mutable state.
type evaluation struct {
	situation *types.Situation
	messages  []types.CalculationMessage
	results   []types.MutationResult
	outcome   types.CalculationOutcome

	lastOKID       string
	lastOKIndex    int
	lastOKActualAt types.Date
	initialAt      types.Date
}

// Evaluate runs the request's mutations in order and returns the full
// calculation response. Cancellation is honored at mutation boundaries; a
// canceled evaluation reports FAILURE with whatever was computed so far.
func (e *Evaluator) Evaluate(ctx context.Context, req *types.CalculationRequest) *types.CalculationResponse {
	startedAt := e.now().UTC()
	calculationID := e.newID()
	logger := e.logger.WithCalculation(calculationID, req.TenantID)
	e.collector.IncCalculationStarted()

	muts := req.CalculationInstructions.Mutations
	ev := &evaluation{
		situation:   &types.Situation{},
		outcome:     types.OutcomeSuccess,
		lastOKIndex: -1,
	}
	if len(muts) > 0 {
		// Fallback convention: when no mutation succeeds, the end situation
		// points at the first attempted mutation at index 0.
		ev.lastOKID = muts[0].MutationID
		ev.lastOKActualAt = muts[0].ActualAt
		ev.initialAt = muts[0].ActualAt
	}

	logger.Info("calculation started", map[string]any{
		"mutation_count": len(muts),
	})

	for i := range muts {
		if err := ctx.Err(); err != nil {
			logger.Warn("calculation canceled", map[string]any{
				"mutation_index": i,
				"error":          err.Error(),
			})
			ev.outcome = types.OutcomeFailure
			break
		}
		if halted := e.evaluateOne(ctx, ev, &muts[i], i); halted {
			break
		}
	}

	completedAt := e.now().UTC()
	e.recordOutcome(ev)
	logger.Info("calculation completed", map[string]any{
		"outcome":             string(ev.outcome),
		"mutations_processed": len(ev.results),
		"message_count":       len(ev.messages),
		"duration_ms":         completedAt.Sub(startedAt).Milliseconds(),
	})

	return assembleResponse(ev, metadata{
		calculationID: calculationID,
		tenantID:      req.TenantID,
		startedAt:     startedAt,
		completedAt:   completedAt,
	})
}

// evaluateOne dispatches a single mutation and updates the evaluation state.
// Returns true when evaluation must halt (CRITICAL emitted).
func (e *Evaluator) evaluateOne(ctx context.Context, ev *evaluation, mut *types.Mutation, index int) bool {
	mStart := len(ev.messages)

	var produced []types.CalculationMessage
	if h, ok := e.registry.Lookup(mut.MutationDefinitionName); ok {
		produced = h.Apply(ctx, ev.situation, mut)
	} else {
		produced = []types.CalculationMessage{types.Critical(
			types.CodeUnknownMutation,
			"unknown mutation definition "+mut.MutationDefinitionName,
		)}
	}

	ev.messages = append(ev.messages, produced...)
	e.collector.AddMutationsEvaluated(1)
	for _, m := range produced {
		if m.IsCritical() {
			e.collector.IncCriticalEmitted()
		} else {
			e.collector.IncWarningEmitted()
		}
	}

	var indexes []int
	for j := mStart; j < len(ev.messages); j++ {
		indexes = append(indexes, j)
	}
	ev.results = append(ev.results, types.MutationResult{
		Mutation:                  *mut,
		CalculationMessageIndexes: indexes,
	})

	if types.AnyCritical(produced) {
		ev.outcome = types.OutcomeFailure
		return true
	}

	ev.lastOKID = mut.MutationID
	ev.lastOKIndex = index
	ev.lastOKActualAt = mut.ActualAt
	return false
}

// recordOutcome bumps the outcome counters.
func (e *Evaluator) recordOutcome(ev *evaluation) {
	if ev.outcome == types.OutcomeSuccess {
		e.collector.IncCalculationSucceeded()
	} else {
		e.collector.IncCalculationFailed()
	}
}
