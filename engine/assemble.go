package engine

import (
	"time"

	"github.com/VismaKosice/pension-engine/types"
)

// metadata carries the identity and timing of one calculation.
type metadata struct {
	calculationID string
	tenantID      string
	startedAt     time.Time
	completedAt   time.Time
}

// assembleResponse builds the externally-visible response from the finished
// evaluation.
//
// The end situation serializes the in-memory situation directly: handlers
// commit fully or not at all, so it already equals the state after the last
// successful mutation. mutation_index −1 (nothing succeeded) is represented
// as 0 with the first attempted mutation's id and actual_at.
func assembleResponse(ev *evaluation, meta metadata) *types.CalculationResponse {
	endIndex := ev.lastOKIndex
	if endIndex < 0 {
		endIndex = 0
	}

	messages := ev.messages
	if messages == nil {
		messages = []types.CalculationMessage{}
	}
	results := ev.results
	if results == nil {
		results = []types.MutationResult{}
	}

	return &types.CalculationResponse{
		CalculationMetadata: types.CalculationMetadata{
			CalculationID:          meta.calculationID,
			TenantID:               meta.tenantID,
			CalculationStartedAt:   meta.startedAt,
			CalculationCompletedAt: meta.completedAt,
			CalculationDurationMs:  meta.completedAt.Sub(meta.startedAt).Milliseconds(),
			CalculationOutcome:     ev.outcome,
		},
		CalculationResult: types.CalculationResult{
			Messages:  messages,
			Mutations: results,
			InitialSituation: types.InitialSituation{
				ActualAt:  ev.initialAt,
				Situation: types.Situation{},
			},
			EndSituation: types.EndSituation{
				MutationID:    ev.lastOKID,
				MutationIndex: endIndex,
				ActualAt:      ev.lastOKActualAt,
				Situation:     *ev.situation,
			},
		},
	}
}
