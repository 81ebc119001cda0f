package types

import "time"

// CalculationOutcome is the overall result of a calculation request.
type CalculationOutcome string

const (
	// OutcomeSuccess means no CRITICAL message was emitted.
	OutcomeSuccess CalculationOutcome = "SUCCESS"
	// OutcomeFailure means evaluation halted on a CRITICAL message or was
	// canceled before all mutations were attempted.
	OutcomeFailure CalculationOutcome = "FAILURE"
)

// CalculationResponse is the body returned for every parseable request,
// regardless of business outcome.
type CalculationResponse struct {
	CalculationMetadata CalculationMetadata `json:"calculation_metadata"`
	CalculationResult   CalculationResult   `json:"calculation_result"`
}

// CalculationMetadata identifies and times a single calculation.
type CalculationMetadata struct {
	CalculationID          string             `json:"calculation_id"`
	TenantID               string             `json:"tenant_id"`
	CalculationStartedAt   time.Time          `json:"calculation_started_at"`
	CalculationCompletedAt time.Time          `json:"calculation_completed_at"`
	CalculationDurationMs  int64              `json:"calculation_duration_ms"`
	CalculationOutcome     CalculationOutcome `json:"calculation_outcome"`
}

// CalculationResult carries the messages, per-mutation bookkeeping, and the
// initial and end situation snapshots.
type CalculationResult struct {
	Messages         []CalculationMessage `json:"messages"`
	Mutations        []MutationResult     `json:"mutations"`
	InitialSituation InitialSituation     `json:"initial_situation"`
	EndSituation     EndSituation         `json:"end_situation"`
}

// MutationResult pairs an attempted mutation (echoed verbatim) with the
// indexes of the messages it contributed. A mutation that produced no
// messages carries null.
type MutationResult struct {
	Mutation                  Mutation `json:"mutation"`
	CalculationMessageIndexes []int    `json:"calculation_message_indexes"`
}

// InitialSituation is the pre-evaluation snapshot: always an empty situation
// stamped with the first mutation's actual_at.
type InitialSituation struct {
	ActualAt  Date      `json:"actual_at"`
	Situation Situation `json:"situation"`
}

// EndSituation is the post-evaluation snapshot, pointing at the last mutation
// that completed without a CRITICAL message. When no mutation succeeded the
// pointers fall back to the first attempted mutation at index 0.
type EndSituation struct {
	MutationID    string    `json:"mutation_id"`
	MutationIndex int       `json:"mutation_index"`
	ActualAt      Date      `json:"actual_at"`
	Situation     Situation `json:"situation"`
}
