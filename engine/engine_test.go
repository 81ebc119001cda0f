package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VismaKosice/pension-engine/metrics"
	"github.com/VismaKosice/pension-engine/mutation"
	"github.com/VismaKosice/pension-engine/types"
)

var fixedNow = func() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func testEvaluator(collector *metrics.Collector) *Evaluator {
	return New(Config{
		Registry:  mutation.NewRegistry(mutation.RegistryConfig{Now: fixedNow}),
		Collector: collector,
		NewID:     func() string { return "calc-test" },
		Now:       fixedNow,
	})
}

func mut(id, name, actualAt string, props map[string]any) types.Mutation {
	at, _ := types.ParseDate(actualAt)
	return types.Mutation{
		MutationID:             id,
		MutationDefinitionName: name,
		MutationType:           "STANDARD",
		ActualAt:               at,
		MutationProperties:     props,
	}
}

func request(muts ...types.Mutation) *types.CalculationRequest {
	return &types.CalculationRequest{
		TenantID:                "acme_pensions",
		CalculationInstructions: types.CalculationInstructions{Mutations: muts},
	}
}

func createDossierMut(id string) types.Mutation {
	return mut(id, types.MutationCreateDossier, "2025-01-01", map[string]any{
		"dossier_id": "D1",
		"person_id":  "P1",
		"name":       "Alice",
		"birth_date": "1960-01-01",
	})
}

func addPolicyMut(id string) types.Mutation {
	return mut(id, types.MutationAddPolicy, "2025-01-02", map[string]any{
		"scheme_id":             "S1",
		"employment_start_date": "1990-01-01",
		"salary":                50000,
		"part_time_factor":      1.0,
	})
}

func TestEvaluate_SingleCreateDossier(t *testing.T) {
	resp := testEvaluator(nil).Evaluate(context.Background(), request(createDossierMut("m1")))

	meta := resp.CalculationMetadata
	if meta.CalculationOutcome != types.OutcomeSuccess {
		t.Errorf("outcome = %s, want SUCCESS", meta.CalculationOutcome)
	}
	if meta.CalculationID != "calc-test" || meta.TenantID != "acme_pensions" {
		t.Errorf("unexpected metadata identity: %+v", meta)
	}

	result := resp.CalculationResult
	if len(result.Messages) != 0 {
		t.Errorf("messages = %v, want none", result.Messages)
	}
	if len(result.Mutations) != 1 {
		t.Fatalf("mutations = %d, want 1", len(result.Mutations))
	}
	if result.Mutations[0].CalculationMessageIndexes != nil {
		t.Errorf("message indexes = %v, want nil", result.Mutations[0].CalculationMessageIndexes)
	}

	if result.InitialSituation.Situation.Dossier != nil {
		t.Error("initial situation must be empty")
	}
	if result.InitialSituation.ActualAt.String() != "2025-01-01" {
		t.Errorf("initial actual_at = %s, want 2025-01-01", result.InitialSituation.ActualAt)
	}

	end := result.EndSituation
	if end.MutationID != "m1" || end.MutationIndex != 0 {
		t.Errorf("end pointers = (%s, %d), want (m1, 0)", end.MutationID, end.MutationIndex)
	}
	d := end.Situation.Dossier
	if d == nil || d.Status != types.DossierStatusActive || len(d.Persons) != 1 || len(d.Policies) != 0 {
		t.Errorf("unexpected end dossier: %+v", d)
	}
}

func TestEvaluate_FullScenario(t *testing.T) {
	resp := testEvaluator(nil).Evaluate(context.Background(), request(
		createDossierMut("m1"),
		addPolicyMut("m2"),
		mut("m3", types.MutationCalculateRetirementBenefit, "2025-01-03", map[string]any{
			"retirement_date": "2025-01-01",
		}),
	))

	if resp.CalculationMetadata.CalculationOutcome != types.OutcomeSuccess {
		t.Fatalf("outcome = %s, want SUCCESS", resp.CalculationMetadata.CalculationOutcome)
	}

	end := resp.CalculationResult.EndSituation
	if end.MutationID != "m3" || end.MutationIndex != 2 {
		t.Errorf("end pointers = (%s, %d), want (m3, 2)", end.MutationID, end.MutationIndex)
	}
	d := end.Situation.Dossier
	if d.Status != types.DossierStatusRetired {
		t.Errorf("status = %s, want RETIRED", d.Status)
	}
	if d.Policies[0].AttainablePension == nil {
		t.Fatal("attainable_pension not written")
	}
	// 35 years and 9 leap days of service at 2% accrual.
	years := decimal.NewFromInt(12784).Div(decimal.RequireFromString("365.25"))
	want := decimal.NewFromInt(50000).Mul(years).Mul(decimal.RequireFromString("0.02"))
	if d.Policies[0].AttainablePension.Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.01")) {
		t.Errorf("pension = %s, want %s ±0.01", d.Policies[0].AttainablePension, want)
	}
}

func TestEvaluate_WarningContinuesEvaluation(t *testing.T) {
	dup := addPolicyMut("m3")
	resp := testEvaluator(nil).Evaluate(context.Background(), request(
		createDossierMut("m1"),
		addPolicyMut("m2"),
		dup,
	))

	if resp.CalculationMetadata.CalculationOutcome != types.OutcomeSuccess {
		t.Fatalf("outcome = %s, want SUCCESS (warnings do not fail)", resp.CalculationMetadata.CalculationOutcome)
	}

	result := resp.CalculationResult
	if len(result.Messages) != 1 || result.Messages[0].Code != types.CodeDuplicatePolicy {
		t.Fatalf("messages = %v, want one DUPLICATE_POLICY", result.Messages)
	}
	if got := result.Mutations[2].CalculationMessageIndexes; len(got) != 1 || got[0] != 0 {
		t.Errorf("third mutation indexes = %v, want [0]", got)
	}
	if len(result.EndSituation.Situation.Dossier.Policies) != 2 {
		t.Errorf("policies = %d, want 2", len(result.EndSituation.Situation.Dossier.Policies))
	}
	if result.EndSituation.MutationIndex != 2 {
		t.Errorf("end index = %d, want 2", result.EndSituation.MutationIndex)
	}
}

func TestEvaluate_CriticalHaltsEvaluation(t *testing.T) {
	resp := testEvaluator(nil).Evaluate(context.Background(), request(
		createDossierMut("m1"),
		createDossierMut("m2"), // second create fails CRITICAL
		addPolicyMut("m3"),     // never attempted
	))

	meta := resp.CalculationMetadata
	if meta.CalculationOutcome != types.OutcomeFailure {
		t.Fatalf("outcome = %s, want FAILURE", meta.CalculationOutcome)
	}

	result := resp.CalculationResult
	if len(result.Mutations) != 2 {
		t.Fatalf("attempted mutations = %d, want 2 (halt after the failing one)", len(result.Mutations))
	}
	if len(result.Messages) != 1 || result.Messages[0].Code != types.CodeDossierAlreadyExists {
		t.Fatalf("messages = %v, want one DOSSIER_ALREADY_EXISTS", result.Messages)
	}
	if got := result.Mutations[1].CalculationMessageIndexes; len(got) != 1 || got[0] != 0 {
		t.Errorf("failing mutation indexes = %v, want [0]", got)
	}

	// End situation reflects the last successful mutation.
	end := result.EndSituation
	if end.MutationID != "m1" || end.MutationIndex != 0 {
		t.Errorf("end pointers = (%s, %d), want (m1, 0)", end.MutationID, end.MutationIndex)
	}
	if end.Situation.Dossier == nil {
		t.Error("end situation must keep the first mutation's dossier")
	}
}

func TestEvaluate_NoMutationSucceeded(t *testing.T) {
	resp := testEvaluator(nil).Evaluate(context.Background(), request(
		mut("m1", types.MutationCalculateRetirementBenefit, "2025-01-01", map[string]any{
			"retirement_date": "2025-01-01",
		}),
	))

	meta := resp.CalculationMetadata
	if meta.CalculationOutcome != types.OutcomeFailure {
		t.Fatalf("outcome = %s, want FAILURE", meta.CalculationOutcome)
	}

	result := resp.CalculationResult
	if len(result.Mutations) != 1 {
		t.Fatalf("attempted mutations = %d, want 1", len(result.Mutations))
	}
	if len(result.Messages) != 1 || result.Messages[0].Code != types.CodeDossierNotFound {
		t.Fatalf("messages = %v, want one DOSSIER_NOT_FOUND", result.Messages)
	}

	// Fallback convention: first attempted mutation at index 0, null dossier.
	end := result.EndSituation
	if end.MutationID != "m1" || end.MutationIndex != 0 {
		t.Errorf("end pointers = (%s, %d), want (m1, 0)", end.MutationID, end.MutationIndex)
	}
	if end.ActualAt.String() != "2025-01-01" {
		t.Errorf("end actual_at = %s, want 2025-01-01", end.ActualAt)
	}
	if end.Situation.Dossier != nil {
		t.Error("end dossier must be null when nothing succeeded")
	}
}

func TestEvaluate_UnknownMutation(t *testing.T) {
	resp := testEvaluator(nil).Evaluate(context.Background(), request(
		mut("m1", "transfer_dossier", "2025-01-01", nil),
	))

	if resp.CalculationMetadata.CalculationOutcome != types.OutcomeFailure {
		t.Fatalf("outcome = %s, want FAILURE", resp.CalculationMetadata.CalculationOutcome)
	}
	result := resp.CalculationResult
	if len(result.Messages) != 1 || result.Messages[0].Code != types.CodeUnknownMutation {
		t.Fatalf("messages = %v, want one UNKNOWN_MUTATION", result.Messages)
	}
	if got := result.Mutations[0].CalculationMessageIndexes; len(got) != 1 || got[0] != 0 {
		t.Errorf("mutation indexes = %v, want [0]", got)
	}
}

func TestEvaluate_MessageIndexRanges(t *testing.T) {
	// m2 emits one warning (duplicate), m3 emits one warning (clamp):
	// flat list [0, 1], per-mutation [nil, nil, [0], [1]].
	resp := testEvaluator(nil).Evaluate(context.Background(), request(
		createDossierMut("m1"),
		addPolicyMut("m2"),
		addPolicyMut("m3"),
		mut("m4", types.MutationApplyIndexation, "2025-01-03", map[string]any{
			"percentage": -5.0,
		}),
	))

	result := resp.CalculationResult
	if len(result.Messages) != 2 {
		t.Fatalf("messages = %v, want 2", result.Messages)
	}
	wantIdx := [][]int{nil, nil, {0}, {1}}
	for i, want := range wantIdx {
		got := result.Mutations[i].CalculationMessageIndexes
		if len(got) != len(want) {
			t.Errorf("mutation %d indexes = %v, want %v", i, got, want)
			continue
		}
		for j := range want {
			if got[j] != want[j] {
				t.Errorf("mutation %d indexes = %v, want %v", i, got, want)
			}
		}
	}
}

func TestEvaluate_CancellationStopsBetweenMutations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := testEvaluator(nil).Evaluate(ctx, request(
		createDossierMut("m1"),
		addPolicyMut("m2"),
	))

	if resp.CalculationMetadata.CalculationOutcome != types.OutcomeFailure {
		t.Errorf("outcome = %s, want FAILURE on cancellation", resp.CalculationMetadata.CalculationOutcome)
	}
	if len(resp.CalculationResult.Mutations) != 0 {
		t.Errorf("attempted mutations = %d, want 0 (canceled before first)", len(resp.CalculationResult.Mutations))
	}
}

func TestEvaluate_OutcomeFailureIffCritical(t *testing.T) {
	tests := []struct {
		name string
		muts []types.Mutation
		want types.CalculationOutcome
	}{
		{"all clean", []types.Mutation{createDossierMut("m1")}, types.OutcomeSuccess},
		{"warning only", []types.Mutation{createDossierMut("m1"), addPolicyMut("m2"), addPolicyMut("m3")}, types.OutcomeSuccess},
		{"critical", []types.Mutation{addPolicyMut("m1")}, types.OutcomeFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testEvaluator(nil).Evaluate(context.Background(), request(tt.muts...))
			if got := resp.CalculationMetadata.CalculationOutcome; got != tt.want {
				t.Errorf("outcome = %s, want %s", got, tt.want)
			}
			hasCritical := false
			for _, m := range resp.CalculationResult.Messages {
				if m.IsCritical() {
					hasCritical = true
				}
			}
			if (tt.want == types.OutcomeFailure) != hasCritical {
				t.Errorf("outcome %s inconsistent with critical presence %v", tt.want, hasCritical)
			}
		})
	}
}

func TestEvaluate_MetricsRecorded(t *testing.T) {
	collector := metrics.NewCollector()
	testEvaluator(collector).Evaluate(context.Background(), request(
		createDossierMut("m1"),
		addPolicyMut("m2"),
		addPolicyMut("m3"), // duplicate warning
		createDossierMut("m4"),
	))

	snap := collector.Snapshot()
	if snap.CalculationsStarted != 1 || snap.CalculationsFailed != 1 {
		t.Errorf("lifecycle counters = %+v, want 1 started / 1 failed", snap)
	}
	if snap.MutationsEvaluated != 4 {
		t.Errorf("mutations evaluated = %d, want 4", snap.MutationsEvaluated)
	}
	if snap.WarningsEmitted != 1 || snap.CriticalsEmitted != 1 {
		t.Errorf("message counters = %d warnings / %d criticals, want 1/1", snap.WarningsEmitted, snap.CriticalsEmitted)
	}
}
