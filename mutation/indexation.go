package mutation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/VismaKosice/pension-engine/props"
	"github.com/VismaKosice/pension-engine/types"
)

// applyIndexation rescales salaries of the selected policies by
// (1 + percentage). Salaries that would go negative clamp at zero; the clamp
// is reported once per mutation regardless of how many policies it touched.
type applyIndexation struct{}

func (h *applyIndexation) Apply(_ context.Context, sit *types.Situation, mut *types.Mutation) []types.CalculationMessage {
	bag := props.From(mut.MutationProperties)
	percentage := bag.Decimal("percentage")
	schemeID := bag.NullableString("scheme_id")
	effectiveBefore := bag.NullableDate("effective_before")

	if sit.Dossier == nil {
		return []types.CalculationMessage{types.Critical(
			types.CodeDossierNotFound,
			"no dossier exists in the situation",
		)}
	}
	if len(sit.Dossier.Policies) == 0 {
		return []types.CalculationMessage{types.Critical(
			types.CodeNoPolicies,
			"dossier has no policies to index",
		)}
	}

	filtered := schemeID != nil || effectiveBefore != nil
	var selected []*types.Policy
	for i := range sit.Dossier.Policies {
		p := &sit.Dossier.Policies[i]
		if schemeID != nil && p.SchemeID != *schemeID {
			continue
		}
		if effectiveBefore != nil && !p.EmploymentStartDate.Before(*effectiveBefore) {
			continue
		}
		selected = append(selected, p)
	}

	if filtered && len(selected) == 0 {
		return []types.CalculationMessage{types.Warning(
			types.CodeNoMatchingPolicies,
			"no policies match the indexation filters",
		)}
	}

	factor := one.Add(percentage)
	clamped := false
	for _, p := range selected {
		newSalary := p.Salary.Mul(factor)
		if newSalary.IsNegative() {
			newSalary = decimal.Zero
			clamped = true
		}
		p.Salary = newSalary
	}

	if clamped {
		return []types.CalculationMessage{types.Warning(
			types.CodeNegativeSalaryClamped,
			fmt.Sprintf("indexation by %s drove at least one salary below zero; clamped to 0", percentage),
		)}
	}
	return nil
}
