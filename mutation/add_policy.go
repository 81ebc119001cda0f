package mutation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/VismaKosice/pension-engine/props"
	"github.com/VismaKosice/pension-engine/types"
)

var one = decimal.NewFromInt(1)

// addPolicy appends an employment record to the dossier.
// A duplicate (scheme_id, employment_start_date) pair is a WARNING, not a
// rejection: the policy is inserted regardless.
type addPolicy struct{}

func (h *addPolicy) Apply(_ context.Context, sit *types.Situation, mut *types.Mutation) []types.CalculationMessage {
	bag := props.From(mut.MutationProperties)
	schemeID := bag.String("scheme_id")
	startDate := bag.Date("employment_start_date")
	salary := bag.Decimal("salary")
	partTimeFactor := bag.Decimal("part_time_factor")

	if sit.Dossier == nil {
		return []types.CalculationMessage{types.Critical(
			types.CodeDossierNotFound,
			"no dossier exists in the situation",
		)}
	}
	if salary.IsNegative() {
		return []types.CalculationMessage{types.Critical(
			types.CodeInvalidSalary,
			fmt.Sprintf("salary %s must not be negative", salary),
		)}
	}
	if partTimeFactor.IsNegative() || partTimeFactor.GreaterThan(one) {
		return []types.CalculationMessage{types.Critical(
			types.CodeInvalidPartTimeFactor,
			fmt.Sprintf("part-time factor %s must be within [0, 1]", partTimeFactor),
		)}
	}

	var msgs []types.CalculationMessage
	for _, p := range sit.Dossier.Policies {
		if p.SchemeID == schemeID && p.EmploymentStartDate.Equal(startDate) {
			msgs = append(msgs, types.Warning(
				types.CodeDuplicatePolicy,
				fmt.Sprintf("policy for scheme %q starting %s already exists", schemeID, startDate),
			))
			break
		}
	}

	sit.Dossier.Policies = append(sit.Dossier.Policies, types.Policy{
		PolicyID:            sit.Dossier.NextPolicyID(),
		SchemeID:            schemeID,
		EmploymentStartDate: startDate,
		Salary:              salary,
		PartTimeFactor:      partTimeFactor,
	})
	return msgs
}
