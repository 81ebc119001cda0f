package mutation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/VismaKosice/pension-engine/props"
	"github.com/VismaKosice/pension-engine/scheme"
	"github.com/VismaKosice/pension-engine/types"
)

// daysPerYear is the calendar-accurate average year length, including leap
// years. Service years divide whole days by this; participant age does NOT
// use it (age is a calendar-year difference with birthday adjustment).
var daysPerYear = decimal.NewFromFloat(365.25)

// Eligibility thresholds: retire at 65, or after 40 service years.
const (
	eligibleAge   = 65
	eligibleYears = 40
)

// calculateRetirementBenefit computes attainable pensions and retires the
// dossier.
type calculateRetirementBenefit struct {
	rates scheme.RateProvider
}

func (h *calculateRetirementBenefit) Apply(ctx context.Context, sit *types.Situation, mut *types.Mutation) []types.CalculationMessage {
	bag := props.From(mut.MutationProperties)
	retirementDate := bag.Date("retirement_date")

	if sit.Dossier == nil {
		return []types.CalculationMessage{types.Critical(
			types.CodeDossierNotFound,
			"no dossier exists in the situation",
		)}
	}
	if len(sit.Dossier.Policies) == 0 {
		return []types.CalculationMessage{types.Critical(
			types.CodeNoPolicies,
			"dossier has no policies to calculate benefits for",
		)}
	}
	participant := sit.Dossier.Participant()
	if participant == nil {
		return []types.CalculationMessage{types.Critical(
			types.CodeNoParticipant,
			"dossier has no participant",
		)}
	}

	var msgs []types.CalculationMessage

	// Per-policy service years: whole days / 365.25, clamped at zero.
	serviceYears := make([]decimal.Decimal, len(sit.Dossier.Policies))
	totalYears := decimal.Zero
	for i := range sit.Dossier.Policies {
		p := &sit.Dossier.Policies[i]
		days := retirementDate.DaysSince(p.EmploymentStartDate)
		if days < 0 {
			msgs = append(msgs, types.Warning(
				types.CodeRetirementBeforeEmployment,
				fmt.Sprintf("policy %s: retirement date %s precedes employment start %s",
					p.PolicyID, retirementDate, p.EmploymentStartDate),
			))
			days = 0
		}
		years := decimal.NewFromInt(int64(days)).Div(daysPerYear)
		serviceYears[i] = years
		totalYears = totalYears.Add(years)
	}

	age := ageAt(participant.BirthDate, retirementDate)
	if age < eligibleAge && totalYears.LessThan(decimal.NewFromInt(eligibleYears)) {
		msgs = append(msgs, types.Critical(
			types.CodeNotEligible,
			fmt.Sprintf("participant is not eligible: age %d < %d and %s service years < %d",
				age, eligibleAge, totalYears.Round(2), eligibleYears),
		))
		return msgs
	}

	if totalYears.IsZero() {
		for i := range sit.Dossier.Policies {
			zero := decimal.Zero
			sit.Dossier.Policies[i].AttainablePension = &zero
		}
	} else {
		// Weighted-average salary across service periods, then per-policy
		// accrual distributed proportionally to service years.
		weightedSalarySum := decimal.Zero
		for i := range sit.Dossier.Policies {
			p := &sit.Dossier.Policies[i]
			effectiveSalary := p.Salary.Mul(p.PartTimeFactor)
			weightedSalarySum = weightedSalarySum.Add(effectiveSalary.Mul(serviceYears[i]))
		}
		avgSalary := weightedSalarySum.Div(totalYears)

		for i := range sit.Dossier.Policies {
			p := &sit.Dossier.Policies[i]
			rate := h.rates.AccrualRate(ctx, p.SchemeID)
			pension := avgSalary.Mul(serviceYears[i]).Mul(rate)
			sit.Dossier.Policies[i].AttainablePension = &pension
		}
	}

	sit.Dossier.Status = types.DossierStatusRetired
	sit.Dossier.RetirementDate = retirementDate
	return msgs
}

// ageAt computes the participant's age at the given date: calendar-year
// difference, minus one when the date falls before that year's birthday.
func ageAt(birthDate, at types.Date) int {
	age := at.Year() - birthDate.Year()
	if at.Before(birthDate.AnniversaryIn(at.Year())) {
		age--
	}
	return age
}
