package types

import (
	"fmt"
	"regexp"
)

// MaxTenantIDLength bounds the tenant identifier.
const MaxTenantIDLength = 25

// tenantIDPattern is lowercase alphanumeric words joined by single underscores.
var tenantIDPattern = regexp.MustCompile(`^[a-z0-9]+(?:_[a-z0-9]+)*$`)

// CalculationRequest is the body of POST /calculation-requests.
type CalculationRequest struct {
	TenantID                string                  `json:"tenant_id"`
	CalculationInstructions CalculationInstructions `json:"calculation_instructions"`
}

// CalculationInstructions carries the ordered mutation list.
type CalculationInstructions struct {
	Mutations []Mutation `json:"mutations"`
}

// FieldError describes a single schema violation for problem-details output.
type FieldError struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Validate checks the request against the schema contract and returns one
// FieldError per violation. Business rules are not checked here; they surface
// as calculation messages during evaluation.
func (r *CalculationRequest) Validate() []FieldError {
	var errs []FieldError

	switch {
	case r.TenantID == "":
		errs = append(errs, FieldError{Name: "tenant_id", Reason: "is required"})
	case len(r.TenantID) > MaxTenantIDLength:
		errs = append(errs, FieldError{
			Name:   "tenant_id",
			Reason: fmt.Sprintf("must be at most %d characters", MaxTenantIDLength),
		})
	case !tenantIDPattern.MatchString(r.TenantID):
		errs = append(errs, FieldError{
			Name:   "tenant_id",
			Reason: "must match [a-z0-9]+(?:_[a-z0-9]+)*",
		})
	}

	if len(r.CalculationInstructions.Mutations) == 0 {
		errs = append(errs, FieldError{
			Name:   "calculation_instructions.mutations",
			Reason: "must contain at least one mutation",
		})
	}

	for i, m := range r.CalculationInstructions.Mutations {
		prefix := fmt.Sprintf("calculation_instructions.mutations[%d]", i)
		if m.MutationID == "" {
			errs = append(errs, FieldError{Name: prefix + ".mutation_id", Reason: "is required"})
		}
		if m.MutationDefinitionName == "" {
			errs = append(errs, FieldError{Name: prefix + ".mutation_definition_name", Reason: "is required"})
		}
		if m.ActualAt.IsZero() {
			errs = append(errs, FieldError{Name: prefix + ".actual_at", Reason: "must be a valid ISO date"})
		}
	}

	return errs
}
