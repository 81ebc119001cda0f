package types

import "encoding/json"

// Mutation definition names the engine dispatches on.
const (
	MutationCreateDossier              = "create_dossier"
	MutationAddPolicy                  = "add_policy"
	MutationApplyIndexation            = "apply_indexation"
	MutationCalculateRetirementBenefit = "calculate_retirement_benefit"
)

// Mutation is an atomic ordered instruction evaluated against a situation.
//
// Raw retains the verbatim request payload: the response echoes each attempted
// mutation exactly as it arrived, including field order and unknown fields.
type Mutation struct {
	MutationID             string         `json:"mutation_id"`
	MutationDefinitionName string         `json:"mutation_definition_name"`
	MutationType           string         `json:"mutation_type"`
	ActualAt               Date           `json:"actual_at"`
	DossierID              string         `json:"dossier_id,omitempty"`
	MutationProperties     map[string]any `json:"mutation_properties"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the mutation and captures the raw payload for echo.
func (m *Mutation) UnmarshalJSON(data []byte) error {
	type plain Mutation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Mutation(p)
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the captured raw payload when present, preserving the
// caller's exact field ordering. Programmatically built mutations without a
// raw payload marshal from the struct fields.
func (m Mutation) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	type plain Mutation
	return json.Marshal(plain(m))
}
