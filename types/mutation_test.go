package types

import (
	"encoding/json"
	"testing"
)

func TestMutation_RawEcho(t *testing.T) {
	// Field order and unknown fields must survive the decode/encode round
	// trip: responses echo attempted mutations verbatim.
	body := `{"mutation_id":"m1","custom_tag":"x","mutation_definition_name":"add_policy","mutation_type":"STANDARD","actual_at":"2025-01-01","mutation_properties":{"salary":50000}}`

	var m Mutation
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatal(err)
	}

	if m.MutationID != "m1" || m.MutationDefinitionName != "add_policy" {
		t.Errorf("parsed fields wrong: %+v", m)
	}
	if m.ActualAt.String() != "2025-01-01" {
		t.Errorf("actual_at = %s, want 2025-01-01", m.ActualAt)
	}
	if got := m.MutationProperties["salary"]; got != float64(50000) {
		t.Errorf("properties.salary = %v, want 50000", got)
	}

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != body {
		t.Errorf("echo differs:\n got %s\nwant %s", out, body)
	}
}

func TestMutation_MarshalWithoutRaw(t *testing.T) {
	m := Mutation{
		MutationID:             "m1",
		MutationDefinitionName: MutationCreateDossier,
		ActualAt:               NewDate(2025, 1, 1),
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Mutation
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.MutationID != "m1" || decoded.ActualAt.String() != "2025-01-01" {
		t.Errorf("round trip lost fields: %+v", decoded)
	}
}

func TestDossier_NextPolicyID(t *testing.T) {
	d := &Dossier{DossierID: "D1"}
	if got := d.NextPolicyID(); got != "D1-1" {
		t.Errorf("NextPolicyID = %q, want D1-1", got)
	}
	d.Policies = append(d.Policies, Policy{PolicyID: "D1-1"})
	if got := d.NextPolicyID(); got != "D1-2" {
		t.Errorf("NextPolicyID = %q, want D1-2", got)
	}
}

func TestDossier_Participant(t *testing.T) {
	d := &Dossier{Persons: []Person{
		{PersonID: "P9", Role: "PARTNER"},
		{PersonID: "P1", Role: PersonRoleParticipant},
	}}
	p := d.Participant()
	if p == nil || p.PersonID != "P1" {
		t.Errorf("Participant = %+v, want P1", p)
	}

	if (&Dossier{}).Participant() != nil {
		t.Error("empty dossier must have no participant")
	}
}
