// Package types defines core domain types for the pension calculation engine.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// Monetary values serialize as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// DossierStatus is the lifecycle state of a dossier.
type DossierStatus string

const (
	// DossierStatusActive indicates the dossier accepts further accrual.
	DossierStatusActive DossierStatus = "ACTIVE"
	// DossierStatusRetired indicates retirement benefits have been calculated.
	DossierStatusRetired DossierStatus = "RETIRED"
)

// PersonRole is the role a person plays within a dossier.
type PersonRole string

// PersonRoleParticipant is the accruing member of the dossier.
// Every dossier holds exactly one participant.
const PersonRoleParticipant PersonRole = "PARTICIPANT"

// Situation is the in-memory state transformed by mutations.
// It holds at most one dossier and lives for a single calculation request.
type Situation struct {
	Dossier *Dossier `json:"dossier"`
}

// Dossier is the pension case: the participant plus accrued policies.
type Dossier struct {
	DossierID      string        `json:"dossier_id"`
	Status         DossierStatus `json:"status"`
	RetirementDate Date          `json:"retirement_date"`
	Persons        []Person      `json:"persons"`
	Policies       []Policy      `json:"policies"`
}

// Participant returns the dossier's PARTICIPANT person, or nil if absent.
func (d *Dossier) Participant() *Person {
	for i := range d.Persons {
		if d.Persons[i].Role == PersonRoleParticipant {
			return &d.Persons[i]
		}
	}
	return nil
}

// NextPolicyID derives the identifier for the next policy appended to the
// dossier: "{dossier_id}-{n}" with n the 1-based insertion position.
func (d *Dossier) NextPolicyID() string {
	return fmt.Sprintf("%s-%d", d.DossierID, len(d.Policies)+1)
}

// Person is a natural person attached to a dossier.
type Person struct {
	PersonID  string     `json:"person_id"`
	Role      PersonRole `json:"role"`
	Name      string     `json:"name"`
	BirthDate Date       `json:"birth_date"`
}

// Policy is a single employment record with salary and accrual outcome.
type Policy struct {
	PolicyID            string           `json:"policy_id"`
	SchemeID            string           `json:"scheme_id"`
	EmploymentStartDate Date             `json:"employment_start_date"`
	Salary              decimal.Decimal  `json:"salary"`
	PartTimeFactor      decimal.Decimal  `json:"part_time_factor"`
	AttainablePension   *decimal.Decimal `json:"attainable_pension"`
	// Projections is reserved for future projection output; no handler writes it.
	Projections any `json:"projections"`
}
