package mutation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VismaKosice/pension-engine/props"
	"github.com/VismaKosice/pension-engine/types"
)

// createDossier installs the dossier with its participant.
// A situation holds at most one dossier; creating a second is CRITICAL.
type createDossier struct {
	now func() time.Time
}

func (h *createDossier) Apply(_ context.Context, sit *types.Situation, mut *types.Mutation) []types.CalculationMessage {
	bag := props.From(mut.MutationProperties)
	dossierID := bag.String("dossier_id")
	personID := bag.String("person_id")
	name := bag.String("name")
	birthDate := bag.Date("birth_date")

	if sit.Dossier != nil {
		return []types.CalculationMessage{types.Critical(
			types.CodeDossierAlreadyExists,
			fmt.Sprintf("situation already contains dossier %q", sit.Dossier.DossierID),
		)}
	}
	if strings.TrimSpace(name) == "" {
		return []types.CalculationMessage{types.Critical(
			types.CodeInvalidName,
			"person name must not be empty",
		)}
	}
	today := types.DateOf(h.now())
	if birthDate.IsZero() || birthDate.After(today) {
		return []types.CalculationMessage{types.Critical(
			types.CodeInvalidBirthDate,
			fmt.Sprintf("birth date %q must be a valid date in the past", bag.String("birth_date")),
		)}
	}

	sit.Dossier = &types.Dossier{
		DossierID: dossierID,
		Status:    types.DossierStatusActive,
		Persons: []types.Person{{
			PersonID:  personID,
			Role:      types.PersonRoleParticipant,
			Name:      name,
			BirthDate: birthDate,
		}},
		Policies: []types.Policy{},
	}
	return nil
}
