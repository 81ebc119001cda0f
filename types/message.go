package types

// Severity classifies a calculation message and governs control flow:
// CRITICAL halts evaluation, WARNING is recorded and evaluation continues.
type Severity string

const (
	// SeverityCritical marks a message that fails the calculation.
	SeverityCritical Severity = "CRITICAL"
	// SeverityWarning marks an observation that does not halt evaluation.
	SeverityWarning Severity = "WARNING"
)

// Stable message codes. Integrations and the test suite match on these;
// never rename an existing code.
const (
	CodeDossierAlreadyExists       = "DOSSIER_ALREADY_EXISTS"
	CodeInvalidName                = "INVALID_NAME"
	CodeInvalidBirthDate           = "INVALID_BIRTH_DATE"
	CodeDossierNotFound            = "DOSSIER_NOT_FOUND"
	CodeInvalidSalary              = "INVALID_SALARY"
	CodeInvalidPartTimeFactor      = "INVALID_PART_TIME_FACTOR"
	CodeDuplicatePolicy            = "DUPLICATE_POLICY"
	CodeNoPolicies                 = "NO_POLICIES"
	CodeNoMatchingPolicies         = "NO_MATCHING_POLICIES"
	CodeNegativeSalaryClamped      = "NEGATIVE_SALARY_CLAMPED"
	CodeNoParticipant              = "NO_PARTICIPANT"
	CodeRetirementBeforeEmployment = "RETIREMENT_BEFORE_EMPLOYMENT"
	CodeNotEligible                = "NOT_ELIGIBLE"
	CodeUnknownMutation            = "UNKNOWN_MUTATION"
)

// CalculationMessage is a structured record emitted during evaluation.
type CalculationMessage struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// IsCritical reports whether the message fails the calculation.
func (m CalculationMessage) IsCritical() bool { return m.Severity == SeverityCritical }

// Critical constructs a CRITICAL message.
func Critical(code, message string) CalculationMessage {
	return CalculationMessage{Code: code, Severity: SeverityCritical, Message: message}
}

// Warning constructs a WARNING message.
func Warning(code, message string) CalculationMessage {
	return CalculationMessage{Code: code, Severity: SeverityWarning, Message: message}
}

// AnyCritical reports whether any message in the slice is CRITICAL.
func AnyCritical(msgs []CalculationMessage) bool {
	for _, m := range msgs {
		if m.IsCritical() {
			return true
		}
	}
	return false
}
