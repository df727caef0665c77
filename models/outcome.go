package models

const (
	OutcomeSuccess       = "success"
	OutcomeStateError    = "state_error"
	OutcomeSecurityError = "security_error"
)

// ActionOutcome is the structured result of a check-in or check-out attempt.
// The minute counters feed the {minutes} placeholder of the message
// templates before the outcome leaves the handler.
type ActionOutcome struct {
	Kind                  string `json:"kind"`
	Message               string `json:"message"`
	Status                string `json:"status,omitempty"`
	DelayMinutes          *int   `json:"delay_minutes,omitempty"`
	EarlyDepartureMinutes *int   `json:"early_departure_minutes,omitempty"`
	TimeTrusted           bool   `json:"time_trusted"`
}
