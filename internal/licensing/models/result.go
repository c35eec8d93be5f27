// Package models holds the outcome types of a licence verification.
package models

// Reason classifies why a verification did not succeed.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonNotFound           Reason = "not_found"
	ReasonInactive           Reason = "inactive"
	ReasonNameMismatch       Reason = "name_mismatch"
	ReasonServiceUnavailable Reason = "service_unavailable"
	ReasonUnparseable        Reason = "unparseable"
)

// Message returns the human-readable failure message for r.
func (r Reason) Message() string {
	switch r {
	case ReasonNotFound:
		return "License number not found"
	case ReasonInactive:
		return "License is not active or not found."
	case ReasonNameMismatch:
		return "Name does not match our records for this license."
	case ReasonUnparseable:
		return "Could not parse realtor name from registry"
	case ReasonServiceUnavailable:
		return "Verification service unavailable."
	default:
		return ""
	}
}

// Transient reports whether retrying later may produce a different outcome.
func (r Reason) Transient() bool {
	return r == ReasonServiceUnavailable
}

// Details is the registry's canonical view of a verified licensee.
type Details struct {
	Name          string `json:"name"`
	LicenseStatus string `json:"licenseStatus"`
	Brokerage     string `json:"brokerage"`
}

// Result is the outcome of one verification. It is never persisted.
// Details is set only when IsValid; Error and Reason only when not.
type Result struct {
	IsValid bool     `json:"isValid"`
	Details *Details `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
	Reason  Reason   `json:"-"`
}

// Valid builds a successful result.
func Valid(d Details) Result {
	return Result{IsValid: true, Details: &d}
}

// Invalid builds a failed result carrying r's message.
func Invalid(r Reason) Result {
	return Result{Error: r.Message(), Reason: r}
}
