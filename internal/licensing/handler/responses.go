package handler

import "presale/internal/licensing/models"

// genericFailure is shown for every non-transient failure so the endpoint
// cannot be used to discover which licence numbers exist.
const genericFailure = "We could not verify this licence. Check the licence number and name and try again."

// VerifyRealtorResponse is the public shape of a verification outcome.
type VerifyRealtorResponse struct {
	IsValid bool            `json:"isValid"`
	Details *models.Details `json:"details,omitempty"`
	Error   string          `json:"error,omitempty"`
	Role    string          `json:"role,omitempty"`
}

func toResponse(res models.Result) VerifyRealtorResponse {
	if res.IsValid {
		return VerifyRealtorResponse{IsValid: true, Details: res.Details}
	}
	if res.Reason.Transient() {
		return VerifyRealtorResponse{Error: res.Error}
	}
	return VerifyRealtorResponse{Error: genericFailure}
}
