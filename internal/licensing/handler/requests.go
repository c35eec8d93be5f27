package handler

import (
	"strings"
	"unicode"

	dErrors "presale/pkg/domain-errors"
)

const (
	maxLicenseNumberLen = 32
	maxNameLen          = 200
)

// VerifyRealtorRequest is the body of POST /api/verify-realtor.
type VerifyRealtorRequest struct {
	LicenseNumber string `json:"licenseNumber"`
	Name          string `json:"name"`
}

// Validate implements httputil.Validatable.
func (r *VerifyRealtorRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.LicenseNumber = strings.TrimSpace(r.LicenseNumber)
	r.Name = strings.TrimSpace(r.Name)

	if r.LicenseNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "licenseNumber is required")
	}
	if len(r.LicenseNumber) > maxLicenseNumberLen {
		return dErrors.New(dErrors.CodeValidation, "licenseNumber must be at most 32 characters")
	}
	for _, c := range r.LicenseNumber {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' {
			return dErrors.New(dErrors.CodeValidation, "licenseNumber may contain only letters, digits and hyphens")
		}
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > maxNameLen {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 200 characters")
	}
	return nil
}
