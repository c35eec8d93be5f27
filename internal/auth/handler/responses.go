package handler

import (
	"time"

	"presale/internal/auth/models"
)

// UserResponse is the public shape of an account. The password hash never
// leaves the service.
type UserResponse struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	IsActive        bool       `json:"isActive"`
	LicenseVerified bool       `json:"licenseVerified"`
	LicenseNumber   string     `json:"licenseNumber,omitempty"`
	RegisteredName  string     `json:"registeredName,omitempty"`
	Brokerage       string     `json:"brokerage,omitempty"`
	VerifiedAt      *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:              u.ID.String(),
		Username:        u.Username,
		Email:           u.Email,
		Role:            u.Role.String(),
		IsActive:        u.IsActive,
		LicenseVerified: u.LicenseVerified,
		LicenseNumber:   u.LicenseNumber,
		RegisteredName:  u.RegisteredName,
		Brokerage:       u.Brokerage,
		VerifiedAt:      u.VerifiedAt,
		CreatedAt:       u.CreatedAt,
	}
}

func toUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
