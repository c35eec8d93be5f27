package models

import (
	"time"

	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
)

// User is a marketplace account. PasswordHash is a bcrypt hash and never
// leaves the service layer.
type User struct {
	ID              id.UserID
	Username        string
	Email           string
	PasswordHash    string
	Role            id.Role
	IsActive        bool
	LicenseVerified bool
	LicenseNumber   string
	RegisteredName  string
	Brokerage       string
	VerifiedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.VerifiedAt != nil {
		t := *u.VerifiedAt
		c.VerifiedAt = &t
	}
	return &c
}

// NewUser builds an active account. Callers decide the initial role; public
// registration always passes RoleGuest.
func NewUser(userID id.UserID, username, email, passwordHash string, role id.Role, now time.Time) (*User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID required")
	}
	if username == "" || email == "" || passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username, email and password hash are required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return &User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ApplyRealtorVerification records a verified licence and raises the account
// to AGENT. Staff roles are kept.
func (u *User) ApplyRealtorVerification(licenseNumber, registeredName, brokerage string, now time.Time) {
	u.LicenseVerified = true
	u.LicenseNumber = licenseNumber
	u.RegisteredName = registeredName
	u.Brokerage = brokerage
	u.VerifiedAt = &now
	if !u.Role.IsAdmin() {
		u.Role = id.RoleAgent
	}
	u.UpdatedAt = now
}

// Promote grants ADMIN. Superadmins are left untouched.
func (u *User) Promote(now time.Time) error {
	if u.Role == id.RoleSuperAdmin {
		return dErrors.New(dErrors.CodeForbidden, "cannot change a superadmin's role")
	}
	u.Role = id.RoleAdmin
	u.UpdatedAt = now
	return nil
}

// Demote resets the account to GUEST.
func (u *User) Demote(now time.Time) error {
	if u.Role == id.RoleSuperAdmin {
		return dErrors.New(dErrors.CodeForbidden, "cannot demote a superadmin")
	}
	u.Role = id.RoleGuest
	u.UpdatedAt = now
	return nil
}

// Deactivate blocks future logins and invalidates existing sessions.
func (u *User) Deactivate(now time.Time) error {
	if u.Role == id.RoleSuperAdmin {
		return dErrors.New(dErrors.CodeForbidden, "cannot deactivate a superadmin")
	}
	u.IsActive = false
	u.UpdatedAt = now
	return nil
}
