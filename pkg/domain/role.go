package domain

import (
	"strings"

	dErrors "presale/pkg/domain-errors"
)

// Role is a closed, totally ordered privilege level. The zero value is
// RoleGuest so an unauthenticated request is never accidentally privileged.
//
// Order: GUEST < MEMBER < AGENT < ADMIN < SUPERADMIN.
type Role uint8

const (
	RoleGuest Role = iota
	RoleMember
	RoleAgent
	RoleAdmin
	RoleSuperAdmin
)

var roleNames = [...]string{
	RoleGuest:      "GUEST",
	RoleMember:     "MEMBER",
	RoleAgent:      "AGENT",
	RoleAdmin:      "ADMIN",
	RoleSuperAdmin: "SUPERADMIN",
}

// Roles lists every role in ascending privilege order.
func Roles() []Role {
	return []Role{RoleGuest, RoleMember, RoleAgent, RoleAdmin, RoleSuperAdmin}
}

// ParseRole constructs a Role from external input (case-insensitive).
func ParseRole(s string) (Role, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return RoleGuest, dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	for r, name := range roleNames {
		if name == s {
			return Role(r), nil
		}
	}
	return RoleGuest, dErrors.New(dErrors.CodeInvalidInput, "invalid role")
}

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	return int(r) < len(roleNames)
}

// AtLeast reports whether r carries at least the privilege of min.
// Undefined roles carry no privilege.
func (r Role) AtLeast(min Role) bool {
	return r.IsValid() && r >= min
}

// IsAdmin reports whether r may use admin endpoints.
func (r Role) IsAdmin() bool {
	return r.AtLeast(RoleAdmin)
}

func (r Role) String() string {
	if !r.IsValid() {
		return "UNKNOWN"
	}
	return roleNames[r]
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
