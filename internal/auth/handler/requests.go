package handler

import (
	"strings"

	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// Role is accepted for compatibility with older clients and ignored.
	Role string `json:"role,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "username and password are required")
	}
	return nil
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`

	role id.Role
}

func (r *CreateUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "username, email and password are required")
	}
	r.role = id.RoleGuest
	if strings.TrimSpace(r.Role) != "" {
		role, err := id.ParseRole(r.Role)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "role is invalid")
		}
		r.role = role
	}
	return nil
}

// UpdateUserRequest carries optional fields; omitted fields are unchanged.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`

	role *id.Role
}

func (r *UpdateUserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Role != nil {
		role, err := id.ParseRole(*r.Role)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "role is invalid")
		}
		r.role = &role
	}
	return nil
}

// AccountActionRequest is the body of the promote, demote and deactivate endpoints.
type AccountActionRequest struct {
	UserID string `json:"userId"`

	userID id.UserID
}

func (r *AccountActionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "userId is invalid")
	}
	r.userID = userID
	return nil
}
