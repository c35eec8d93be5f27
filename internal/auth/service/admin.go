package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"presale/internal/auth/models"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/email"
	"presale/pkg/platform/audit"
	"presale/pkg/platform/sentinel"
	"presale/pkg/requestcontext"
)

// Promote grants ADMIN to the target.
func (s *Service) Promote(ctx context.Context, targetID id.UserID) (*models.User, error) {
	return s.changeAccount(ctx, targetID, audit.EventUserPromoted, (*models.User).Promote)
}

// Demote resets the target to GUEST.
func (s *Service) Demote(ctx context.Context, targetID id.UserID) (*models.User, error) {
	return s.changeAccount(ctx, targetID, audit.EventUserDemoted, (*models.User).Demote)
}

// Deactivate blocks the target and drops every session they hold.
func (s *Service) Deactivate(ctx context.Context, targetID id.UserID) (*models.User, error) {
	user, err := s.changeAccount(ctx, targetID, audit.EventUserDeactivated, (*models.User).Deactivate)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.DeleteSessionsByUser(ctx, user.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to end user sessions")
	}
	return user, nil
}

func (s *Service) changeAccount(ctx context.Context, targetID id.UserID, action audit.AuditEvent, apply func(*models.User, time.Time) error) (*models.User, error) {
	user, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := apply(user, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	s.logger.InfoContext(ctx, "account changed",
		"action", string(action),
		"user_id", user.ID.String(),
		"role", user.Role.String(),
		"actor_id", requestcontext.UserID(ctx).String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, action, user.ID, withDecision("granted", user.Role.String()))
	return user, nil
}

// ListUsers returns every account, oldest first.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     id.Role
}

// CreateUser adds an account on behalf of staff. The role must rank below the caller's.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := requireOutranks(ctx, in.Role); err != nil {
		return nil, err
	}
	user, err := s.newAccount(ctx, in.Username, in.Email, in.Password, in.Role)
	if err != nil {
		return nil, err
	}
	if err := s.createUser(ctx, user); err != nil {
		return nil, err
	}
	s.emit(ctx, audit.EventUserCreated, user.ID, withSubject(user.Username), withDecision("granted", user.Role.String()))
	return user, nil
}

// UpdateUserInput carries optional changes; nil fields are left as they are.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *id.Role
	IsActive *bool
}

// UpdateUser edits an account ranked below the caller.
func (s *Service) UpdateUser(ctx context.Context, targetID id.UserID, in UpdateUserInput) (*models.User, error) {
	user, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := requireOutranks(ctx, user.Role); err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if in.Email != nil {
		addr, err := email.Normalize(*in.Email)
		if err != nil {
			return nil, err
		}
		user.Email = addr
	}
	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if in.Role != nil {
		if err := requireOutranks(ctx, *in.Role); err != nil {
			return nil, err
		}
		user.Role = *in.Role
	}
	deactivated := false
	if in.IsActive != nil {
		deactivated = user.IsActive && !*in.IsActive
		user.IsActive = *in.IsActive
	}
	user.UpdatedAt = requestcontext.Now(ctx)

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "username or email already exists")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	if deactivated {
		if _, err := s.sessions.DeleteSessionsByUser(ctx, user.ID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to end user sessions")
		}
	}
	s.emit(ctx, audit.EventUserUpdated, user.ID, withSubject(user.Username))
	return user, nil
}

// DeleteUser removes an account ranked below the caller together with their
// listings and sessions.
func (s *Service) DeleteUser(ctx context.Context, targetID id.UserID) error {
	user, err := s.findUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := requireOutranks(ctx, user.Role); err != nil {
		return err
	}

	if _, err := s.sessions.DeleteSessionsByUser(ctx, user.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user sessions")
	}
	if s.listings != nil {
		removed, err := s.listings.DeleteByOwner(ctx, user.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user listings")
		}
		if removed > 0 {
			s.logger.InfoContext(ctx, "removed listings of deleted user",
				"user_id", user.ID.String(),
				"count", removed,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}
	s.emit(ctx, audit.EventUserDeleted, user.ID, withSubject(user.Username))
	return nil
}

// requireOutranks lets staff act only on roles strictly below their own.
// Nobody outranks a superadmin.
func requireOutranks(ctx context.Context, target id.Role) error {
	if !target.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	actor := requestcontext.Role(ctx)
	if target == id.RoleSuperAdmin || !actor.AtLeast(target) || actor == target {
		return dErrors.New(dErrors.CodeForbidden, "insufficient permissions for this account")
	}
	return nil
}
