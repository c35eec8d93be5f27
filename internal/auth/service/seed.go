package service

import (
	"context"
	"errors"
	"strings"

	"presale/internal/auth/models"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/platform/audit"
	"presale/pkg/platform/sentinel"
	"presale/pkg/requestcontext"
)

type SeedInput struct {
	Username string
	Email    string
	Password string
}

// SeedSuperAdmin makes sure the named account exists with role SUPERADMIN.
// An existing account keeps its password and is only promoted. Running it
// again is a no-op. created reports whether a new account was written.
func (s *Service) SeedSuperAdmin(ctx context.Context, in SeedInput) (user *models.User, created bool, err error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "superadmin username is required")
	}

	existing, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Role == id.RoleSuperAdmin && existing.IsActive {
			s.logger.InfoContext(ctx, "superadmin already present", "user_id", existing.ID.String())
			return existing, false, nil
		}
		existing.Role = id.RoleSuperAdmin
		existing.IsActive = true
		existing.UpdatedAt = requestcontext.Now(ctx)
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to promote superadmin")
		}
		s.logger.InfoContext(ctx, "existing account promoted to superadmin", "user_id", existing.ID.String())
		s.emit(ctx, audit.EventSuperAdminSeeded, existing.ID, withDecision("granted", "promoted"))
		return existing, false, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up superadmin")
	}

	user, err = s.newAccount(ctx, username, in.Email, in.Password, id.RoleSuperAdmin)
	if err != nil {
		return nil, false, err
	}
	if err := s.createUser(ctx, user); err != nil {
		return nil, false, err
	}
	s.logger.InfoContext(ctx, "superadmin created", "user_id", user.ID.String())
	s.emit(ctx, audit.EventSuperAdminSeeded, user.ID, withDecision("granted", "created"))
	return user, true, nil
}
