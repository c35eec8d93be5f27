package service

import (
	"context"

	licensing "presale/internal/licensing/models"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/platform/audit"
	"presale/pkg/requestcontext"
)

// VerifyRealtor checks the caller's licence and, on success, raises the
// account to AGENT with the registry's canonical name and brokerage. The
// returned role is the caller's role after the check.
func (s *Service) VerifyRealtor(ctx context.Context, userID id.UserID, licenseNumber, claimedName string) (licensing.Result, id.Role, error) {
	if userID.IsNil() {
		return licensing.Result{}, id.RoleGuest, dErrors.New(dErrors.CodeUnauthorized, "not authenticated")
	}
	if s.verifier == nil {
		return licensing.Result{}, id.RoleGuest, dErrors.New(dErrors.CodeUnavailable, "licence verification is not configured")
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return licensing.Result{}, id.RoleGuest, err
	}

	result := s.verifier.Verify(ctx, licenseNumber, claimedName)
	if !result.IsValid {
		action := audit.EventRealtorVerifyRejected
		if result.Reason.Transient() {
			action = audit.EventRealtorVerifyErrored
		}
		s.emit(ctx, action, user.ID, withSubject(licenseNumber), withDecision("denied", string(result.Reason)))
		return result, user.Role, nil
	}

	user.ApplyRealtorVerification(licenseNumber, result.Details.Name, result.Details.Brokerage, requestcontext.Now(ctx))
	if err := s.users.Update(ctx, user); err != nil {
		return licensing.Result{}, id.RoleGuest, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification")
	}

	s.logger.InfoContext(ctx, "realtor verified",
		"user_id", user.ID.String(),
		"role", user.Role.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.EventRealtorVerified, user.ID, withSubject(licenseNumber), withDecision("granted", user.Role.String()))
	return result, user.Role, nil
}
