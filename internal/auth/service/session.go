package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"presale/internal/auth/models"
	sessionStore "presale/internal/auth/store/session"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/email"
	"presale/pkg/platform/audit"
	authmw "presale/pkg/platform/middleware/auth"
	"presale/pkg/platform/sentinel"
	"presale/pkg/requestcontext"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes  = 72
	maxUsernameLength = 64
)

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User    *models.User
	Session *models.Session
	Token   string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a GUEST account and signs the new user in. Any role in
// the payload is ignored by the transport layer.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := s.newAccount(ctx, in.Username, in.Email, in.Password, id.RoleGuest)
	if err != nil {
		return nil, err
	}
	if err := s.createUser(ctx, user); err != nil {
		return nil, err
	}
	s.emit(ctx, audit.EventUserCreated, user.ID, withSubject(user.Username))
	return s.startSession(ctx, user)
}

// Login checks the password and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.authFailure(ctx, id.UserID{}, "unknown_username")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.authFailure(ctx, user.ID, "bad_password")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}
	if !user.IsActive {
		s.authFailure(ctx, user.ID, "inactive_account")
		return nil, dErrors.New(dErrors.CodeForbidden, "account is deactivated")
	}
	return s.startSession(ctx, user)
}

// Logout revokes the session. Revoking an already revoked session succeeds.
func (s *Service) Logout(ctx context.Context, sessionID id.SessionID) error {
	if sessionID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "not authenticated")
	}
	err := s.sessions.RevokeSessionIfActive(ctx, sessionID, requestcontext.Now(ctx))
	switch {
	case err == nil:
		s.emit(ctx, audit.EventSessionRevoked, requestcontext.UserID(ctx),
			withSubject(sessionID.String()), withDecision("revoked", "logout"))
		return nil
	case errors.Is(err, sessionStore.ErrSessionRevoked), errors.Is(err, sentinel.ErrNotFound):
		return nil
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
}

// CurrentUser returns the caller's account.
func (s *Service) CurrentUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "not authenticated")
	}
	return s.findUser(ctx, userID)
}

// ResolveSession validates a session token and returns the caller with the
// role currently stored on their account.
func (s *Service) ResolveSession(ctx context.Context, token string) (*authmw.Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	userID, sessionID, err := claims.IDs()
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if sess.UserID != userID || sess.TokenJTI != claims.ID {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token does not match session")
	}
	if !sess.IsUsable(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session is no longer active")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if !user.IsActive {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account is deactivated")
	}

	if presented := s.devices.ComputeFingerprint(requestcontext.UserAgent(ctx)); presented != "" {
		if _, drift := s.devices.CompareFingerprints(sess.DeviceFingerprintHash, presented); drift {
			s.logger.InfoContext(ctx, "session device fingerprint changed",
				"session_id", sess.ID.String(),
				"user_id", userID.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	return &authmw.Principal{UserID: user.ID, SessionID: sess.ID, Role: user.Role}, nil
}

func (s *Service) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	sessionID := id.NewSessionID()
	issued, err := s.tokens.GenerateSessionToken(user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	userAgent := requestcontext.UserAgent(ctx)
	sess := &models.Session{
		ID:                    sessionID,
		UserID:                user.ID,
		Status:                models.SessionStatusActive,
		TokenJTI:              issued.JTI,
		DeviceDisplayName:     s.deviceName(userAgent),
		DeviceFingerprintHash: s.devices.ComputeFingerprint(userAgent),
		ClientIP:              requestcontext.ClientIP(ctx),
		CreatedAt:             requestcontext.Now(ctx),
		ExpiresAt:             issued.ExpiresAt,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	s.logger.InfoContext(ctx, "session started",
		"user_id", user.ID.String(),
		"session_id", sess.ID.String(),
		"device", sess.DeviceDisplayName,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.EventSessionCreated, user.ID, withSubject(sess.ID.String()))
	return &AuthResult{User: user, Session: sess, Token: issued.Token}, nil
}

func (s *Service) deviceName(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	return device.ParseUserAgent(userAgent)
}

func (s *Service) authFailure(ctx context.Context, userID id.UserID, reason string) {
	s.logger.WarnContext(ctx, "login failed",
		"reason", reason,
		"client_ip", requestcontext.ClientIP(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.EventAuthFailed, userID, withDecision("denied", reason))
}

// newAccount validates credentials and builds an unsaved user.
func (s *Service) newAccount(ctx context.Context, username, rawEmail, password string, role id.Role) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	addr, err := email.Normalize(rawEmail)
	if err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	return models.NewUser(id.NewUserID(), username, addr, hash, role, requestcontext.Now(ctx))
}

func (s *Service) hashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return "", dErrors.New(dErrors.CodeValidation, "password is too long")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return string(hash), nil
}

func validateUsername(username string) error {
	if username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return dErrors.New(dErrors.CodeValidation, "username is too long")
	}
	return nil
}

// createUser reports which unique field collided, as registration clients expect.
func (s *Service) createUser(ctx context.Context, user *models.User) error {
	if existing, err := s.users.FindByUsername(ctx, user.Username); err == nil && existing != nil {
		return dErrors.New(dErrors.CodeConflict, "username already exists")
	}
	if existing, err := s.users.FindByEmail(ctx, user.Email); err == nil && existing != nil {
		return dErrors.New(dErrors.CodeConflict, "email already exists")
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "username or email already exists")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	return nil
}

func (s *Service) findUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}
