// Package service implements accounts, sessions, realtor verification and
// user administration.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"presale/internal/auth/device"
	"presale/internal/auth/models"
	jwttoken "presale/internal/jwt_token"
	licensing "presale/internal/licensing/models"
	id "presale/pkg/domain"
	"presale/pkg/platform/audit"
	"presale/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID id.UserID) error
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error)
	RevokeSessionIfActive(ctx context.Context, sessionID id.SessionID, now time.Time) error
	DeleteSessionsByUser(ctx context.Context, userID id.UserID) (int, error)
}

// LicenceVerifier checks a realtor licence against the public registry.
type LicenceVerifier interface {
	Verify(ctx context.Context, licenseNumber, claimedName string) licensing.Result
}

// ListingRemover deletes the listings a user owns before the user is removed.
type ListingRemover interface {
	DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error)
}

type Service struct {
	users      UserStore
	sessions   SessionStore
	tokens     *jwttoken.JWTService
	verifier   LicenceVerifier
	listings   ListingRemover
	devices    *device.Service
	auditor    audit.Emitter
	logger     *slog.Logger
	bcryptCost int
	// dummyHash is compared against when the username is unknown so both
	// login failure paths cost one bcrypt comparison.
	dummyHash []byte
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditor(auditor audit.Emitter) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithVerifier(verifier LicenceVerifier) Option {
	return func(s *Service) { s.verifier = verifier }
}

func WithListingRemover(listings ListingRemover) Option {
	return func(s *Service) { s.listings = listings }
}

func WithDeviceService(devices *device.Service) Option {
	return func(s *Service) { s.devices = devices }
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(users UserStore, sessions SessionStore, tokens *jwttoken.JWTService, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		devices:    device.NewService(true),
		logger:     slog.Default(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("presale-dummy-password"), s.bcryptCost)
	return s
}

// emit records an audit event. Failures are logged and never surface to callers.
func (s *Service) emit(ctx context.Context, action audit.AuditEvent, userID id.UserID, attrs ...func(*audit.Event)) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    userID,
		Action:    string(action),
		RequestID: requestcontext.RequestID(ctx),
	}
	if actor := requestcontext.UserID(ctx); !actor.IsNil() && actor != userID {
		event.ActorID = actor.String()
	}
	for _, apply := range attrs {
		apply(&event)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
			"request_id", event.RequestID,
		)
	}
}

func withDecision(decision, reason string) func(*audit.Event) {
	return func(e *audit.Event) {
		e.Decision = decision
		e.Reason = reason
	}
}

func withSubject(subject string) func(*audit.Event) {
	return func(e *audit.Event) { e.Subject = subject }
}
