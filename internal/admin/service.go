// Package admin gives staff a read-only view of account activity and the
// audit trail.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"time"

	authModels "presale/internal/auth/models"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/platform/audit"
	"presale/pkg/platform/sentinel"
	"presale/pkg/requestcontext"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

type UserStore interface {
	List(ctx context.Context) ([]*authModels.User, error)
	FindByID(ctx context.Context, userID id.UserID) (*authModels.User, error)
}

type SessionStore interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]*authModels.Session, error)
}

// AuditReader reads back persisted audit events.
type AuditReader interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// UserActivity summarises one account for the activity view.
type UserActivity struct {
	User           *authModels.User
	ActiveSessions int
	LastActive     *time.Time
}

type Service struct {
	users    UserStore
	sessions SessionStore
	audit    AuditReader
	logger   *slog.Logger
}

func New(users UserStore, sessions SessionStore, audit AuditReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, sessions: sessions, audit: audit, logger: logger}
}

// Activity lists every account with its usable session count and the start
// of its most recent session.
func (s *Service) Activity(ctx context.Context) ([]UserActivity, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	now := requestcontext.Now(ctx)

	out := make([]UserActivity, 0, len(users))
	for _, u := range users {
		sessions, err := s.sessions.ListByUser(ctx, u.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
		}
		activity := UserActivity{User: u}
		for _, sess := range sessions {
			if sess.IsUsable(now) {
				activity.ActiveSessions++
			}
			if activity.LastActive == nil || sess.CreatedAt.After(*activity.LastActive) {
				created := sess.CreatedAt
				activity.LastActive = &created
			}
		}
		out = append(out, activity)
	}
	return out, nil
}

// RecentAudit returns up to limit events, newest first. A non-positive limit
// means DefaultAuditLimit.
func (s *Service) RecentAudit(ctx context.Context, limit int) ([]audit.Event, error) {
	if s.audit == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "audit trail is not available")
	}
	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}
	events, err := s.audit.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail")
	}
	return newestFirst(events), nil
}

// UserAudit returns the audit events recorded against one account, newest first.
func (s *Service) UserAudit(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	if s.audit == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "audit trail is not available")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	events, err := s.audit.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail")
	}
	s.logger.InfoContext(ctx, "audit trail read",
		"subject_user_id", userID.String(),
		"actor_id", requestcontext.UserID(ctx).String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return newestFirst(events), nil
}

func newestFirst(events []audit.Event) []audit.Event {
	out := make([]audit.Event, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	return out
}
