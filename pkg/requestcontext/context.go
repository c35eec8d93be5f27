// Package requestcontext carries request-scoped values between middleware and
// services without importing net/http. Middleware writes them; handlers and
// services read them:
//
//	caller := requestcontext.UserID(ctx)
//	if requestcontext.Role(ctx).AtLeast(id.RoleMember) { ... }
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"

	id "presale/pkg/domain"
)

type key int

const (
	keyUserID key = iota
	keySessionID
	keyRole
	keyClientIP
	keyUserAgent
	keyRequestID
	keyRequestTime
)

func value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

func valueOrZero[T any](ctx context.Context, k key) T {
	v, _ := value[T](ctx, k)
	return v
}

// UserID is the nil ID for guests.
func UserID(ctx context.Context) id.UserID { return valueOrZero[id.UserID](ctx, keyUserID) }

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

// SessionID is the nil ID for guests.
func SessionID(ctx context.Context) id.SessionID { return valueOrZero[id.SessionID](ctx, keySessionID) }

func WithSessionID(ctx context.Context, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, keySessionID, sessionID)
}

// Role defaults to guest when unset or not a known role.
func Role(ctx context.Context) id.Role {
	if role, ok := value[id.Role](ctx, keyRole); ok && role.IsValid() {
		return role
	}
	return id.RoleGuest
}

func WithRole(ctx context.Context, role id.Role) context.Context {
	return context.WithValue(ctx, keyRole, role)
}

// IsAuthenticated reports whether a session resolved to a user.
func IsAuthenticated(ctx context.Context) bool { return !UserID(ctx).IsNil() }

func ClientIP(ctx context.Context) string  { return valueOrZero[string](ctx, keyClientIP) }
func UserAgent(ctx context.Context) string { return valueOrZero[string](ctx, keyUserAgent) }

// WithClientMetadata sets the caller address and User-Agent. Service tests use
// it in place of the metadata middleware.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	return context.WithValue(context.WithValue(ctx, keyClientIP, clientIP), keyUserAgent, userAgent)
}

func RequestID(ctx context.Context) string { return valueOrZero[string](ctx, keyRequestID) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// Now is the time pinned at request start, or the wall clock outside a request.
func Now(ctx context.Context) time.Time {
	if t, ok := value[time.Time](ctx, keyRequestTime); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, keyRequestTime, t)
}
