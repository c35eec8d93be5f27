package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "presale/pkg/domain"
	"presale/pkg/requestcontext"
)

// Principal is the caller resolved from a session token.
type Principal struct {
	UserID    id.UserID
	SessionID id.SessionID
	Role      id.Role
}

// SessionResolver turns a raw session token into a principal. Implementations
// verify the token signature, the session record and the user's active flag.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*Principal, error)
}

// TokenFromRequest returns the bearer token if present, else the session cookie value.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// Authenticate resolves the caller for every request. Requests without a token,
// or with a token that no longer resolves, continue as guests; endpoints that
// need an identity add RequireAuth or RequireRole.
func Authenticate(resolver SessionResolver, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r.WithContext(requestcontext.WithRole(ctx, id.RoleGuest)))
				return
			}

			principal, err := resolver.ResolveSession(ctx, token)
			if err != nil {
				logger.InfoContext(ctx, "session not resolved, continuing as guest",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r.WithContext(requestcontext.WithRole(ctx, id.RoleGuest)))
				return
			}

			ctx = requestcontext.WithUserID(ctx, principal.UserID)
			ctx = requestcontext.WithSessionID(ctx, principal.SessionID)
			ctx = requestcontext.WithRole(ctx, principal.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects guests with 401.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return RequireRole(id.RoleGuest, logger)
}

// RequireRole rejects unauthenticated callers with 401 and callers below min with 403.
func RequireRole(min id.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !requestcontext.IsAuthenticated(ctx) {
				logger.WarnContext(ctx, "unauthorized access - no session",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Not authenticated")
				return
			}
			role := requestcontext.Role(ctx)
			if !role.AtLeast(min) {
				logger.WarnContext(ctx, "forbidden - insufficient role",
					"request_id", requestcontext.RequestID(ctx),
					"user_id", requestcontext.UserID(ctx).String(),
					"role", role.String(),
					"required", min.String(),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
