package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"presale/internal/ratelimit/metrics"
	"presale/internal/ratelimit/models"
	"presale/internal/ratelimit/store/bucket"
	"presale/pkg/platform/audit"
	"presale/pkg/platform/httputil"
	"presale/pkg/requestcontext"
)

// Limit is the allowance for one scope.
type Limit struct {
	Requests int
	Window   time.Duration
}

type Middleware struct {
	store    bucket.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  audit.Emitter
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

// WithAuditor records every rejection as a security audit event.
func WithAuditor(a audit.Emitter) Option {
	return func(m *Middleware) {
		m.auditor = a
	}
}

func New(store bucket.Store, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// PerUser limits authenticated callers by user ID and anonymous callers by
// client IP. A failing counter store lets the request through.
func (m *Middleware) PerUser(scope models.Scope, limit Limit) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			userID := requestcontext.UserID(ctx)
			key := models.IPKey(scope, requestcontext.ClientIP(ctx))
			if !userID.IsNil() {
				key = models.UserKey(scope, userID)
			}

			result, err := m.store.Allow(ctx, key, limit.Requests, limit.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"scope", string(scope),
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				if m.metrics != nil {
					m.metrics.IncrementStoreErrors(string(scope))
				}
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.reject(w, r, scope, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, scope models.Scope, result *models.Result) {
	ctx := r.Context()
	m.logger.WarnContext(ctx, "rate limit exceeded",
		"scope", string(scope),
		"user_id", requestcontext.UserID(ctx).String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if m.metrics != nil {
		m.metrics.IncrementRejected(string(scope))
	}
	if m.auditor != nil {
		if err := m.auditor.Emit(ctx, audit.Event{
			UserID:    requestcontext.UserID(ctx),
			Action:    string(audit.EventRateLimitHit),
			Subject:   string(scope),
			Decision:  "denied",
			RequestID: requestcontext.RequestID(ctx),
		}); err != nil {
			m.logger.WarnContext(ctx, "failed to emit rate limit audit event", "error", err)
		}
	}
	writeRateLimitExceeded(w, result)
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:      "too_many_requests",
		Message:    "Too many attempts. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}
