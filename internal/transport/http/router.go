// Package httptransport assembles the HTTP API from the feature handlers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"presale/internal/admin"
	authhandler "presale/internal/auth/handler"
	licensinghandler "presale/internal/licensing/handler"
	listinghandler "presale/internal/listing/handler"
	"presale/internal/platform/metrics"
	platformmw "presale/internal/platform/middleware"
	ratelimitmw "presale/internal/ratelimit/middleware"
	ratelimit "presale/internal/ratelimit/models"
	"presale/pkg/platform/httputil"
	authmw "presale/pkg/platform/middleware/auth"
	"presale/pkg/platform/middleware/metadata"
	"presale/pkg/platform/middleware/request"
	"presale/pkg/platform/middleware/requesttime"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the collaborators the router mounts. Sessions resolves the caller
// for every request; the feature handlers add their own role checks.
type Deps struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Sessions   authmw.SessionResolver
	CookieName string

	Auth      *authhandler.Handler
	Listings  *listinghandler.Handler
	Licensing *licensinghandler.Handler
	Admin     *admin.Handler

	RateLimiter *ratelimitmw.Middleware
	VerifyLimit ratelimitmw.Limit
	LoginLimit  ratelimitmw.Limit

	HealthChecks map[string]HealthCheck
}

// NewRouter builds the chi router with the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(platformmw.Recoverer(d.Logger))
	r.Use(platformmw.RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", healthHandler(d.HealthChecks, d.Logger))
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.Authenticate(d.Sessions, d.CookieName, d.Logger))

		if d.Auth != nil {
			if d.RateLimiter != nil {
				d.Auth.WithLoginLimiter(d.RateLimiter.PerUser(ratelimit.ScopeLogin, d.LoginLimit))
			}
			d.Auth.Register(r)
		}
		if d.Listings != nil {
			d.Listings.Register(r)
		}
		if d.Admin != nil {
			d.Admin.Register(r)
		}
		if d.Licensing != nil {
			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireAuth(d.Logger))
				if d.RateLimiter != nil {
					r.Use(d.RateLimiter.PerUser(ratelimit.ScopeVerifyRealtor, d.VerifyLimit))
				}
				d.Licensing.Register(r)
			})
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
