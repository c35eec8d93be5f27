package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"presale/internal/admin"
	authhandler "presale/internal/auth/handler"
	licensinghandler "presale/internal/licensing/handler"
	listinghandler "presale/internal/listing/handler"
	"presale/internal/platform/httpserver"
	"presale/internal/platform/metrics"
	"presale/internal/platform/postgres"
	ratelimitmetrics "presale/internal/ratelimit/metrics"
	ratelimitmw "presale/internal/ratelimit/middleware"
	"presale/internal/ratelimit/store/bucket"
	httptransport "presale/internal/transport/http"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving when a database is configured")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if migrate && a.db != nil {
		applied, err := postgres.Migrate(ctx, a.db)
		if err != nil {
			return err
		}
		a.logger.InfoContext(ctx, "migrations applied", "count", len(applied))
	}
	if err := a.ensureAuditTopics(ctx); err != nil {
		a.logger.WarnContext(ctx, "audit topics not ensured", "error", err)
	}
	if a.cfg.SuperAdmin.Password != "" {
		if err := a.seedSuperAdmin(ctx); err != nil {
			return err
		}
	}

	srv := httpserver.New(a.cfg.Server.Addr, httptransport.NewRouter(a.routerDeps()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting presale api",
			"addr", a.cfg.Server.Addr,
			"postgres", a.db != nil,
			"redis", a.redis != nil,
			"kafka", a.kafka != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *app) routerDeps() httptransport.Deps {
	var limiterStore bucket.Store = bucket.NewInMemoryBucketStore()
	if a.redis != nil {
		limiterStore = bucket.NewRedisBucketStore(a.redis.Client)
	}
	limiter := ratelimitmw.New(limiterStore, a.logger,
		ratelimitmw.WithDisabled(a.cfg.RateLimit.Disabled),
		ratelimitmw.WithMetrics(ratelimitmetrics.New(a.registry)),
		ratelimitmw.WithAuditor(a.auditor),
	)

	checks := map[string]httptransport.HealthCheck{}
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}

	cookie := authhandler.CookieConfig{Name: a.cfg.Session.CookieName, Secure: a.cfg.Session.CookieSecure}
	return httptransport.Deps{
		Logger:       a.logger,
		Metrics:      metrics.New(a.registry),
		Gatherer:     a.registry,
		Sessions:     a.auth,
		CookieName:   a.cfg.Session.CookieName,
		Auth:         authhandler.New(a.auth, cookie, a.logger),
		Listings:     listinghandler.New(a.listing, a.logger),
		Licensing:    licensinghandler.New(a.auth, a.logger),
		Admin:        admin.NewHandler(admin.New(a.users, a.sessions, a.audits, a.logger), a.logger),
		RateLimiter:  limiter,
		VerifyLimit:  ratelimitmw.Limit{Requests: a.cfg.RateLimit.VerifyLimit, Window: a.cfg.RateLimit.VerifyWindow},
		LoginLimit:   ratelimitmw.Limit{Requests: a.cfg.RateLimit.LoginLimit, Window: a.cfg.RateLimit.LoginWindow},
		HealthChecks: checks,
	}
}
