package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"

	"presale/internal/auth/device"
	authservice "presale/internal/auth/service"
	"presale/internal/auth/store/session"
	"presale/internal/auth/store/user"
	jwttoken "presale/internal/jwt_token"
	"presale/internal/licensing/extract"
	licensingmetrics "presale/internal/licensing/metrics"
	"presale/internal/licensing/providers/bcfsa"
	licensingservice "presale/internal/licensing/service"
	listingmetrics "presale/internal/listing/metrics"
	listingservice "presale/internal/listing/service"
	listingstore "presale/internal/listing/store"
	"presale/internal/platform/config"
	"presale/internal/platform/logger"
	"presale/internal/platform/postgres"
	redisclient "presale/internal/platform/redis"
	"presale/pkg/platform/audit/publisher"
	kafkasink "presale/pkg/platform/audit/publishers/kafka"
	auditmemory "presale/pkg/platform/audit/store/memory"
	"presale/pkg/platform/circuit"
)

const auditBufferSize = 1024

// listingStore is what both the listing service and account deletion need.
type listingStore interface {
	listingservice.Store
	authservice.ListingRemover
}

// app holds the process-wide dependencies shared by the commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	db    *sqlx.DB
	redis *redisclient.Client
	kafka *kgo.Client

	auditor  *publisher.Publisher
	audits   *auditmemory.InMemoryStore
	users    authservice.UserStore
	sessions authservice.SessionStore
	listings listingStore
	auth     *authservice.Service
	listing  *listingservice.Service
	verifier *licensingservice.Service
}

// newApp connects to the configured backends. Postgres and Redis are optional;
// without them users and listings, or sessions, are kept in memory.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		logger:   logger.New(cfg.Log.Level, cfg.Log.Format),
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.UsesDefaultSessionSecret() {
		a.logger.Warn("using the development session secret; set SESSION_SECRET in production")
	}

	if err := a.connect(ctx); err != nil {
		a.close()
		return nil, err
	}
	if err := a.build(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) connect(ctx context.Context) error {
	if a.cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, a.cfg.Database.URL)
		if err != nil {
			return err
		}
		a.db = db
	}

	rc, err := redisclient.New(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	a.redis = rc

	if len(a.cfg.Audit.KafkaBrokers) > 0 {
		client, err := kafkasink.NewClient(a.cfg.Audit.KafkaBrokers)
		if err != nil {
			return err
		}
		a.kafka = client
	}
	return nil
}

func (a *app) build() error {
	auditOpts := []publisher.Option{
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(a.logger),
	}
	if a.kafka != nil {
		sink := kafkasink.New(a.kafka, a.cfg.Audit.TopicPrefix, a.logger)
		auditOpts = append(auditOpts, publisher.WithSink(sink))
	}
	a.audits = auditmemory.NewInMemoryStore()
	a.auditor = publisher.NewPublisher(a.audits, auditOpts...)

	a.users = user.New()
	a.listings = listingstore.NewInMemory()
	if a.db != nil {
		a.users = user.NewPostgres(a.db)
		a.listings = listingstore.NewPostgres(a.db)
	}
	a.sessions = session.New()
	if a.redis != nil {
		a.sessions = session.NewRedis(a.redis.Client)
	}

	breaker := circuit.New(bcfsa.ProviderID,
		circuit.WithFailureThreshold(a.cfg.Registry.FailureThreshold),
		circuit.WithCooldown(a.cfg.Registry.Cooldown),
	)
	verifier, err := licensingservice.New(
		bcfsa.New(a.cfg.Registry.BaseURL, a.cfg.Registry.Timeout),
		extract.NewHTMLExtractor(),
		licensingservice.WithLogger(a.logger),
		licensingservice.WithMetrics(licensingmetrics.New(a.registry)),
		licensingservice.WithBreaker(breaker),
	)
	if err != nil {
		return fmt.Errorf("build licence verifier: %w", err)
	}
	a.verifier = verifier

	tokens := jwttoken.NewJWTService(a.cfg.Session.Secret, "presale", a.cfg.Session.TTL)
	a.auth = authservice.New(a.users, a.sessions, tokens,
		authservice.WithLogger(a.logger),
		authservice.WithAuditor(a.auditor),
		authservice.WithVerifier(verifier),
		authservice.WithListingRemover(a.listings),
		authservice.WithDeviceService(device.NewService(true)),
	)
	a.listing = listingservice.New(a.listings,
		listingservice.WithLogger(a.logger),
		listingservice.WithMetrics(listingmetrics.New(a.registry)),
		listingservice.WithAuditor(a.auditor),
	)
	return nil
}

// ensureAuditTopics creates the Kafka audit topics when a sink is configured.
func (a *app) ensureAuditTopics(ctx context.Context) error {
	if a.kafka == nil {
		return nil
	}
	sink := kafkasink.New(a.kafka, a.cfg.Audit.TopicPrefix, a.logger)
	return kafkasink.EnsureTopics(ctx, a.kafka, 1, 1, sink.Topics()...)
}

// seedSuperAdmin ensures the configured superadmin exists. It is a no-op
// without a configured password.
func (a *app) seedSuperAdmin(ctx context.Context) error {
	sa := a.cfg.SuperAdmin
	if sa.Password == "" {
		return errors.New("SUPERADMIN_PASSWORD is not set")
	}
	u, created, err := a.auth.SeedSuperAdmin(ctx, authservice.SeedInput{
		Username: sa.Username,
		Email:    sa.Email,
		Password: sa.Password,
	})
	if err != nil {
		return fmt.Errorf("seed superadmin: %w", err)
	}
	a.logger.InfoContext(ctx, "superadmin ensured",
		"user_id", u.ID.String(),
		"username", u.Username,
		"created", created,
	)
	return nil
}

func (a *app) close() {
	if a.auditor != nil {
		a.auditor.Close()
	}
	if a.kafka != nil {
		a.kafka.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close postgres", "error", err)
		}
	}
}
