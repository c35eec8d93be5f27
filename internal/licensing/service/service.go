// Package service decides whether a claimed realtor licence is genuine.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"presale/internal/licensing/extract"
	"presale/internal/licensing/match"
	"presale/internal/licensing/metrics"
	"presale/internal/licensing/models"
	"presale/internal/licensing/providers"
	"presale/pkg/platform/circuit"
	"presale/pkg/requestcontext"
)

const tracerName = "presale/internal/licensing"

// Service verifies licence claims against an external registry. Every call
// performs at most one registry lookup and never returns an error: all
// failures are folded into a models.Result.
type Service struct {
	fetcher   providers.Fetcher
	extractor extract.Extractor
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	now       func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBreaker guards the registry with a circuit breaker. While it is open,
// lookups are skipped and reported as service unavailable.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(fetcher providers.Fetcher, extractor extract.Extractor, opts ...Option) (*Service, error) {
	if fetcher == nil {
		return nil, errors.New("registry fetcher is required")
	}
	if extractor == nil {
		extractor = extract.NewHTMLExtractor()
	}
	s := &Service{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Verify looks up licenseNumber and checks that it is active and registered
// to claimedName. On success the registry's canonical name is returned, never
// the claimed one.
func (s *Service) Verify(ctx context.Context, licenseNumber, claimedName string) (result models.Result) {
	ctx, span := s.tracer.Start(ctx, "licensing.Verify",
		trace.WithAttributes(
			attribute.String("licensing.provider", s.fetcher.ID()),
			attribute.String("licensing.license_number", licenseNumber),
		),
	)
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "licence verification panicked",
				"panic", fmt.Sprint(r),
				"request_id", requestcontext.RequestID(ctx),
			)
			span.RecordError(fmt.Errorf("panic: %v", r))
			result = models.Invalid(models.ReasonServiceUnavailable)
		}
		s.finish(span, result)
	}()

	if s.breaker != nil && !s.breaker.Allow() {
		if s.metrics != nil {
			s.metrics.IncrementShortCircuited()
		}
		s.logger.WarnContext(ctx, "registry circuit open, skipping lookup",
			"provider", s.fetcher.ID(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.Invalid(models.ReasonServiceUnavailable)
	}

	doc, err := s.fetch(ctx, licenseNumber)
	if err != nil {
		return s.fetchFailure(ctx, span, err)
	}

	rec, err := s.extractor.Extract(doc)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "registry profile parse defect",
			"provider", s.fetcher.ID(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.Invalid(models.ReasonUnparseable)
	}
	span.SetAttributes(attribute.String("licensing.license_status", rec.LicenseStatus))

	if !extract.IsLicensed(rec.LicenseStatus) {
		return models.Invalid(models.ReasonInactive)
	}
	if !match.Any(claimedName, rec.Name, rec.KnownAs) {
		return models.Invalid(models.ReasonNameMismatch)
	}

	return models.Valid(models.Details{
		Name:          rec.Name,
		LicenseStatus: rec.LicenseStatus,
		Brokerage:     rec.Brokerage,
	})
}

func (s *Service) fetch(ctx context.Context, licenseNumber string) ([]byte, error) {
	start := s.now()
	doc, err := s.fetcher.FetchProfile(ctx, licenseNumber)
	if s.metrics != nil {
		s.metrics.ObserveRegistryLatency(s.now().Sub(start).Seconds())
	}

	switch {
	case err == nil:
		s.recordSuccess(ctx)
	case abandoned(ctx, err):
		if s.breaker != nil {
			s.breaker.ReleaseTrial()
		}
	case providers.CountsAsFailure(err):
		s.recordFailure(ctx)
	default:
		s.recordSuccess(ctx)
	}
	return doc, err
}

// abandoned reports whether the caller cancelled the lookup. Such calls are
// neither a registry failure nor a success.
func abandoned(ctx context.Context, err error) bool {
	return providers.GetCategory(err) == providers.ErrorCanceled ||
		(errors.Is(ctx.Err(), context.Canceled) && !errors.Is(err, context.DeadlineExceeded))
}

func (s *Service) fetchFailure(ctx context.Context, span trace.Span, err error) models.Result {
	span.RecordError(err)
	if abandoned(ctx, err) {
		s.logger.InfoContext(ctx, "registry lookup abandoned by caller",
			"provider", s.fetcher.ID(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.Invalid(models.ReasonServiceUnavailable)
	}
	switch providers.GetCategory(err) {
	case providers.ErrorNotFound:
		return models.Invalid(models.ReasonNotFound)
	case providers.ErrorBadData:
		s.logger.WarnContext(ctx, "registry profile parse defect",
			"provider", s.fetcher.ID(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.Invalid(models.ReasonUnparseable)
	default:
		s.logger.ErrorContext(ctx, "registry lookup failed",
			"provider", s.fetcher.ID(),
			"category", string(providers.GetCategory(err)),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.Invalid(models.ReasonServiceUnavailable)
	}
}

func (s *Service) recordFailure(ctx context.Context) {
	if s.breaker == nil {
		return
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "registry circuit opened", "breaker", s.breaker.Name())
		if s.metrics != nil {
			s.metrics.SetBreakerOpen(true)
		}
	}
}

func (s *Service) recordSuccess(ctx context.Context) {
	if s.breaker == nil {
		return
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "registry circuit closed", "breaker", s.breaker.Name())
		if s.metrics != nil {
			s.metrics.SetBreakerOpen(false)
		}
	}
}

func (s *Service) finish(span trace.Span, result models.Result) {
	outcome := string(result.Reason)
	if s.metrics != nil {
		s.metrics.ObserveOutcome(outcome)
	}
	span.SetAttributes(attribute.Bool("licensing.valid", result.IsValid))
	if !result.IsValid {
		span.SetAttributes(attribute.String("licensing.reason", outcome))
		if result.Reason.Transient() {
			span.SetStatus(codes.Error, outcome)
		}
	}
	span.End()
}
