// Package service applies listing permissions and visibility rules on top of
// the listing store.
package service

import (
	"context"
	"errors"
	"log/slog"

	"presale/internal/listing/metrics"
	"presale/internal/listing/models"
	"presale/internal/listing/store"
	"presale/internal/listing/visibility"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
	"presale/pkg/platform/audit"
	"presale/pkg/platform/sentinel"
	"presale/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	List(ctx context.Context, filter store.Filter) ([]*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, listingID id.ListingID) error
	IncrementViews(ctx context.Context, listingID id.ListingID) error
}

type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor audit.Emitter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a audit.Emitter) Option {
	return func(s *Service) { s.auditor = a }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListQuery narrows List.
type ListQuery struct {
	// PoolOnly restricts results to the agent lead pool. Requires AGENT or above.
	PoolOnly bool
}

// List returns every listing as the caller may see it, newest first.
// Listings whose data cannot be redacted are left out and logged.
func (s *Service) List(ctx context.Context, q ListQuery) ([]visibility.View, error) {
	role := requestcontext.Role(ctx)
	if q.PoolOnly && !role.AtLeast(id.RoleAgent) {
		return nil, dErrors.New(dErrors.CodeForbidden, "the lead pool is available to verified agents only")
	}

	listings, err := s.store.List(ctx, store.Filter{PoolOnly: q.PoolOnly})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list listings")
	}

	views := make([]visibility.View, 0, len(listings))
	for _, l := range listings {
		view, err := visibility.Redact(l, role)
		if err != nil {
			s.redactionFailed(ctx, l.ID, err)
			continue
		}
		s.observeView(view)
		views = append(views, view)
	}
	return views, nil
}

// Get returns one listing as the caller may see it and counts the view.
func (s *Service) Get(ctx context.Context, listingID id.ListingID) (visibility.View, error) {
	listing, err := s.find(ctx, listingID)
	if err != nil {
		return visibility.View{}, err
	}

	view, err := visibility.Redact(listing, requestcontext.Role(ctx))
	if err != nil {
		s.redactionFailed(ctx, listing.ID, err)
		return visibility.View{}, err
	}

	if err := s.store.IncrementViews(ctx, listingID); err != nil {
		s.logger.WarnContext(ctx, "failed to count listing view",
			"listing_id", listingID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		view.Listing.Views++
	}
	s.observeView(view)
	return view, nil
}

// Create stores a new listing owned by the caller. Only staff may mark a
// listing verified or place it in the lead pool.
func (s *Service) Create(ctx context.Context, fields models.Fields) (*models.Listing, error) {
	caller := requestcontext.UserID(ctx)
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	role := requestcontext.Role(ctx)
	if !role.AtLeast(id.RoleMember) {
		return nil, dErrors.New(dErrors.CodeForbidden, "members only")
	}
	if !role.IsAdmin() {
		fields.IsVerified = false
		fields.LeadPoolTier = models.TierNotInPool
	}

	listing, err := models.NewListing(id.NewListingID(), caller, fields, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, listing); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create listing")
	}
	s.written(ctx, "create", audit.EventListingCreated, listing)
	return listing, nil
}

// Update replaces a listing's fields. Owners may edit their own listings and
// staff may edit any. Owners keep the verified flag and pool tier as they were.
func (s *Service) Update(ctx context.Context, listingID id.ListingID, fields models.Fields) (*models.Listing, error) {
	listing, err := s.find(ctx, listingID)
	if err != nil {
		return nil, err
	}
	role := requestcontext.Role(ctx)
	caller := requestcontext.UserID(ctx)
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if listing.OwnerID != caller && !role.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the owner or an admin can edit this listing")
	}
	if !role.IsAdmin() {
		fields.IsVerified = listing.IsVerified
		fields.LeadPoolTier = listing.LeadPoolTier
	}

	if err := listing.Update(fields, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, listing); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "listing not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update listing")
	}
	s.written(ctx, "update", audit.EventListingUpdated, listing)
	return listing, nil
}

// Delete removes a listing. Staff only.
func (s *Service) Delete(ctx context.Context, listingID id.ListingID) error {
	if !requestcontext.Role(ctx).IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "only admins can delete listings")
	}
	listing, err := s.find(ctx, listingID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, listingID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "listing not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete listing")
	}
	s.written(ctx, "delete", audit.EventListingDeleted, listing)
	return nil
}

func (s *Service) find(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	listing, err := s.store.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "listing not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load listing")
	}
	return listing, nil
}

func (s *Service) redactionFailed(ctx context.Context, listingID id.ListingID, err error) {
	s.logger.ErrorContext(ctx, "listing data failed redaction",
		"listing_id", listingID.String(),
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementRedactionErrors()
	}
}

func (s *Service) observeView(view visibility.View) {
	if s.metrics != nil {
		s.metrics.ObserveView(view.Redacted)
	}
}

func (s *Service) written(ctx context.Context, op string, action audit.AuditEvent, listing *models.Listing) {
	s.logger.InfoContext(ctx, "listing written",
		"op", op,
		"listing_id", listing.ID.String(),
		"user_id", requestcontext.UserID(ctx).String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.ObserveWrite(op)
	}
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    requestcontext.UserID(ctx),
		Subject:   listing.ID.String(),
		Action:    string(action),
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(action),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
