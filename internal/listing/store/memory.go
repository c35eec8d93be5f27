package store

import (
	"context"
	"slices"
	"sync"

	"presale/internal/listing/models"
	id "presale/pkg/domain"
	"presale/pkg/platform/sentinel"
)

// InMemory is a listing store for development and tests. Listings are copied
// on the way in and out so callers never share state with the store.
type InMemory struct {
	mu       sync.RWMutex
	listings map[id.ListingID]*models.Listing
}

func NewInMemory() *InMemory {
	return &InMemory{listings: make(map[id.ListingID]*models.Listing)}
}

func (s *InMemory) Create(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[listing.ID]; exists {
		return sentinel.ErrConflict
	}
	s.listings[listing.ID] = listing.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, listingID id.ListingID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[listingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return l.Clone(), nil
}

// List returns matching listings, newest first.
func (s *InMemory) List(_ context.Context, filter Filter) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if filter.PoolOnly && !l.LeadPoolTier.InPool() {
			continue
		}
		out = append(out, l.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Listing) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}

func (s *InMemory) Update(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listing.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.listings[listing.ID] = listing.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, listingID id.ListingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listingID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.listings, listingID)
	return nil
}

func (s *InMemory) IncrementViews(_ context.Context, listingID id.ListingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok {
		return sentinel.ErrNotFound
	}
	l.Views++
	return nil
}

// DeleteByOwner removes every listing owned by ownerID and returns how many went.
func (s *InMemory) DeleteByOwner(_ context.Context, ownerID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for listingID, l := range s.listings {
		if l.OwnerID == ownerID {
			delete(s.listings, listingID)
			n++
		}
	}
	return n, nil
}
