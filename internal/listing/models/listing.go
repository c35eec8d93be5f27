package models

import (
	"math"
	"slices"
	"time"

	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
)

// MaxContractDateLead bounds how far in the future a contract date may be.
const MaxContractDateLead = 365 * 24 * time.Hour

const maxTextLength = 200

// Listing is one presale assignment contract offered for sale.
//
// Invariants:
//   - OriginalPrice, DepositPaid are non-negative whole dollars; AskingPrice is positive
//   - AssignmentFee is a percentage in [0,100] with at most two decimals
//   - ContractDate is set and no more than MaxContractDateLead after creation
//   - Status and LeadPoolTier hold defined values
//   - OwnerID and CreatedAt never change after construction
type Listing struct {
	ID                id.ListingID
	OwnerID           id.UserID
	Project           string
	Neighborhood      string
	Bedrooms          int
	Bathrooms         int
	Sqft              int
	Floor             int
	Completion        string
	Developer         string
	DeveloperInitials string
	OriginalPrice     int64
	AskingPrice       int64
	DepositPaid       int64
	AssignmentFee     float64
	ContractDate      time.Time
	Images            []string
	Floorplan         string
	Views             int
	Inquiries         int
	Status            Status
	IsVerified        bool
	LeadPoolTier      LeadPoolTier
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Clone returns a deep copy; the image slice is not shared.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	c.Images = slices.Clone(l.Images)
	return &c
}

// Fields are the owner-editable attributes of a listing.
type Fields struct {
	Project           string
	Neighborhood      string
	Bedrooms          int
	Bathrooms         int
	Sqft              int
	Floor             int
	Completion        string
	Developer         string
	DeveloperInitials string
	OriginalPrice     int64
	AskingPrice       int64
	DepositPaid       int64
	AssignmentFee     float64
	ContractDate      time.Time
	Images            []string
	Floorplan         string
	Status            Status
	IsVerified        bool
	LeadPoolTier      LeadPoolTier
}

// Validate checks the listing invariants relative to now.
func (f Fields) Validate(now time.Time) error {
	required := []struct{ name, value string }{
		{"project", f.Project},
		{"neighborhood", f.Neighborhood},
		{"completion", f.Completion},
		{"developer", f.Developer},
		{"developer initials", f.DeveloperInitials},
	}
	for _, r := range required {
		if r.value == "" {
			return dErrors.New(dErrors.CodeValidation, r.name+" is required")
		}
		if len(r.value) > maxTextLength {
			return dErrors.New(dErrors.CodeValidation, r.name+" is too long")
		}
	}
	if f.Bedrooms < 0 || f.Bathrooms < 0 || f.Sqft < 0 {
		return dErrors.New(dErrors.CodeValidation, "bedrooms, bathrooms and sqft must be non-negative")
	}
	if f.Floor < 0 {
		return dErrors.New(dErrors.CodeValidation, "floor must be non-negative")
	}
	if f.OriginalPrice < 0 || f.DepositPaid < 0 {
		return dErrors.New(dErrors.CodeValidation, "original price and deposit must be non-negative")
	}
	if f.AskingPrice <= 0 {
		return dErrors.New(dErrors.CodeValidation, "asking price must be positive")
	}
	if math.IsNaN(f.AssignmentFee) || f.AssignmentFee < 0 || f.AssignmentFee > 100 {
		return dErrors.New(dErrors.CodeValidation, "assignment fee must be a percentage between 0 and 100")
	}
	if f.ContractDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "contract date is required")
	}
	if f.ContractDate.After(now.Add(MaxContractDateLead)) {
		return dErrors.New(dErrors.CodeValidation, "contract date cannot be more than one year in the future")
	}
	if !f.Status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	if !f.LeadPoolTier.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid lead pool tier")
	}
	return nil
}

// NewListing validates fields and builds a listing owned by ownerID.
func NewListing(listingID id.ListingID, ownerID id.UserID, f Fields, now time.Time) (*Listing, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "listing owner is required")
	}
	f = f.withDefaults()
	if err := f.Validate(now); err != nil {
		return nil, err
	}
	l := &Listing{
		ID:        listingID,
		OwnerID:   ownerID,
		CreatedAt: now,
	}
	l.apply(f, now)
	return l, nil
}

// Update replaces the editable fields after validating them.
func (l *Listing) Update(f Fields, now time.Time) error {
	f = f.withDefaults()
	if err := f.Validate(now); err != nil {
		return err
	}
	l.apply(f, now)
	return nil
}

// Fields returns the listing's editable attributes.
func (l *Listing) Fields() Fields {
	return Fields{
		Project:           l.Project,
		Neighborhood:      l.Neighborhood,
		Bedrooms:          l.Bedrooms,
		Bathrooms:         l.Bathrooms,
		Sqft:              l.Sqft,
		Floor:             l.Floor,
		Completion:        l.Completion,
		Developer:         l.Developer,
		DeveloperInitials: l.DeveloperInitials,
		OriginalPrice:     l.OriginalPrice,
		AskingPrice:       l.AskingPrice,
		DepositPaid:       l.DepositPaid,
		AssignmentFee:     l.AssignmentFee,
		ContractDate:      l.ContractDate,
		Images:            slices.Clone(l.Images),
		Floorplan:         l.Floorplan,
		Status:            l.Status,
		IsVerified:        l.IsVerified,
		LeadPoolTier:      l.LeadPoolTier,
	}
}

func (f Fields) withDefaults() Fields {
	if f.Status == "" {
		f.Status = StatusActive
	}
	if f.LeadPoolTier == "" {
		f.LeadPoolTier = TierNotInPool
	}
	if f.Images == nil {
		f.Images = []string{}
	}
	f.AssignmentFee = math.Round(f.AssignmentFee*100) / 100
	return f
}

func (l *Listing) apply(f Fields, now time.Time) {
	l.Project = f.Project
	l.Neighborhood = f.Neighborhood
	l.Bedrooms = f.Bedrooms
	l.Bathrooms = f.Bathrooms
	l.Sqft = f.Sqft
	l.Floor = f.Floor
	l.Completion = f.Completion
	l.Developer = f.Developer
	l.DeveloperInitials = f.DeveloperInitials
	l.OriginalPrice = f.OriginalPrice
	l.AskingPrice = f.AskingPrice
	l.DepositPaid = f.DepositPaid
	l.AssignmentFee = f.AssignmentFee
	l.ContractDate = f.ContractDate
	l.Images = slices.Clone(f.Images)
	l.Floorplan = f.Floorplan
	l.Status = f.Status
	l.IsVerified = f.IsVerified
	l.LeadPoolTier = f.LeadPoolTier
	l.UpdatedAt = now
}
