package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func validFields() Fields {
	return Fields{
		Project:           "The Waterfront",
		Neighborhood:      "Coal Harbour",
		Bedrooms:          2,
		Bathrooms:         2,
		Sqft:              880,
		Floor:             23,
		Completion:        "Q4 2027",
		Developer:         "Westbank",
		DeveloperInitials: "W.B.",
		OriginalPrice:     1200000,
		AskingPrice:       1350000,
		DepositPaid:       240000,
		AssignmentFee:     2.5,
		ContractDate:      fixedNow.AddDate(-1, 0, 0),
		Images:            []string{"https://img.example/1.jpg"},
	}
}

type ListingModelSuite struct {
	suite.Suite
}

func TestListingModelSuite(t *testing.T) {
	suite.Run(t, new(ListingModelSuite))
}

func (s *ListingModelSuite) TestNewListing() {
	s.Run("applies defaults", func() {
		owner := id.NewUserID()
		l, err := NewListing(id.NewListingID(), owner, validFields(), fixedNow)
		s.Require().NoError(err)
		s.Equal(owner, l.OwnerID)
		s.Equal(StatusActive, l.Status)
		s.Equal(TierNotInPool, l.LeadPoolTier)
		s.Equal(fixedNow, l.CreatedAt)
		s.Equal(fixedNow, l.UpdatedAt)
	})

	s.Run("rounds the assignment fee to two decimals", func() {
		f := validFields()
		f.AssignmentFee = 3.14159
		l, err := NewListing(id.NewListingID(), id.NewUserID(), f, fixedNow)
		s.Require().NoError(err)
		s.Equal(3.14, l.AssignmentFee)
	})

	s.Run("requires an owner", func() {
		_, err := NewListing(id.NewListingID(), id.UserID{}, validFields(), fixedNow)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ListingModelSuite) TestValidate() {
	cases := []struct {
		name   string
		mutate func(*Fields)
	}{
		{"missing project", func(f *Fields) { f.Project = "" }},
		{"missing developer initials", func(f *Fields) { f.DeveloperInitials = "" }},
		{"negative original price", func(f *Fields) { f.OriginalPrice = -1 }},
		{"negative deposit", func(f *Fields) { f.DepositPaid = -5 }},
		{"zero asking price", func(f *Fields) { f.AskingPrice = 0 }},
		{"fee above 100", func(f *Fields) { f.AssignmentFee = 100.5 }},
		{"negative fee", func(f *Fields) { f.AssignmentFee = -0.01 }},
		{"negative floor", func(f *Fields) { f.Floor = -2 }},
		{"missing contract date", func(f *Fields) { f.ContractDate = time.Time{} }},
		{"contract date too far ahead", func(f *Fields) { f.ContractDate = fixedNow.AddDate(1, 0, 1) }},
		{"unknown status", func(f *Fields) { f.Status = "LISTED" }},
		{"unknown tier", func(f *Fields) { f.LeadPoolTier = "TIER_9" }},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			f := validFields()
			tc.mutate(&f)
			_, err := NewListing(id.NewListingID(), id.NewUserID(), f, fixedNow)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), err.Error())
		})
	}

	s.Run("contract date exactly one year ahead is accepted", func() {
		f := validFields()
		f.ContractDate = fixedNow.Add(MaxContractDateLead)
		_, err := NewListing(id.NewListingID(), id.NewUserID(), f, fixedNow)
		s.NoError(err)
	})
}

func (s *ListingModelSuite) TestUpdateKeepsIdentity() {
	l, err := NewListing(id.NewListingID(), id.NewUserID(), validFields(), fixedNow)
	s.Require().NoError(err)
	originalID, owner := l.ID, l.OwnerID

	f := l.Fields()
	f.AskingPrice = 1400000
	f.Status = StatusPending
	later := fixedNow.Add(time.Hour)
	s.Require().NoError(l.Update(f, later))

	s.Equal(originalID, l.ID)
	s.Equal(owner, l.OwnerID)
	s.Equal(fixedNow, l.CreatedAt)
	s.Equal(later, l.UpdatedAt)
	s.Equal(int64(1400000), l.AskingPrice)
	s.Equal(StatusPending, l.Status)
}

func TestListing_CloneDoesNotShareImages(t *testing.T) {
	l, err := NewListing(id.NewListingID(), id.NewUserID(), validFields(), fixedNow)
	require.NoError(t, err)
	c := l.Clone()
	c.Images[0] = "changed"
	assert.Equal(t, "https://img.example/1.jpg", l.Images[0])
}

func TestParseEnums(t *testing.T) {
	st, err := ParseStatus(" sold ")
	require.NoError(t, err)
	assert.Equal(t, StatusSold, st)

	_, err = ParseStatus("gone")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	tier, err := ParseLeadPoolTier("tier_1")
	require.NoError(t, err)
	assert.True(t, tier.InPool())
	assert.False(t, TierNotInPool.InPool())
	assert.True(t, TierClaimed.InPool())
}
