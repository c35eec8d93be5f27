package models

import (
	"strings"

	dErrors "presale/pkg/domain-errors"
)

// Status is the sale lifecycle of an assignment listing.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusPending Status = "PENDING"
	StatusSold    Status = "SOLD"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSold:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of ACTIVE, PENDING, SOLD")
	}
	return s, nil
}

// LeadPoolTier classifies how a listing is offered to agents.
type LeadPoolTier string

const (
	TierNotInPool LeadPoolTier = "NOT_IN_POOL"
	TierOne       LeadPoolTier = "TIER_1"
	TierTwo       LeadPoolTier = "TIER_2"
	TierClaimed   LeadPoolTier = "CLAIMED"
)

func (t LeadPoolTier) IsValid() bool {
	switch t {
	case TierNotInPool, TierOne, TierTwo, TierClaimed:
		return true
	}
	return false
}

// InPool reports whether agents see the listing in the lead pool.
func (t LeadPoolTier) InPool() bool {
	return t.IsValid() && t != TierNotInPool
}

func ParseLeadPoolTier(raw string) (LeadPoolTier, error) {
	t := LeadPoolTier(strings.ToUpper(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "lead pool tier must be one of NOT_IN_POOL, TIER_1, TIER_2, CLAIMED")
	}
	return t, nil
}
