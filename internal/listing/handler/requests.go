package handler

import (
	"strings"
	"time"

	"presale/internal/listing/models"
	dErrors "presale/pkg/domain-errors"
)

// dateLayout is the wire format of contract dates. Full RFC 3339 timestamps are also accepted.
const dateLayout = time.DateOnly

// ListingRequest is the body of create and update calls.
type ListingRequest struct {
	Project           string   `json:"project"`
	Neighborhood      string   `json:"neighborhood"`
	Bedrooms          int      `json:"bedrooms"`
	Bathrooms         int      `json:"bathrooms"`
	Sqft              int      `json:"sqft"`
	Floor             int      `json:"floor"`
	Completion        string   `json:"completion"`
	Developer         string   `json:"developer"`
	DeveloperInitials string   `json:"developerInitials"`
	OriginalPrice     int64    `json:"originalPrice"`
	AskingPrice       int64    `json:"askingPrice"`
	DepositPaid       int64    `json:"depositPaid"`
	AssignmentFee     float64  `json:"assignmentFee"`
	ContractDate      string   `json:"contractDate"`
	Images            []string `json:"images"`
	Floorplan         string   `json:"floorplan"`
	Status            string   `json:"status"`
	IsVerified        bool     `json:"isVerified"`
	LeadPoolTier      string   `json:"leadPoolTier"`

	fields models.Fields
}

func (r *ListingRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	contractDate, err := parseContractDate(r.ContractDate)
	if err != nil {
		return err
	}

	var status models.Status
	if strings.TrimSpace(r.Status) != "" {
		if status, err = models.ParseStatus(r.Status); err != nil {
			return err
		}
	}
	var tier models.LeadPoolTier
	if strings.TrimSpace(r.LeadPoolTier) != "" {
		if tier, err = models.ParseLeadPoolTier(r.LeadPoolTier); err != nil {
			return err
		}
	}

	images := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}

	r.fields = models.Fields{
		Project:           strings.TrimSpace(r.Project),
		Neighborhood:      strings.TrimSpace(r.Neighborhood),
		Bedrooms:          r.Bedrooms,
		Bathrooms:         r.Bathrooms,
		Sqft:              r.Sqft,
		Floor:             r.Floor,
		Completion:        strings.TrimSpace(r.Completion),
		Developer:         strings.TrimSpace(r.Developer),
		DeveloperInitials: strings.TrimSpace(r.DeveloperInitials),
		OriginalPrice:     r.OriginalPrice,
		AskingPrice:       r.AskingPrice,
		DepositPaid:       r.DepositPaid,
		AssignmentFee:     r.AssignmentFee,
		ContractDate:      contractDate,
		Images:            images,
		Floorplan:         strings.TrimSpace(r.Floorplan),
		Status:            status,
		IsVerified:        r.IsVerified,
		LeadPoolTier:      tier,
	}
	return nil
}

func parseContractDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "contractDate is required")
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "contractDate must be a date like 2026-01-31")
	}
	return t.UTC(), nil
}
