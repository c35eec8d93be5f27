package handler

import (
	"time"

	"presale/internal/listing/models"
	"presale/internal/listing/visibility"
)

// HiddenValue stands in for fields a guest may not see.
const HiddenValue = "hidden"

// ListingResponse is a listing as sent to one viewer. The withholdable fields
// hold either a number or HiddenValue.
type ListingResponse struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"ownerId"`
	Project           string    `json:"project"`
	Neighborhood      string    `json:"neighborhood"`
	Bedrooms          int       `json:"bedrooms"`
	Bathrooms         int       `json:"bathrooms"`
	Sqft              int       `json:"sqft"`
	Floor             any       `json:"floor"`
	Completion        string    `json:"completion"`
	Developer         string    `json:"developer"`
	DeveloperInitials string    `json:"developerInitials"`
	OriginalPrice     any       `json:"originalPrice"`
	AskingPrice       any       `json:"askingPrice"`
	DepositPaid       any       `json:"depositPaid"`
	PriceRange        string    `json:"priceRange,omitempty"`
	AssignmentFee     float64   `json:"assignmentFee"`
	ContractDate      string    `json:"contractDate"`
	Images            []string  `json:"images"`
	ObscureImages     bool      `json:"obscureImages"`
	Floorplan         string    `json:"floorplan,omitempty"`
	Views             int       `json:"views"`
	Inquiries         int       `json:"inquiries"`
	Status            string    `json:"status"`
	IsVerified        bool      `json:"isVerified"`
	LeadPoolTier      string    `json:"leadPoolTier"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func toViewResponse(v visibility.View) ListingResponse {
	l := v.Listing
	resp := ListingResponse{
		ID:                l.ID.String(),
		OwnerID:           l.OwnerID.String(),
		Project:           l.Project,
		Neighborhood:      l.Neighborhood,
		Bedrooms:          l.Bedrooms,
		Bathrooms:         l.Bathrooms,
		Sqft:              l.Sqft,
		Floor:             withheld(v, visibility.FieldFloor, l.Floor),
		Completion:        l.Completion,
		Developer:         l.Developer,
		DeveloperInitials: l.DeveloperInitials,
		OriginalPrice:     withheld(v, visibility.FieldOriginalPrice, l.OriginalPrice),
		AskingPrice:       withheld(v, visibility.FieldAskingPrice, l.AskingPrice),
		DepositPaid:       withheld(v, visibility.FieldDepositPaid, l.DepositPaid),
		AssignmentFee:     l.AssignmentFee,
		ContractDate:      l.ContractDate.Format(dateLayout),
		Images:            l.Images,
		ObscureImages:     v.ObscureImages,
		Floorplan:         l.Floorplan,
		Views:             l.Views,
		Inquiries:         l.Inquiries,
		Status:            string(l.Status),
		IsVerified:        l.IsVerified,
		LeadPoolTier:      string(l.LeadPoolTier),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
	if v.PriceRange != nil {
		resp.PriceRange = v.PriceRange.String()
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	return resp
}

func toViewResponses(views []visibility.View) []ListingResponse {
	out := make([]ListingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toViewResponse(v))
	}
	return out
}

// toListingResponse renders a listing for its author, who always sees every field.
func toListingResponse(l *models.Listing) ListingResponse {
	return toViewResponse(visibility.View{Listing: *l})
}

func withheld[T int | int64](v visibility.View, f visibility.Field, value T) any {
	if v.IsHidden(f) {
		return HiddenValue
	}
	return value
}
