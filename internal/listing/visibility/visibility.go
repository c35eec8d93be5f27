// Package visibility decides which listing fields a viewer may see.
//
// Viewers at MEMBER or above see every field. Guests get a masked view: the
// project name is replaced by a placeholder, the developer by its initials,
// the asking price by a 100k bucket, and the original price, deposit and floor
// are withheld. Redact is pure; it never mutates the listing it is given.
package visibility

import (
	"fmt"
	"slices"

	"presale/internal/listing/models"
	id "presale/pkg/domain"
	dErrors "presale/pkg/domain-errors"
)

// ProjectHidden replaces the project name in guest views.
const ProjectHidden = "PROJECT HIDDEN"

// PriceBucket is the width of a guest price range in dollars.
const PriceBucket int64 = 100_000

// Field names a listing attribute that can be withheld.
type Field string

const (
	FieldAskingPrice   Field = "askingPrice"
	FieldOriginalPrice Field = "originalPrice"
	FieldDepositPaid   Field = "depositPaid"
	FieldFloor         Field = "floor"
)

// guestHidden lists the fields withheld from guests, in response order.
var guestHidden = []Field{FieldAskingPrice, FieldOriginalPrice, FieldDepositPaid, FieldFloor}

// PriceRange is the half-open bucket [Lower, Upper) shown instead of an exact price.
type PriceRange struct {
	Lower int64
	Upper int64
}

// NewPriceRange buckets a positive price: Lower = floor(price/100k)*100k, Upper = Lower+100k.
func NewPriceRange(price int64) (PriceRange, error) {
	if price <= 0 {
		return PriceRange{}, dErrors.New(dErrors.CodeInvariantViolation, "asking price must be positive to compute a price range")
	}
	lower := (price / PriceBucket) * PriceBucket
	return PriceRange{Lower: lower, Upper: lower + PriceBucket}, nil
}

// Contains reports whether price falls in [Lower, Upper).
func (r PriceRange) Contains(price int64) bool {
	return price >= r.Lower && price < r.Upper
}

// String renders the range in thousands, e.g. "1300k - 1400k".
func (r PriceRange) String() string {
	return fmt.Sprintf("%dk - %dk", r.Lower/1000, r.Upper/1000)
}

// View is a listing as a particular viewer may see it. For unredacted views
// Listing is an exact copy of the input; for guest views the withheld fields
// are zeroed and named in Hidden.
type View struct {
	Listing       models.Listing
	Redacted      bool
	Hidden        []Field
	PriceRange    *PriceRange
	ObscureImages bool
}

// IsHidden reports whether f was withheld from this view.
func (v View) IsHidden(f Field) bool {
	return slices.Contains(v.Hidden, f)
}

// Redact projects listing for a viewer with the given role.
func Redact(listing *models.Listing, role id.Role) (View, error) {
	if listing == nil {
		return View{}, dErrors.New(dErrors.CodeInvariantViolation, "listing is required")
	}
	copied := listing.Clone()
	if role.AtLeast(id.RoleMember) {
		return View{Listing: *copied}, nil
	}

	priceRange, err := NewPriceRange(listing.AskingPrice)
	if err != nil {
		return View{}, err
	}

	copied.Project = ProjectHidden
	copied.Developer = listing.DeveloperInitials
	copied.AskingPrice = 0
	copied.OriginalPrice = 0
	copied.DepositPaid = 0
	copied.Floor = 0

	return View{
		Listing:       *copied,
		Redacted:      true,
		Hidden:        slices.Clone(guestHidden),
		PriceRange:    &priceRange,
		ObscureImages: true,
	}, nil
}
