// services/discount.go
package services

import (
	"math"
	"time"

	"studiopro-backend/models"

	"github.com/google/uuid"
)

// DiscountResult is the outcome of validating a discount against a
// candidate order. Invalid results carry a user-facing reason.
type DiscountResult struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discountAmount"`
	Reason         string  `json:"reason"`
}

// DiscountBase splits the pre-discount order into the portions a scoped
// discount may apply to.
type DiscountBase struct {
	PackagePrice float64
	AddonTotal   float64
}

func (b DiscountBase) Subtotal() float64 { return b.PackagePrice + b.AddonTotal }

// scoped returns the portion of the order the discount's scope covers.
func (b DiscountBase) scoped(scope string) float64 {
	switch scope {
	case models.DiscountScopePackages:
		return b.PackagePrice
	case models.DiscountScopeAddons:
		return b.AddonTotal
	}
	return b.Subtotal()
}

// ComputeDiscountAmount applies the discount's type to the portion of
// the order its scope covers. Percentage discounts respect the
// configured cap; fixed discounts never exceed the scoped portion.
func ComputeDiscountAmount(d *models.Discount, base DiscountBase) float64 {
	scoped := base.scoped(d.Scope)
	switch d.Type {
	case models.DiscountPercentage:
		amount := math.Floor(scoped * d.Value / 100)
		if d.MaximumDiscount != nil && amount > *d.MaximumDiscount {
			amount = *d.MaximumDiscount
		}
		return amount
	case models.DiscountFixedAmount:
		return math.Min(d.Value, scoped)
	}
	return 0
}

// ValidateDiscount runs the eligibility checks in order, short-circuiting
// on the first failure: ownership/active, validity window, usage cap,
// minimum subtotal. On success the computed discount amount is returned.
// The minimum applies to the whole order; scope only narrows what the
// discount is computed from.
func ValidateDiscount(d *models.Discount, base DiscountBase, studioID uuid.UUID, now time.Time) DiscountResult {
	if d == nil {
		return DiscountResult{Reason: "discount not found"}
	}
	if d.StudioID != studioID || !d.IsActive {
		return DiscountResult{Reason: "discount is not available at this studio"}
	}
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return DiscountResult{Reason: "discount is not active yet"}
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return DiscountResult{Reason: "discount has expired"}
	}
	if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
		return DiscountResult{Reason: "discount usage limit reached"}
	}
	if base.Subtotal() < d.MinimumAmount {
		return DiscountResult{Reason: "order does not meet the discount minimum amount"}
	}

	return DiscountResult{
		Valid:          true,
		DiscountAmount: ComputeDiscountAmount(d, base),
		Reason:         "discount applied",
	}
}

// RevalidateDiscount re-runs validation after the order changed (an
// addon was added or removed). A discount that no longer qualifies is
// dropped, never silently kept; the caller surfaces Dropped to the user.
type RevalidationResult struct {
	Dropped        bool    `json:"dropped"`
	DiscountAmount float64 `json:"discountAmount"`
	Reason         string  `json:"reason"`
}

func RevalidateDiscount(d *models.Discount, base DiscountBase, studioID uuid.UUID, now time.Time) RevalidationResult {
	res := ValidateDiscount(d, base, studioID, now)
	if !res.Valid {
		return RevalidationResult{Dropped: true, Reason: res.Reason}
	}
	return RevalidationResult{DiscountAmount: res.DiscountAmount, Reason: res.Reason}
}
