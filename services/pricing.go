// services/pricing.go
package services

import (
	"math"

	"studiopro-backend/models"
)

// DefaultDPPercentage applies when a package has no deposit percentage
// configured.
const DefaultDPPercentage = 50

// AddonSelection is one addon line as chosen by the customer.
type AddonSelection struct {
	UnitPrice       float64
	DiscountedPrice *float64 // package-specific price override, nil = base price
	Quantity        int
	Included        bool
}

// Quote is the full financial breakdown for a reservation.
type Quote struct {
	PackagePrice    float64
	AddonTotal      float64
	Subtotal        float64
	TaxAmount       float64
	DiscountAmount  float64
	TotalAmount     float64
	DPAmount        float64
	RemainingAmount float64
}

// QuoteInput carries everything BuildQuote needs. DiscountAmount must
// already be validated and computed (see ValidateDiscount).
type QuoteInput struct {
	PackagePrice   float64
	Addons         []AddonSelection
	DiscountAmount float64
	TaxAmount      float64
	PaymentOption  string // models.PaymentOptionDeposit or models.PaymentOptionFull
	DPPercentage   *int   // package-configured, nil = DefaultDPPercentage
}

// EffectiveUnitPrice returns the package-discounted price when one is
// configured, else the addon's base price. Included addons are free.
func EffectiveUnitPrice(sel AddonSelection) float64 {
	if sel.Included {
		return 0
	}
	if sel.DiscountedPrice != nil {
		return *sel.DiscountedPrice
	}
	return sel.UnitPrice
}

// AddonContribution is the line total an addon adds to the subtotal.
func AddonContribution(sel AddonSelection) float64 {
	return float64(sel.Quantity) * EffectiveUnitPrice(sel)
}

// MinimumDeposit is the smallest deposit acceptable for a total.
func MinimumDeposit(totalAmount float64, dpPercentage *int) float64 {
	pct := DefaultDPPercentage
	if dpPercentage != nil {
		pct = *dpPercentage
	}
	return math.Floor(totalAmount * float64(pct) / 100)
}

// BuildQuote turns a package, addon selections and a pre-computed
// discount amount into the full breakdown. The total clamps at zero; an
// over-large discount never produces a credit.
func BuildQuote(in QuoteInput) Quote {
	var addonTotal float64
	for _, sel := range in.Addons {
		addonTotal += AddonContribution(sel)
	}

	subtotal := in.PackagePrice + addonTotal
	total := subtotal + in.TaxAmount - in.DiscountAmount
	if total < 0 {
		total = 0
	}

	var dp float64
	if in.PaymentOption == models.PaymentOptionFull {
		dp = total
	} else {
		dp = MinimumDeposit(total, in.DPPercentage)
	}

	return Quote{
		PackagePrice:    in.PackagePrice,
		AddonTotal:      addonTotal,
		Subtotal:        subtotal,
		TaxAmount:       in.TaxAmount,
		DiscountAmount:  in.DiscountAmount,
		TotalAmount:     total,
		DPAmount:        dp,
		RemainingAmount: total - dp,
	}
}

// ValidateDeposit checks a caller-requested deposit against the package
// minimum. Full-payment bookings are always fine.
func ValidateDeposit(requestedDP, totalAmount float64, dpPercentage *int, paymentOption string) Decision {
	if paymentOption == models.PaymentOptionFull {
		return Decision{Allowed: true, Reason: "full payment"}
	}
	min := MinimumDeposit(totalAmount, dpPercentage)
	if requestedDP < min {
		return Decision{Allowed: false, Reason: "deposit below package minimum"}
	}
	return Decision{Allowed: true, Reason: "deposit meets package minimum"}
}

// RecomputeReservation re-derives every money field from the
// reservation's package price, addon rows, discount and tax. The deposit
// percentage is invariant; the deposit amount is not, so it is rebuilt
// whenever the total moves (addon added or removed, discount applied or
// dropped).
func RecomputeReservation(r *models.Reservation, dpPercentage *int) {
	var addonTotal float64
	for _, a := range r.Addons {
		if a.Included {
			continue
		}
		addonTotal += a.TotalPrice
	}

	r.AddonTotal = addonTotal
	r.Subtotal = r.PackagePrice + addonTotal

	total := r.Subtotal + r.TaxAmount - r.DiscountAmount
	if total < 0 {
		total = 0
	}
	r.TotalAmount = total

	if r.PaymentOption == models.PaymentOptionFull {
		r.DPAmount = total
	} else {
		r.DPAmount = MinimumDeposit(total, dpPercentage)
	}
	r.RemainingAmount = r.TotalAmount - r.DPAmount
}
