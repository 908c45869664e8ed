package services

import (
	"testing"

	"studiopro-backend/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestBuildQuote(t *testing.T) {
	tests := []struct {
		name  string
		input QuoteInput
		want  Quote
	}{
		{
			name: "package with paid addon and capped percentage discount",
			input: QuoteInput{
				PackagePrice:   500000,
				Addons:         []AddonSelection{{UnitPrice: 50000, Quantity: 2}},
				DiscountAmount: 60000,
				PaymentOption:  models.PaymentOptionDeposit,
			},
			want: Quote{
				PackagePrice:    500000,
				AddonTotal:      100000,
				Subtotal:        600000,
				DiscountAmount:  60000,
				TotalAmount:     540000,
				DPAmount:        270000,
				RemainingAmount: 270000,
			},
		},
		{
			name: "included addon contributes nothing",
			input: QuoteInput{
				PackagePrice: 300000,
				Addons: []AddonSelection{
					{UnitPrice: 75000, Quantity: 1, Included: true},
					{UnitPrice: 20000, Quantity: 3},
				},
				PaymentOption: models.PaymentOptionDeposit,
			},
			want: Quote{
				PackagePrice:    300000,
				AddonTotal:      60000,
				Subtotal:        360000,
				TotalAmount:     360000,
				DPAmount:        180000,
				RemainingAmount: 180000,
			},
		},
		{
			name: "package-discounted addon price wins over base price",
			input: QuoteInput{
				PackagePrice:  200000,
				Addons:        []AddonSelection{{UnitPrice: 50000, DiscountedPrice: floatPtr(30000), Quantity: 2}},
				PaymentOption: models.PaymentOptionFull,
			},
			want: Quote{
				PackagePrice:    200000,
				AddonTotal:      60000,
				Subtotal:        260000,
				TotalAmount:     260000,
				DPAmount:        260000,
				RemainingAmount: 0,
			},
		},
		{
			name: "oversized discount clamps total at zero, never a credit",
			input: QuoteInput{
				PackagePrice:   100000,
				DiscountAmount: 150000,
				PaymentOption:  models.PaymentOptionDeposit,
			},
			want: Quote{
				PackagePrice:    100000,
				Subtotal:        100000,
				DiscountAmount:  150000,
				TotalAmount:     0,
				DPAmount:        0,
				RemainingAmount: 0,
			},
		},
		{
			name: "custom deposit percentage floors the deposit",
			input: QuoteInput{
				PackagePrice:  333333,
				PaymentOption: models.PaymentOptionDeposit,
				DPPercentage:  intPtr(30),
			},
			want: Quote{
				PackagePrice:    333333,
				Subtotal:        333333,
				TotalAmount:     333333,
				DPAmount:        99999, // floor(333333 * 0.30)
				RemainingAmount: 233334,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQuote(tt.input)
			if got != tt.want {
				t.Errorf("BuildQuote() = %+v, want %+v", got, tt.want)
			}

			// Money invariants hold for every quote.
			if got.TotalAmount < 0 {
				t.Errorf("TotalAmount %v is negative", got.TotalAmount)
			}
			if got.RemainingAmount < 0 {
				t.Errorf("RemainingAmount %v is negative", got.RemainingAmount)
			}
			expected := got.PackagePrice + got.AddonTotal - got.DiscountAmount + got.TaxAmount
			if expected < 0 {
				expected = 0
			}
			if got.TotalAmount != expected {
				t.Errorf("TotalAmount %v breaks the breakdown invariant, want %v", got.TotalAmount, expected)
			}
		})
	}
}

func TestValidateDeposit(t *testing.T) {
	tests := []struct {
		name        string
		requested   float64
		total       float64
		pct         *int
		option      string
		wantAllowed bool
	}{
		{"meets default 50 percent minimum", 270000, 540000, nil, models.PaymentOptionDeposit, true},
		{"below default minimum rejected", 269999, 540000, nil, models.PaymentOptionDeposit, false},
		{"full payment always accepted", 1, 540000, nil, models.PaymentOptionFull, true},
		{"meets custom 30 percent minimum", 99999, 333333, intPtr(30), models.PaymentOptionDeposit, true},
		{"below custom minimum rejected", 99998, 333333, intPtr(30), models.PaymentOptionDeposit, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := ValidateDeposit(tt.requested, tt.total, tt.pct, tt.option)
			if dec.Allowed != tt.wantAllowed {
				t.Errorf("ValidateDeposit() allowed = %v, want %v (%s)", dec.Allowed, tt.wantAllowed, dec.Reason)
			}
		})
	}
}

func TestRecomputeReservation(t *testing.T) {
	r := &models.Reservation{
		PackagePrice:   500000,
		DiscountAmount: 60000,
		PaymentOption:  models.PaymentOptionDeposit,
		Addons: []models.ReservationAddon{
			{TotalPrice: 100000},
			{TotalPrice: 999999, Included: true}, // bundled free, must not count
		},
	}

	RecomputeReservation(r, nil)

	if r.AddonTotal != 100000 {
		t.Errorf("AddonTotal = %v, want 100000", r.AddonTotal)
	}
	if r.Subtotal != 600000 {
		t.Errorf("Subtotal = %v, want 600000", r.Subtotal)
	}
	if r.TotalAmount != 540000 {
		t.Errorf("TotalAmount = %v, want 540000", r.TotalAmount)
	}
	if r.DPAmount != 270000 {
		t.Errorf("DPAmount = %v, want 270000", r.DPAmount)
	}
	if r.RemainingAmount != 270000 {
		t.Errorf("RemainingAmount = %v, want 270000", r.RemainingAmount)
	}

	// Removing the addon must shrink the deposit with the total: the
	// percentage is invariant, the amount is not.
	r.Addons = r.Addons[1:]
	RecomputeReservation(r, nil)
	if r.TotalAmount != 440000 {
		t.Errorf("TotalAmount after addon removal = %v, want 440000", r.TotalAmount)
	}
	if r.DPAmount != 220000 {
		t.Errorf("DPAmount after addon removal = %v, want 220000", r.DPAmount)
	}
}
