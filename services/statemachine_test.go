package services

import (
	"testing"
	"time"

	"studiopro-backend/models"

	"github.com/google/uuid"
)

func TestDecideCreate(t *testing.T) {
	discountID := uuid.New()

	tests := []struct {
		name        string
		total       float64
		amountPaid  float64
		discountID  *uuid.UUID
		wantPayment models.PaymentState
		wantUsage   int
	}{
		{"self-service booking starts unpaid", 540000, 0, nil, models.PayPending, 0},
		{"deposit recorded at creation", 540000, 270000, nil, models.PayPartial, 0},
		{"full payment at creation", 540000, 540000, nil, models.PayPaid, 0},
		{"discounted booking claims one use", 540000, 0, &discountID, models.PayPending, 1},
		{"free booking never counts as paid", 0, 0, nil, models.PayPending, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.Reservation{TotalAmount: tt.total, DiscountID: tt.discountID}
			tr := DecideCreate(r, tt.amountPaid)
			if !tr.Allowed {
				t.Fatalf("DecideCreate() denied: %s", tr.Reason)
			}
			if tr.Effects.NewStatus != models.StatusPending {
				t.Errorf("NewStatus = %s, want pending", tr.Effects.NewStatus)
			}
			if tr.Effects.NewPaymentStatus != tt.wantPayment {
				t.Errorf("NewPaymentStatus = %s, want %s", tr.Effects.NewPaymentStatus, tt.wantPayment)
			}
			if tr.Effects.DiscountUsageDelta != tt.wantUsage {
				t.Errorf("DiscountUsageDelta = %d, want %d", tr.Effects.DiscountUsageDelta, tt.wantUsage)
			}
		})
	}
}

func TestDecideConfirm(t *testing.T) {
	tests := []struct {
		name        string
		status      models.ReservationStatus
		payment     models.PaymentState
		wantAllowed bool
	}{
		{"pending with deposit", models.StatusPending, models.PayPartial, true},
		{"pending fully paid", models.StatusPending, models.PayPaid, true},
		{"pending unpaid", models.StatusPending, models.PayPending, false},
		{"already confirmed", models.StatusConfirmed, models.PayPartial, false},
		{"cancelled", models.StatusCancelled, models.PayPartial, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.Reservation{Status: tt.status, PaymentStatus: tt.payment}
			tr := DecideConfirm(r)
			if tr.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (%s)", tr.Allowed, tt.wantAllowed, tr.Reason)
			}
			if tr.Allowed && !tr.Effects.SetConfirmedAt {
				t.Error("confirm must stamp confirmed_at")
			}
		})
	}
}

func TestDecideStart(t *testing.T) {
	tests := []struct {
		name        string
		status      models.ReservationStatus
		payment     models.PaymentState
		wantAllowed bool
	}{
		{"confirmed and fully paid", models.StatusConfirmed, models.PayPaid, true},
		{"confirmed but only deposit", models.StatusConfirmed, models.PayPartial, false},
		{"pending cannot start", models.StatusPending, models.PayPaid, false},
		{"already running", models.StatusInProgress, models.PayPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.Reservation{Status: tt.status, PaymentStatus: tt.payment}
			tr := DecideStart(r)
			if tr.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (%s)", tr.Allowed, tt.wantAllowed, tr.Reason)
			}
		})
	}
}

func TestDecideCompleteAndNoShow(t *testing.T) {
	if tr := DecideComplete(&models.Reservation{Status: models.StatusInProgress}); !tr.Allowed {
		t.Errorf("completing an in-progress session denied: %s", tr.Reason)
	} else if !tr.Effects.SetCompletedAt {
		t.Error("complete must stamp completed_at")
	}
	if tr := DecideComplete(&models.Reservation{Status: models.StatusConfirmed}); tr.Allowed {
		t.Error("completing a session that never started must be denied")
	}
	if tr := DecideComplete(&models.Reservation{Status: models.StatusCompleted}); tr.Allowed {
		t.Error("completed is terminal")
	}

	if tr := DecideNoShow(&models.Reservation{Status: models.StatusConfirmed}); !tr.Allowed {
		t.Errorf("no-show on a confirmed reservation denied: %s", tr.Reason)
	}
	if tr := DecideNoShow(&models.Reservation{Status: models.StatusPending}); tr.Allowed {
		t.Error("no-show only applies to confirmed reservations")
	}
}

func TestDecideCancel(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	far := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	discountID := uuid.New()

	t.Run("pending cancellation releases money and discount", func(t *testing.T) {
		r := &models.Reservation{
			Status:        models.StatusPending,
			PaymentStatus: models.PayPartial,
			DiscountID:    &discountID,
			Date:          far,
		}
		tr := DecideCancel(r, now)
		if !tr.Allowed {
			t.Fatalf("denied: %s", tr.Reason)
		}
		if tr.Effects.NewStatus != models.StatusCancelled || !tr.Effects.SetCancelledAt {
			t.Errorf("effects = %+v, want cancelled with cancelled_at", tr.Effects)
		}
		if tr.Effects.CascadePaymentsTo != models.PayCancelled {
			t.Errorf("CascadePaymentsTo = %q, want %q", tr.Effects.CascadePaymentsTo, models.PayCancelled)
		}
		if tr.Effects.NewPaymentStatus != models.PayCancelled {
			t.Errorf("NewPaymentStatus = %s, want cancelled", tr.Effects.NewPaymentStatus)
		}
		if tr.Effects.DiscountUsageDelta != -1 {
			t.Errorf("DiscountUsageDelta = %d, want -1", tr.Effects.DiscountUsageDelta)
		}
	})

	t.Run("confirmed cancellation keeps payments and discount use", func(t *testing.T) {
		r := &models.Reservation{
			Status:        models.StatusConfirmed,
			PaymentStatus: models.PayPartial,
			DiscountID:    &discountID,
			Date:          far,
		}
		tr := DecideCancel(r, now)
		if !tr.Allowed {
			t.Fatalf("denied: %s", tr.Reason)
		}
		if tr.Effects.CascadePaymentsTo != "" {
			t.Errorf("confirmed cancel must not cascade payments, got %q", tr.Effects.CascadePaymentsTo)
		}
		if tr.Effects.NewPaymentStatus != models.PayPartial {
			t.Errorf("NewPaymentStatus = %s, the forfeited deposit stays recorded", tr.Effects.NewPaymentStatus)
		}
		if tr.Effects.DiscountUsageDelta != 0 {
			t.Errorf("DiscountUsageDelta = %d, want 0", tr.Effects.DiscountUsageDelta)
		}
	})

	t.Run("terminal states cannot cancel", func(t *testing.T) {
		for _, status := range []models.ReservationStatus{
			models.StatusInProgress, models.StatusCompleted, models.StatusCancelled, models.StatusNoShow,
		} {
			r := &models.Reservation{Status: status, Date: far}
			if tr := DecideCancel(r, now); tr.Allowed {
				t.Errorf("cancelling a %s reservation must be denied", status)
			}
		}
	})
}

func TestDecidePaymentEvent(t *testing.T) {
	tests := []struct {
		name           string
		status         models.ReservationStatus
		payment        models.PaymentState
		target         models.PaymentState
		fullSettlement bool
		wantPayment    models.PaymentState
		wantStatus     models.ReservationStatus
		wantConfirmed  bool
	}{
		{
			name:   "deposit on a pending booking confirms it",
			status: models.StatusPending, payment: models.PayPending,
			target: models.PayPaid, fullSettlement: false,
			wantPayment: models.PayPartial, wantStatus: models.StatusConfirmed, wantConfirmed: true,
		},
		{
			name:   "full settlement on a pending booking",
			status: models.StatusPending, payment: models.PayPending,
			target: models.PayPaid, fullSettlement: true,
			wantPayment: models.PayPaid, wantStatus: models.StatusConfirmed, wantConfirmed: true,
		},
		{
			name:   "settling the balance of a confirmed booking",
			status: models.StatusConfirmed, payment: models.PayPartial,
			target: models.PayPaid, fullSettlement: true,
			wantPayment: models.PayPaid, wantStatus: models.StatusConfirmed,
		},
		{
			name:   "redelivered deposit event is a no-op",
			status: models.StatusConfirmed, payment: models.PayPartial,
			target: models.PayPartial, fullSettlement: false,
			wantPayment: models.PayPartial, wantStatus: models.StatusConfirmed,
		},
		{
			name:   "late deposit event never regresses paid",
			status: models.StatusConfirmed, payment: models.PayPaid,
			target: models.PayPaid, fullSettlement: false,
			wantPayment: models.PayPaid, wantStatus: models.StatusConfirmed,
		},
		{
			name:   "failure event does not touch the booking status",
			status: models.StatusPending, payment: models.PayPending,
			target: models.PayFailed, fullSettlement: false,
			wantPayment: models.PayFailed, wantStatus: models.StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.Reservation{Status: tt.status, PaymentStatus: tt.payment}
			tr := DecidePaymentEvent(r, tt.target, tt.fullSettlement)
			if !tr.Allowed {
				t.Fatalf("denied: %s", tr.Reason)
			}
			if tr.Effects.NewPaymentStatus != tt.wantPayment {
				t.Errorf("NewPaymentStatus = %s, want %s", tr.Effects.NewPaymentStatus, tt.wantPayment)
			}
			if tr.Effects.NewStatus != tt.wantStatus {
				t.Errorf("NewStatus = %s, want %s", tr.Effects.NewStatus, tt.wantStatus)
			}
			if tr.Effects.SetConfirmedAt != tt.wantConfirmed {
				t.Errorf("SetConfirmedAt = %v, want %v", tr.Effects.SetConfirmedAt, tt.wantConfirmed)
			}
		})
	}

	t.Run("cancelled reservation rejects payment events", func(t *testing.T) {
		r := &models.Reservation{Status: models.StatusCancelled, PaymentStatus: models.PayCancelled}
		if tr := DecidePaymentEvent(r, models.PayPaid, true); tr.Allowed {
			t.Error("money must not land on a cancelled reservation")
		}
	})

	t.Run("unsupported target state", func(t *testing.T) {
		r := &models.Reservation{Status: models.StatusPending, PaymentStatus: models.PayPending}
		if tr := DecidePaymentEvent(r, models.PayRefunded, false); tr.Allowed {
			t.Error("refunds are not driven by payment events")
		}
	})

	t.Run("idempotence under redelivery", func(t *testing.T) {
		// Applying the same event twice leaves the reservation exactly
		// where the first application put it.
		r := &models.Reservation{Status: models.StatusPending, PaymentStatus: models.PayPending}
		first := DecidePaymentEvent(r, models.PayPaid, true)
		r.Status = first.Effects.NewStatus
		r.PaymentStatus = first.Effects.NewPaymentStatus
		confirmedAt := first.Effects.SetConfirmedAt

		second := DecidePaymentEvent(r, models.PayPaid, true)
		if second.Effects.NewStatus != r.Status || second.Effects.NewPaymentStatus != r.PaymentStatus {
			t.Errorf("redelivery changed state: %+v", second.Effects)
		}
		if second.Effects.SetConfirmedAt {
			t.Error("redelivery must not restamp confirmed_at")
		}
		if !confirmedAt {
			t.Error("first delivery should have stamped confirmed_at")
		}
	})
}

func TestCanDelete(t *testing.T) {
	paid := []models.Payment{{Status: string(models.PayPaid)}}
	cancelledRows := []models.Payment{{Status: string(models.PayCancelled)}}

	tests := []struct {
		name        string
		status      models.ReservationStatus
		payments    []models.Payment
		wantAllowed bool
	}{
		{"pending with no payments", models.StatusPending, nil, true},
		{"pending with only cancelled payment rows", models.StatusPending, cancelledRows, true},
		{"pending with a collected payment", models.StatusPending, paid, false},
		{"cancelled with a collected payment", models.StatusCancelled, paid, false},
		{"in progress", models.StatusInProgress, nil, false},
		{"completed", models.StatusCompleted, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.Reservation{Status: tt.status}
			dec := CanDelete(r, tt.payments)
			if dec.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (%s)", dec.Allowed, tt.wantAllowed, dec.Reason)
			}
		})
	}
}
