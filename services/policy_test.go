package services

import (
	"testing"
	"time"

	"studiopro-backend/models"
)

var policyNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func reservationOn(daysOut int, status models.ReservationStatus) *models.Reservation {
	return &models.Reservation{
		Status: status,
		Date:   time.Date(2026, 3, 10+daysOut, 0, 0, 0, 0, time.UTC),
	}
}

func TestCanReschedule(t *testing.T) {
	tests := []struct {
		name        string
		daysOut     int
		status      models.ReservationStatus
		wantAllowed bool
	}{
		{"exactly 3 days out is still allowed", 3, models.StatusConfirmed, true},
		{"2 days out is inside the window", 2, models.StatusConfirmed, false},
		{"same day is inside the window", 0, models.StatusConfirmed, false},
		{"far out pending booking", 14, models.StatusPending, true},
		{"completed can never move", 14, models.StatusCompleted, false},
		{"cancelled can never move", 14, models.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := CanReschedule(reservationOn(tt.daysOut, tt.status), policyNow)
			if dec.Allowed != tt.wantAllowed {
				t.Errorf("CanReschedule() allowed = %v, want %v (%s)", dec.Allowed, tt.wantAllowed, dec.Reason)
			}
		})
	}
}

func TestCanRescheduleIgnoresTimeOfDay(t *testing.T) {
	// 23:59 three calendar days before the session still counts as a
	// full three days; the rule works on dates, not durations.
	lateEvening := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	r := reservationOn(3, models.StatusConfirmed)
	if dec := CanReschedule(r, lateEvening); !dec.Allowed {
		t.Errorf("CanReschedule() at 23:59 denied: %s", dec.Reason)
	}
}

func TestCanCompletePayment(t *testing.T) {
	tests := []struct {
		name        string
		status      models.ReservationStatus
		payment     models.PaymentState
		wantAllowed bool
	}{
		{"partial confirmed booking", models.StatusConfirmed, models.PayPartial, true},
		{"partial pending booking", models.StatusPending, models.PayPartial, true},
		{"already fully paid", models.StatusConfirmed, models.PayPaid, false},
		{"nothing paid yet", models.StatusPending, models.PayPending, false},
		{"cancelled booking", models.StatusCancelled, models.PayPartial, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.Reservation{Status: tt.status, PaymentStatus: tt.payment}
			dec := CanCompletePayment(r)
			if dec.Allowed != tt.wantAllowed {
				t.Errorf("CanCompletePayment() allowed = %v, want %v (%s)", dec.Allowed, tt.wantAllowed, dec.Reason)
			}
		})
	}
}

func TestGetCancellationInfo(t *testing.T) {
	tests := []struct {
		name          string
		daysOut       int
		status        models.ReservationStatus
		wantAllowed   bool
		wantForfeited bool
	}{
		{"pending outside window keeps deposit", 5, models.StatusPending, true, false},
		{"pending at the boundary keeps deposit", 3, models.StatusPending, true, false},
		{"pending inside window forfeits", 2, models.StatusPending, true, true},
		{"confirmed always forfeits", 10, models.StatusConfirmed, true, true},
		{"confirmed inside window forfeits", 1, models.StatusConfirmed, true, true},
		{"in progress cannot cancel", 0, models.StatusInProgress, false, false},
		{"completed cannot cancel", 0, models.StatusCompleted, false, false},
		{"already cancelled", 5, models.StatusCancelled, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetCancellationInfo(reservationOn(tt.daysOut, tt.status), policyNow)
			if info.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (%s)", info.Allowed, tt.wantAllowed, info.Reason)
			}
			if info.DepositForfeited != tt.wantForfeited {
				t.Errorf("DepositForfeited = %v, want %v (%s)", info.DepositForfeited, tt.wantForfeited, info.Reason)
			}
		})
	}
}
