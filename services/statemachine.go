// services/statemachine.go
package services

import (
	"fmt"
	"time"

	"studiopro-backend/models"
)

// SideEffects are the storage mutations a transition instructs the
// caller to perform atomically with the status change itself.
type SideEffects struct {
	NewStatus        models.ReservationStatus
	NewPaymentStatus models.PaymentState
	SetConfirmedAt   bool
	SetCompletedAt   bool
	SetCancelledAt   bool
	// Non-empty: every payment row of the reservation moves to this status.
	CascadePaymentsTo models.PaymentState
	// +1 on creation with a discount, -1 when a pending discounted
	// booking is cancelled, 0 otherwise.
	DiscountUsageDelta int
}

// Transition is a Decision plus the effects to apply when allowed.
type Transition struct {
	Decision
	Effects SideEffects
}

func denied(reason string) Transition {
	return Transition{Decision: Decision{Allowed: false, Reason: reason}}
}

// DecideCreate produces the initial state for a new reservation.
// amountPaid reflects any payment recorded at creation time (manual
// staff bookings); self-service bookings start unpaid.
func DecideCreate(r *models.Reservation, amountPaid float64) Transition {
	payment := models.PayPending
	switch {
	case amountPaid >= r.TotalAmount && r.TotalAmount > 0:
		payment = models.PayPaid
	case amountPaid > 0:
		payment = models.PayPartial
	}

	usage := 0
	if r.DiscountID != nil {
		usage = 1
	}

	return Transition{
		Decision: Decision{Allowed: true, Reason: "reservation created"},
		Effects: SideEffects{
			NewStatus:          models.StatusPending,
			NewPaymentStatus:   payment,
			DiscountUsageDelta: usage,
		},
	}
}

// DecideConfirm handles the manual staff confirm action. An unpaid
// booking cannot be confirmed.
func DecideConfirm(r *models.Reservation) Transition {
	if r.Status != models.StatusPending {
		return denied(fmt.Sprintf("only pending reservations can be confirmed, this one is %s", r.Status))
	}
	if r.PaymentStatus != models.PayPartial && r.PaymentStatus != models.PayPaid {
		return denied("cannot confirm an unpaid reservation: record a deposit or full payment first")
	}
	return Transition{
		Decision: Decision{Allowed: true, Reason: "reservation confirmed"},
		Effects: SideEffects{
			NewStatus:        models.StatusConfirmed,
			NewPaymentStatus: r.PaymentStatus,
			SetConfirmedAt:   true,
		},
	}
}

// DecideStart moves a reservation to in_progress. Full payment is a hard
// precondition, not a warning.
func DecideStart(r *models.Reservation) Transition {
	if r.Status != models.StatusConfirmed {
		return denied(fmt.Sprintf("session can only start from a confirmed reservation, this one is %s", r.Status))
	}
	if r.PaymentStatus != models.PayPaid {
		return denied("session cannot start until the reservation is fully paid")
	}
	return Transition{
		Decision: Decision{Allowed: true, Reason: "session started"},
		Effects: SideEffects{
			NewStatus:        models.StatusInProgress,
			NewPaymentStatus: r.PaymentStatus,
		},
	}
}

// DecideComplete finishes a session. Completed is terminal.
func DecideComplete(r *models.Reservation) Transition {
	if r.Status != models.StatusInProgress {
		return denied(fmt.Sprintf("only an in-progress session can be completed, this one is %s", r.Status))
	}
	return Transition{
		Decision: Decision{Allowed: true, Reason: "session completed"},
		Effects: SideEffects{
			NewStatus:        models.StatusCompleted,
			NewPaymentStatus: r.PaymentStatus,
			SetCompletedAt:   true,
		},
	}
}

// DecideNoShow marks a confirmed reservation whose customer never
// arrived. The deposit is kept.
func DecideNoShow(r *models.Reservation) Transition {
	if r.Status != models.StatusConfirmed {
		return denied(fmt.Sprintf("only a confirmed reservation can be marked no-show, this one is %s", r.Status))
	}
	return Transition{
		Decision: Decision{Allowed: true, Reason: "marked as no-show"},
		Effects: SideEffects{
			NewStatus:        models.StatusNoShow,
			NewPaymentStatus: r.PaymentStatus,
		},
	}
}

// DecideCancel permits cancellation from pending or confirmed only. A
// pending cancellation returns the discount to the pool and cascades its
// payment rows; a confirmed cancellation keeps both (the deposit is
// treated as forfeited instead).
func DecideCancel(r *models.Reservation, now time.Time) Transition {
	if r.Status != models.StatusPending && r.Status != models.StatusConfirmed {
		return denied(fmt.Sprintf("a %s reservation cannot be cancelled", r.Status))
	}

	effects := SideEffects{
		NewStatus:        models.StatusCancelled,
		NewPaymentStatus: r.PaymentStatus,
		SetCancelledAt:   true,
	}
	if r.Status == models.StatusPending {
		effects.CascadePaymentsTo = models.PayCancelled
		effects.NewPaymentStatus = models.PayCancelled
		if r.DiscountID != nil {
			effects.DiscountUsageDelta = -1
		}
	}

	info := GetCancellationInfo(r, now)
	return Transition{
		Decision: Decision{Allowed: true, Reason: info.Reason},
		Effects:  effects,
	}
}

// DecidePaymentEvent applies a gateway or staff payment-status change.
// fullSettlement distinguishes "became paid in full" from a deposit that
// merely made the booking payable; only full settlement reaches paid.
// Re-delivering the same event is a no-op, so upstream webhook retries
// cannot double-cascade.
func DecidePaymentEvent(r *models.Reservation, target models.PaymentState, fullSettlement bool) Transition {
	if r.Status == models.StatusCancelled {
		return denied("a cancelled reservation cannot accept payment events")
	}
	switch target {
	case models.PayPaid:
		if !fullSettlement {
			target = models.PayPartial
		}
	case models.PayPartial, models.PayFailed:
	default:
		return denied(fmt.Sprintf("payment status %q cannot be set through a payment event", target))
	}

	if r.PaymentStatus == target {
		return Transition{
			Decision: Decision{Allowed: true, Reason: "payment status unchanged"},
			Effects: SideEffects{
				NewStatus:        r.Status,
				NewPaymentStatus: r.PaymentStatus,
			},
		}
	}

	// A paid reservation never regresses to partial from a late or
	// duplicated deposit event.
	if r.PaymentStatus == models.PayPaid && target == models.PayPartial {
		return Transition{
			Decision: Decision{Allowed: true, Reason: "payment already settled in full"},
			Effects: SideEffects{
				NewStatus:        r.Status,
				NewPaymentStatus: r.PaymentStatus,
			},
		}
	}

	effects := SideEffects{
		NewStatus:        r.Status,
		NewPaymentStatus: target,
	}
	if r.Status == models.StatusPending && (target == models.PayPaid || target == models.PayPartial) {
		effects.NewStatus = models.StatusConfirmed
		effects.SetConfirmedAt = true
	}

	return Transition{
		Decision: Decision{Allowed: true, Reason: fmt.Sprintf("payment status moved to %s", target)},
		Effects:  effects,
	}
}

// CanDelete permits a hard remove only when no session ran and no money
// was collected. Anything with a paid payment must be cancelled instead.
func CanDelete(r *models.Reservation, payments []models.Payment) Decision {
	if r.Status == models.StatusInProgress || r.Status == models.StatusCompleted {
		return Decision{Allowed: false, Reason: fmt.Sprintf("a %s reservation cannot be deleted", r.Status)}
	}
	for _, p := range payments {
		if p.Status == string(models.PayPaid) {
			return Decision{Allowed: false, Reason: "a reservation with collected payments must be cancelled, not deleted"}
		}
	}
	return Decision{Allowed: true, Reason: "reservation can be deleted"}
}
