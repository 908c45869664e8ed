// services/policy.go
package services

import (
	"fmt"
	"time"

	"studiopro-backend/models"
	"studiopro-backend/utils"
)

// RescheduleLeadDays is the H-3 rule: no reschedule or free cancellation
// within 3 calendar days of the session date.
const RescheduleLeadDays = 3

// Decision is the result of a policy or transition check. A denial is
// normal control flow, never an error.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// CancellationInfo reports what cancelling now would mean for the
// customer's deposit.
type CancellationInfo struct {
	Allowed          bool   `json:"allowed"`
	DepositForfeited bool   `json:"depositForfeited"`
	Reason           string `json:"reason"`
}

// daysUntil truncates both dates to midnight before differencing, so
// 23:59 the night before still counts as a full day.
func daysUntil(now, date time.Time) int {
	return utils.DaysBetween(now, date)
}

// CanReschedule applies the H-3 rule to a reservation.
func CanReschedule(r *models.Reservation, now time.Time) Decision {
	if r.Status == models.StatusCompleted || r.Status == models.StatusCancelled {
		return Decision{Allowed: false, Reason: fmt.Sprintf("reservation is %s and can no longer be rescheduled", r.Status)}
	}
	days := daysUntil(now, r.Date)
	if days < RescheduleLeadDays {
		return Decision{Allowed: false, Reason: fmt.Sprintf("reschedule closed: sessions can only be moved up to %d days before the date (H-%d)", RescheduleLeadDays, RescheduleLeadDays)}
	}
	return Decision{Allowed: true, Reason: "reschedule window open"}
}

// CanCompletePayment allows settling the remaining balance only for
// partially paid, non-cancelled reservations.
func CanCompletePayment(r *models.Reservation) Decision {
	if r.Status == models.StatusCancelled {
		return Decision{Allowed: false, Reason: "reservation is cancelled"}
	}
	if r.PaymentStatus != models.PayPartial {
		return Decision{Allowed: false, Reason: fmt.Sprintf("payment is %s, only partially paid reservations have a balance to settle", r.PaymentStatus)}
	}
	return Decision{Allowed: true, Reason: "remaining balance can be settled"}
}

// GetCancellationInfo reports whether the deposit would be forfeited.
// The deposit is kept by the studio once the booking progressed past
// pending, or when cancellation happens inside the H-3 window.
func GetCancellationInfo(r *models.Reservation, now time.Time) CancellationInfo {
	if r.Status != models.StatusPending && r.Status != models.StatusConfirmed {
		return CancellationInfo{
			Allowed: false,
			Reason:  fmt.Sprintf("reservation is %s and cannot be cancelled", r.Status),
		}
	}

	progressed := r.Status != models.StatusPending
	insideWindow := daysUntil(now, r.Date) < RescheduleLeadDays

	info := CancellationInfo{Allowed: true, DepositForfeited: progressed || insideWindow}
	switch {
	case progressed && insideWindow:
		info.Reason = "confirmed booking cancelled inside the H-3 window: deposit is forfeited"
	case progressed:
		info.Reason = "booking was already confirmed: deposit is forfeited"
	case insideWindow:
		info.Reason = "cancellation inside the H-3 window: deposit is forfeited"
	default:
		info.Reason = "pending booking cancelled outside the H-3 window: no deposit forfeited"
	}
	return info
}
