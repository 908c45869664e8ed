// services/availability.go
package services

import (
	"time"

	"studiopro-backend/models"
	"studiopro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlockingStatuses are the reservation states that occupy a slot. A
// cancelled or completed booking frees its window.
var BlockingStatuses = []models.ReservationStatus{
	models.StatusPending,
	models.StatusConfirmed,
	models.StatusInProgress,
}

// Window is a half-open [Start, End) interval in minutes from midnight.
type Window struct {
	Start int
	End   int
}

// Slot is one candidate start time in a day's enumeration.
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// Overlaps implements half-open interval overlap: touching endpoints do
// not conflict, so [9:00,10:00) and [10:00,11:00) coexist.
func Overlaps(a, b Window) bool {
	return a.Start < b.End && a.End > b.Start
}

// HasConflict reports whether a candidate window overlaps any of the
// occupied ones.
func HasConflict(candidate Window, occupied []Window) bool {
	for _, w := range occupied {
		if Overlaps(candidate, w) {
			return true
		}
	}
	return false
}

// EnumerateSlots slides a window of the target duration across the
// operating hours in step-sized increments and flags each start time.
func EnumerateSlots(openMin, closeMin, durationMin, stepMin int, occupied []Window) []Slot {
	if stepMin <= 0 {
		stepMin = 60
	}
	var slots []Slot
	for start := openMin; start+durationMin <= closeMin; start += stepMin {
		w := Window{Start: start, End: start + durationMin}
		slots = append(slots, Slot{
			StartTime: utils.FormatClock(w.Start),
			EndTime:   utils.FormatClock(w.End),
			Available: !HasConflict(w, occupied),
		})
	}
	return slots
}

// AvailabilityChecker answers slot and facility availability questions
// against stored reservations.
type AvailabilityChecker struct {
	db *gorm.DB
}

func NewAvailabilityChecker(db *gorm.DB) *AvailabilityChecker {
	return &AvailabilityChecker{db: db}
}

// occupiedWindows loads the primary windows of blocking reservations at
// a studio on a date, optionally excluding one reservation (the one
// being rescheduled).
func (a *AvailabilityChecker) occupiedWindows(studioID uuid.UUID, date time.Time, exclude *uuid.UUID) ([]Window, error) {
	query := a.db.Model(&models.Reservation{}).
		Select("start_time", "end_time").
		Where("studio_id = ? AND date = ? AND status IN ?", studioID, utils.BeginningOfDay(date), BlockingStatuses)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}

	var rows []struct {
		StartTime string
		EndTime   string
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(rows))
	for _, row := range rows {
		start, err := utils.ParseClock(row.StartTime)
		if err != nil {
			continue
		}
		end, err := utils.ParseClock(row.EndTime)
		if err != nil {
			continue
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	return windows, nil
}

// IsSlotAvailable checks a candidate primary window. Pass exclude when
// rescheduling so the reservation being moved does not conflict with
// itself.
func (a *AvailabilityChecker) IsSlotAvailable(studioID uuid.UUID, date time.Time, candidate Window, exclude *uuid.UUID) (bool, error) {
	occupied, err := a.occupiedWindows(studioID, date, exclude)
	if err != nil {
		return false, err
	}
	return !HasConflict(candidate, occupied), nil
}

// IsFacilityAvailable checks a facility-bound addon window against every
// other blocking reservation's addon at the same facility on that date.
// Included addons still occupy the facility. An addon with no facility
// binding consumes nothing and is always available.
func (a *AvailabilityChecker) IsFacilityAvailable(facilityID uuid.UUID, date time.Time, candidate Window, excludeReservation *uuid.UUID) (bool, error) {
	query := a.db.Table("reservation_addons").
		Select("reservation_addons.start_time", "reservation_addons.end_time").
		Joins("JOIN reservations ON reservations.id = reservation_addons.reservation_id").
		Where("reservation_addons.facility_id = ?", facilityID).
		Where("reservations.date = ? AND reservations.status IN ?", utils.BeginningOfDay(date), BlockingStatuses)
	if excludeReservation != nil {
		query = query.Where("reservations.id <> ?", *excludeReservation)
	}

	var rows []struct {
		StartTime string
		EndTime   string
	}
	if err := query.Find(&rows).Error; err != nil {
		return false, err
	}

	for _, row := range rows {
		start, err := utils.ParseClock(row.StartTime)
		if err != nil {
			continue
		}
		end, err := utils.ParseClock(row.EndTime)
		if err != nil {
			continue
		}
		if Overlaps(candidate, Window{Start: start, End: end}) {
			return false, nil
		}
	}
	return true, nil
}

// ListDaySlots enumerates every candidate start time for a duration
// across the studio's operating hours.
func (a *AvailabilityChecker) ListDaySlots(studio *models.Studio, date time.Time, durationMin int) ([]Slot, error) {
	openMin, err := utils.ParseClock(studio.OpenTime)
	if err != nil {
		return nil, err
	}
	closeMin, err := utils.ParseClock(studio.CloseTime)
	if err != nil {
		return nil, err
	}

	occupied, err := a.occupiedWindows(studio.ID, date, nil)
	if err != nil {
		return nil, err
	}

	return EnumerateSlots(openMin, closeMin, durationMin, studio.SlotMinutes, occupied), nil
}
