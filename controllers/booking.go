// controllers/booking.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"studiopro-backend/config"
	"studiopro-backend/models"
	"studiopro-backend/services"
	"studiopro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateBooking runs the full booking pipeline and returns the created
// reservation with its financial breakdown.
func CreateBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var input services.CreateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if !utils.ValidatePhone(input.CustomerPhone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer phone number")
		return
	}

	reservation, err := bookingSvc().CreateReservation(c.Request.Context(), actor, input)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if reservation.PaymentStatus == models.PayPaid || reservation.PaymentStatus == models.PayPartial {
		go notificationSvc().SendReservationNotification(reservation, models.TemplatePaymentReceived)
	}

	utils.RespondWithData(c, http.StatusCreated, reservation)
}

// GetBookings lists reservations for the studio, newest date first.
// Optional filters: date, status.
func GetBookings(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	query := config.DB.Preload("Addons").Preload("Payments").
		Where("studio_id = ?", actor.StudioID)

	if date := c.Query("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		query = query.Where("date = ?", parsed)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := query.Order("date DESC, start_time ASC").Find(&reservations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reservations")
		return
	}

	utils.RespondWithData(c, http.StatusOK, reservations)
}

// GetBooking retrieves one reservation by internal ID or booking code.
func GetBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	idParam := c.Param("id")
	query := config.DB.Preload("Addons").Preload("Payments").Preload("Events").
		Where("studio_id = ?", actor.StudioID)
	if parsed, err := uuid.Parse(idParam); err == nil {
		query = query.Where("id = ?", parsed)
	} else {
		query = query.Where("booking_code = ?", idParam)
	}

	var reservation models.Reservation
	if err := query.First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Reservation not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, reservation)
}

func parseBookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid reservation ID format")
		return uuid.Nil, false
	}
	return id, true
}

// RescheduleBooking moves a reservation to a new date/time under the
// H-3 policy.
func RescheduleBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var input services.RescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reservation, err := bookingSvc().RescheduleReservation(c.Request.Context(), actor, id, input)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.RespondWithData(c, http.StatusOK, reservation)
}

type UpdateBookingAddonsInput struct {
	Addons []services.AddonInput `json:"addons"`
}

// UpdateBookingAddons replaces the reservation's addon selection and
// reprices it; a discount that stops qualifying is dropped.
func UpdateBookingAddons(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var input UpdateBookingAddonsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reservation, err := bookingSvc().UpdateReservationAddons(c.Request.Context(), actor, id, input.Addons)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.RespondWithData(c, http.StatusOK, reservation)
}

type CancelBookingInput struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelBooking cancels a pending or confirmed reservation and reports
// whether the deposit was forfeited.
func CancelBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var input CancelBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reservation, info, err := bookingSvc().CancelReservation(c.Request.Context(), actor, id, input.Reason)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	go notificationSvc().SendReservationNotification(reservation, models.TemplateBookingCancelled)

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"reservation":      reservation,
		"depositForfeited": info.DepositForfeited,
		"reason":           info.Reason,
	})
}

// GetCancellationPreview reports what cancelling now would mean, without
// doing it.
func GetCancellationPreview(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var reservation models.Reservation
	if err := config.DB.Where("studio_id = ? AND id = ?", actor.StudioID, id).
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Reservation not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	info := services.GetCancellationInfo(&reservation, time.Now())
	reschedule := services.CanReschedule(&reservation, time.Now())
	utils.RespondWithData(c, http.StatusOK, gin.H{
		"cancellation": info,
		"reschedule":   reschedule,
	})
}

// ConfirmBooking is the manual staff confirmation; it requires a
// recorded deposit or full payment.
func ConfirmBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	reservation, err := bookingSvc().ConfirmReservation(actor, id)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	go notificationSvc().SendReservationNotification(reservation, models.TemplateBookingConfirmed)

	utils.RespondWithData(c, http.StatusOK, reservation)
}

// StartBooking moves a confirmed, fully paid reservation to in_progress.
func StartBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	reservation, err := bookingSvc().StartSession(actor, id)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.RespondWithData(c, http.StatusOK, reservation)
}

// CompleteBooking finishes an in-progress session.
func CompleteBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	reservation, err := bookingSvc().CompleteSession(actor, id)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.RespondWithData(c, http.StatusOK, reservation)
}

// NoShowBooking marks a confirmed reservation whose customer never came.
func NoShowBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	reservation, err := bookingSvc().MarkNoShow(actor, id)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	utils.RespondWithData(c, http.StatusOK, reservation)
}

type RecordPaymentInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"required"`
}

// RecordBookingPayment registers a staff-collected payment (deposit or
// settlement) against the reservation.
func RecordBookingPayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	var input RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	reservation, err := bookingSvc().RecordPayment(actor, id, input.Amount, input.Method)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	go notificationSvc().SendReservationNotification(reservation, models.TemplatePaymentReceived)

	utils.RespondWithData(c, http.StatusOK, reservation)
}

// DeleteBooking hard-removes a reservation that never ran and never
// collected money. Admin only.
func DeleteBooking(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseBookingID(c)
	if !ok {
		return
	}

	if err := bookingSvc().DeleteReservation(actor, id); err != nil {
		respondEngineError(c, err)
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{"message": "Reservation deleted successfully"})
}
