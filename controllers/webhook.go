// controllers/webhook.go
package controllers

import (
	"errors"
	"net/http"

	"studiopro-backend/models"
	"studiopro-backend/services"
	"studiopro-backend/utils"

	"github.com/gin-gonic/gin"
)

// PaymentWebhook receives the gateway callback and runs the payment
// transition. Signature verification and retries live at the gateway
// integration, not here; duplicated deliveries are safe because the
// transition is idempotent.
func PaymentWebhook(c *gin.Context) {
	var input services.WebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payload: "+err.Error())
		return
	}

	reservation, err := bookingSvc().HandlePaymentWebhook(input)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Unknown booking code")
			return
		}
		respondEngineError(c, err)
		return
	}

	if reservation.PaymentStatus == models.PayPaid || reservation.PaymentStatus == models.PayPartial {
		go notificationSvc().SendReservationNotification(reservation, models.TemplatePaymentReceived)
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"bookingCode":   reservation.BookingCode,
		"status":        reservation.Status,
		"paymentStatus": reservation.PaymentStatus,
	})
}
